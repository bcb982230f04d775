package configuration

import (
	"fmt"
	"os"
	"strings"

	"subharvest/infrastructure/logger"

	"github.com/spf13/viper"
)

// Config holds every process-wide setting for one run invocation. It is
// loaded once in main and passed into each component at construction.
type Config struct {
	App    App    `json:"app"`
	Solr   Solr   `json:"solr"`
	Cache  Cache  `json:"cache"`
	Google Google `json:"google"`
	Ytdlp  Ytdlp  `json:"ytdlp"`
	Search Search `json:"search"`
}

type App struct {
	Port int `json:"port"`
}

// Solr holds the base URL of the Solr core, e.g.
// http://localhost:8983/solr/videos.
type Solr struct {
	URL string `json:"url"`
}

type Cache struct {
	Dir string `json:"dir"`
}

// Google holds the OAuth client credentials for the YouTube Data API.
type Google struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	TokenFile    string `json:"tokenFile"`
}

type Ytdlp struct {
	Path string `json:"path"`
}

// Search selects the backend of the search API: "solr" or "json". JSONPath
// points at the snapshot written by a file-backed harvest.
type Search struct {
	Source   string `json:"source"`
	JSONPath string `json:"jsonPath"`
}

// Load reads config.json (or config-<ENV>.json) via viper and applies
// environment-variable overrides and defaults.
func Load() (*Config, error) {
	name := getConfigName()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Warn("Config file not found, relying on environment variables")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	c.Solr.URL = getConfigValue(c.Solr.URL, "SOLR_URL", "")
	c.Cache.Dir = getConfigValue(c.Cache.Dir, "CACHE_DIR", "cache")
	c.Google.ClientID = getConfigValue(c.Google.ClientID, "GOOGLE_CLIENT_ID", "")
	c.Google.ClientSecret = getConfigValue(c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET", "")
	c.Google.TokenFile = getConfigValue(c.Google.TokenFile, "GOOGLE_TOKEN_FILE", "token.json")
	c.Ytdlp.Path = getConfigValue(c.Ytdlp.Path, "YTDLP_PATH", "yt-dlp")
	c.Search.Source = getConfigValue(c.Search.Source, "SEARCH_SOURCE", "json")
	c.Search.JSONPath = getConfigValue(c.Search.JSONPath, "JSON_FILE_PATH", "data.json")
	if c.App.Port == 0 {
		c.App.Port = 8000
	}

	return c, nil
}

func getConfigName() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

// getConfigValue gets value from config first, then environment variable,
// then default. Environment variables take precedence when provided.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
