package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subharvest/infrastructure/logger"
)

// DefaultTTL is the fixed expiration window of cached listings, measured
// from write time.
const DefaultTTL = 8 * time.Hour

var keySanitizer = strings.NewReplacer("/", "_", ":", "_")

// cacheEntry is the on-disk shape of one cache file.
type cacheEntry struct {
	Identifier string          `json:"identifier"`
	CachedAt   int64           `json:"cached_at"`
	Payload    json.RawMessage `json:"payload"`
}

// FileCache stores one file per sanitized identifier under a cache
// directory. Expired entries behave as absent on Get and are left in place
// until the next Put overwrites them.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileCache creates the cache directory if needed and returns a cache
// with the given expiration window.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the payload written by the most recent Put for the identifier
// if fewer than the expiration window has elapsed since that Put. Unreadable
// or corrupt entries are reported as absent.
func (c *FileCache) Get(identifier string) ([]byte, bool) {
	data, err := os.ReadFile(c.filePath(identifier))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.GetLogger().WithField("identifier", identifier).WithField("error", err).Warn("Corrupt cache entry, treating as miss")
		return nil, false
	}
	if c.now().Unix()-entry.CachedAt >= int64(c.ttl.Seconds()) {
		logger.GetLogger().WithField("identifier", identifier).Info("Cache expired")
		return nil, false
	}
	logger.GetLogger().WithField("identifier", identifier).Info("Using cached data")
	return entry.Payload, true
}

// Put stores the payload under the identifier, overwriting any previous
// entry and restarting the expiration window.
func (c *FileCache) Put(identifier string, payload []byte) error {
	entry := cacheEntry{
		Identifier: identifier,
		CachedAt:   c.now().Unix(),
		Payload:    json.RawMessage(payload),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry for %s: %w", identifier, err)
	}
	if err := os.WriteFile(c.filePath(identifier), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry for %s: %w", identifier, err)
	}
	return nil
}

// filePath sanitizes path-unsafe characters so URL-shaped identifiers can
// be used as storage keys.
func (c *FileCache) filePath(identifier string) string {
	return filepath.Join(c.dir, keySanitizer.Replace(identifier)+".json")
}
