package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subharvest/domain/repository"
	"subharvest/infrastructure/cache"
	googleclient "subharvest/infrastructure/clients/google"
	"subharvest/infrastructure/clients/ytdlp"
	"subharvest/infrastructure/configuration"
	"subharvest/infrastructure/logger"
	"subharvest/infrastructure/persistence"
	httpHandler "subharvest/interfaces/http"
	"subharvest/server"
	"subharvest/usecase"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"
)

// CLI structure
var CLI struct {
	Harvest struct {
		Output string `help:"File path to save the data as JSON." type:"path"`
		Solr   bool   `help:"Save data to the configured Solr core."`
	} `cmd:"harvest" help:"Harvest video metadata for every subscribed channel."`

	Serve struct {
		Port int `help:"Port for the search API." default:"0"`
	} `cmd:"serve" help:"Serve the paginated search API."`
}

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()

	ktx := kong.Parse(&CLI, kong.Name("subharvest"))

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")
	cfg, err := configuration.Load()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to load configuration")
		os.Exit(1)
	}

	switch ktx.Command() {
	case "harvest":
		if err := runHarvest(cfg); err != nil {
			logger.GetLogger().WithField("error", err).Error("Harvest failed")
			os.Exit(1)
		}
	case "serve":
		if err := runServe(cfg); err != nil {
			logger.GetLogger().WithField("error", err).Error("Server returned an error")
			os.Exit(2)
		}
	default:
		ktx.PrintUsage(false)
		os.Exit(1)
	}
}

// runHarvest wires the pipeline and runs one harvest. The destination is
// validated before any remote service is contacted.
func runHarvest(cfg *configuration.Config) error {
	ctx := context.Background()

	videoRepo, err := selectRepository(cfg)
	if err != nil {
		return err
	}

	listingCache, err := cache.NewFileCache(cfg.Cache.Dir, cache.DefaultTTL)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	extractor := ytdlp.NewFlatExtractor(listingCache, cfg.Ytdlp.Path)

	httpClient, err := googleclient.Authenticate(ctx, cfg.Google)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	subscriptions, err := googleclient.NewSubscriptionClient(ctx, httpClient)
	if err != nil {
		return err
	}

	harvest := usecase.NewHarvestUseCase(subscriptions, extractor, videoRepo)
	return harvest.Run(ctx)
}

// selectRepository picks the destination store from the CLI flags. Exactly
// one of --output and --solr must be set.
func selectRepository(cfg *configuration.Config) (repository.IVideoRepository, error) {
	output := CLI.Harvest.Output
	useSolr := CLI.Harvest.Solr

	switch {
	case output == "" && !useSolr:
		return nil, errors.New("either --output or --solr must be specified")
	case output != "" && useSolr:
		return nil, errors.New("--output and --solr are mutually exclusive")
	case useSolr:
		if cfg.Solr.URL == "" {
			return nil, errors.New("solr url is not configured")
		}
		logger.GetLogger().WithField("solrUrl", cfg.Solr.URL).Info("Using Solr repository")
		return persistence.NewSolrRepository(cfg.Solr.URL, nil), nil
	default:
		logger.GetLogger().WithField("path", output).Info("Using JSON repository")
		return persistence.NewJSONRepository(output), nil
	}
}

// runServe starts the search API with graceful shutdown.
func runServe(cfg *configuration.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	var videoRepo repository.IVideoRepository
	switch cfg.Search.Source {
	case "solr":
		if cfg.Solr.URL == "" {
			return errors.New("solr url is not configured")
		}
		videoRepo = persistence.NewSolrRepository(cfg.Solr.URL, nil)
	case "json":
		videoRepo = persistence.NewJSONRepository(cfg.Search.JSONPath)
	default:
		return fmt.Errorf("unknown search source %q", cfg.Search.Source)
	}

	searchHandler := httpHandler.NewSearchHandler(usecase.NewSearchUseCase(videoRepo))
	router := server.InitiateRouter(searchHandler)

	port := cfg.App.Port
	if CLI.Serve.Port != 0 {
		port = CLI.Serve.Port
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.GetLogger().WithField("port", port).WithField("source", cfg.Search.Source).Info("Starting search API")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	return g.Wait()
}
