package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"annonces-abidjan/api"
	"annonces-abidjan/config"
	"annonces-abidjan/models"
	"annonces-abidjan/scraper"
	"annonces-abidjan/scraper/generator"
	"annonces-abidjan/scraper/tonkro"
	"annonces-abidjan/services"
	"annonces-abidjan/storage"
	"annonces-abidjan/utils"
	"annonces-abidjan/view"
)

func main() {
	once := flag.Bool("once", false, "run the scrape pipeline once and exit")
	report := flag.Bool("report", false, "print the market report for stored listings and exit")
	reset := flag.Bool("reset", false, "delete every stored listing before scraping")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.Env, cfg.LogLevel)

	logger.Info("=== Annonces %s starting ===", cfg.City)
	logger.Info("Config: store=%s | source=%s | interval=%v | concurrency=%d | rate=%dms",
		cfg.StoreDriver, cfg.ScrapeSource, cfg.ScrapeInterval, cfg.MaxConcurrency, cfg.RateLimitMs)

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open %s store: %v", cfg.StoreDriver, err)
		if cfg.StoreDriver == "postgres" {
			logger.Error("Make sure Docker is running: docker compose up -d")
		}
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reset {
		if err := store.Clear(ctx); err != nil {
			logger.Error("Failed to clear store: %v", err)
			os.Exit(1)
		}
		logger.Info("Store cleared")
	}

	if *report {
		if err := printReport(ctx, store, logger); err != nil {
			logger.Error("Report failed: %v", err)
			os.Exit(1)
		}
		return
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		logger.Error("Failed to set up source %q: %v", cfg.ScrapeSource, err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	pipeline := services.NewPipeline(logger, store, csvWriter, services.NewCleaner(logger, cfg.City), source)

	if *once {
		inserted, err := pipeline.Run(ctx)
		if err != nil {
			logger.Error("Pipeline failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("  Done. %d new listings | Raw CSV → %s\n\n", inserted, cfg.CSVOutputPath)
		return
	}

	go pipeline.Schedule(ctx, cfg.ScrapeInterval, cfg.ScrapeErrorBackoff, cfg.ScrapeOnStart)

	handler := api.NewHandler(store, view.NewClient(cfg.APIBaseURL, nil), logger, cfg.City, cfg.Currency)
	srv := api.NewServer(cfg, logger, handler)

	go func() {
		logger.Info("[api] Listening on %s (page reads the API at %s)", cfg.HTTPAddr, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("[api] Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("[api] Graceful shutdown failed: %v", err)
	}
}

// openStore picks the listing store from STORE_DRIVER. The memory store
// starts with the demonstration dataset.
func openStore(cfg *config.Config) (storage.ListingStore, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN())
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath)
	case "memory":
		return storage.NewMemoryStore(storage.DemoListings(time.Now())...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newSource(cfg *config.Config, logger *utils.Logger) (services.Source, error) {
	switch cfg.ScrapeSource {
	case "generator":
		return generator.New(logger, time.Now().UnixNano()), nil
	case "tonkro":
		sources, err := scraper.Load(cfg.SourcesPath)
		if err != nil {
			return nil, err
		}
		site, ok := sources.Get("tonkro")
		if !ok {
			return nil, fmt.Errorf("no tonkro site in %s", cfg.SourcesPath)
		}
		return tonkro.New(cfg, site, logger), nil
	default:
		return nil, fmt.Errorf("unknown scrape source %q", cfg.ScrapeSource)
	}
}

func printReport(ctx context.Context, store storage.ListingStore, logger *utils.Logger) error {
	listings, err := store.All(ctx, models.Filters{})
	if err != nil {
		return err
	}
	insights := services.NewInsightService(logger)
	insights.Print(os.Stdout, insights.Generate(listings))
	return nil
}
