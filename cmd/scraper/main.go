package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chapmanwm/printsync-web/internal/adapter"
	"github.com/chapmanwm/printsync-web/internal/config"
	"github.com/chapmanwm/printsync-web/internal/logger"
	"github.com/chapmanwm/printsync-web/internal/providers/makerworld"
	"github.com/chapmanwm/printsync-web/internal/ratelimit"
	"github.com/chapmanwm/printsync-web/internal/scraper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadScraperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "scraper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting print-history scraper")

	// Initialize HTTP client and clock. Outbound MakerWorld traffic is
	// paced to keep the session token from being flagged.
	httpClient := adapter.NewHTTPClient(cfg.HTTPTimeout)
	limitedClient := ratelimit.NewHTTPClient(httpClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	clock := adapter.NewClock()

	// Initialize MakerWorld client
	mwClient := makerworld.NewClient(limitedClient, cfg.MakerWorld.APIURL, cfg.MakerWorld.Token, cfg.MakerWorld.Limit)

	// Initialize ingest client for our own API
	ingestClient := scraper.NewIngestClient(httpClient, cfg.Ingest.APIURL, cfg.Ingest.APIKey)

	// Initialize the scraper
	scraperConfig := &scraper.Config{
		Interval:       cfg.Interval,
		MirrorCovers:   cfg.MirrorCovers,
		WorkerPoolSize: cfg.Worker.PoolSize,
		QueueSize:      cfg.Worker.QueueSize,
	}
	printScraper := scraper.NewPrintScraper(scraperConfig, mwClient, ingestClient, limitedClient, clock)

	logger.Info("Initialized print scraper",
		zap.Duration("interval", cfg.Interval),
		zap.Bool("mirror_covers", cfg.MirrorCovers),
		zap.Int("worker_pool_size", cfg.Worker.PoolSize),
	)

	// Start the scraper in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := printScraper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error(err)
	}

	// Cancel context to stop the scraper
	cancel()

	// Give the scraper time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := printScraper.Stop(shutdownCtx); err != nil {
		logger.Error(err)
	}

	logger.Info("Scraper stopped")
}
