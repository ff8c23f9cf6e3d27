package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/chapmanwm/printsync-web/internal/adapter"
	"github.com/chapmanwm/printsync-web/internal/api/shared/dto"
	"github.com/chapmanwm/printsync-web/internal/logger"
	"github.com/chapmanwm/printsync-web/internal/providers/makerworld"
)

// Scraper defines the interface for the background print-history sync worker
type Scraper interface {
	// Start begins the scraper's main loop
	// This is a blocking call that runs until the context is canceled
	Start(ctx context.Context) error

	// Stop gracefully stops the scraper
	// This should wait for any in-progress cycle to complete
	Stop(ctx context.Context) error

	// Name returns the scraper's name for logging and identification
	Name() string
}

// Config holds configuration for the print scraper
type Config struct {
	Interval       time.Duration // Time to sleep between sync cycles
	MirrorCovers   bool          // Re-host cover images through the API
	WorkerPoolSize int           // Concurrent cover mirror workers
	QueueSize      int           // Pending cover mirror tasks
}

// printScraper implements the Scraper interface for MakerWorld task history
type printScraper struct {
	config     *Config
	makerworld makerworld.Client
	ingest     IngestClient
	httpClient adapter.HTTPClient
	clock      adapter.Clock
	pool       pond.Pool
	running    atomic.Bool
	stopChan   chan struct{}
	stoppedCh  chan struct{}
}

// NewPrintScraper creates a new print history scraper
func NewPrintScraper(
	config *Config,
	mw makerworld.Client,
	ingest IngestClient,
	httpClient adapter.HTTPClient,
	clock adapter.Clock,
) Scraper {
	return &printScraper{
		config:     config,
		makerworld: mw,
		ingest:     ingest,
		httpClient: httpClient,
		clock:      clock,
		stopChan:   make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Name returns the scraper's name
func (s *printScraper) Name() string {
	return "print-scraper"
}

// Start begins the scraper's main loop
func (s *printScraper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("scraper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.Info("Starting print scraper",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("mirror_covers", s.config.MirrorCovers),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	// Create worker pool for cover mirroring
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.QueueSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Print scraper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.Info("Print scraper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSyncCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error(err)
				}
			}

			// Use context-aware sleep so we can be interrupted
			if !s.sleep(ctx, s.config.Interval) {
				s.cleanup()
				return nil
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *printScraper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the scraper with timeout support
func (s *printScraper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.Info("Stopping print scraper")

	// Signal stop to the main loop
	close(s.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.Info("Print scraper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Warn("Print scraper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSyncCycle fetches the task history and pushes it through the API
func (s *printScraper) runSyncCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	logger.Info("Starting sync cycle")

	tasks, err := s.makerworld.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if len(tasks) == 0 {
		logger.Info("No tasks in print history")
		return nil
	}

	prints := makerworld.MapTasksToPrints(tasks)

	if s.config.MirrorCovers {
		s.mirrorCovers(ctx, prints)
	}

	count, err := s.ingest.SubmitPrints(ctx, prints)
	if err != nil {
		return fmt.Errorf("failed to submit prints: %w", err)
	}

	logger.Info("Sync cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("fetched", len(tasks)),
		zap.Int("synced", count),
	)

	return nil
}

// mirrorCovers downloads each print's cover and re-hosts it through the API,
// rewriting the cover URL in place. A failed mirror keeps the upstream URL.
func (s *printScraper) mirrorCovers(ctx context.Context, prints []dto.PrintInput) {
	group := s.pool.NewGroup()

	for i := range prints {
		print := &prints[i]
		if print.Cover == nil || *print.Cover == "" {
			continue
		}

		group.Submit(func() {
			data, err := s.httpClient.GetBytes(ctx, *print.Cover, nil)
			if err != nil {
				logger.Warn("Failed to download cover",
					zap.String("print_id", print.ID),
					zap.String("url", *print.Cover),
					zap.Error(err),
				)
				return
			}

			url, err := s.ingest.UploadCover(ctx, print.ID, data)
			if err != nil {
				logger.Warn("Failed to mirror cover",
					zap.String("print_id", print.ID),
					zap.Error(err),
				)
				return
			}

			print.Cover = &url
			logger.Debug("Mirrored cover",
				zap.String("print_id", print.ID),
				zap.String("url", url),
			)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error(fmt.Errorf("cover mirroring incomplete: %w", err))
	}
}

// sleep sleeps for the given duration but can be interrupted by context
// cancellation or a stop request. Returns false when interrupted.
func (s *printScraper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-s.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}
