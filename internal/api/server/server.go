package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chapmanwm/printsync-web/internal/api/middleware"
	"github.com/chapmanwm/printsync-web/internal/api/rest"
	"github.com/chapmanwm/printsync-web/internal/api/shared/executor"
	"github.com/chapmanwm/printsync-web/internal/images"
	"github.com/chapmanwm/printsync-web/internal/logger"
	"github.com/chapmanwm/printsync-web/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug         bool
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	CoversBaseURL string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	images     images.Store
	verifier   middleware.KeyVerifier
	httpServer *http.Server
}

// New creates a new API server. The key verifier guards the write endpoints;
// the image store may be nil to disable cover uploads.
func New(cfg Config, st store.Store, imgs images.Store, verifier middleware.KeyVerifier) *Server {
	return &Server{
		config:   cfg,
		store:    st,
		images:   imgs,
		verifier: verifier,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Create shared executor
	exec := executor.NewExecutor(s.store, s.images)

	// Create REST handler
	restHandler := rest.NewHandler(exec)

	// Setup REST routes, serving mirrored covers when an image store is
	// configured
	coversDir := ""
	if fs, ok := s.images.(*images.FileStore); ok {
		coversDir = fs.Dir()
	}
	rest.SetupRoutes(router, restHandler, s.verifier, s.config.CoversBaseURL, coversDir)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
