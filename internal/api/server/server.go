package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/api/middleware"
	"github.com/reachpaglu/scamwatch/internal/api/rest"
	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/config"
	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/migrate"
	"github.com/reachpaglu/scamwatch/internal/ratelimit"
	"github.com/reachpaglu/scamwatch/internal/service"
	"github.com/reachpaglu/scamwatch/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigin   string
	RateLimits   config.RateLimitConfig
	Threshold    int64
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	ledger     store.Store
	cache      cache.Cache
	limiter    ratelimit.Limiter
	importer   *migrate.Importer
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, ledger store.Store, sideCache cache.Cache, limiter ratelimit.Limiter, importer *migrate.Importer) *Server {
	return &Server{
		config:   cfg,
		ledger:   ledger,
		cache:    sideCache,
		limiter:  limiter,
		importer: importer,
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
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.CORSOrigin))

	// Create services
	reports := service.NewReportService(s.ledger, s.cache, s.config.Threshold)
	stats := service.NewStatsService(s.ledger, s.cache, s.config.Threshold)

	// Create REST handler
	restHandler := rest.NewHandler(reports, stats, s.importer, s.ledger, s.cache)

	// Setup REST routes with per-route rate limits
	rest.SetupRoutes(router, restHandler, s.limiter, s.config.RateLimits)

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
