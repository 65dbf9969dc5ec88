package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/api/server"
	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/config"
	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/migrate"
	"github.com/reachpaglu/scamwatch/internal/ratelimit"
	"github.com/reachpaglu/scamwatch/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

// connectDatabase dials the ledger database, retrying with exponential
// backoff so a restarting database does not take the service down with it.
func connectDatabase(ctx context.Context, dsn string) (*gorm.DB, error) {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(15*time.Second),
		backoff.WithMaxElapsedTime(2*time.Minute),
	), ctx)

	return backoff.RetryWithData(func() (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			logger.Warn("Database not ready, retrying", zap.Error(err))
			return nil, err
		}
		return db, nil
	}, policy)
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
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
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Scamwatch API")

	// Connect to the ledger database
	db, err := connectDatabase(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}

	// Run schema migrations
	if err := store.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize the ledger store
	ledger := store.NewStore(db, adapter.NewClock())

	// Connect to Redis; the cache and the rate limiter share one client
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}()

	sideCache := cache.New(redisClient, cache.Config{
		DefaultTTL: time.Duration(cfg.Redis.DefaultTTL) * time.Second,
		OpTimeout:  cfg.Redis.OpTimeout,
	})
	if err := sideCache.Ping(ctx); err != nil {
		// The cache fails open, so an unreachable Redis degrades
		// latency but not correctness
		logger.Warn("Redis unreachable at startup", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	limiter := ratelimit.New(redisClient, adapter.NewClock())
	importer := migrate.NewImporter(ledger, cfg.MigrationDataDir)

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigin:   cfg.Server.CORSOrigin,
		RateLimits:   cfg.RateLimit,
		Threshold:    cfg.Threshold,
	}

	// Create and start server
	srv := server.New(serverConfig, ledger, sideCache, limiter, importer)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Shutdown context with its own timeout; the run context is canceled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
