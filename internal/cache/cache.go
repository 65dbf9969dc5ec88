// Package cache provides a fail-open side cache in front of the ledger
// store. The cache is advisory: on any backend error callers are handed a
// miss or a silent no-op and fall back to the source of truth. It must
// never be the reason a request fails.
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/logger"
)

// Cache defines the side-cache operations used by the report service and
// stats aggregator.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	// Backend errors are indistinguishable from misses.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key for the given TTL. A non-positive TTL
	// falls back to the configured default.
	Set(ctx context.Context, key string, value string, ttl time.Duration)

	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string)

	// DeleteByPattern removes every key matching the glob pattern
	DeleteByPattern(ctx context.Context, pattern string)

	// Ping reports whether the cache backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend connection
	Close() error
}

// Config holds cache behavior settings
type Config struct {
	// DefaultTTL applies when Set is called with a non-positive TTL
	DefaultTTL time.Duration
	// OpTimeout bounds each backend call before the operation fails open
	OpTimeout time.Duration
}

type redisCache struct {
	client     adapter.RedisClient
	defaultTTL time.Duration
	opTimeout  time.Duration
}

// New creates a Redis-backed cache
func New(client adapter.RedisClient, cfg Config) Cache {
	defaultTTL := cfg.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &redisCache{
		client:     client,
		defaultTTL: defaultTTL,
		opTimeout:  opTimeout,
	}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, key)
	if err != nil {
		if !adapter.IsNil(err) {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, keys...); err != nil {
		logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *redisCache) DeleteByPattern(ctx context.Context, pattern string) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	keys, err := c.client.Keys(ctx, pattern)
	if err != nil {
		logger.Warn("cache pattern scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...); err != nil {
		logger.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (c *redisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.client.Ping(ctx)
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
