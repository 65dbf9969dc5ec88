// Package ratelimit implements a sliding-window request counter on Redis
// sorted sets. Each (route, identifier) pair owns one set whose members
// are timestamped entries; counting the members inside the window gives
// the request count. The limiter fails open: if Redis is unreachable the
// request is allowed, because ledger correctness must never depend on the
// limiter being available.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/logger"
)

// Result reports the outcome of a rate-limit check for observability
// headers on the response.
type Result struct {
	// Allowed is false only when the identifier exhausted its window
	Allowed bool
	// Limit is the window's request ceiling
	Limit int64
	// Remaining is the quota left in the current window
	Remaining int64
	// FailedOpen marks a check that passed because the backend was down
	FailedOpen bool
}

// Limiter checks request quotas per route and identifier.
type Limiter interface {
	// Allow records one attempt for identifier on route inside a sliding
	// window of the given size, unless the window already holds max
	// entries. A rejected attempt is not recorded.
	Allow(ctx context.Context, route, identifier string, window time.Duration, max int64) Result
}

type redisLimiter struct {
	client adapter.RedisClient
	clock  adapter.Clock
}

// New creates a Redis-backed sliding-window limiter
func New(client adapter.RedisClient, clock adapter.Clock) Limiter {
	return &redisLimiter{client: client, clock: clock}
}

func (l *redisLimiter) Allow(ctx context.Context, route, identifier string, window time.Duration, max int64) Result {
	key := cache.RateLimitKey(route, identifier)
	now := l.clock.Now().Unix()
	windowSec := int64(window / time.Second)

	// Evict entries that slid out of the window
	cutoff := strconv.FormatInt(now-windowSec, 10)
	if err := l.client.ZRemRangeByScore(ctx, key, "0", cutoff); err != nil {
		return l.failOpen(route, max, err)
	}

	count, err := l.client.ZCard(ctx, key)
	if err != nil {
		return l.failOpen(route, max, err)
	}

	// Keep the set from outliving an idle identifier
	if err := l.client.Expire(ctx, key, window); err != nil {
		return l.failOpen(route, max, err)
	}

	result := Result{
		Limit:     max,
		Remaining: max - count - 1,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	if count >= max {
		return result
	}

	// The uuid tiebreaker keeps two attempts in the same second from
	// collapsing into one member
	member := fmt.Sprintf("%d:%s", now, uuid.NewString())
	if err := l.client.ZAdd(ctx, key, float64(now), member); err != nil {
		return l.failOpen(route, max, err)
	}

	result.Allowed = true
	return result
}

func (l *redisLimiter) failOpen(route string, max int64, err error) Result {
	logger.Warn("rate limiter backend error, failing open",
		zap.String("route", route),
		zap.Error(err),
	)
	return Result{
		Allowed:    true,
		Limit:      max,
		Remaining:  max,
		FailedOpen: true,
	}
}
