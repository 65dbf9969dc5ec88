package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/store"
)

const statsTTL = time.Hour

// Stats holds the global aggregate counters served by GetStats.
type Stats struct {
	ScammerCount int64 `json:"scammerCount"`
	ReportCount  int64 `json:"reportCount"`
	AccountCount int64 `json:"accountCount"`
}

// StatsService aggregates global counters from the ledger behind a
// read-through cache with stale-while-revalidate.
type StatsService struct {
	store     store.Store
	cache     cache.Cache
	threshold int64
}

// NewStatsService creates a stats aggregator
func NewStatsService(ledger store.Store, sideCache cache.Cache, threshold int64) *StatsService {
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &StatsService{
		store:     ledger,
		cache:     sideCache,
		threshold: threshold,
	}
}

// GetStats returns the global aggregates, serving cache hits immediately
// and revalidating in the background.
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	key := cache.StatsKey()

	if cached, ok := s.cache.Get(ctx, key); ok {
		var stats Stats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			s.revalidate()
			return &stats, nil
		}
	}

	stats, err := s.statsFromLedger(ctx)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, key, stats)
	return stats, nil
}

func (s *StatsService) statsFromLedger(ctx context.Context) (*Stats, error) {
	result, err := s.store.Stats(ctx, s.threshold)
	if err != nil {
		return nil, errors.Join(domain.ErrStoreUnavailable, err)
	}
	return &Stats{
		ScammerCount: result.ScammerCount,
		ReportCount:  result.ReportCount,
		AccountCount: result.AccountCount,
	}, nil
}

func (s *StatsService) revalidate() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		stats, err := s.statsFromLedger(ctx)
		if err != nil {
			logger.Warn("background stats revalidation failed", zap.Error(err))
			return
		}
		s.cachePut(ctx, cache.StatsKey(), stats)
	}()
}

func (s *StatsService) cachePut(ctx context.Context, key string, stats *Stats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		logger.Warn("failed to marshal stats cache payload", zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(payload), statsTTL)
}
