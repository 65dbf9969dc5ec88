package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/service"
)

func TestGetStatsEmptyLedger(t *testing.T) {
	ledger := newTestLedger(t)
	stats := service.NewStatsService(ledger, newMemoryCache(), 10)

	result, err := stats.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ScammerCount)
	assert.Equal(t, int64(0), result.ReportCount)
	assert.Equal(t, int64(0), result.AccountCount)
}

func TestGetStatsMatchesLedgerAfterSubmissions(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 3)
	stats := service.NewStatsService(ledger, sideCache, 3)
	ctx := context.Background()

	// Prime the stats cache, then submit enough reports to cross the
	// threshold; the cached entry must be invalidated along the way
	_, err := stats.GetStats(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := reports.SubmitReport(ctx, submitInput(fmt.Sprintf("10.0.0.%d:ua", i)))
		require.NoError(t, err)
	}

	result, err := stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ScammerCount)
	assert.Equal(t, int64(3), result.ReportCount)
	assert.Equal(t, int64(1), result.AccountCount)
}

func TestGetStatsServesCacheHitThenRevalidates(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 10)
	stats := service.NewStatsService(ledger, sideCache, 10)
	ctx := context.Background()

	_, err := reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	require.NoError(t, err)

	// Stale cached entry claims an empty ledger
	sideCache.put(cache.StatsKey(), `{"scammerCount":0,"reportCount":0,"accountCount":0}`)

	result, err := stats.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ReportCount, "stale value is served immediately")

	assert.Eventually(t, func() bool {
		cached, ok := sideCache.Get(ctx, cache.StatsKey())
		if !ok {
			return false
		}
		var refreshed service.Stats
		if err := json.Unmarshal([]byte(cached), &refreshed); err != nil {
			return false
		}
		return refreshed.ReportCount == 1 && refreshed.AccountCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}
