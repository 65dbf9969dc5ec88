package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/cache"
	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/service"
	"github.com/reachpaglu/scamwatch/internal/store"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// memoryCache is an in-memory cache.Cache for tests; safe for the
// background revalidation goroutines
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok
}

func (m *memoryCache) Set(_ context.Context, key string, value string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.values, key)
		}
	}
}

func (m *memoryCache) Ping(context.Context) error { return nil }
func (m *memoryCache) Close() error               { return nil }

func (m *memoryCache) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func newTestLedger(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	return store.NewStore(db, adapter.NewClock())
}

func submitInput(reporterID string) service.SubmitInput {
	return service.SubmitInput{
		Platform:   "twitter",
		AccountID:  "acct1",
		Evidence:   "scam",
		ReporterID: reporterID,
	}
}

func TestCheckStatusUnknownAccount(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 10)

	result, err := reports.CheckStatus(context.Background(), "twitter", "unknownacct")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSafe, result.Status)
	assert.Equal(t, int64(0), result.Votes)

	// The miss populated the cache
	_, ok := sideCache.Get(context.Background(), cache.AccountStatusKey("twitter", "unknownacct"))
	assert.True(t, ok)
}

func TestCheckStatusServesCacheHitThenRevalidates(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 10)
	ctx := context.Background()

	// Ledger has one vote, but a stale cache entry says zero
	_, err := reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	require.NoError(t, err)
	key := cache.AccountStatusKey("twitter", "acct1")
	sideCache.put(key, `{"status":"safe","votes":0}`)

	result, err := reports.CheckStatus(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Votes, "stale value is served immediately")

	// The background refresh eventually rewrites the entry from the ledger
	assert.Eventually(t, func() bool {
		cached, ok := sideCache.Get(ctx, key)
		if !ok {
			return false
		}
		var refreshed service.StatusResult
		if err := json.Unmarshal([]byte(cached), &refreshed); err != nil {
			return false
		}
		return refreshed.Votes == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubmitThenCheckReflectsNewVotes(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 10)
	ctx := context.Background()

	// Prime the status cache with the pre-submit state
	_, err := reports.CheckStatus(ctx, "twitter", "acct1")
	require.NoError(t, err)

	submit, err := reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	require.NoError(t, err)
	assert.True(t, submit.Success)
	assert.Equal(t, int64(1), submit.Votes)
	assert.Equal(t, domain.StatusSafe, submit.Status)

	// Invalidation fired before SubmitReport returned, so this check sees
	// the new count with no stale window
	result, err := reports.CheckStatus(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Votes)
}

func TestSubmitReportDuplicate(t *testing.T) {
	ledger := newTestLedger(t)
	reports := service.NewReportService(ledger, newMemoryCache(), 10)
	ctx := context.Background()

	_, err := reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	require.NoError(t, err)

	_, err = reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	assert.ErrorIs(t, err, domain.ErrDuplicateReport)

	result, err := reports.CheckStatus(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Votes)
}

func TestThresholdFlipsStatus(t *testing.T) {
	ledger := newTestLedger(t)
	reports := service.NewReportService(ledger, newMemoryCache(), 10)
	ctx := context.Background()

	var last *service.SubmitResult
	for i := 0; i < 10; i++ {
		var err error
		last, err = reports.SubmitReport(ctx, submitInput(fmt.Sprintf("10.0.0.%d:ua", i)))
		require.NoError(t, err)
	}
	assert.Equal(t, int64(10), last.Votes)
	assert.Equal(t, domain.StatusScammer, last.Status)

	// An 11th attempt reusing a fingerprint is rejected and changes nothing
	_, err := reports.SubmitReport(ctx, submitInput("10.0.0.3:ua"))
	assert.ErrorIs(t, err, domain.ErrDuplicateReport)

	result, err := reports.CheckStatus(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Votes)
	assert.Equal(t, domain.StatusScammer, result.Status)
}

func TestListEvidenceReadThrough(t *testing.T) {
	ledger := newTestLedger(t)
	sideCache := newMemoryCache()
	reports := service.NewReportService(ledger, sideCache, 10)
	ctx := context.Background()

	input := submitInput("1.2.3.4:ua")
	url := "https://example.com/proof"
	input.EvidenceURL = &url
	_, err := reports.SubmitReport(ctx, input)
	require.NoError(t, err)

	items, err := reports.ListEvidence(ctx, "twitter", "acct1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "twitter:acct1", items[0].AccountKey)
	assert.Equal(t, "scam", items[0].Evidence)
	require.NotNil(t, items[0].EvidenceURL)
	assert.Equal(t, "https://example.com/proof", *items[0].EvidenceURL)

	// Second read is served from cache
	_, ok := sideCache.Get(ctx, cache.EvidenceKey("twitter", "acct1"))
	assert.True(t, ok)
}

func TestListEvidenceEmptyAccount(t *testing.T) {
	ledger := newTestLedger(t)
	reports := service.NewReportService(ledger, newMemoryCache(), 10)

	items, err := reports.ListEvidence(context.Background(), "twitter", "unknownacct")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAccountReports(t *testing.T) {
	ledger := newTestLedger(t)
	reports := service.NewReportService(ledger, newMemoryCache(), 10)
	ctx := context.Background()

	result, err := reports.AccountReports(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.ReportCount)
	assert.Nil(t, result.LastReported)

	_, err = reports.SubmitReport(ctx, submitInput("1.2.3.4:ua"))
	require.NoError(t, err)

	result, err = reports.AccountReports(ctx, "twitter", "acct1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ReportCount)
	assert.NotNil(t, result.LastReported)
}
