package migrate_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/migrate"
	"github.com/reachpaglu/scamwatch/internal/store"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestLedger(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	return store.NewStore(db, adapter.NewClock())
}

func writeSnapshots(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	reports := `{
		"twitter:acct1": {
			"platform": "twitter",
			"accountId": "acct1",
			"votes": 12,
			"lastReported": "2024-05-01T10:00:00Z"
		},
		"telegram:acct2": {
			"platform": "telegram",
			"accountId": "acct2",
			"votes": 2,
			"lastReported": "2024-05-02T11:00:00Z"
		}
	}`
	evidence := `{
		"twitter:acct1": [
			{"evidence": "fake giveaway", "timestamp": "2024-05-01T10:00:00Z", "reporterId": "1.2.3.4:ua"},
			{"evidence": "impersonation", "evidenceUrl": "https://example.com/proof", "timestamp": "2024-04-30T09:00:00Z"}
		]
	}`
	reporters := `{
		"1.2.3.4:ua": ["twitter:acct1"]
	}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "reports.json"), []byte(reports), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evidence.json"), []byte(evidence), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reporters.json"), []byte(reporters), 0o644))
	return dir
}

func TestRunImportsSnapshots(t *testing.T) {
	ledger := newTestLedger(t)
	importer := migrate.NewImporter(ledger, writeSnapshots(t))
	ctx := context.Background()

	result, err := importer.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)

	count, err := ledger.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	report, err := ledger.GetReport(ctx, domain.NewAccountKey("twitter", "acct1"))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(12), report.Votes)

	items, err := ledger.ListEvidence(ctx, domain.NewAccountKey("twitter", "acct1"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "fake giveaway", items[0].Evidence)

	// Imported dedup state carries over
	_, err = ledger.SubmitReport(ctx, store.SubmitReportInput{
		AccountKey: domain.NewAccountKey("twitter", "acct1"),
		Platform:   "twitter",
		AccountID:  "acct1",
		Evidence:   "again",
		ReporterID: "1.2.3.4:ua",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateReport)
}

func TestRunSkipsNonEmptyLedger(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.SubmitReport(ctx, store.SubmitReportInput{
		AccountKey: domain.NewAccountKey("twitter", "existing"),
		Platform:   "twitter",
		AccountID:  "existing",
		Evidence:   "pre-existing",
		ReporterID: "5.6.7.8:ua",
	})
	require.NoError(t, err)

	importer := migrate.NewImporter(ledger, writeSnapshots(t))
	result, err := importer.Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Message, "skipped")

	count, err := ledger.CountReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "nothing was imported")
}

func TestRunWithMissingFiles(t *testing.T) {
	ledger := newTestLedger(t)
	importer := migrate.NewImporter(ledger, t.TempDir())

	result, err := importer.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)

	count, err := ledger.CountReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
