package store

import (
	"context"
	"time"

	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/store/schema"
)

// SubmitReportInput carries one validated report submission into the ledger.
type SubmitReportInput struct {
	AccountKey  domain.AccountKey
	Platform    string
	AccountID   string
	Evidence    string
	EvidenceURL *string
	ReporterID  string
}

// SubmitReportOutcome is the post-increment state of the report row.
type SubmitReportOutcome struct {
	Votes        int64
	LastReported time.Time
}

// StatsResult holds the global aggregate counters.
type StatsResult struct {
	// ScammerCount is the number of reports at or above the threshold
	ScammerCount int64
	// ReportCount is the sum of votes across all reports
	ReportCount int64
	// AccountCount is the total number of reported accounts
	AccountCount int64
}

// Store defines the interface for ledger operations. The ledger is the
// source of truth; the cache in front of it holds only expendable
// projections.
type Store interface {
	// GetReport retrieves the report row for an account, or nil when the
	// account has never been reported
	GetReport(ctx context.Context, key domain.AccountKey) (*schema.Report, error)

	// ListEvidence returns all evidence for an account, newest first
	ListEvidence(ctx context.Context, key domain.AccountKey) ([]schema.Evidence, error)

	// SubmitReport applies one accepted report as a single transaction:
	// the reporter's dedup entry, the report upsert, the vote increment
	// and the evidence append commit together or not at all. Returns
	// domain.ErrDuplicateReport when this reporter already reported the
	// account; in that case nothing is written.
	SubmitReport(ctx context.Context, input SubmitReportInput) (*SubmitReportOutcome, error)

	// Stats recomputes the global aggregates from the ledger
	Stats(ctx context.Context, threshold int64) (*StatsResult, error)

	// CountReports returns the total number of report rows
	CountReports(ctx context.Context) (int64, error)

	// ImportReport inserts a report row as-is (one-shot migration only)
	ImportReport(ctx context.Context, report *schema.Report) error

	// ImportEvidence inserts an evidence row as-is (one-shot migration only)
	ImportEvidence(ctx context.Context, evidence *schema.Evidence) error

	// ImportReporter inserts a reporter and its reported accounts as-is
	// (one-shot migration only)
	ImportReporter(ctx context.Context, reporterID string, accountKeys []string) error

	// Ping checks if the ledger database is reachable
	Ping(ctx context.Context) error
}
