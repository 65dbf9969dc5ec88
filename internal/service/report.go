// Package service orchestrates the check/submit/list operations in front
// of the ledger: read-through cache population, stale-while-revalidate
// refresh and write invalidation.
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

const (
	statusTTL   = time.Hour
	evidenceTTL = 30 * time.Minute

	// refreshTimeout bounds the fire-and-forget cache revalidation; it
	// runs detached from the request that triggered it
	refreshTimeout = 10 * time.Second
)

// StatusResult is the derived verdict returned by CheckStatus.
type StatusResult struct {
	Status domain.Status `json:"status"`
	Votes  int64         `json:"votes"`
}

// SubmitResult is the post-increment state returned by SubmitReport.
type SubmitResult struct {
	Success bool          `json:"success"`
	Status  domain.Status `json:"status"`
	Votes   int64         `json:"votes"`
}

// EvidenceItem is one entry in an account's evidence list.
type EvidenceItem struct {
	AccountKey  string    `json:"accountKey"`
	Evidence    string    `json:"evidence"`
	EvidenceURL *string   `json:"evidenceUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	ReporterID  *string   `json:"reporterId,omitempty"`
}

// ReportCountResult is the vote summary returned by AccountReports.
type ReportCountResult struct {
	ReportCount  int64      `json:"reportCount"`
	LastReported *time.Time `json:"lastReported"`
}

// SubmitInput carries one sanitized, validated submission.
type SubmitInput struct {
	Platform    string
	AccountID   string
	Evidence    string
	EvidenceURL *string
	ReporterID  string
}

// ReportService orchestrates report reads and writes around the ledger
// and the side cache.
type ReportService struct {
	store     store.Store
	cache     cache.Cache
	threshold int64
}

// NewReportService creates a report service
func NewReportService(ledger store.Store, sideCache cache.Cache, threshold int64) *ReportService {
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}
	return &ReportService{
		store:     ledger,
		cache:     sideCache,
		threshold: threshold,
	}
}

// CheckStatus returns the account's derived verdict. Cache hits are served
// immediately and revalidated in the background; misses read the ledger
// and populate the cache.
func (s *ReportService) CheckStatus(ctx context.Context, platform, accountID string) (*StatusResult, error) {
	key := cache.AccountStatusKey(platform, accountID)

	if cached, ok := s.cache.Get(ctx, key); ok {
		var result StatusResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			s.revalidateStatus(platform, accountID)
			return &result, nil
		}
		// Corrupt entry: fall through to the ledger and overwrite it
	}

	result, err := s.statusFromLedger(ctx, platform, accountID)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, key, result, statusTTL)
	return result, nil
}

// SubmitReport applies one report submission and invalidates every cache
// entry the write made stale, before returning the post-increment state.
func (s *ReportService) SubmitReport(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	outcome, err := s.store.SubmitReport(ctx, store.SubmitReportInput{
		AccountKey:  domain.NewAccountKey(input.Platform, input.AccountID),
		Platform:    input.Platform,
		AccountID:   input.AccountID,
		Evidence:    input.Evidence,
		EvidenceURL: input.EvidenceURL,
		ReporterID:  input.ReporterID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateReport) {
			return nil, err
		}
		return nil, errors.Join(domain.ErrStoreUnavailable, err)
	}

	// Targeted invalidation: just this account's entries plus the global
	// stats, so an immediately following check reflects the new count
	s.cache.Delete(ctx,
		cache.AccountStatusKey(input.Platform, input.AccountID),
		cache.EvidenceKey(input.Platform, input.AccountID),
	)
	s.cache.DeleteByPattern(ctx, cache.StatsPattern())

	return &SubmitResult{
		Success: true,
		Status:  domain.StatusForVotes(outcome.Votes, s.threshold),
		Votes:   outcome.Votes,
	}, nil
}

// ListEvidence returns all evidence for the account, newest first,
// through a 30-minute read-through cache.
func (s *ReportService) ListEvidence(ctx context.Context, platform, accountID string) ([]EvidenceItem, error) {
	key := cache.EvidenceKey(platform, accountID)

	if cached, ok := s.cache.Get(ctx, key); ok {
		var items []EvidenceItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
	}

	rows, err := s.store.ListEvidence(ctx, domain.NewAccountKey(platform, accountID))
	if err != nil {
		return nil, errors.Join(domain.ErrStoreUnavailable, err)
	}

	items := make([]EvidenceItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, EvidenceItem{
			AccountKey:  row.AccountKey,
			Evidence:    row.Evidence,
			EvidenceURL: row.EvidenceURL,
			Timestamp:   row.Timestamp,
			ReporterID:  row.ReporterID,
		})
	}

	s.cachePut(ctx, key, items, evidenceTTL)
	return items, nil
}

// AccountReports returns the vote count and last-reported time straight
// from the ledger.
func (s *ReportService) AccountReports(ctx context.Context, platform, accountID string) (*ReportCountResult, error) {
	report, err := s.store.GetReport(ctx, domain.NewAccountKey(platform, accountID))
	if err != nil {
		return nil, errors.Join(domain.ErrStoreUnavailable, err)
	}
	if report == nil {
		return &ReportCountResult{ReportCount: 0, LastReported: nil}, nil
	}
	last := report.LastReported
	return &ReportCountResult{ReportCount: report.Votes, LastReported: &last}, nil
}

// statusFromLedger derives the verdict from the report row, treating an
// unreported account as safe with zero votes.
func (s *ReportService) statusFromLedger(ctx context.Context, platform, accountID string) (*StatusResult, error) {
	report, err := s.store.GetReport(ctx, domain.NewAccountKey(platform, accountID))
	if err != nil {
		return nil, errors.Join(domain.ErrStoreUnavailable, err)
	}

	var votes int64
	if report != nil {
		votes = report.Votes
	}
	return &StatusResult{
		Status: domain.StatusForVotes(votes, s.threshold),
		Votes:  votes,
	}, nil
}

// revalidateStatus refreshes a served cache entry in the background. The
// caller's response is already on the wire; failures go to the logs only.
func (s *ReportService) revalidateStatus(platform, accountID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		result, err := s.statusFromLedger(ctx, platform, accountID)
		if err != nil {
			logger.Warn("background status revalidation failed",
				zap.String("platform", platform),
				zap.String("account_id", accountID),
				zap.Error(err),
			)
			return
		}
		s.cachePut(ctx, cache.AccountStatusKey(platform, accountID), result, statusTTL)
	}()
}

// cachePut marshals value and stores it under key, degrading silently on
// marshal failure.
func (s *ReportService) cachePut(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("failed to marshal cache payload", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(payload), ttl)
}
