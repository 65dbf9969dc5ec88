package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reachpaglu/scamwatch/internal/adapter"
	"github.com/reachpaglu/scamwatch/internal/domain"
	"github.com/reachpaglu/scamwatch/internal/store/schema"
)

type gormStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewStore creates a GORM-backed ledger store
func NewStore(db *gorm.DB, clock adapter.Clock) Store {
	return &gormStore{db: db, clock: clock}
}

// Migrate creates or updates the ledger tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Report{},
		&schema.Evidence{},
		&schema.Reporter{},
		&schema.ReportedAccount{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a
// GORM database connection. Zero values fall back to defaults suited to a
// small API service.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

func (s *gormStore) GetReport(ctx context.Context, key domain.AccountKey) (*schema.Report, error) {
	var report schema.Report
	err := s.db.WithContext(ctx).
		Where("account_key = ?", string(key)).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (s *gormStore) ListEvidence(ctx context.Context, key domain.AccountKey) ([]schema.Evidence, error) {
	var evidence []schema.Evidence
	err := s.db.WithContext(ctx).
		Where("account_key = ?", string(key)).
		Order("timestamp DESC").
		Find(&evidence).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return evidence, nil
}

func (s *gormStore) SubmitReport(ctx context.Context, input SubmitReportInput) (*SubmitReportOutcome, error) {
	now := s.clock.Now().UTC()
	accountKey := string(input.AccountKey)

	var outcome SubmitReportOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// First report from this fingerprint creates the reporter row
		reporter := schema.Reporter{ReporterID: input.ReporterID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&reporter).Error; err != nil {
			return fmt.Errorf("failed to upsert reporter: %w", err)
		}

		// Duplicate suppression is one conditional insert under the
		// (reporter_id, account_key) unique index, so two concurrent
		// submissions from the same fingerprint cannot both pass
		entry := schema.ReportedAccount{
			ReporterID: input.ReporterID,
			AccountKey: accountKey,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
		if result.Error != nil {
			return fmt.Errorf("failed to record reported account: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrDuplicateReport
		}

		// Ensure the report row exists before incrementing
		report := schema.Report{
			AccountKey:   accountKey,
			Platform:     input.Platform,
			AccountID:    input.AccountID,
			Votes:        0,
			LastReported: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_key"}},
			DoNothing: true,
		}).Create(&report).Error; err != nil {
			return fmt.Errorf("failed to upsert report: %w", err)
		}

		if err := tx.Model(&schema.Report{}).
			Where("account_key = ?", accountKey).
			Updates(map[string]interface{}{
				"votes":         gorm.Expr("votes + 1"),
				"last_reported": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to increment votes: %w", err)
		}

		evidence := schema.Evidence{
			AccountKey:  accountKey,
			Evidence:    input.Evidence,
			EvidenceURL: input.EvidenceURL,
			Timestamp:   now,
			ReporterID:  &input.ReporterID,
		}
		if err := tx.Create(&evidence).Error; err != nil {
			return fmt.Errorf("failed to append evidence: %w", err)
		}

		var updated schema.Report
		if err := tx.Where("account_key = ?", accountKey).First(&updated).Error; err != nil {
			return fmt.Errorf("failed to read post-increment report: %w", err)
		}
		outcome = SubmitReportOutcome{
			Votes:        updated.Votes,
			LastReported: updated.LastReported,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (s *gormStore) Stats(ctx context.Context, threshold int64) (*StatsResult, error) {
	if threshold <= 0 {
		threshold = domain.DefaultThreshold
	}

	var stats StatsResult

	err := s.db.WithContext(ctx).Model(&schema.Report{}).
		Where("votes >= ?", threshold).
		Count(&stats.ScammerCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count scammers: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&schema.Report{}).
		Select("COALESCE(SUM(votes), 0)").
		Scan(&stats.ReportCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&schema.Report{}).
		Count(&stats.AccountCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	return &stats, nil
}

func (s *gormStore) CountReports(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.Report{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

func (s *gormStore) ImportReport(ctx context.Context, report *schema.Report) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to import report: %w", err)
	}
	return nil
}

func (s *gormStore) ImportEvidence(ctx context.Context, evidence *schema.Evidence) error {
	if err := s.db.WithContext(ctx).Create(evidence).Error; err != nil {
		return fmt.Errorf("failed to import evidence: %w", err)
	}
	return nil
}

func (s *gormStore) ImportReporter(ctx context.Context, reporterID string, accountKeys []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reporter := schema.Reporter{ReporterID: reporterID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&reporter).Error; err != nil {
			return fmt.Errorf("failed to import reporter: %w", err)
		}
		for _, key := range accountKeys {
			entry := schema.ReportedAccount{ReporterID: reporterID, AccountKey: key}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to import reported account: %w", err)
			}
		}
		return nil
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
