// Package migrate performs the one-shot import of legacy flat-file
// snapshots into the ledger. It refuses to run against a non-empty
// ledger, so exposing it on an admin route stays safe.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/reachpaglu/scamwatch/internal/logger"
	"github.com/reachpaglu/scamwatch/internal/store"
	"github.com/reachpaglu/scamwatch/internal/store/schema"
)

const (
	reportsFile   = "reports.json"
	evidenceFile  = "evidence.json"
	reportersFile = "reporters.json"
)

// Result describes the outcome of an import run.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// reportRecord mirrors one entry of the legacy reports.json snapshot
type reportRecord struct {
	Platform     string    `json:"platform"`
	AccountID    string    `json:"accountId"`
	Votes        int64     `json:"votes"`
	LastReported time.Time `json:"lastReported"`
}

// evidenceRecord mirrors one entry of the legacy evidence.json snapshot
type evidenceRecord struct {
	Evidence    string    `json:"evidence"`
	EvidenceURL *string   `json:"evidenceUrl"`
	Timestamp   time.Time `json:"timestamp"`
	ReporterID  *string   `json:"reporterId"`
}

// Importer loads flat-file snapshots into the ledger.
type Importer struct {
	store   store.Store
	dataDir string
}

// NewImporter creates an importer reading from dataDir
func NewImporter(ledger store.Store, dataDir string) *Importer {
	return &Importer{store: ledger, dataDir: dataDir}
}

// Run imports all present snapshot files. Missing files are skipped; a
// non-empty ledger turns the whole run into a no-op.
func (i *Importer) Run(ctx context.Context) (*Result, error) {
	count, err := i.store.CountReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger state: %w", err)
	}
	if count > 0 {
		return &Result{
			Success: true,
			Message: "ledger already contains data, migration skipped",
		}, nil
	}

	imported := 0

	reports, err := readSnapshot[reportRecord](filepath.Join(i.dataDir, reportsFile))
	if err != nil {
		return nil, err
	}
	for accountKey, record := range reports {
		err := i.store.ImportReport(ctx, &schema.Report{
			AccountKey:   accountKey,
			Platform:     record.Platform,
			AccountID:    record.AccountID,
			Votes:        record.Votes,
			LastReported: record.LastReported,
		})
		if err != nil {
			return nil, err
		}
		imported++
	}

	evidence, err := readSnapshot[[]evidenceRecord](filepath.Join(i.dataDir, evidenceFile))
	if err != nil {
		return nil, err
	}
	for accountKey, records := range evidence {
		for _, record := range records {
			err := i.store.ImportEvidence(ctx, &schema.Evidence{
				AccountKey:  accountKey,
				Evidence:    record.Evidence,
				EvidenceURL: record.EvidenceURL,
				Timestamp:   record.Timestamp,
				ReporterID:  record.ReporterID,
			})
			if err != nil {
				return nil, err
			}
			imported++
		}
	}

	reporters, err := readSnapshot[[]string](filepath.Join(i.dataDir, reportersFile))
	if err != nil {
		return nil, err
	}
	for reporterID, accountKeys := range reporters {
		if err := i.store.ImportReporter(ctx, reporterID, accountKeys); err != nil {
			return nil, err
		}
		imported++
	}

	logger.Info("data migration completed", zap.Int("records", imported))
	return &Result{
		Success: true,
		Message: "data migration completed successfully",
	}, nil
}

// readSnapshot parses one keyed snapshot file, returning an empty map when
// the file does not exist.
func readSnapshot[T any](path string) (map[string]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]T{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", filepath.Base(path), err)
	}

	var parsed map[string]T
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", filepath.Base(path), err)
	}
	return parsed, nil
}
