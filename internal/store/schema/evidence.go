package schema

import "time"

// Evidence represents the evidence table - an append-only log of the
// free-text justification attached to each accepted report. Rows are
// never mutated or deleted by normal operation.
type Evidence struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountKey joins the evidence to its report
	AccountKey string `gorm:"column:account_key;not null;type:text;index:idx_evidence_account_time,priority:1"`
	// Evidence is the reporter's free-text justification
	Evidence string `gorm:"column:evidence;not null;type:text"`
	// EvidenceURL optionally links supporting material
	EvidenceURL *string `gorm:"column:evidence_url;type:text"`
	// Timestamp is when the report was accepted; lists are served newest first
	Timestamp time.Time `gorm:"column:timestamp;not null;index:idx_evidence_account_time,priority:2"`
	// ReporterID records provenance of the submission
	ReporterID *string `gorm:"column:reporter_id;type:text"`
}

// TableName specifies the table name for the Evidence model
func (Evidence) TableName() string {
	return "evidence"
}
