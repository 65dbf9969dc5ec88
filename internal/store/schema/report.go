package schema

import "time"

// Report represents the reports table - one row per reported account.
// Uniqueness on account_key is the ledger's core invariant: concurrent
// submissions for one account converge on a single row whose vote count
// only ever grows.
type Report struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// AccountKey is the canonical "platform:accountId" join key
	AccountKey string `gorm:"column:account_key;not null;uniqueIndex;type:text"`
	// Platform is kept as a separate indexed field for filter queries
	Platform string `gorm:"column:platform;not null;type:text;index:idx_reports_platform_account,priority:1"`
	// AccountID is kept as a separate indexed field for filter queries
	AccountID string `gorm:"column:account_id;not null;type:text;index:idx_reports_platform_account,priority:2"`
	// Votes counts accepted reports; incremented by exactly 1 per accepted
	// submission and never decremented
	Votes int64 `gorm:"column:votes;not null;default:0;index"`
	// LastReported is the timestamp of the most recent contributing evidence
	LastReported time.Time `gorm:"column:last_reported;not null;index"`
	// CreatedAt is when the account was first reported
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}
