package schema

import "time"

// Reporter represents the reporters table - one row per anonymous
// fingerprint (IP + optional token + user agent). Not a login identity.
type Reporter struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ReporterID is the composite anonymous fingerprint
	ReporterID string `gorm:"column:reporter_id;not null;uniqueIndex;type:text"`
	// CreatedAt is when this fingerprint first reported anything
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the Reporter model
func (Reporter) TableName() string {
	return "reporters"
}

// ReportedAccount represents the reported_accounts table - the set of
// accounts a fingerprint has already reported, modeled as one row per
// entry. The composite unique index makes duplicate suppression a single
// conditional insert instead of a racy check-then-append.
type ReportedAccount struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ReporterID is the owning fingerprint
	ReporterID string `gorm:"column:reporter_id;not null;type:text;uniqueIndex:idx_reporter_account,priority:1"`
	// AccountKey is the account this fingerprint reported
	AccountKey string `gorm:"column:account_key;not null;type:text;uniqueIndex:idx_reporter_account,priority:2"`
	// CreatedAt is when the report was accepted
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the ReportedAccount model
func (ReportedAccount) TableName() string {
	return "reported_accounts"
}
