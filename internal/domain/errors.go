package domain

import "errors"

var (
	// ErrDuplicateReport is returned when a reporter has already reported the account
	ErrDuplicateReport = errors.New("account already reported by this reporter")

	// ErrReportNotFound is returned when no report exists for an account
	ErrReportNotFound = errors.New("report not found")

	// ErrStoreUnavailable is returned when the ledger store cannot serve a request
	ErrStoreUnavailable = errors.New("store unavailable")
)
