package domain

import "strings"

// Status is the derived verdict for a reported account. It is never
// persisted; it is recomputed from the vote count on every read.
type Status string

const (
	// StatusScammer marks an account whose vote count reached the threshold
	StatusScammer Status = "scammer"
	// StatusSafe marks an account below the threshold (including unknown accounts)
	StatusSafe Status = "safe"
)

// DefaultThreshold is the number of accepted reports needed to flag an
// account as a scammer when no threshold is configured.
const DefaultThreshold = 10

// StatusForVotes derives the account verdict from its vote count.
func StatusForVotes(votes int64, threshold int64) Status {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if votes >= threshold {
		return StatusScammer
	}
	return StatusSafe
}

// AccountKey is the canonical identifier for a reportable account in the
// format "platform:accountId" (e.g. "twitter:acct1").
type AccountKey string

// NewAccountKey builds an account key from its parts.
func NewAccountKey(platform, accountID string) AccountKey {
	return AccountKey(platform + ":" + accountID)
}

// Valid reports whether the key has both a platform and an account id.
func (k AccountKey) Valid() bool {
	platform, accountID := k.Parse()
	return platform != "" && accountID != ""
}

// Parse splits the key into platform and account id. Account ids may
// contain colons themselves; only the first separator is significant.
func (k AccountKey) Parse() (platform, accountID string) {
	parts := strings.SplitN(string(k), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// NewReporterID builds the anonymous reporter fingerprint from the client
// IP, an optional caller-supplied token and the user agent. It is a
// best-effort identity, not an authenticated one.
func NewReporterID(ip, token, userAgent string) string {
	if token != "" {
		return ip + ":" + token + ":" + userAgent
	}
	return ip + ":" + userAgent
}
