package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForVotes(t *testing.T) {
	assert.Equal(t, StatusSafe, StatusForVotes(0, 10))
	assert.Equal(t, StatusSafe, StatusForVotes(9, 10))
	assert.Equal(t, StatusScammer, StatusForVotes(10, 10))
	assert.Equal(t, StatusScammer, StatusForVotes(11, 10))
}

func TestStatusForVotes_ZeroThresholdFallsBackToDefault(t *testing.T) {
	assert.Equal(t, StatusSafe, StatusForVotes(9, 0))
	assert.Equal(t, StatusScammer, StatusForVotes(DefaultThreshold, 0))
}

func TestStatusForVotes_ThresholdChangesOnlyDerivedStatus(t *testing.T) {
	votes := int64(5)
	assert.Equal(t, StatusScammer, StatusForVotes(votes, 3))
	assert.Equal(t, StatusSafe, StatusForVotes(votes, 10))
}

func TestAccountKey(t *testing.T) {
	key := NewAccountKey("twitter", "acct1")
	assert.Equal(t, AccountKey("twitter:acct1"), key)
	assert.True(t, key.Valid())

	platform, accountID := key.Parse()
	assert.Equal(t, "twitter", platform)
	assert.Equal(t, "acct1", accountID)
}

func TestAccountKey_AccountIDWithColons(t *testing.T) {
	key := NewAccountKey("discord", "user:1234")
	platform, accountID := key.Parse()
	assert.Equal(t, "discord", platform)
	assert.Equal(t, "user:1234", accountID)
}

func TestAccountKey_Invalid(t *testing.T) {
	assert.False(t, AccountKey("twitter").Valid())
	assert.False(t, AccountKey(":acct1").Valid())
	assert.False(t, AccountKey("twitter:").Valid())
	assert.False(t, AccountKey("").Valid())
}

func TestNewReporterID(t *testing.T) {
	assert.Equal(t, "1.2.3.4:Mozilla/5.0", NewReporterID("1.2.3.4", "", "Mozilla/5.0"))
	assert.Equal(t, "1.2.3.4:tok:Mozilla/5.0", NewReporterID("1.2.3.4", "tok", "Mozilla/5.0"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "plain text", Sanitize("  plain text  "))
	assert.Equal(t, "", Sanitize("  "))
}
