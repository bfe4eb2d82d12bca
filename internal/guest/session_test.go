package guest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(max int, duration time.Duration, now time.Time) *Manager {
	m := NewManager(max, duration)
	m.now = func() time.Time { return now }
	return m
}

func TestIssueSetsQuotaAndExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := newTestManager(5, 24*time.Hour, now)

	session := manager.Issue()

	assert.NotEmpty(t, session.TokenID)
	assert.Equal(t, 0, session.MessagesUsed)
	assert.Equal(t, now, session.IssuedAt)
	assert.Equal(t, now.Add(24*time.Hour), session.ExpiresAt)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	manager := NewManager(5, 24*time.Hour)
	session := manager.Issue()
	session.MessagesUsed = 3

	raw, err := manager.Encode(session)
	require.NoError(t, err)

	decoded, err := manager.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, session.TokenID, decoded.TokenID)
	assert.Equal(t, 3, decoded.MessagesUsed)
	assert.True(t, session.ExpiresAt.Equal(decoded.ExpiresAt))
}

func TestAuthorizeCountsRemainingMessages(t *testing.T) {
	now := time.Now()
	manager := newTestManager(5, 24*time.Hour, now)

	session := manager.Issue()
	session.MessagesUsed = 2
	raw, err := manager.Encode(session)
	require.NoError(t, err)

	authorized, remaining, err := manager.Authorize(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
	assert.Equal(t, session.TokenID, authorized.TokenID)
}

func TestAuthorizeAllowsFinalMessage(t *testing.T) {
	now := time.Now()
	manager := newTestManager(5, 24*time.Hour, now)

	session := manager.Issue()
	session.MessagesUsed = 4
	raw, err := manager.Encode(session)
	require.NoError(t, err)

	_, remaining, err := manager.Authorize(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestAuthorizeRejectsExhaustedSession(t *testing.T) {
	now := time.Now()
	manager := newTestManager(5, 24*time.Hour, now)

	session := manager.Issue()
	session.MessagesUsed = 5
	raw, err := manager.Encode(session)
	require.NoError(t, err)

	_, _, err = manager.Authorize(raw)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestAuthorizeRejectsMalformedCookie(t *testing.T) {
	manager := NewManager(5, 24*time.Hour)

	for _, raw := range []string{"", "not-base64!!", "bm90LWpzb24"} {
		_, _, err := manager.Authorize(raw)
		assert.ErrorIs(t, err, ErrInvalidSession, "raw=%q", raw)
	}
}

func TestAuthorizeRejectsMissingTokenID(t *testing.T) {
	manager := NewManager(5, 24*time.Hour)

	raw, err := manager.Encode(Session{MessagesUsed: 0, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, _, err = manager.Authorize(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthorizeRejectsExpiredSession(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	manager := newTestManager(5, 24*time.Hour, issued)

	session := manager.Issue()
	raw, err := manager.Encode(session)
	require.NoError(t, err)

	// Move the clock past the absolute expiry.
	manager.now = func() time.Time { return issued.Add(25 * time.Hour) }

	_, _, err = manager.Authorize(raw)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRecordUsagePreservesIdentityAndExpiry(t *testing.T) {
	manager := NewManager(5, 24*time.Hour)
	session := manager.Issue()

	updated := manager.RecordUsage(session)

	assert.Equal(t, session.TokenID, updated.TokenID)
	assert.Equal(t, session.ExpiresAt, updated.ExpiresAt)
	assert.Equal(t, session.MessagesUsed+1, updated.MessagesUsed)
}
