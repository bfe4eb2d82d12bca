package guest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the guest session state.
const CookieName = "guest_token"

var (
	ErrInvalidSession = errors.New("invalid guest session")
	ErrQuotaExceeded  = errors.New("guest message quota exceeded")
)

// Session is the full state of an anonymous visitor's allowance. It is never
// stored server-side: the cookie value is the authoritative copy and every
// state change round-trips through re-issuing the cookie.
type Session struct {
	TokenID      string    `json:"tokenId"`
	MessagesUsed int       `json:"messagesUsed"`
	IssuedAt     time.Time `json:"issuedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Manager issues and validates guest sessions against a fixed message quota.
// It holds no per-visitor state.
type Manager struct {
	maxMessages int
	duration    time.Duration
	now         func() time.Time
}

func NewManager(maxMessages int, duration time.Duration) *Manager {
	return &Manager{
		maxMessages: maxMessages,
		duration:    duration,
		now:         time.Now,
	}
}

func (m *Manager) MaxMessages() int {
	return m.maxMessages
}

func (m *Manager) Duration() time.Duration {
	return m.duration
}

// Issue creates a fresh session with a fixed absolute expiry from issuance.
func (m *Manager) Issue() Session {
	now := m.now()
	return Session{
		TokenID:      uuid.New().String(),
		MessagesUsed: 0,
		IssuedAt:     now,
		ExpiresAt:    now.Add(m.duration),
	}
}

// Authorize decodes a raw cookie value and checks the session against the
// quota. It returns the decoded session and the number of messages remaining.
// Undecodable or expired values fail with ErrInvalidSession; exhausted
// sessions fail with ErrQuotaExceeded.
func (m *Manager) Authorize(raw string) (Session, int, error) {
	session, err := m.Decode(raw)
	if err != nil {
		return Session{}, 0, ErrInvalidSession
	}

	if !session.ExpiresAt.IsZero() && m.now().After(session.ExpiresAt) {
		return Session{}, 0, ErrInvalidSession
	}

	if session.MessagesUsed >= m.maxMessages {
		return session, 0, ErrQuotaExceeded
	}

	return session, m.maxMessages - session.MessagesUsed, nil
}

// RecordUsage charges one message against the session. Identity and expiry
// are preserved; incrementing the counter is the only state change.
func (m *Manager) RecordUsage(session Session) Session {
	session.MessagesUsed++
	return session
}

// Encode serializes a session to the cookie value format.
func (m *Manager) Encode(session Session) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode parses a raw cookie value back into a session.
func (m *Manager) Decode(raw string) (Session, error) {
	var session Session

	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return session, err
	}

	if err := json.Unmarshal(data, &session); err != nil {
		return session, err
	}

	if session.TokenID == "" {
		return session, errors.New("missing token id")
	}

	return session, nil
}
