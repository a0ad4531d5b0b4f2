package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in, please logout first")
)

// Session is an authenticated login. At most one of patient or caregiver is
// bound per session.
type Session struct {
	token     string
	role      Role
	username  string
	expiresAt time.Time
	createdAt time.Time
}

// NewSession mints a session for the given account.
func NewSession(role Role, username string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		token:     uuid.NewString(),
		role:      role,
		username:  username,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
}

// RehydrateSession recreates a session from persisted state.
func RehydrateSession(token string, role Role, username string, expiresAt, createdAt time.Time) *Session {
	return &Session{
		token:     token,
		role:      role,
		username:  username,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

// Getters
func (s *Session) Token() string        { return s.token }
func (s *Session) Role() Role           { return s.role }
func (s *Session) Username() string     { return s.username }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.expiresAt)
}
