package domain

import "context"

// AccountRepository persists patient and caregiver accounts.
type AccountRepository interface {
	// Save stores a new account. Returns ErrUsernameTaken when the username
	// already exists for the role.
	Save(ctx context.Context, account *Account) error

	// FindByUsername retrieves an account by role and username. Returns
	// ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, role Role, username string) (*Account, error)
}

// SessionRepository persists active sessions.
type SessionRepository interface {
	// Save stores a session.
	Save(ctx context.Context, session *Session) error

	// FindByToken retrieves a session. Returns ErrSessionNotFound when absent.
	FindByToken(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions past their expiry.
	DeleteExpired(ctx context.Context) (int64, error)
}
