package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Account represents a patient or caregiver account.
type Account struct {
	sharedDomain.BaseAggregateRoot
	role         Role
	username     Username
	passwordHash string
}

// NewAccount creates a new account with an already hashed password.
func NewAccount(role Role, username Username, passwordHash string) *Account {
	a := &Account{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		role:              role,
		username:          username,
		passwordHash:      passwordHash,
	}

	a.AddDomainEvent(NewAccountRegistered(role, username.String()))

	return a
}

// RehydrateAccount recreates an account from persisted state.
func RehydrateAccount(role Role, username Username, passwordHash string, createdAt time.Time) *Account {
	return &Account{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(createdAt, createdAt),
		role:              role,
		username:          username,
		passwordHash:      passwordHash,
	}
}

// Getters
func (a *Account) Role() Role           { return a.role }
func (a *Account) Username() Username   { return a.username }
func (a *Account) PasswordHash() string { return a.passwordHash }
