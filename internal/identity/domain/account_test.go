package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	username, err := NewUsername("alice")
	require.NoError(t, err)

	account := NewAccount(RolePatient, username, "hashed")

	assert.Equal(t, RolePatient, account.Role())
	assert.Equal(t, "alice", account.Username().String())
	assert.Equal(t, "hashed", account.PasswordHash())

	events := account.DomainEvents()
	require.Len(t, events, 1)

	registered, ok := events[0].(*AccountRegistered)
	require.True(t, ok)
	assert.Equal(t, "patient", registered.Role)
	assert.Equal(t, "alice", registered.Username)
	assert.Equal(t, "alice", registered.AggregateKey())
	assert.Equal(t, RoutingKeyAccountRegistered, registered.RoutingKey())
}

func TestRehydrateAccount(t *testing.T) {
	username, err := NewUsername("carol")
	require.NoError(t, err)
	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	account := RehydrateAccount(RoleCaregiver, username, "hashed", createdAt)

	assert.Equal(t, RoleCaregiver, account.Role())
	assert.Equal(t, createdAt, account.CreatedAt())
	assert.Empty(t, account.DomainEvents())
}

func TestSession(t *testing.T) {
	t.Run("new session has token and expiry", func(t *testing.T) {
		s := NewSession(RolePatient, "alice", time.Hour)
		assert.NotEmpty(t, s.Token())
		assert.Equal(t, "alice", s.Username())
		assert.False(t, s.IsExpired(time.Now()))
		assert.True(t, s.IsExpired(time.Now().Add(2*time.Hour)))
	})

	t.Run("tokens are unique", func(t *testing.T) {
		a := NewSession(RolePatient, "alice", time.Hour)
		b := NewSession(RolePatient, "alice", time.Hour)
		assert.NotEqual(t, a.Token(), b.Token())
	})
}
