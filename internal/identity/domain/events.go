package domain

import (
	sharedDomain "github.com/felixgeelhaar/vaxsched/internal/shared/domain"
)

const (
	AggregateType = "Account"

	RoutingKeyAccountRegistered = "identity.account.registered"
	RoutingKeySessionStarted    = "identity.session.started"
	RoutingKeySessionEnded      = "identity.session.ended"
)

// AccountRegistered is emitted when a new patient or caregiver account is created.
type AccountRegistered struct {
	sharedDomain.BaseEvent
	Role     string `json:"role"`
	Username string `json:"username"`
}

// NewAccountRegistered creates an AccountRegistered event.
func NewAccountRegistered(role Role, username string) *AccountRegistered {
	return &AccountRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(username, AggregateType, RoutingKeyAccountRegistered),
		Role:      role.String(),
		Username:  username,
	}
}

// SessionStarted is emitted on successful login.
type SessionStarted struct {
	sharedDomain.BaseEvent
	Role     string `json:"role"`
	Username string `json:"username"`
}

// NewSessionStarted creates a SessionStarted event.
func NewSessionStarted(role Role, username string) *SessionStarted {
	return &SessionStarted{
		BaseEvent: sharedDomain.NewBaseEvent(username, AggregateType, RoutingKeySessionStarted),
		Role:      role.String(),
		Username:  username,
	}
}

// SessionEnded is emitted on logout.
type SessionEnded struct {
	sharedDomain.BaseEvent
	Role     string `json:"role"`
	Username string `json:"username"`
}

// NewSessionEnded creates a SessionEnded event.
func NewSessionEnded(role Role, username string) *SessionEnded {
	return &SessionEnded{
		BaseEvent: sharedDomain.NewBaseEvent(username, AggregateType, RoutingKeySessionEnded),
		Role:      role.String(),
		Username:  username,
	}
}
