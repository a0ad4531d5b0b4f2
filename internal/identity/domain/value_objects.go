package domain

import (
	"errors"
	"strings"
)

var (
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	ErrWeakPassword    = errors.New("password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit, and one of !@#?")
	ErrInvalidRole     = errors.New("invalid role")
)

// MaxUsernameLength is the maximum allowed username length
const MaxUsernameLength = 255

// passwordSpecials are the special characters accepted by the strength policy.
const passwordSpecials = "!@#?"

// Role distinguishes the two account types.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

// ParseRole validates a role string.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RolePatient, RoleCaregiver:
		return Role(value), nil
	default:
		return "", ErrInvalidRole
	}
}

// String returns the role string.
func (r Role) String() string {
	return string(r)
}

// Username represents a validated account username.
type Username struct {
	value string
}

// NewUsername creates a validated username.
func NewUsername(value string) (Username, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Username{}, ErrEmptyUsername
	}
	if len(value) > MaxUsernameLength {
		return Username{}, ErrUsernameTooLong
	}
	return Username{value: value}, nil
}

// String returns the username string.
func (u Username) String() string {
	return u.value
}

// Equals checks if two usernames are equal.
func (u Username) Equals(other Username) bool {
	return u.value == other.value
}

// ValidatePasswordStrength enforces the account password policy: at least
// 8 characters with an uppercase letter, a lowercase letter, a digit, and
// a special character from !@#?.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}
