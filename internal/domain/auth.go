package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUserNotFound = errors.New("user not found")
	ErrUserConflict = errors.New("user with this email already exists")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDependency marks failures of the store or the mailer. It is joined
	// onto the underlying error, so both match with errors.Is.
	ErrDependency = errors.New("dependency unavailable")
)

type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	LastLogin *time.Time // nil until the first successful verification
}

// MagicLinkToken is the stored half of a magic link. TokenHash is the
// SHA-256 hex digest of the bearer value; the raw value is never persisted.
type MagicLinkToken struct {
	TokenHash string
	Email     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Valid reports whether the token can still be redeemed at now.
func (t *MagicLinkToken) Valid(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
