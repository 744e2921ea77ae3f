package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
)

// UserRepository is the user directory. Emails are matched exactly.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has this email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create returns domain.ErrUserConflict if the email is already taken.
	Create(ctx context.Context, email string) (*domain.User, error)
	// UpdateLastLogin is a no-op when no user matches.
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
}
