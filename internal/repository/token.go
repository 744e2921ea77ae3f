package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.MagicLinkToken) error

	// Claim marks the token used if, and only if, it is unused and
	// expires_at > now, as one atomic step. Concurrent claims of the same
	// hash see at most one success; the others get domain.ErrTokenInvalid,
	// as do absent and expired tokens.
	Claim(ctx context.Context, tokenHash string, now time.Time) (*domain.MagicLinkToken, error)

	// DeleteExpired removes up to limit tokens that expired before cutoff and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}
