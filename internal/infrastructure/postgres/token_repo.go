package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.MagicLinkToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO magic_link_tokens (token_hash, email, expires_at, used)
		VALUES ($1, $2, $3, FALSE)`,
		t.TokenHash, t.Email, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create magic token: %w", err)
	}
	return nil
}

// Claim is a single conditional UPDATE: the row lock taken by the update
// serialises concurrent claims, and the loser re-evaluates used = FALSE
// after the winner commits, so it matches nothing.
func (r *TokenRepository) Claim(ctx context.Context, tokenHash string, now time.Time) (*domain.MagicLinkToken, error) {
	query := `
		UPDATE magic_link_tokens
		SET    used = TRUE
		WHERE  token_hash = $1
		  AND  used = FALSE
		  AND  expires_at > $2
		RETURNING token_hash, email, expires_at, used, created_at`

	var t domain.MagicLinkToken
	err := r.pool.QueryRow(ctx, query, tokenHash, now).
		Scan(&t.TokenHash, &t.Email, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim magic token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM magic_link_tokens
		WHERE token_hash IN (
			SELECT token_hash FROM magic_link_tokens
			WHERE  expires_at < $1
			LIMIT  $2
		)`,
		cutoff, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
