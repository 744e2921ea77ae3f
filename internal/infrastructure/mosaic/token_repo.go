package mosaic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
)

type tokenRow struct {
	TokenHash string    `json:"token_hash"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

type TokenRepository struct {
	client *Client
}

func NewTokenRepository(client *Client) *TokenRepository {
	return &TokenRepository{client: client}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.MagicLinkToken) error {
	_, err := r.client.ExecuteSQL(ctx, `
		INSERT INTO magic_link_tokens (token_hash, email, expires_at, used)
		VALUES ($1, $2, $3, FALSE)`,
		t.TokenHash, t.Email, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create magic token: %w", err)
	}
	return nil
}

// Claim sends the check and the flip as one UPDATE, so two callers racing
// through the platform cannot both see the token as valid.
func (r *TokenRepository) Claim(ctx context.Context, tokenHash string, now time.Time) (*domain.MagicLinkToken, error) {
	res, err := r.client.ExecuteSQL(ctx, `
		UPDATE magic_link_tokens
		SET    used = TRUE
		WHERE  token_hash = $1
		  AND  used = FALSE
		  AND  expires_at > $2
		RETURNING token_hash, email, expires_at, used, created_at`,
		tokenHash, now)
	if err != nil {
		return nil, fmt.Errorf("claim magic token: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, domain.ErrTokenInvalid
	}

	var row tokenRow
	if err := json.Unmarshal(res.Rows[0], &row); err != nil {
		return nil, fmt.Errorf("decode token row: %w", err)
	}
	return &domain.MagicLinkToken{
		TokenHash: row.TokenHash,
		Email:     row.Email,
		ExpiresAt: row.ExpiresAt,
		Used:      row.Used,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	res, err := r.client.ExecuteSQL(ctx, `
		DELETE FROM magic_link_tokens
		WHERE token_hash IN (
			SELECT token_hash FROM magic_link_tokens
			WHERE  expires_at < $1
			LIMIT  $2
		)
		RETURNING token_hash`,
		cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return len(res.Rows), nil
}
