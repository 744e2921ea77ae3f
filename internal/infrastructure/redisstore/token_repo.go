package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "magiclink:"

// claimScript checks and flips the used flag in one server-side step.
// ARGV[1] is the caller's clock in unix milliseconds.
var claimScript = redis.NewScript(`
local v = redis.call('HMGET', KEYS[1], 'used', 'expires_at', 'email', 'created_at')
if not v[1] or v[1] == '1' then
	return false
end
if tonumber(v[2]) <= tonumber(ARGV[1]) then
	return false
end
redis.call('HSET', KEYS[1], 'used', '1')
return {v[3], v[2], v[4]}
`)

type TokenRepository struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
}

// NewTokenRepository keeps each record for retention past its expiry, after
// which Redis drops the key on its own.
func NewTokenRepository(client redis.UniversalClient, retention time.Duration) *TokenRepository {
	return &TokenRepository{client: client, retention: retention, now: time.Now}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.MagicLinkToken) error {
	key := keyPrefix + t.TokenHash

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"email", t.Email,
			"expires_at", t.ExpiresAt.UnixMilli(),
			"used", "0",
			"created_at", r.now().UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, t.ExpiresAt.Add(r.retention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("create magic token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Claim(ctx context.Context, tokenHash string, now time.Time) (*domain.MagicLinkToken, error) {
	res, err := claimScript.Run(ctx, r.client, []string{keyPrefix + tokenHash}, now.UnixMilli()).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim magic token: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("claim magic token: unexpected reply length %d", len(res))
	}

	expiresAt, err := parseMillis(res[1])
	if err != nil {
		return nil, fmt.Errorf("claim magic token: expires_at: %w", err)
	}
	createdAt, err := parseMillis(res[2])
	if err != nil {
		return nil, fmt.Errorf("claim magic token: created_at: %w", err)
	}

	return &domain.MagicLinkToken{
		TokenHash: tokenHash,
		Email:     res[0],
		ExpiresAt: expiresAt,
		Used:      true,
		CreatedAt: createdAt,
	}, nil
}

// DeleteExpired is a no-op: key TTLs already enforce retention.
func (r *TokenRepository) DeleteExpired(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
