package redisstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/redisstore"
)

func newRepo(t *testing.T) (*redisstore.TokenRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewTokenRepository(client, time.Hour), mr
}

func TestTokenRepository_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.MagicLinkToken{
		TokenHash: "h1",
		Email:     "a@b.com",
		ExpiresAt: now.Add(15 * time.Minute),
	}))

	tok, err := repo.Claim(ctx, "h1", now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", tok.Email)
	assert.True(t, tok.Used)
	assert.Equal(t, now.Add(15*time.Minute).UnixMilli(), tok.ExpiresAt.UnixMilli())

	_, err = repo.Claim(ctx, "h1", now.Add(2*time.Second))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenRepository_ClaimExpired(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.MagicLinkToken{
		TokenHash: "h1",
		Email:     "a@b.com",
		ExpiresAt: now.Add(15 * time.Minute),
	}))

	_, err := repo.Claim(ctx, "h1", now.Add(16*time.Minute))
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenRepository_ClaimUnknown(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Claim(context.Background(), "nope", time.Now())
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestTokenRepository_KeyExpiresAfterRetention(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRepo(t)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &domain.MagicLinkToken{
		TokenHash: "h1",
		Email:     "a@b.com",
		ExpiresAt: now.Add(15 * time.Minute),
	}))
	require.True(t, mr.Exists("magiclink:h1"))

	mr.FastForward(2 * time.Hour)

	assert.False(t, mr.Exists("magiclink:h1"))
}

func TestTokenRepository_ConcurrentClaim_ExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)
	now := time.Now()
	require.NoError(t, repo.Create(ctx, &domain.MagicLinkToken{
		TokenHash: "h1",
		Email:     "a@b.com",
		ExpiresAt: now.Add(15 * time.Minute),
	}))

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Claim(ctx, "h1", now); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestTokenRepository_DeleteExpiredIsNoop(t *testing.T) {
	repo, _ := newRepo(t)

	n, err := repo.DeleteExpired(context.Background(), time.Now(), 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}
