package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
)

var errDuplicateToken = errors.New("memory: duplicate token hash")

type TokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.MagicLinkToken
	now    func() time.Time
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		tokens: make(map[string]*domain.MagicLinkToken),
		now:    time.Now,
	}
}

func (r *TokenRepository) Create(_ context.Context, t *domain.MagicLinkToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[t.TokenHash]; ok {
		return errDuplicateToken
	}
	stored := *t
	stored.Used = false
	stored.CreatedAt = r.now()
	r.tokens[t.TokenHash] = &stored
	return nil
}

// Claim holds the lock across lookup, check and flip.
func (r *TokenRepository) Claim(_ context.Context, tokenHash string, now time.Time) (*domain.MagicLinkToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[tokenHash]
	if !ok || !t.Valid(now) {
		return nil, domain.ErrTokenInvalid
	}
	t.Used = true

	claimed := *t
	return &claimed, nil
}

func (r *TokenRepository) DeleteExpired(_ context.Context, cutoff time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for hash, t := range r.tokens {
		if deleted >= limit {
			break
		}
		if t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
