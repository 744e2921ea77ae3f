package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/ErlanBelekov/superrichie/internal/email"
	"github.com/ErlanBelekov/superrichie/internal/metrics"
	"github.com/ErlanBelekov/superrichie/internal/repository"
)

// MagicLinkTTL is how long an issued link stays redeemable.
const MagicLinkTTL = 15 * time.Minute

const tokenBytes = 32

type AuthUsecase struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	email   email.Sender
	baseURL string
	now     func() time.Time
	random  io.Reader
}

type Option func(*AuthUsecase)

// WithClock replaces time.Now, for tests that move time forward.
func WithClock(now func() time.Time) Option {
	return func(u *AuthUsecase) { u.now = now }
}

// WithRandom replaces crypto/rand as the token source.
func WithRandom(r io.Reader) Option {
	return func(u *AuthUsecase) { u.random = r }
}

func NewAuthUsecase(users repository.UserRepository, tokens repository.TokenRepository, sender email.Sender, baseURL string, opts ...Option) *AuthUsecase {
	u := &AuthUsecase{
		users:   users,
		tokens:  tokens,
		email:   sender,
		baseURL: baseURL,
		now:     time.Now,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// RequestMagicLink ensures a user exists for emailAddr, issues a token and
// emails the verify link. The address is not validated here.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, emailAddr string) error {
	if _, err := u.findOrCreateUser(ctx, emailAddr); err != nil {
		return fmt.Errorf("%w: find or create user: %w", domain.ErrDependency, err)
	}

	rawToken, err := u.issueToken(ctx, emailAddr)
	if err != nil {
		return err
	}

	link := u.baseURL + "/api/auth/verify?token=" + rawToken
	body, err := email.MagicLinkEmail(link, MagicLinkTTL)
	if err != nil {
		return err
	}
	if err := u.email.Send(ctx, emailAddr, email.MagicLinkSubject, body); err != nil {
		return fmt.Errorf("%w: send magic link: %w", domain.ErrDependency, err)
	}

	metrics.MagicLinksIssuedTotal.Inc()
	return nil
}

// issueToken stores the hash of a fresh random token and returns the raw
// value, which exists nowhere else.
func (u *AuthUsecase) issueToken(ctx context.Context, emailAddr string) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(u.random, raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	err := u.tokens.Create(ctx, &domain.MagicLinkToken{
		TokenHash: hashToken(rawToken),
		Email:     emailAddr,
		ExpiresAt: u.now().Add(MagicLinkTTL),
	})
	if err != nil {
		return "", fmt.Errorf("%w: store magic token: %w", domain.ErrDependency, err)
	}
	return rawToken, nil
}

// VerifyMagicLink redeems rawToken and returns the email it was issued for.
// Unknown, used and expired tokens all yield domain.ErrTokenInvalid.
func (u *AuthUsecase) VerifyMagicLink(ctx context.Context, rawToken string) (string, error) {
	mt, err := u.tokens.Claim(ctx, hashToken(rawToken), u.now())
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
			return "", domain.ErrTokenInvalid
		}
		metrics.VerificationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: claim magic token: %w", domain.ErrDependency, err)
	}

	metrics.VerificationsTotal.WithLabelValues("success").Inc()
	return mt.Email, nil
}

// Login verifies rawToken, stamps the user's last login and returns the
// user, ready for a session to be issued.
func (u *AuthUsecase) Login(ctx context.Context, rawToken string) (*domain.User, error) {
	emailAddr, err := u.VerifyMagicLink(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if err := u.users.UpdateLastLogin(ctx, emailAddr, u.now()); err != nil {
		return nil, fmt.Errorf("%w: update last login: %w", domain.ErrDependency, err)
	}

	user, err := u.findOrCreateUser(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %w", domain.ErrDependency, err)
	}
	return user, nil
}

// CurrentUser loads the user behind a session.
func (u *AuthUsecase) CurrentUser(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", domain.ErrDependency, err)
	}
	return user, nil
}

// findOrCreateUser tolerates a concurrent creator: on conflict it re-reads
// the row that won.
func (u *AuthUsecase) findOrCreateUser(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err = u.users.Create(ctx, emailAddr)
	if errors.Is(err, domain.ErrUserConflict) {
		return u.users.FindByEmail(ctx, emailAddr)
	}
	return user, err
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
