// Package session issues and checks the signed session cookie value that a
// successful magic-link verification hands to the browser.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	DefaultTTL = 7 * 24 * time.Hour
)

type Claims struct {
	UserID string
	Email  string
}

type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewManager(key []byte) *Manager {
	return &Manager{key: key, ttl: DefaultTTL, now: time.Now}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs an HS256 token carrying the user's id and email.
func (m *Manager) Issue(user *domain.User) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse returns domain.ErrUnauthorized for anything that is not a valid,
// unexpired token signed with our key.
func (m *Manager) Parse(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, domain.ErrUnauthorized
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, domain.ErrUnauthorized
	}
	sub, _ := mc["sub"].(string)
	email, _ := mc["email"].(string)
	if sub == "" || email == "" {
		return Claims{}, domain.ErrUnauthorized
	}
	return Claims{UserID: sub, Email: email}, nil
}
