package mosaic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
)

type userRow struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt, LastLogin: r.LastLogin}
}

type UserRepository struct {
	client *Client
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	res, err := r.client.ExecuteSQL(ctx,
		`SELECT id, email, created_at, last_login FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return decodeUser(res.Rows[0])
}

func (r *UserRepository) Create(ctx context.Context, email string) (*domain.User, error) {
	res, err := r.client.ExecuteSQL(ctx, `
		INSERT INTO users (email) VALUES ($1)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, created_at, last_login`, email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, domain.ErrUserConflict
	}
	return decodeUser(res.Rows[0])
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	if _, err := r.client.ExecuteSQL(ctx,
		`UPDATE users SET last_login = $2 WHERE email = $1`, email, at); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	res, err := r.client.ExecuteSQL(ctx,
		`SELECT id, email, created_at, last_login FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*domain.User, 0, len(res.Rows))
	for _, raw := range res.Rows {
		u, err := decodeUser(raw)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func decodeUser(raw json.RawMessage) (*domain.User, error) {
	var row userRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("decode user row: %w", err)
	}
	return row.toDomain(), nil
}
