package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/superrichie/internal/domain"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/memory"
)

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repo := memory.NewUserRepository()

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_CreateThenFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	created, err := repo.Create(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("created user missing id or created_at: %+v", created)
	}
	if created.LastLogin != nil {
		t.Errorf("last_login = %v, want nil", created.LastLogin)
	}

	found, err := repo.FindByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("found id %q, want %q", found.ID, created.ID)
	}
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	if _, err := repo.Create(ctx, "A@b.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "a@b.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound for different case, got %v", err)
	}
}

func TestUserRepository_DuplicateCreate_ReturnsConflict(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	if _, err := repo.Create(ctx, "a@b.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, "a@b.com"); !errors.Is(err, domain.ErrUserConflict) {
		t.Errorf("want ErrUserConflict, got %v", err)
	}
}

func TestUserRepository_ConcurrentCreate_OneRecord(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Create(ctx, "race@example.com"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("successful creates = %d, want 1", successes)
	}
	users, _ := repo.List(ctx)
	if len(users) != 1 {
		t.Errorf("users = %d, want 1", len(users))
	}
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	if _, err := repo.Create(ctx, "a@b.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	for _, at := range []time.Time{first, second} {
		if err := repo.UpdateLastLogin(ctx, "a@b.com", at); err != nil {
			t.Fatalf("update last login: %v", err)
		}
	}

	u, _ := repo.FindByEmail(ctx, "a@b.com")
	if u.LastLogin == nil || !u.LastLogin.Equal(second) {
		t.Errorf("last_login = %v, want %v", u.LastLogin, second)
	}
}

func TestUserRepository_UpdateLastLogin_UnknownEmailIsNoop(t *testing.T) {
	repo := memory.NewUserRepository()

	if err := repo.UpdateLastLogin(context.Background(), "ghost@example.com", time.Now()); err != nil {
		t.Errorf("want nil error, got %v", err)
	}
}

func TestUserRepository_ReturnedUserIsACopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	u, _ := repo.Create(ctx, "a@b.com")

	u.Email = "mutated@example.com"

	if _, err := repo.FindByEmail(ctx, "a@b.com"); err != nil {
		t.Errorf("stored user changed through returned pointer: %v", err)
	}
}
