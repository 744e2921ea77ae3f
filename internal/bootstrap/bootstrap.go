// Package bootstrap holds the process wiring shared by the binaries: logger
// construction and store selection from config.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/superrichie/config"
	"github.com/ErlanBelekov/superrichie/internal/health"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/memory"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/mosaic"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/redisstore"
	ctxlog "github.com/ErlanBelekov/superrichie/internal/log"
	"github.com/ErlanBelekov/superrichie/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"
)

func NewLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}

// Stores is the set of repositories selected by STORE_BACKEND and
// TOKEN_BACKEND, plus the dependencies the readiness probe should ping.
type Stores struct {
	Users  repository.UserRepository
	Tokens repository.TokenRepository
	Deps   map[string]health.Pinger

	// Set only for the matching backend; used by the admin CLI.
	Pool   *pgxpool.Pool
	Mosaic *mosaic.Client

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func OpenStores(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*Stores, error) {
	s := &Stores{Deps: make(map[string]health.Pinger)}

	switch cfg.StoreBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.Pool = pool
		s.Users = postgres.NewUserRepository(pool)
		s.Tokens = postgres.NewTokenRepository(pool)
		s.Deps["postgres"] = pool
		logger.Info("db connected")
	case "mosaic":
		client := mosaic.NewClient(cfg.MosaicAPIBase, cfg.MosaicProjectSlug, cfg.MosaicAPIKey)
		s.Mosaic = client
		s.Users = mosaic.NewUserRepository(client)
		s.Tokens = mosaic.NewTokenRepository(client)
		s.Deps["mosaic"] = client
		logger.Info("using mosaic store", "project", cfg.MosaicProjectSlug)
	case "memory":
		s.Users = memory.NewUserRepository()
		s.Tokens = memory.NewTokenRepository()
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if cfg.TokenBackend == "redis" {
		client, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Tokens = redisstore.NewTokenRepository(client, cfg.TokenRetention)
		s.Deps["redis"] = redisstore.Pinger{Client: client}
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	return s, nil
}
