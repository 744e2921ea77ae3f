package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	StoreConfig

	SessionSecret string `env:"SESSION_SECRET,required" validate:"required,min=32"`
	ResendAPIKey  string `env:"RESEND_API_KEY"          validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM"             validate:"required_if=Env production,required_if=Env staging"`
	AppBaseURL    string `env:"APP_BASE_URL"            envDefault:"http://localhost:8080" validate:"url"`

	CleanupCron string `env:"CLEANUP_CRON" envDefault:"@every 10m" validate:"required"`
}

// StoreConfig is the subset needed to open the stores. The admin CLI loads it
// on its own so it does not need session or mail secrets.
type StoreConfig struct {
	// StoreBackend selects where users and tokens live. TokenBackend overrides
	// the token store only (redis keeps tokens out of the SQL store).
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres" validate:"oneof=postgres mosaic memory"`
	TokenBackend string `env:"TOKEN_BACKEND"                        validate:"omitempty,oneof=redis"`

	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StoreBackend postgres"`

	MosaicAPIKey      string `env:"MOSAIC_API_KEY"                                                  validate:"required_if=StoreBackend mosaic"`
	MosaicAPIBase     string `env:"MOSAIC_API_BASE"     envDefault:"https://api.mosaic.site/v1/project" validate:"url"`
	MosaicProjectSlug string `env:"MOSAIC_PROJECT_SLUG" envDefault:"superrichie"                       validate:"required"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	TokenRetention time.Duration `env:"TOKEN_RETENTION" envDefault:"24h" validate:"min=1m"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func LoadStore() (*StoreConfig, error) {
	cfg := &StoreConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto slog levels. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TokenStore reports the effective token backend.
func (c *StoreConfig) TokenStore() string {
	if c.TokenBackend != "" {
		return c.TokenBackend
	}
	return c.StoreBackend
}
