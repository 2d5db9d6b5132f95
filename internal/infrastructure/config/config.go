// Package config loads the service settings from the environment. A .env file
// in the working directory is read first when present; real environment
// variables always win.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env       string `env:"APP_ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	HTTP       HTTPConfig
	Auth       AuthConfig
	Database   DatabaseConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	Automation AutomationConfig
	RateLimit  RateLimitConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT, default=8000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT, default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT, default=15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=10s"`
}

type AuthConfig struct {
	Secret     string        `env:"JWT_SECRET_KEY"`
	Algorithm  string        `env:"JWT_ALGORITHM, default=HS256"`
	TokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL, default=30m"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER, default=sqlite"`
	DSN          string `env:"DATABASE_URL, default=file:taskpilot.db"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=10"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS, default=5"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE, default=true"`
}

// MongoConfig configures the automation audit log. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=taskpilot"`
}

// RedisConfig configures notification dedup. An empty address disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// AutomationConfig configures outbound notifications. An empty webhook URL
// disables them.
type AutomationConfig struct {
	WebhookURL  string        `env:"N8N_WEBHOOK_URL"`
	Timeout     time.Duration `env:"N8N_TIMEOUT, default=5s"`
	Workers     int           `env:"NOTIFY_WORKERS, default=4"`
	Buffer      int           `env:"NOTIFY_BUFFER, default=256"`
	DedupWindow time.Duration `env:"NOTIFY_DEDUP_WINDOW, default=10m"`
}

// RateLimitConfig throttles the login and register endpoints per client IP.
type RateLimitConfig struct {
	AuthPerSecond float64 `env:"AUTH_RATE_PER_SECOND, default=5"`
	AuthBurst     int     `env:"AUTH_RATE_BURST, default=10"`
}

// Load reads .env (if any) and the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds the configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("config: JWT_SECRET_KEY is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
