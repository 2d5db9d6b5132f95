package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Automation.DedupWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET_KEY":   "s3cret",
		"ACCESS_TOKEN_TTL": "2h",
		"DB_DRIVER":        "postgres",
		"DATABASE_URL":     "postgres://localhost/taskpilot?sslmode=disable",
		"N8N_WEBHOOK_URL":  "http://n8n:5678",
		"NOTIFY_WORKERS":   "2",
		"APP_ENV":          "production",
	}))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http://n8n:5678", cfg.Automation.WebhookURL)
	assert.Equal(t, 2, cfg.Automation.Workers)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"bad driver":     {"JWT_SECRET_KEY": "x", "DB_DRIVER": "mysql"},
		"zero ttl":       {"JWT_SECRET_KEY": "x", "ACCESS_TOKEN_TTL": "0s"},
		"bad duration":   {"JWT_SECRET_KEY": "x", "N8N_TIMEOUT": "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
