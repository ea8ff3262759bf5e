package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stub", cfg.EmailProvider)
	assert.Equal(t, 12*time.Hour, cfg.AuthTokenTTL)
	assert.True(t, cfg.UseMemoryStore())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.UseMemoryStore())
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, 30*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, "sendgrid", cfg.EmailProvider)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_SECOND", "not-a-number")
	cfg := Load()
	assert.Equal(t, float64(20), cfg.RateLimitPerSecond)
}
