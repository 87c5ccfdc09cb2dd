package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/config"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_AUTH_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example;https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 15, cfg.Payments.PlatformFeePercentage)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Lifetime())
	assert.Equal(t, "postgres", cfg.IdentityStore)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, "Admin@123", cfg.Seed.AdminPassword)
}

func TestLoad_RejectsShortKey(t *testing.T) {
	t.Setenv("JWT_AUTH_KEY", "short")

	_, err := config.Load("testdata/does-not-exist.env")

	assert.ErrorContains(t, err, "JWT_AUTH_KEY")
}

func TestValidate_IdentityStore(t *testing.T) {
	cfg := config.Config{IdentityStore: "mongo", JWT: config.JWTConfig{AuthKey: "0123456789abcdef0123456789abcdef"}}

	assert.ErrorContains(t, cfg.Validate(), "IDENTITY_STORE")
}
