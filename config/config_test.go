package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "APP_BASE_URL", "HTTP_ADDR", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER", "JWT_EXPIRES_IN",
	"JWT_COOKIE_EXPIRES_IN", "COOKIE_DOMAIN", "BCRYPT_COST", "HASH_WORKERS", "RESEND_API_KEY",
	"MAIL_FROM", "REDIS_URL", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/tours")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.True(t, cfg.Development())
	assert.False(t, cfg.Production())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTCookieExpiresIn)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 0, cfg.HashWorkers)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.BaseURL)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/tours")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "30d")
	t.Setenv("JWT_COOKIE_EXPIRES_IN", "7")
	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "15m")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("APP_BASE_URL", "https://tours.example.com/")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, "https://tours.example.com", cfg.BaseURL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTCookieExpiresIn)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestFromEnv_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "staging")
	t.Setenv("JWT_EXPIRES_IN", "soon")
	t.Setenv("RATE_LIMIT_MAX", "many")

	_, err := FromEnv()
	require.Error(t, err)
	for _, want := range []string{
		"DATABASE_URL is required",
		"JWT_SECRET is required",
		"invalid JWT_EXPIRES_IN",
		"invalid RATE_LIMIT_MAX",
		"APP_ENV must be",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestFromEnv_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		baseURL string
		wantErr string
	}{
		{"production requires it", "production", "", "APP_BASE_URL is required in production"},
		{"development falls back to the request host", "development", "", ""},
		{"relative url", "development", "tours.example.com", "APP_BASE_URL must be an absolute http(s) URL"},
		{"unsupported scheme", "production", "ftp://tours.example.com", "APP_BASE_URL must be an absolute http(s) URL"},
		{"absolute url", "production", "https://tours.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://db/tours")
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("APP_BASE_URL", tt.baseURL)

			cfg, err := FromEnv()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.baseURL, cfg.BaseURL)
		})
	}
}
