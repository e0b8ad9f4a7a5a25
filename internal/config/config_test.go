package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "SESSION_SECRET", "JWT_SECRET", "JWT_TTL",
		"LOG_LEVEL", "LOG_FORMAT", "CACHE_SIZE", "CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/threadboard")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 512, cfg.CacheSize)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/threadboard")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("CACHE_SIZE", "64")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"missing database", map[string]string{}, "DATABASE_URL is required"},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "JWT_TTL": "soon"}, "JWT_TTL must be a duration"},
		{"bad cache size", map[string]string{"DATABASE_URL": "x", "CACHE_SIZE": "lots"}, "CACHE_SIZE must be an integer"},
		{"zero cache size", map[string]string{"DATABASE_URL": "x", "CACHE_SIZE": "0"}, "CACHE_SIZE must be positive"},
		{"production session secret", map[string]string{"DATABASE_URL": "x", "APP_ENV": "production", "JWT_SECRET": "j"}, "SESSION_SECRET is required"},
		{"production jwt secret", map[string]string{"DATABASE_URL": "x", "APP_ENV": "production", "SESSION_SECRET": "s"}, "JWT_SECRET is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://from-file/db\n"), 0o600))

	// godotenv never overrides variables that are already set, even to ""
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	assert.True(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-file/db", cfg.DatabaseURL)

	assert.False(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
