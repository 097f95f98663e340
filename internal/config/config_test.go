package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with required secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-very-long-test-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "./data/spendsplit.db", cfg.DBPath)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("missing secret fails", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("short secret fails", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-very-long-test-secret")
		t.Setenv("DB_PATH", "/tmp/other.db")
		t.Setenv("PORT", "9999")
		t.Setenv("TOKEN_TTL", "2h")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/other.db", cfg.DBPath)
		assert.Equal(t, 9999, cfg.Port)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("bad port fails", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-very-long-test-secret")
		t.Setenv("PORT", "not-a-port")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad token ttl fails", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-very-long-test-secret")
		t.Setenv("TOKEN_TTL", "sometime")

		_, err := Load()
		require.Error(t, err)
	})
}
