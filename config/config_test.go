package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_PATH", "DB_LOG_LEVEL", "DB_BUSY_TIMEOUT_MS", "EQUIVALENTS_PATH", "PORT", "ALLOWED_ORIGINS", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH", "TOP_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DatabasePath))
	assert.Equal(t, DefaultDatabasePath, filepath.Base(cfg.DatabasePath))
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.Equal(t, defaultBusyTimeoutMS, cfg.BusyTimeoutMS)
	assert.Empty(t, cfg.EquivalentsPath)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, defaultTopLimit, cfg.TopLimit)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("DB_LOG_LEVEL", "INFO")
	t.Setenv("DB_BUSY_TIMEOUT_MS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("TOP_LIMIT", "5")
	t.Setenv("EQUIVALENTS_PATH", "equivalents.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.DBLogLevel)
	assert.Equal(t, defaultBusyTimeoutMS, cfg.BusyTimeoutMS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 5, cfg.TopLimit)
	assert.True(t, filepath.IsAbs(cfg.EquivalentsPath))
}
