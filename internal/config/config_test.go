package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
	assert.Equal(t, "TODO-DB", cfg.DBName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DNDStrict)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DONEZO_ADDR", ":9999")
	t.Setenv("DONEZO_DB_NAME", "TODO-TEST")
	t.Setenv("DONEZO_DND_STRICT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "TODO-TEST", cfg.DBName)
	assert.True(t, cfg.DNDStrict)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("DONEZO_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestOrigins(t *testing.T) {
	t.Setenv("DONEZO_ALLOWED_ORIGINS", "https://donezo.example.app, http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://donezo.example.app", "http://localhost:5173"}, cfg.Origins())
}
