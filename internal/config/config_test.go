package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "missing.env", cfg.ConfigPath)
	assert.Equal(t, "file", cfg.SessionBackend)
	assert.Equal(t, "backend", cfg.AuthProvider)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pms.env")
	content := "PORT=7070\n" +
		"API_ADDRESS=http://api:8080\n" +
		"SESSION_BACKEND=Redis\n" +
		"SESSION_TTL=90\n" +
		"REDIS_DB=2\n" +
		"ALLOW_ORIGINS=http://a, http://b\n" +
		"VERBOSE=TRUE\n" +
		"DB_PASSWORD=hunter2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	keys := []string{"PORT", "API_ADDRESS", "SESSION_BACKEND", "SESSION_TTL", "REDIS_DB", "ALLOW_ORIGINS", "VERBOSE", "DB_PASSWORD"}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := Load(path)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "http://api:8080", cfg.ApiAddress)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "localhost:7070", cfg.Addr())

	out := cfg.String()
	assert.Contains(t, out, "[CFG]CONFIGURATION: pms.env")
	assert.Contains(t, out, "DBPassword")
	assert.NotContains(t, out, "hunter2")
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\n"), 0o600))
	t.Setenv("PORT", "9999")
	t.Setenv("REQUEST_TIMEOUT", "2m")

	cfg := Load(path)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
}

func TestDurationFallback(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	assert.Equal(t, time.Hour, getDurationEnv("SESSION_TTL", time.Hour))
}
