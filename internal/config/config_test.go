package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var configEnvKeys = []string{
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"HTTP_PORT", "DEBUG_MODE", "TRASH_RETENTION_HOURS", "PURGE_INTERVAL_MINUTES",
}

// clearEnv unsets every config variable for the test, restoring the previous
// values afterwards via t.Setenv's cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.Equal(t, "rundown", cfg.DBName)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, 72*time.Hour, cfg.TrashRetention)
	assert.Equal(t, time.Hour, cfg.PurgeInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("TRASH_RETENTION_HOURS", "24")
	t.Setenv("PURGE_INTERVAL_MINUTES", "5")

	cfg := LoadConfig()
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 3307, cfg.DBPort)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, 24*time.Hour, cfg.TrashRetention)
	assert.Equal(t, 5*time.Minute, cfg.PurgeInterval)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DEBUG_MODE", "maybe")

	cfg := LoadConfig()
	assert.Equal(t, 3306, cfg.DBPort)
	assert.False(t, cfg.DebugMode)
}
