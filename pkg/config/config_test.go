package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WILDPARK_PROVIDER_ISSUER", "https://wildpark.example.auth0.com/")
	t.Setenv("WILDPARK_PROVIDER_CLIENT_ID", "client-id")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Development())
}

func TestLoadConfigMissingProviderFails(t *testing.T) {
	t.Setenv("WILDPARK_PROVIDER_ISSUER", "")
	t.Setenv("WILDPARK_PROVIDER_CLIENT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer URL is required")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
environment: production
logging:
  level: debug
`), 0o644))

	setRequiredEnv(t)
	t.Setenv("WILDPARK_CONFIG", path)
	t.Setenv("WILDPARK_PORT", "9100")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "env var must win over file")
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, logrus.DebugLevel, cfg.Logging.ConsoleLevel())
}

func TestInvalidEnvironmentRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WILDPARK_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConsoleLevelFallback(t *testing.T) {
	lc := LoggingConfig{Level: "nonsense"}
	assert.Equal(t, logrus.InfoLevel, lc.ConsoleLevel())
}
