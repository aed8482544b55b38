package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "workload.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Zero(t, cfg.SnapshotInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("WORKLOAD_ENV", EnvProduction)
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("CALC_CONCURRENCY", "8")
	t.Setenv("SNAPSHOT_INTERVAL", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, ":9999", cfg.Address)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: production
db_path: /var/lib/workload/workload.db
http_server:
  address: ":9090"
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "/var/lib/workload/workload.db", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("WORKLOAD_ENV", "staging")
	_, err = Load("")
	assert.ErrorContains(t, err, "staging")

	assert.Panics(t, func() { MustLoad("") })
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{Env: EnvProduction, Log: Log{Level: "warn", Format: "json"}})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	// unknown levels fall back to info
	logger, err = NewLogger(&Config{Env: EnvDevelopment, Log: Log{Level: "loud", Format: "console"}})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}
