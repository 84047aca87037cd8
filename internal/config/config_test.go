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
	t.Helper()
	for _, key := range []string{
		"MODELHOST_MANIFEST", "HTTP_LISTEN_ADDR", "LOG_LEVEL",
		"SERVE_CMD_TEMPLATE", "DEPLOY_LOG_DIR", "HEALTH_PATH",
		"PORT_RANGE_LOW", "PORT_RANGE_HIGH",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultCommandTemplate, cfg.CommandTemplate)
	assert.Equal(t, "./deploy_logs", cfg.LogDir)
	assert.Equal(t, "/health", cfg.HealthPath)
	assert.Equal(t, 8000, cfg.PortRangeLow)
	assert.Equal(t, 8999, cfg.PortRangeHigh)
	assert.Equal(t, 12, cfg.HealthAttempts)
	assert.Equal(t, time.Second, cfg.HealthSettleDelay)
	assert.Equal(t, 10*time.Second, cfg.StopTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_LISTEN_ADDR", ":7070")
	t.Setenv("SERVE_CMD_TEMPLATE", "srv {model_path} -p {port}")
	t.Setenv("PORT_RANGE_LOW", "9100")
	t.Setenv("PORT_RANGE_HIGH", "9199")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPListenAddr)
	assert.Equal(t, "srv {model_path} -p {port}", cfg.CommandTemplate)
	assert.Equal(t, 9100, cfg.PortRangeLow)
	assert.Equal(t, 9199, cfg.PortRangeHigh)
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT_RANGE_LOW", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Manifest(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "modelhost.yaml")
	data := []byte(`command_template: "srv --model {model_path} --port {port}"
port_range_low: 9000
health_attempts: 3
health_interval_ms: 100
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("MODELHOST_MANIFEST", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "srv --model {model_path} --port {port}", cfg.CommandTemplate)
	assert.Equal(t, 9000, cfg.PortRangeLow)
	assert.Equal(t, 3, cfg.HealthAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.HealthInterval)
	// Untouched fields keep their defaults.
	assert.Equal(t, 8999, cfg.PortRangeHigh)
	assert.Equal(t, "/health", cfg.HealthPath)
}

func TestLoad_EnvWinsOverManifest(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "modelhost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	t.Setenv("MODELHOST_MANIFEST", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	bad := *cfg
	bad.PortRangeLow = 9000
	bad.PortRangeHigh = 8000
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.CommandTemplate = ""
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.HealthAttempts = 0
	assert.Error(t, bad.Validate())
}
