package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "7600", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "./webview", cfg.Assets.Root)
	assert.Equal(t, "./data/state.json", cfg.State.File)
	assert.Equal(t, "./exports", cfg.Export.Dir)

	assert.Equal(t, "", cfg.Backend.Address)
	assert.Equal(t, 30, cfg.Backend.TimeoutSeconds)

	assert.Equal(t, "dark", cfg.View.Theme)
	assert.Equal(t, "relative", cfg.View.TimeDisplayMode)
	assert.Equal(t, "embedded", cfg.View.Mode)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "7600", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":            "9100",
		"HOST":            "127.0.0.1",
		"ASSET_ROOT":      "/srv/webview",
		"ASSET_MANIFEST":  "/srv/webview/assets.yaml",
		"STATE_FILE":      "/var/lib/panelhost/state.json",
		"EXPORT_DIR":      "/tmp/exports",
		"BACKEND_ADDR":    "http://hub:7700",
		"BACKEND_TIMEOUT": "5",
		"VIEW_THEME":      "light",
		"LOG_LEVEL":       "debug",
		"LOG_DEV":         "true",
	}

	for key, value := range envVars {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range envVars {
			os.Unsetenv(key)
		}
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "/srv/webview", cfg.Assets.Root)
	assert.Equal(t, "/srv/webview/assets.yaml", cfg.Assets.Manifest)
	assert.Equal(t, "/var/lib/panelhost/state.json", cfg.State.File)
	assert.Equal(t, "/tmp/exports", cfg.Export.Dir)
	assert.Equal(t, "http://hub:7700", cfg.Backend.Address)
	assert.Equal(t, 5, cfg.Backend.TimeoutSeconds)
	assert.Equal(t, "light", cfg.View.Theme)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}
