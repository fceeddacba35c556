package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8976, cfg.Port)
	assert.Equal(t, 30, cfg.DocsCacheRetentionDays)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
host: 0.0.0.0
port: 9000
debug: true
drupal:
  base-url: https://example.org
  username: admin
  password: secret
mode:
  preferred-mode: hybrid
  fallback-mode: docs_only
  max-retries: 5
  connection-timeout-ms: 2000
  health-check-interval-ms: 15000
  recovery-delay-ms: 3000
  enable-auto-recovery: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "https://example.org", cfg.Drupal.BaseURL)

	mc, err := cfg.ModeCoordinatorConfig()
	require.NoError(t, err)

	assert.Equal(t, mode.Hybrid, mc.Preferred)
	assert.Equal(t, mode.DocsOnly, mc.Fallback)
	assert.Equal(t, 5, mc.MaxRetries)
	assert.Equal(t, 2*time.Second, mc.ConnectTimeout)
	assert.Equal(t, 15*time.Second, mc.HealthCheckInterval)
	assert.Equal(t, 3*time.Second, mc.RecoveryDelay)
	assert.False(t, mc.AutoRecovery)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "host: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestModeConfigRejectsLiveFallback(t *testing.T) {
	path := writeConfig(t, `
mode:
  preferred-mode: smart_fallback
  fallback-mode: live_only
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = cfg.ModeCoordinatorConfig()
	assert.Error(t, err, "a fallback that needs connectivity makes degradation meaningless")
}

func TestModeConfigRejectsUnknownMode(t *testing.T) {
	path := writeConfig(t, "mode:\n  preferred-mode: turbo\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = cfg.ModeCoordinatorConfig()
	assert.Error(t, err)
}

func TestModeOverridePriority(t *testing.T) {
	tests := []struct {
		value string
		check func(*testing.T, *mode.Config)
	}{
		{"docs", func(t *testing.T, c *mode.Config) { assert.True(t, c.ForceDocs) }},
		{"live", func(t *testing.T, c *mode.Config) { assert.True(t, c.ForceLive) }},
		{"hybrid", func(t *testing.T, c *mode.Config) { assert.True(t, c.ForceHybrid) }},
		{"hybrid,docs", func(t *testing.T, c *mode.Config) {
			// docs wins regardless of order
			assert.True(t, c.ForceDocs)
			assert.False(t, c.ForceHybrid)
		}},
		{"LIVE", func(t *testing.T, c *mode.Config) { assert.True(t, c.ForceLive) }},
		{"nonsense", func(t *testing.T, c *mode.Config) {
			assert.False(t, c.ForceDocs)
			assert.False(t, c.ForceLive)
			assert.False(t, c.ForceHybrid)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(ModeOverrideEnv, tt.value)
			cfg := DefaultConfig()
			mc, err := cfg.ModeCoordinatorConfig()
			require.NoError(t, err)
			tt.check(t, mc)
		})
	}
}

func TestManagementKeyHashedOnLoad(t *testing.T) {
	path := writeConfig(t, "management-key: hunter2\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, looksLikeBcrypt(cfg.ManagementKey))
	assert.True(t, cfg.CheckManagementKey("hunter2"))
	assert.False(t, cfg.CheckManagementKey("wrong"))
	assert.False(t, cfg.CheckManagementKey(""))
}

func TestManagementKeyAlreadyHashed(t *testing.T) {
	hashed, err := hashSecret("s3cret")
	require.NoError(t, err)

	path := writeConfig(t, "management-key: \""+hashed+"\"\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, hashed, cfg.ManagementKey)
	assert.True(t, cfg.CheckManagementKey("s3cret"))
}

func TestWatcherReload(t *testing.T) {
	path := writeConfig(t, "port: 9000\n")

	reloaded := make(chan *Config, 1)
	w := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("port: 9100\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 9100, cfg.Port)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never delivered the reloaded config")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := writeConfig(t, "port: 9000\n")
	w := NewWatcher(path, nil)
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
}
