// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the
// mcp-drupal-server. It handles loading and parsing the YAML
// configuration file, validating the mode settings, and resolving the
// process-level environment overrides. The coordinator itself never
// reads the environment; everything it needs is translated here, once,
// into an explicit mode.Config.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

// ModeOverrideEnv is the environment variable forcing an operating mode.
// Recognized values: "docs", "live", "hybrid". Priority is docs, then
// live, then hybrid when several comma-separated values are present.
const ModeOverrideEnv = "DRUPAL_MCP_MODE"

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the API server will bind.
	Host string `yaml:"host" json:"-"`
	// Port is the network port on which the API server will listen.
	Port int `yaml:"port" json:"-"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsDir is the directory for rotating log files.
	LogsDir string `yaml:"logs-dir" json:"-"`

	// LogsMaxTotalSizeMB limits the total size (in MB) of log files under
	// the logs directory. Set to 0 to disable the cleaner.
	LogsMaxTotalSizeMB int `yaml:"logs-max-total-size-mb" json:"logs-max-total-size-mb"`

	// ManagementKey guards the management endpoints. Plaintext values are
	// hashed with bcrypt on load; values already shaped like a bcrypt
	// hash are kept as-is.
	ManagementKey string `yaml:"management-key" json:"-"`

	// Drupal holds the live backend connection settings.
	Drupal DrupalConfig `yaml:"drupal" json:"drupal"`

	// Mode holds the operational-mode coordinator settings.
	Mode ModeConfig `yaml:"mode" json:"mode"`

	// DocsCachePath is the SQLite file backing the documentation page
	// cache. Empty disables the cache.
	DocsCachePath string `yaml:"docs-cache-path" json:"-"`

	// DocsCacheRetentionDays bounds how long cached pages are kept.
	DocsCacheRetentionDays int `yaml:"docs-cache-retention-days" json:"docs-cache-retention-days"`
}

// DrupalConfig holds the live backend connection settings.
type DrupalConfig struct {
	// BaseURL is the site root, e.g. "https://example.org".
	BaseURL string `yaml:"base-url" json:"base-url"`

	// Username and Password enable HTTP basic authentication.
	Username string `yaml:"username" json:"-"`
	Password string `yaml:"password" json:"-"`

	// Token enables bearer-token authentication and wins over basic auth.
	Token string `yaml:"token" json:"-"`
}

// ModeConfig holds the coordinator settings in file form. Durations are
// carried in milliseconds to match the wire format of the management API.
type ModeConfig struct {
	// PreferredMode is the mode the operator wants to run in.
	PreferredMode string `yaml:"preferred-mode" json:"preferred-mode"`

	// FallbackMode is adopted when the preference needs connectivity and
	// the backend is down. It must not itself require a connection.
	FallbackMode string `yaml:"fallback-mode" json:"fallback-mode"`

	// MaxRetries caps the reported reconnect attempt count.
	MaxRetries int `yaml:"max-retries" json:"max-retries"`

	// ConnectionTimeoutMs bounds a single backend probe.
	ConnectionTimeoutMs int `yaml:"connection-timeout-ms" json:"connection-timeout-ms"`

	// HealthCheckIntervalMs is the background health check period.
	HealthCheckIntervalMs int `yaml:"health-check-interval-ms" json:"health-check-interval-ms"`

	// RecoveryDelayMs is the pause between a detected loss and the first
	// recovery attempt.
	RecoveryDelayMs int `yaml:"recovery-delay-ms" json:"recovery-delay-ms"`

	// EnableAutoRecovery toggles automatic reconnection.
	EnableAutoRecovery *bool `yaml:"enable-auto-recovery" json:"enable-auto-recovery"`
}

// DefaultConfig returns the built-in defaults used when no config file
// is present.
func DefaultConfig() *Config {
	return &Config{
		Host:                   "127.0.0.1",
		Port:                   8976,
		LogsDir:                "logs",
		DocsCacheRetentionDays: 30,
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. A
// missing file is not an error; the defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("no config file at %s, using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.ManagementKey != "" && !looksLikeBcrypt(cfg.ManagementKey) {
		hashed, err := hashSecret(cfg.ManagementKey)
		if err != nil {
			return nil, fmt.Errorf("config: hash management key: %w", err)
		}
		cfg.ManagementKey = hashed
	}

	return cfg, nil
}

// CheckManagementKey compares a presented key against the stored hash.
func (c *Config) CheckManagementKey(presented string) bool {
	if c.ManagementKey == "" || presented == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.ManagementKey), []byte(presented)) == nil
}

// ModeCoordinatorConfig translates the file settings plus the
// environment override into the coordinator's explicit configuration.
// This is the only place the override variable is read.
func (c *Config) ModeCoordinatorConfig() (*mode.Config, error) {
	out := mode.DefaultConfig()

	if c.Mode.PreferredMode != "" {
		m, err := mode.ParseMode(c.Mode.PreferredMode)
		if err != nil {
			return nil, fmt.Errorf("config: preferred-mode: %w", err)
		}
		out.Preferred = m
	}
	if c.Mode.FallbackMode != "" {
		m, err := mode.ParseMode(c.Mode.FallbackMode)
		if err != nil {
			return nil, fmt.Errorf("config: fallback-mode: %w", err)
		}
		out.Fallback = m
	}
	if c.Mode.MaxRetries > 0 {
		out.MaxRetries = c.Mode.MaxRetries
	}
	if c.Mode.ConnectionTimeoutMs > 0 {
		out.ConnectTimeout = time.Duration(c.Mode.ConnectionTimeoutMs) * time.Millisecond
	}
	if c.Mode.HealthCheckIntervalMs > 0 {
		out.HealthCheckInterval = time.Duration(c.Mode.HealthCheckIntervalMs) * time.Millisecond
	}
	if c.Mode.RecoveryDelayMs > 0 {
		out.RecoveryDelay = time.Duration(c.Mode.RecoveryDelayMs) * time.Millisecond
	}
	if c.Mode.EnableAutoRecovery != nil {
		out.AutoRecovery = *c.Mode.EnableAutoRecovery
	}

	applyModeOverride(out, os.Getenv(ModeOverrideEnv))

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}

// applyModeOverride maps the override value onto the force flags. The
// first recognized value in priority order (docs, live, hybrid) wins.
func applyModeOverride(cfg *mode.Config, raw string) {
	if raw == "" {
		return
	}
	values := strings.Split(strings.ToLower(raw), ",")
	has := func(want string) bool {
		for _, v := range values {
			if strings.TrimSpace(v) == want {
				return true
			}
		}
		return false
	}
	switch {
	case has("docs"):
		cfg.ForceDocs = true
	case has("live"):
		cfg.ForceLive = true
	case has("hybrid"):
		cfg.ForceHybrid = true
	default:
		log.Warnf("ignoring unrecognized %s value %q", ModeOverrideEnv, raw)
	}
}

// looksLikeBcrypt returns true if the provided string appears to be a bcrypt hash.
func looksLikeBcrypt(s string) bool {
	return len(s) > 4 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}

// hashSecret hashes the given secret using bcrypt.
func hashSecret(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
