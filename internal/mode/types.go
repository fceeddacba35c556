// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mode implements the operational-mode coordinator. It decides
// whether a tool request may be served from the live Drupal backend, from
// static documentation data, or from a blend of both, and it manages the
// lifecycle of that decision as backend connectivity appears, degrades,
// and recovers.
package mode

import (
	"context"
	"fmt"
	"time"
)

// Mode identifies an operating mode of the server.
type Mode string

const (
	// DocsOnly serves exclusively from static documentation sources.
	DocsOnly Mode = "docs_only"

	// LiveOnly serves exclusively from the live Drupal backend.
	LiveOnly Mode = "live_only"

	// Hybrid serves documentation tools locally and live tools from the
	// backend when it is reachable.
	Hybrid Mode = "hybrid"

	// SmartFallback is a preference, not a terminal state: it resolves to
	// Hybrid behavior once connectivity is confirmed and to the configured
	// fallback mode when the backend is unreachable.
	SmartFallback Mode = "smart_fallback"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case DocsOnly, LiveOnly, Hybrid, SmartFallback:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// RequiresConnection reports whether the mode needs a reachable backend
// to be adopted.
func (m Mode) RequiresConnection() bool {
	switch m {
	case LiveOnly, Hybrid, SmartFallback:
		return true
	}
	return false
}

// Valid reports whether m is one of the four known modes.
func (m Mode) Valid() bool {
	switch m {
	case DocsOnly, LiveOnly, Hybrid, SmartFallback:
		return true
	}
	return false
}

// Route identifies the execution path chosen for a tool.
type Route string

const (
	// RouteLive executes the tool against the live backend.
	RouteLive Route = "live"

	// RouteDocs executes the tool against static documentation sources.
	RouteDocs Route = "docs"

	// RouteHybrid lets the tool combine live and documentation data.
	RouteHybrid Route = "hybrid"

	// RouteNone means the tool cannot run in the current state.
	RouteNone Route = "none"
)

// ConnectionStatus is the record of the most recent backend probe. Every
// probe overwrites the whole record; readers never observe a partial
// update.
type ConnectionStatus struct {
	// Connected reports whether the last probe reached the backend.
	Connected bool `json:"connected"`

	// LastTested is when the last probe completed. It only moves forward.
	LastTested time.Time `json:"last_tested"`

	// ResponseTime is the round-trip time of the last successful probe.
	ResponseTime time.Duration `json:"response_time"`

	// Error holds the failure description when Connected is false.
	Error string `json:"error,omitempty"`

	// Capabilities lists the capability tags advertised by the backend.
	Capabilities []string `json:"capabilities,omitempty"`
}

// clone returns a deep copy so callers never share the internal slice.
func (s ConnectionStatus) clone() ConnectionStatus {
	out := s
	if s.Capabilities != nil {
		out.Capabilities = make([]string, len(s.Capabilities))
		copy(out.Capabilities, s.Capabilities)
	}
	return out
}

// ProbeResult is the outcome of a single backend health check.
type ProbeResult struct {
	// Connected reports whether the backend answered the probe.
	Connected bool

	// ResponseTime is the probe round-trip time.
	ResponseTime time.Duration

	// Capabilities lists capability tags derived from the probe response.
	Capabilities []string

	// Error describes the failure when Connected is false.
	Error string
}

// Prober performs one health check against the live backend. It must fail
// fast: implementations are expected to honor the context deadline and
// surface a distinguishable error rather than hanging.
type Prober interface {
	Probe(ctx context.Context) (*ProbeResult, error)
}

// Stats is a point-in-time snapshot of the coordinator.
type Stats struct {
	// CurrentMode is the effective mode being served.
	CurrentMode Mode `json:"current_mode"`

	// Uptime is the time elapsed since the coordinator was created.
	Uptime time.Duration `json:"uptime"`

	// Status is a copy of the latest connection status.
	Status ConnectionStatus `json:"status"`

	// ReconnectAttempts is the number of failed recovery attempts since
	// the last successful probe, capped at the configured maximum for
	// reporting.
	ReconnectAttempts int `json:"reconnect_attempts"`

	// Capabilities mirrors Status.Capabilities for convenience.
	Capabilities []string `json:"capabilities,omitempty"`
}

// Config carries the coordinator settings. It is immutable after
// construction except for the preferred mode, which a manual switch
// redefines. Environment reads happen in the config boundary layer, never
// here.
type Config struct {
	// Preferred is the mode the operator wants to run in.
	Preferred Mode

	// Fallback is the mode adopted when Preferred needs connectivity and
	// the backend is unreachable. It must not itself require a
	// connection.
	Fallback Mode

	// MaxRetries caps the reported reconnect attempt count. It does not
	// stop the monitor from scheduling further attempts.
	MaxRetries int

	// ConnectTimeout bounds a single probe round trip.
	ConnectTimeout time.Duration

	// HealthCheckInterval is the period of the background health monitor.
	HealthCheckInterval time.Duration

	// RecoveryDelay is how long the monitor waits after detecting a
	// connectivity loss before attempting recovery, so a backend that
	// just failed is not hammered immediately.
	RecoveryDelay time.Duration

	// AutoRecovery enables automatic reconnection attempts.
	AutoRecovery bool

	// ForceDocs, ForceLive and ForceHybrid are mutually exclusive
	// process-level overrides resolved by the boundary layer. The first
	// one set, in that order, is adopted verbatim with no probing.
	ForceDocs   bool
	ForceLive   bool
	ForceHybrid bool
}

// DefaultConfig returns the coordinator defaults.
func DefaultConfig() *Config {
	return &Config{
		Preferred:           SmartFallback,
		Fallback:            DocsOnly,
		MaxRetries:          3,
		ConnectTimeout:      5 * time.Second,
		HealthCheckInterval: 30 * time.Second,
		RecoveryDelay:       5 * time.Second,
		AutoRecovery:        true,
	}
}

// Validate checks the configuration for contradictions. A fallback mode
// that itself requires connectivity would make degradation meaningless,
// so it is rejected here.
func (c *Config) Validate() error {
	if !c.Preferred.Valid() {
		return fmt.Errorf("invalid preferred mode %q", c.Preferred)
	}
	if !c.Fallback.Valid() {
		return fmt.Errorf("invalid fallback mode %q", c.Fallback)
	}
	if c.Fallback.RequiresConnection() {
		return fmt.Errorf("fallback mode %q requires a live connection", c.Fallback)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health check interval must be positive")
	}
	if c.RecoveryDelay <= 0 {
		return fmt.Errorf("recovery delay must be positive")
	}
	return nil
}

// forced returns the override mode when one of the force flags is set.
// Priority is docs, then live, then hybrid.
func (c *Config) forced() (Mode, bool) {
	switch {
	case c.ForceDocs:
		return DocsOnly, true
	case c.ForceLive:
		return LiveOnly, true
	case c.ForceHybrid:
		return Hybrid, true
	}
	return "", false
}
