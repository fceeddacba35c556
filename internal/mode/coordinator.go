// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured is reported when no live backend is configured. It is
// treated as an immediate, non-retryable disconnect: there is nothing to
// probe.
var ErrNotConfigured = errors.New("no live backend configured")

// Coordinator owns the effective mode, the connection status, and the
// background machinery that keeps them current. A single coordinator
// instance coordinates one process's view of one upstream backend; it is
// safe for concurrent use.
type Coordinator struct {
	mu sync.Mutex

	cfg      *Config
	registry *Registry
	prober   Prober

	current           Mode
	status            ConnectionStatus
	reconnectAttempts int
	startTime         time.Time
	initialized       bool
	destroyed         bool

	// probing guards against overlapping probes. Two in-flight probes
	// could race to overwrite the status record out of order.
	probing bool

	monitorCancel context.CancelFunc
	monitorDone   chan struct{}
	recoveryTimer *time.Timer

	handlersMu sync.RWMutex
	handlers   []EventHandler
}

// NewCoordinator creates a coordinator from an explicit configuration, a
// validated tool registry, and a backend prober. A nil prober is allowed
// and behaves as a permanently unreachable backend.
func NewCoordinator(cfg *Config, registry *Registry, prober Prober) (*Coordinator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mode configuration: %w", err)
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("tool registry: %w", err)
	}

	return &Coordinator{
		cfg:       cfg,
		registry:  registry,
		prober:    prober,
		current:   DocsOnly,
		startTime: time.Now(),
	}, nil
}

// AddEventHandler registers a handler for coordinator events. Handlers
// run synchronously outside the coordinator lock and should return
// quickly.
func (c *Coordinator) AddEventHandler(h EventHandler) {
	if h == nil {
		return
	}
	c.handlersMu.Lock()
	c.handlers = append(c.handlers, h)
	c.handlersMu.Unlock()
}

// Initialize resolves the effective mode. Resolution order, first match
// wins: a force override adopted verbatim with no probing; a probe for a
// connectivity-requiring preferred mode, adopting the preference on
// success and the fallback on failure; otherwise the preferred mode
// directly. The health monitor is started only when a live-requiring
// mode is adopted with a reachable backend (or forced).
func (c *Coordinator) Initialize(ctx context.Context) (Mode, error) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return "", fmt.Errorf("coordinator has been destroyed")
	}
	if c.initialized {
		m := c.current
		c.mu.Unlock()
		return m, nil
	}
	c.initialized = true
	forcedMode, isForced := c.cfg.forced()
	preferred := c.cfg.Preferred
	c.mu.Unlock()

	if isForced {
		log.Infof("mode override active, forcing %s", forcedMode)
		c.adopt(forcedMode)
		if forcedMode.RequiresConnection() {
			c.startMonitor()
		}
		return forcedMode, nil
	}

	if preferred.RequiresConnection() {
		status := c.probe(ctx)
		if status.Connected {
			effective := resolveEffective(preferred)
			c.adopt(effective)
			c.startMonitor()
			return effective, nil
		}

		c.mu.Lock()
		fallback := c.cfg.Fallback
		c.mu.Unlock()
		log.WithField("error", status.Error).Warnf("backend unreachable, falling back to %s", fallback)
		c.adopt(fallback)
		// No live connection to watch, so the monitor stays off.
		return fallback, nil
	}

	c.adopt(preferred)
	return preferred, nil
}

// CurrentMode returns the effective mode.
func (c *Coordinator) CurrentMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Status returns a copy of the latest connection status.
func (c *Coordinator) Status() ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.clone()
}

// IsCapabilityAvailable reports whether a tool can run given the current
// mode, connectivity, and the tool's classification.
func (c *Coordinator) IsCapabilityAvailable(name string) bool {
	cat := c.registry.Category(name)

	c.mu.Lock()
	current := c.current
	connected := c.status.Connected
	c.mu.Unlock()

	switch current {
	case DocsOnly:
		return cat == CategoryDocs
	case LiveOnly:
		return cat == CategoryLive && connected
	case Hybrid, SmartFallback:
		return cat == CategoryDocs || (cat == CategoryLive && connected)
	}
	return false
}

// OptimalModeForTool picks the execution path for a tool. Live-only tools
// have no fallback, so they route to none when disconnected. Docs tools
// always route to docs. Everything else is hybrid-eligible and degrades
// to docs when the backend is unreachable.
func (c *Coordinator) OptimalModeForTool(name string) Route {
	cat := c.registry.Category(name)

	c.mu.Lock()
	connected := c.status.Connected
	c.mu.Unlock()

	switch cat {
	case CategoryLive:
		if connected {
			return RouteLive
		}
		return RouteNone
	case CategoryDocs:
		return RouteDocs
	default:
		if connected {
			return RouteHybrid
		}
		return RouteDocs
	}
}

// SwitchMode performs a manual transition to target. A target that
// requires connectivity is probed first and the switch is rejected, with
// no state change, when the probe fails. A committed switch also updates
// the preferred mode: a manual switch redefines intent going forward.
func (c *Coordinator) SwitchMode(ctx context.Context, target Mode) bool {
	if !target.Valid() {
		log.Warnf("rejecting switch to unknown mode %q", target)
		return false
	}

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if target.RequiresConnection() {
		status := c.probe(ctx)
		if !status.Connected {
			log.WithField("error", status.Error).Warnf("cannot switch to %s: backend unreachable", target)
			return false
		}
	}

	effective := resolveEffective(target)

	c.mu.Lock()
	previous := c.current
	c.current = effective
	c.cfg.Preferred = target
	c.mu.Unlock()

	if previous != effective {
		c.emit(EventModeChanged, previous)
	}

	if effective.RequiresConnection() {
		c.startMonitor()
	} else {
		c.stopMonitor()
	}
	return true
}

// Stats returns a snapshot for the management surface. The reconnect
// attempt count is capped at the configured maximum for reporting; the
// monitor itself keeps scheduling attempts regardless.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	attempts := c.reconnectAttempts
	if c.cfg.MaxRetries > 0 && attempts > c.cfg.MaxRetries {
		attempts = c.cfg.MaxRetries
	}

	status := c.status.clone()
	return Stats{
		CurrentMode:       c.current,
		Uptime:            time.Since(c.startTime),
		Status:            status,
		ReconnectAttempts: attempts,
		Capabilities:      status.Capabilities,
	}
}

// Registry exposes the tool registry for read-only use by the API layer.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Destroy tears the coordinator down: it stops the health monitor and
// cancels any pending delayed recovery. It is idempotent and safe to
// call when nothing is running.
func (c *Coordinator) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	if c.recoveryTimer != nil {
		c.recoveryTimer.Stop()
		c.recoveryTimer = nil
	}
	c.mu.Unlock()

	c.stopMonitor()
}

// probe runs a single bounded health check and atomically replaces the
// status record. When a probe is already in flight the call returns the
// last known status instead of racing a second probe.
func (c *Coordinator) probe(ctx context.Context) ConnectionStatus {
	c.mu.Lock()
	if c.probing {
		st := c.status.clone()
		c.mu.Unlock()
		return st
	}
	c.probing = true
	timeout := c.cfg.ConnectTimeout
	prober := c.prober
	c.mu.Unlock()

	next := ConnectionStatus{LastTested: time.Now()}

	if prober == nil {
		next.Error = ErrNotConfigured.Error()
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := prober.Probe(probeCtx)
		cancel()

		next.LastTested = time.Now()
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			next.Error = fmt.Sprintf("probe timed out after %s", timeout)
		case err != nil:
			next.Error = err.Error()
		case result == nil:
			next.Error = "probe returned no result"
		default:
			next.Connected = result.Connected
			next.ResponseTime = result.ResponseTime
			next.Error = result.Error
			if len(result.Capabilities) > 0 {
				next.Capabilities = make([]string, len(result.Capabilities))
				copy(next.Capabilities, result.Capabilities)
			}
		}
	}

	c.mu.Lock()
	// LastTested only moves forward; a stale probe never rewinds it.
	if !next.LastTested.Before(c.status.LastTested) {
		c.status = next
	}
	c.probing = false
	st := c.status.clone()
	c.mu.Unlock()
	return st
}

// adopt commits a new effective mode and emits a change event.
func (c *Coordinator) adopt(m Mode) {
	c.mu.Lock()
	previous := c.current
	c.current = m
	c.mu.Unlock()

	if previous != m {
		c.emit(EventModeChanged, previous)
	}
}

// emit delivers an event to all handlers outside the coordinator lock.
func (c *Coordinator) emit(t EventType, previous Mode) {
	c.mu.Lock()
	status := c.status.clone()
	current := c.current
	c.mu.Unlock()

	event := &Event{
		Type:         t,
		Timestamp:    time.Now(),
		Mode:         current,
		PreviousMode: previous,
		Status:       &status,
	}

	c.handlersMu.RLock()
	handlers := make([]EventHandler, len(c.handlers))
	copy(handlers, c.handlers)
	c.handlersMu.RUnlock()

	for _, h := range handlers {
		if err := h.HandleEvent(event); err != nil {
			log.Debugf("mode event handler failed: %v", err)
		}
	}
}

// resolveEffective maps the SmartFallback preference to its effective
// behavior once connectivity is confirmed.
func resolveEffective(m Mode) Mode {
	if m == SmartFallback {
		return Hybrid
	}
	return m
}
