// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mode

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// AttemptRecovery probes the backend once and, on success, moves the
// coordinator back toward the preferred mode. It reports whether the
// backend is reachable again. When auto-recovery is disabled the call is
// a no-op.
//
// MaxRetries caps only the reported attempt count: as long as
// auto-recovery stays enabled, failed attempts keep rescheduling.
func (c *Coordinator) AttemptRecovery(ctx context.Context) bool {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return false
	}
	if !c.cfg.AutoRecovery {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	status := c.probe(ctx)
	if !status.Connected {
		c.mu.Lock()
		c.reconnectAttempts++
		attempts := c.reconnectAttempts
		maxRetries := c.cfg.MaxRetries
		c.mu.Unlock()

		log.WithFields(log.Fields{
			"attempt": attempts,
			"max":     maxRetries,
			"error":   status.Error,
		}).Warn("recovery attempt failed")

		c.emit(EventRecoveryFailed, "")
		c.scheduleRecovery()
		return false
	}

	c.mu.Lock()
	c.reconnectAttempts = 0
	previous := c.current
	preferred := c.cfg.Preferred
	fallback := c.cfg.Fallback
	upgrade := previous == fallback && resolveEffective(preferred) != previous
	c.mu.Unlock()

	c.emit(EventConnectivityRestored, "")

	if upgrade {
		effective := resolveEffective(preferred)
		c.mu.Lock()
		c.current = effective
		c.mu.Unlock()
		log.Infof("backend recovered, upgrading mode %s -> %s", previous, effective)
		c.emit(EventModeChanged, previous)
	}

	c.startMonitor()
	return true
}
