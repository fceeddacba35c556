// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mode

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// startMonitor launches the background health loop. It is a no-op when
// the monitor is already running or the coordinator was destroyed.
func (c *Coordinator) startMonitor() {
	c.mu.Lock()
	if c.destroyed || c.monitorCancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.monitorCancel = cancel
	c.monitorDone = done
	interval := c.cfg.HealthCheckInterval
	c.mu.Unlock()

	go c.monitorLoop(ctx, interval, done)
	c.emit(EventMonitorStarted, "")
}

// stopMonitor cancels the health loop and waits for it to exit.
func (c *Coordinator) stopMonitor() {
	c.mu.Lock()
	if c.monitorCancel == nil {
		c.mu.Unlock()
		return
	}
	c.monitorCancel()
	done := c.monitorDone
	c.monitorCancel = nil
	c.monitorDone = nil
	c.mu.Unlock()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("health monitor stop timed out waiting for loop")
	}
	c.emit(EventMonitorStopped, "")
}

// monitorLoop re-probes the backend on a fixed interval until cancelled.
func (c *Coordinator) monitorLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.healthCheck(ctx)
		}
	}
}

// healthCheck runs one probe cycle. The reaction is edge-triggered: only
// the transition from connected to disconnected acts; steady-state
// failure repetition does not re-fire.
func (c *Coordinator) healthCheck(ctx context.Context) {
	c.mu.Lock()
	wasConnected := c.status.Connected
	current := c.current
	c.mu.Unlock()

	status := c.probe(ctx)

	if !wasConnected || status.Connected {
		return
	}

	c.emit(EventConnectivityLost, "")

	if current == LiveOnly {
		// LiveOnly has no docs fallback: capabilities are gone until the
		// backend returns. The mode itself does not change.
		log.WithField("error", status.Error).Warn("connectivity lost in live_only mode, service degraded")
	} else {
		log.WithField("error", status.Error).Info("connectivity lost, live tools degrade to docs")
	}

	c.scheduleRecovery()
}

// scheduleRecovery arms a single delayed recovery attempt instead of
// reconnecting inline, so a backend that just failed gets a breather.
// A previously armed timer is replaced.
func (c *Coordinator) scheduleRecovery() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || !c.cfg.AutoRecovery {
		return
	}
	if c.recoveryTimer != nil {
		c.recoveryTimer.Stop()
	}
	delay := c.cfg.RecoveryDelay
	c.recoveryTimer = time.AfterFunc(delay, func() {
		c.AttemptRecovery(context.Background())
	})
}
