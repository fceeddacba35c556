package mode

import (
	"context"
	"testing"
	"time"
)

func TestAttemptRecoveryDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AutoRecovery = false
	prober := NewMockProber()
	c := newTestCoordinator(t, cfg, prober)

	if got := c.AttemptRecovery(context.Background()); got {
		t.Error("recovery must be a no-op when auto-recovery is disabled")
	}
	if prober.ProbeCount() != 0 {
		t.Errorf("disabled recovery must not probe, got %d probes", prober.ProbeCount())
	}
}

func TestAttemptRecoveryUpgradesToPreferred(t *testing.T) {
	prober := NewMockProber()
	prober.SetConnected(false)
	c := newTestCoordinator(t, testConfig(), prober)

	// Preferred SmartFallback, backend down: init lands on the fallback.
	got, err := c.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got != DocsOnly {
		t.Fatalf("Initialize() = %s, want %s", got, DocsOnly)
	}

	// Fail once so there is an attempt count to reset.
	if c.AttemptRecovery(context.Background()) {
		t.Fatal("recovery should fail while backend is down")
	}

	prober.SetConnected(true)
	if !c.AttemptRecovery(context.Background()) {
		t.Fatal("recovery should succeed once backend is back")
	}

	if got := c.CurrentMode(); got != Hybrid {
		t.Errorf("CurrentMode() = %s, want preferred-effective %s", got, Hybrid)
	}
	if got := c.Stats().ReconnectAttempts; got != 0 {
		t.Errorf("reconnect attempts = %d, want 0 after success", got)
	}
}

func TestAttemptRecoveryNoUpgradeWhenModeIsNotFallback(t *testing.T) {
	prober := NewMockProber()
	c := newTestCoordinator(t, testConfig(), prober)

	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := c.CurrentMode(); got != Hybrid {
		t.Fatalf("precondition: mode = %s, want %s", got, Hybrid)
	}

	if !c.AttemptRecovery(context.Background()) {
		t.Fatal("recovery should succeed while connected")
	}
	if got := c.CurrentMode(); got != Hybrid {
		t.Errorf("mode changed to %s, want unchanged %s", got, Hybrid)
	}
}

func TestAttemptRecoveryIncrementsAttempts(t *testing.T) {
	cfg := testConfig()
	cfg.AutoRecovery = true
	// Long delay so the rescheduled timer does not fire mid-test.
	cfg.RecoveryDelay = time.Hour
	prober := NewMockProber()
	prober.SetConnected(false)
	c := newTestCoordinator(t, cfg, prober)

	for i := 1; i <= 2; i++ {
		if c.AttemptRecovery(context.Background()) {
			t.Fatal("recovery should fail while backend is down")
		}
		if got := c.Stats().ReconnectAttempts; got != i {
			t.Errorf("after %d failures: reported attempts = %d, want %d", i, got, i)
		}
	}
}

func TestMonitorSchedulesDelayedRecovery(t *testing.T) {
	cfg := testConfig()
	cfg.Preferred = Hybrid
	prober := NewMockProber()
	c := newTestCoordinator(t, cfg, prober)

	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	events := NewMemoryEventHandler(100)
	c.AddEventHandler(events)

	// Drop the backend and let the monitor notice the edge, wait out the
	// recovery delay, then restore the backend for the next attempt.
	prober.SetConnected(false)
	deadline := time.Now().Add(2 * time.Second)
	for len(events.EventsByType(EventConnectivityLost)) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("monitor never reported the connectivity loss")
		}
		time.Sleep(10 * time.Millisecond)
	}

	prober.SetConnected(true)
	deadline = time.Now().Add(2 * time.Second)
	for len(events.EventsByType(EventConnectivityRestored)) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("delayed recovery never reconnected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := c.CurrentMode(); got != Hybrid {
		t.Errorf("mode = %s, want %s after recovery", got, Hybrid)
	}
}

func TestHealthCheckEdgeTriggered(t *testing.T) {
	cfg := testConfig()
	cfg.Preferred = Hybrid
	cfg.AutoRecovery = false // keep the status pinned to disconnected
	prober := NewMockProber()
	c := newTestCoordinator(t, cfg, prober)

	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	c.stopMonitor() // drive checks by hand

	events := NewMemoryEventHandler(100)
	c.AddEventHandler(events)

	prober.SetConnected(false)
	c.healthCheck(context.Background())
	c.healthCheck(context.Background())
	c.healthCheck(context.Background())

	if got := len(events.EventsByType(EventConnectivityLost)); got != 1 {
		t.Errorf("connectivity_lost fired %d times, want 1 (edge-triggered)", got)
	}
}

func TestLiveOnlyLossKeepsMode(t *testing.T) {
	cfg := testConfig()
	cfg.Preferred = LiveOnly
	prober := NewMockProber()
	c := newTestCoordinator(t, cfg, prober)

	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := c.CurrentMode(); got != LiveOnly {
		t.Fatalf("precondition: mode = %s, want %s", got, LiveOnly)
	}
	c.stopMonitor()

	prober.SetConnected(false)
	c.healthCheck(context.Background())

	// LiveOnly is live-or-nothing: loss degrades availability but does
	// not change the declared mode.
	if got := c.CurrentMode(); got != LiveOnly {
		t.Errorf("mode = %s, want unchanged %s", got, LiveOnly)
	}
	if c.IsCapabilityAvailable("get_node") {
		t.Error("get_node should be unavailable after the loss")
	}
}
