// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mode

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType identifies a coordinator lifecycle event.
type EventType string

const (
	// EventModeChanged indicates the effective mode changed.
	EventModeChanged EventType = "mode_changed"

	// EventConnectivityLost indicates a connected-to-disconnected edge.
	EventConnectivityLost EventType = "connectivity_lost"

	// EventConnectivityRestored indicates a disconnected-to-connected edge.
	EventConnectivityRestored EventType = "connectivity_restored"

	// EventRecoveryFailed indicates a recovery attempt did not reconnect.
	EventRecoveryFailed EventType = "recovery_failed"

	// EventMonitorStarted indicates the health monitor began running.
	EventMonitorStarted EventType = "monitor_started"

	// EventMonitorStopped indicates the health monitor stopped.
	EventMonitorStopped EventType = "monitor_stopped"
)

// Event describes a coordinator state change.
type Event struct {
	// Type is the event type.
	Type EventType `json:"type"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Mode is the effective mode at the time of the event.
	Mode Mode `json:"mode"`

	// PreviousMode is set for mode change events.
	PreviousMode Mode `json:"previous_mode,omitempty"`

	// Status is a copy of the connection status at the time of the event.
	Status *ConnectionStatus `json:"status,omitempty"`

	// Data carries event-specific details.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventHandler processes coordinator events. Handlers are invoked outside
// the coordinator lock and must not call back into mutating coordinator
// methods synchronously.
type EventHandler interface {
	HandleEvent(event *Event) error
}

// LogEventHandler writes coordinator events to the application log.
type LogEventHandler struct{}

// HandleEvent logs the event at a level matching its severity.
func (h *LogEventHandler) HandleEvent(event *Event) error {
	fields := log.Fields{"mode": event.Mode}
	if event.Status != nil && event.Status.Error != "" {
		fields["error"] = event.Status.Error
	}
	switch event.Type {
	case EventConnectivityLost, EventRecoveryFailed:
		log.WithFields(fields).Warnf("mode coordinator: %s", event.Type)
	default:
		log.WithFields(fields).Infof("mode coordinator: %s", event.Type)
	}
	return nil
}

// MemoryEventHandler retains recent events in memory, primarily for the
// management API and tests.
type MemoryEventHandler struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewMemoryEventHandler creates a handler keeping at most limit events.
func NewMemoryEventHandler(limit int) *MemoryEventHandler {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryEventHandler{limit: limit}
}

// HandleEvent appends the event, discarding the oldest beyond the limit.
func (h *MemoryEventHandler) HandleEvent(event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, *event)
	if len(h.events) > h.limit {
		h.events = h.events[len(h.events)-h.limit:]
	}
	return nil
}

// Events returns a copy of the retained events.
func (h *MemoryEventHandler) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// EventsByType returns retained events of one type.
func (h *MemoryEventHandler) EventsByType(t EventType) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []Event
	for _, e := range h.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
