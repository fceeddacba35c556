// Copyright 2026 The mcp-drupal-server Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/Vincy69/mcp-drupal-server-sub001/internal/mode"
)

const eventWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventBroker fans coordinator events out to websocket subscribers. It
// implements mode.EventHandler; slow subscribers drop events rather
// than blocking the coordinator's emit path.
type eventBroker struct {
	mu     sync.Mutex
	subs   map[chan *mode.Event]struct{}
	closed bool
}

func newEventBroker() *eventBroker {
	return &eventBroker{subs: make(map[chan *mode.Event]struct{})}
}

// HandleEvent implements mode.EventHandler.
func (b *eventBroker) HandleEvent(event *mode.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *eventBroker) subscribe() chan *mode.Event {
	ch := make(chan *mode.Event, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *eventBroker) unsubscribe(ch chan *mode.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *eventBroker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// handleModeEvents upgrades the connection and streams coordinator
// events until the client disconnects or the server shuts down.
// GET /v0/mode/events
func (s *Server) handleModeEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debugf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	// Reader goroutine notices client disconnects; incoming frames are
	// otherwise discarded.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-ch:
			if !ok {
				deadline := time.Now().Add(eventWriteTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					deadline)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
