// Copyright (c) 2026, GroundCtl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/groundctl/mavmon/pkg/defaults"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
)

const (
	// DefaultSendBuffer is the per-subscriber outbound queue depth. At
	// 10 Hz it absorbs roughly ten seconds of stalled delivery before
	// the subscriber is considered dead.
	DefaultSendBuffer = 100

	// maxInboundBytes caps inbound frames. The stream is one-way;
	// anything larger than a control frame is abuse.
	maxInboundBytes = 512
)

// Option configures a Hub.
type Option func(*Hub)

// WithWarmup sets the callback that supplies the most recent telemetry
// payload. When set, every new subscriber receives it before any live
// update so late joiners do not start with an empty display.
func WithWarmup(fn func() ([]byte, bool)) Option {
	return func(h *Hub) {
		h.warmup = fn
	}
}

// WithSendBuffer overrides the per-subscriber queue depth. Values
// below one fall back to the default.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuf = n
		}
	}
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	dead chan struct{}
	once sync.Once
}

// Hub fans pre-marshaled telemetry payloads out to WebSocket
// subscribers. Payloads are marshaled once by the producer and written
// verbatim to every connection.
//
// A subscriber that stops draining its queue is detached rather than
// allowed to stall the pipeline.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber

	warmup   func() ([]byte, bool)
	sendBuf  int
	upgrader websocket.Upgrader

	done    chan struct{}
	closing sync.Once
	wg      sync.WaitGroup
}

// New creates an empty hub ready to accept subscribers.
func New(opts ...Option) *Hub {
	h := &Hub{
		subs:    make(map[string]*subscriber),
		sendBuf: DefaultSendBuffer,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Dashboards are served from arbitrary origins on the ground
		// station network.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return h
}

// Attach upgrades the request to a WebSocket connection and registers
// it as a subscriber. It returns once the connection pumps are running;
// delivery continues in the background until the peer disconnects,
// falls behind, or the hub closes.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request) error {
	select {
	case <-h.done:
		return apperrors.New(apperrors.ErrCodeUnavailable, "stream hub is shut down")
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return apperrors.Wrap(apperrors.ErrCodeTransportFailure, "websocket upgrade failed", err)
	}

	s := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuf),
		dead: make(chan struct{}),
	}

	// Late joiners get the most recent sample before live updates.
	if h.warmup != nil {
		if payload, ok := h.warmup(); ok {
			s.send <- payload
		}
	}

	// Registration and the shutdown check share the lock so a subscriber
	// cannot slip in between Close's snapshot and its wait.
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		// Shutdown won the race after the upgrade. The response is
		// hijacked at this point, so tell the peer over the socket.
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(defaults.StreamWriteTimeout))
		_ = conn.Close()
		return nil
	default:
	}
	h.subs[s.id] = s
	h.wg.Add(2)
	h.mu.Unlock()
	subscriberCount.Inc()

	go h.writePump(s)
	go h.readPump(s)

	slog.Debug("stream subscriber attached", "subscriber_id", s.id, "remote", r.RemoteAddr)
	return nil
}

// Broadcast queues payload for every subscriber. Subscribers whose
// queue is full are detached; the caller is never blocked.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.send <- payload:
		default:
			// A full queue means the peer stopped draining.
			dropsTotal.Inc()
			slog.Warn("detaching slow stream subscriber", "subscriber_id", s.id)
			h.detach(s)
		}
	}
}

// Count returns the number of attached subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close detaches all subscribers and waits for their pumps to exit.
// Attach calls made after Close are rejected.
func (h *Hub) Close() {
	h.closing.Do(func() {
		// Closing done under the lock serializes shutdown against
		// Attach's registration check.
		h.mu.Lock()
		close(h.done)
		subs := make([]*subscriber, 0, len(h.subs))
		for _, s := range h.subs {
			subs = append(subs, s)
		}
		h.mu.Unlock()

		for _, s := range subs {
			h.detach(s)
		}
		h.wg.Wait()
		slog.Info("stream hub closed", "detached", len(subs))
	})
}

// detach removes a subscriber and closes its connection. Safe to call
// multiple times for the same subscriber.
func (h *Hub) detach(s *subscriber) {
	h.mu.Lock()
	_, registered := h.subs[s.id]
	delete(h.subs, s.id)
	h.mu.Unlock()
	if registered {
		subscriberCount.Dec()
	}

	// The send queue is never closed: Broadcast may be queuing into it
	// concurrently. Detachment is signaled through dead instead.
	s.once.Do(func() {
		close(s.dead)
	})
	_ = s.conn.Close()
}

// writePump delivers queued payloads and keeps the connection alive
// with periodic pings. One per subscriber.
func (h *Hub) writePump(s *subscriber) {
	defer h.wg.Done()
	ticker := time.NewTicker(defaults.StreamPingPeriod)
	defer func() {
		ticker.Stop()
		h.detach(s)
	}()

	for {
		select {
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(defaults.StreamWriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			pushesTotal.Inc()
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(defaults.StreamWriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.dead:
			_ = s.conn.SetWriteDeadline(time.Now().Add(defaults.StreamWriteTimeout))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump drains inbound frames so pong handling works and peer
// disconnects are noticed. The stream carries no client data.
func (h *Hub) readPump(s *subscriber) {
	defer h.wg.Done()
	defer h.detach(s)

	s.conn.SetReadLimit(maxInboundBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(defaults.StreamPongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(defaults.StreamPongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
