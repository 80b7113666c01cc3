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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newStreamServer(t *testing.T, h *Hub) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Attach(w, r)
	}))
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Count() = %d, want %d", h.Count(), want)
}

func TestNew(t *testing.T) {
	h := New()
	defer h.Close()

	if h.subs == nil {
		t.Error("subscriber map not initialized")
	}
	if h.sendBuf != DefaultSendBuffer {
		t.Errorf("sendBuf = %d, want %d", h.sendBuf, DefaultSendBuffer)
	}
	if got := h.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestWithSendBuffer(t *testing.T) {
	if got := New(WithSendBuffer(5)).sendBuf; got != 5 {
		t.Errorf("sendBuf = %d, want 5", got)
	}
	if got := New(WithSendBuffer(0)).sendBuf; got != DefaultSendBuffer {
		t.Errorf("sendBuf = %d, want default %d", got, DefaultSendBuffer)
	}
}

func TestAttachDeliversBroadcast(t *testing.T) {
	h := New()
	defer h.Close()

	srv, url := newStreamServer(t, h)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	waitForCount(t, h, 1)

	payload := []byte(`{"altitude":100.5,"airspeed":15.2,"battery_voltage":24.8}`)
	h.Broadcast(payload)

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Errorf("message type = %d, want %d", kind, websocket.TextMessage)
	}
	if string(msg) != string(payload) {
		t.Errorf("payload = %s, want %s", msg, payload)
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := New()
	defer h.Close()

	srv, url := newStreamServer(t, h)
	defer srv.Close()

	const n = 3
	clients := make([]*websocket.Conn, 0, n)
	for i := 0; i < n; i++ {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d failed: %v", i, err)
		}
		defer client.Close()
		clients = append(clients, client)
	}

	waitForCount(t, h, n)

	payload := []byte(`{"battery_voltage":22.1}`)
	h.Broadcast(payload)

	for i, client := range clients {
		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := client.ReadMessage()
		if err != nil {
			t.Fatalf("client %d read failed: %v", i, err)
		}
		if string(msg) != string(payload) {
			t.Errorf("client %d payload = %s, want %s", i, msg, payload)
		}
	}
}

func TestWarmupDeliveredFirst(t *testing.T) {
	warmup := []byte(`{"altitude":99.0,"airspeed":14.8,"battery_voltage":25.0}`)
	h := New(WithWarmup(func() ([]byte, bool) {
		return warmup, true
	}))
	defer h.Close()

	srv, url := newStreamServer(t, h)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	// No Broadcast has happened; the warmup payload alone must arrive.
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(msg) != string(warmup) {
		t.Errorf("first payload = %s, want warmup %s", msg, warmup)
	}
}

func TestBroadcastDetachesSlowSubscriber(t *testing.T) {
	h := New()
	defer h.Close()

	server, _, cleanup := newConnPair(t)
	defer cleanup()

	// Register directly with a single-slot queue and no pumps so the
	// queue cannot drain.
	s := &subscriber{
		id:   "slow",
		conn: server,
		send: make(chan []byte, 1),
		dead: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()

	h.Broadcast([]byte(`{"n":1}`))
	h.Broadcast([]byte(`{"n":2}`))

	if got := h.Count(); got != 0 {
		t.Fatalf("Count() after overflow = %d, want 0", got)
	}
}

func TestPeerDisconnectDetaches(t *testing.T) {
	h := New()
	defer h.Close()

	srv, url := newStreamServer(t, h)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	waitForCount(t, h, 1)
	client.Close()
	waitForCount(t, h, 0)
}

func TestCloseDetachesSubscribers(t *testing.T) {
	h := New()

	srv, url := newStreamServer(t, h)
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	waitForCount(t, h, 1)
	h.Close()

	if got := h.Count(); got != 0 {
		t.Errorf("Count() after Close = %d, want 0", got)
	}

	// The peer observes the shutdown.
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := client.ReadMessage(); err == nil {
		t.Error("expected read error after hub close")
	}

	// New subscriptions are rejected.
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Error("expected dial to fail after hub close")
	}
}

// newConnPair returns both ends of a live WebSocket connection without
// registering either with a hub.
func newConnPair(t *testing.T) (server, client *websocket.Conn, cleanup func()) {
	t.Helper()

	up := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- c
	}))

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial failed: %v", err)
	}
	server = <-serverConns

	return server, client, func() {
		client.Close()
		server.Close()
		srv.Close()
	}
}
