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

package ingest

import (
	"net"
	"strconv"
	"time"

	"github.com/groundctl/mavmon/pkg/defaults"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
)

const (
	// DefaultHost is the loopback bind address used when none is
	// configured. Telemetry arrives from a local MAVLink bridge.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the conventional MAVLink ground-station port.
	DefaultPort = 14550

	// maxDatagramSize bounds a single receive. Telemetry payloads are
	// around a hundred bytes; this is the UDP maximum.
	maxDatagramSize = 65535
)

// errIdle is returned by Receive when no datagram arrived within the
// receive window. It marks liveness polling, not a fault.
var errIdle = apperrors.New(apperrors.ErrCodeTimeout, "no datagram within receive window")

// Listener owns the UDP socket telemetry arrives on. Receive applies a
// per-call deadline so the single consumer regains control on an idle
// link and can observe a stop request.
type Listener struct {
	conn    *net.UDPConn
	timeout time.Duration
	buf     []byte
}

// Listen binds the UDP socket. An empty host falls back to loopback
// and a non-positive timeout to the default receive window; port zero
// lets the OS assign one. Bind failure is a setup failure; the daemon
// cannot run without its ingress socket.
func Listen(host string, port int, timeout time.Duration) (*Listener, error) {
	if host == "" {
		host = DefaultHost
	}
	if timeout <= 0 {
		timeout = defaults.IngestReceiveTimeout
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
			"failed to resolve udp bind address", err,
			map[string]any{"host": host, "port": port})
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
			"failed to bind udp socket", err,
			map[string]any{"host": host, "port": port})
	}

	return &Listener{
		conn:    conn,
		timeout: timeout,
		buf:     make([]byte, maxDatagramSize),
	}, nil
}

// Addr returns the bound socket address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Receive blocks for the next datagram, up to the receive window. An
// idle window returns a TIMEOUT error; other failures are reported as
// TRANSPORT_FAILURE. The returned slice is owned by the caller.
//
// Receive is not safe for concurrent use; the ingress loop is the
// single consumer.
func (l *Listener) Receive() ([]byte, error) {
	if err := l.conn.SetReadDeadline(time.Now().Add(l.timeout)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeTransportFailure,
			"failed to arm receive deadline", err)
	}

	n, _, err := l.conn.ReadFromUDP(l.buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, errIdle
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeTransportFailure,
			"udp receive failed", err)
	}

	payload := make([]byte, n)
	copy(payload, l.buf[:n])
	return payload, nil
}

// Close releases the socket. Any blocked Receive fails afterward.
func (l *Listener) Close() error {
	return l.conn.Close()
}
