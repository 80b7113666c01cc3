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

package defaults

import "time"

// Ingest timeouts for the telemetry receive path.
const (
	// IngestReceiveTimeout bounds a single blocking read on the telemetry
	// socket so the loop can observe cancellation and report idle links.
	IngestReceiveTimeout = 5 * time.Second

	// IngestErrorBackoff is the pause after an unexpected receive-loop
	// error before the next read attempt.
	IngestErrorBackoff = 1 * time.Second
)

// Broker timeouts for MQTT operations.
const (
	// BrokerConnectTimeout is the maximum wait for the initial broker
	// connection during startup.
	BrokerConnectTimeout = 10 * time.Second

	// BrokerPublishTimeout bounds the token wait for a single publish.
	// Should be shorter than BrokerConnectTimeout so a dead broker is
	// reported per message rather than stalling the pipeline.
	BrokerPublishTimeout = 5 * time.Second

	// BrokerKeepAlive is the MQTT keep-alive interval.
	BrokerKeepAlive = 60 * time.Second

	// BrokerDisconnectQuiesce is the grace period for in-flight messages
	// when disconnecting.
	BrokerDisconnectQuiesce = 250 * time.Millisecond
)

// Stream timeouts for websocket subscriber handling.
const (
	// StreamWriteTimeout bounds a single frame write to a subscriber.
	StreamWriteTimeout = 10 * time.Second

	// StreamPongWait is how long to wait for a pong before a peer is
	// considered dead.
	StreamPongWait = 60 * time.Second

	// StreamPingPeriod is the interval between pings to stream peers.
	// Must be less than StreamPongWait.
	StreamPingPeriod = 54 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// Does not apply to hijacked stream connections.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
