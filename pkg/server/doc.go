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

// Package server implements the HTTP status surface of the telemetry
// monitor daemon.
//
// # Architecture
//
// The server is a read-only view over the daemon's pipeline state. It
// holds no telemetry itself; every endpoint consults the sources wired
// in at construction:
//
//   - TelemetrySource for the latest accepted sample (snapshot store)
//   - AlarmSource for the battery failsafe state (failsafe machine)
//   - StreamAttacher for live subscriptions (websocket hub)
//
// Cross-cutting concerns follow the usual setup:
//
//   - Rate limiting using token bucket algorithm (golang.org/x/time/rate)
//   - Request ID tracking for correlating logs across a request
//   - Panic recovery for resilience
//   - Graceful shutdown handling
//   - Health and readiness probes for process supervisors
//
// # Usage
//
// The daemon wires the server against its pipeline components:
//
//	srv := server.New(server.NewConfig(), store, machine, streamHub,
//	    server.ReadyProbe{Name: "broker", Check: broker.IsConnected},
//	)
//
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// The server starts not ready. The daemon calls SetReady(true) once the
// whole pipeline is running, and Shutdown flips it back before draining.
//
// # API Endpoints
//
// GET /v1/telemetry - Latest accepted telemetry sample
//
//	Returns 200 with the sample, or 404 with code NO_TELEMETRY while
//	nothing has been received since startup.
//
// GET /v1/alarm - Battery failsafe state
//
//	Returns the current state (NORMAL or CRITICAL), the configured
//	critical voltage, the recovery margin, and the most recent alert
//	when one has fired.
//
// GET /v1/telemetry/stream - Live telemetry over WebSocket
//
//	Upgrades the connection and pushes every accepted sample as a JSON
//	text frame. Slow consumers are disconnected rather than allowed to
//	stall the pipeline. Returns 503 while the daemon is shutting down.
//
// GET /health - Health check (for liveness probe)
//
//	Always returns 200 OK with {"status": "healthy", "timestamp": "..."}
//
// GET /ready - Readiness check (for readiness probe)
//
//	Returns 200 OK when the pipeline and all registered dependency
//	probes are up, 503 otherwise.
//
// GET /metrics - Prometheus metrics
//
// # Observability
//
// Request ID Tracking:
//
//	All requests accept an optional X-Request-Id header (UUID format).
//	If not provided, the server generates one automatically.
//	The request ID is returned in the X-Request-Id response header
//	and included in all error responses for tracing.
//
// Rate Limiting:
//
//	Response headers indicate rate limit status:
//	  X-RateLimit-Limit: Total requests allowed per window
//	  X-RateLimit-Remaining: Requests remaining in current window
//	  X-RateLimit-Reset: Unix timestamp when window resets
//
//	When rate limited, returns 429 with Retry-After header. The stream
//	endpoint is exempt; a subscription is one request however long it
//	lives.
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "NO_TELEMETRY",
//	  "message": "No telemetry received yet",
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-05-01T12:00:00Z",
//	  "retryable": true
//	}
//
// Error codes:
//   - NO_TELEMETRY: No sample accepted since startup (404)
//   - METHOD_NOT_ALLOWED: Wrong HTTP method (405)
//   - RATE_LIMIT_EXCEEDED: Too many requests (429)
//   - SERVICE_UNAVAILABLE: Stream hub shut down (503)
//   - INTERNAL: Server error (500)
//
// # Deployment
//
// The daemon runs under systemd on the ground station:
//
//	[Unit]
//	Description=MAVLink telemetry monitor
//	After=network-online.target mosquitto.service
//
//	[Service]
//	Type=notify
//	ExecStart=/usr/local/bin/mavmond
//	Restart=on-failure
//	WatchdogSec=30
//
//	[Install]
//	WantedBy=multi-user.target
//
// Readiness is also exposed over HTTP for containerized deployments.
//
// # References
//
//   - Rate limiting: https://pkg.go.dev/golang.org/x/time/rate
//   - UUID generation: https://pkg.go.dev/github.com/google/uuid
//   - WebSocket transport: https://pkg.go.dev/github.com/gorilla/websocket
//   - HTTP best practices: https://datatracker.ietf.org/doc/html/rfc7807
package server
