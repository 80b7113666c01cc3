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

// Package defaults provides centralized configuration constants for mavmon.
//
// This package defines timeout values and retry parameters used across the
// codebase. Centralizing these values ensures consistency and makes tuning
// easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Ingest timeouts: For the UDP telemetry receive loop
//   - Broker timeouts: For MQTT connect, publish, and disconnect
//   - Stream timeouts: For websocket subscriber handling
//   - Server timeouts: For HTTP server configuration
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/groundctl/mavmon/pkg/defaults"
//
//	conn.SetReadDeadline(time.Now().Add(defaults.IngestReceiveTimeout))
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Receive path: 5s read deadline, 1s backoff on transient errors
//   - Broker: 10s connect at startup, 5s per-publish token wait
//   - Stream peers: pings every 54s, peer dropped after 60s without pong
//   - Server shutdown: 30s for graceful shutdown
package defaults
