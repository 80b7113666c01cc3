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

// Package monitor wires the telemetry pipeline into a runnable daemon.
//
// This package is the composition layer: it owns configuration loading,
// logging setup, systemd notification, and the lifecycle of every
// component. The components themselves live in their own packages and
// know nothing about each other beyond the interfaces they accept:
//
//	UDP listener -> ingest loop -> snapshot store
//	                            -> failsafe machine
//	                            -> fanout -> MQTT broker
//	                                      -> stream hub -> WebSocket peers
//	HTTP server reads the store, the machine, and the hub.
//
// # Lifecycle
//
// Run acquires resources in dependency order (hub, broker, listener,
// HTTP server), runs the pipeline under an errgroup, and releases in
// reverse order on the way out. Broker or listener setup failures are
// fatal; a running daemon survives malformed payloads, idle links, and
// broker outages.
//
// # Configuration
//
// Precedence, lowest to highest: built-in defaults, config file
// (--config, YAML or JSON), MAVMON_* environment variables, explicit
// command line flags. The effective configuration can be inspected
// with --dump-config.
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/groundctl/mavmon/pkg/monitor.version=1.0.0'"
package monitor
