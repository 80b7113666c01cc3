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

// Package fanout routes normalized telemetry to its delivery sinks.
//
// Samples go to the MQTT telemetry topic fire-and-forget and to the
// WebSocket stream through a bounded bridge queue, so subscriber I/O
// latency can never stall the ingress loop. Alerts go to the MQTT
// alert topic with QoS 2, retention, and a bounded acknowledgement
// wait. Each payload is marshaled exactly once.
package fanout
