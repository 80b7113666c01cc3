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

// Package broker wraps the eclipse paho MQTT client behind the small
// Publisher interface the telemetry pipeline depends on.
//
// The wrapper makes two delivery modes explicit through PublishOptions:
// fire-and-forget for the high-rate telemetry stream, and bounded-wait
// for alerts that must be acknowledged. Connectivity is observable via
// IsConnected, ConnectionListener callbacks, and Prometheus metrics.
package broker
