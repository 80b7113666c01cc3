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

// Package hub distributes live telemetry to WebSocket subscribers.
//
// Each subscriber gets a bounded outbound queue and a pair of pump
// goroutines. The producer never blocks on a slow peer: when a queue
// fills, that subscriber is detached and its connection closed. New
// subscribers can be warmed up with the most recent sample so a
// dashboard joining mid-flight renders immediately.
package hub
