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

// Package ingest receives raw telemetry over UDP and drives the
// processing pipeline.
//
// A Listener owns the socket and applies a per-receive deadline so the
// loop stays responsive on an idle link. The Loop is the single
// consumer: it normalizes each payload, replaces the snapshot,
// evaluates the battery failsafe, and hands the results to the
// delivery sinks, strictly in arrival order. Malformed payloads are
// discarded without touching monitor state; transport failures back
// off briefly before the next attempt.
package ingest
