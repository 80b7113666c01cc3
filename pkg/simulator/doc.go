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

// Package simulator generates a synthetic MAVLink-style telemetry
// stream for exercising the monitor without a vehicle.
//
// The Engine models a simple flight: altitude and airspeed oscillate
// slowly around a nominal profile with uniform noise on every reading,
// while the battery drains linearly toward a hard floor. Readings
// convert to the same JSON frames the monitor's ingest path consumes,
// plus a timestamp and message_type for anyone watching the raw
// datagrams.
//
// Run paces frames over an unconnected UDP socket with a token bucket,
// prints a live status line, and announces the first reading below the
// critical threshold. A fixed seed reproduces a run exactly.
//
// # Usage
//
//	cfg := simulator.NewConfig()
//	cfg.FastDrain = true
//	cfg.Duration = 2 * time.Minute
//	if err := simulator.Run(ctx, cfg); err != nil {
//		log.Fatal(err)
//	}
//
// The mavsim binary wraps this package; see Command for its flags.
package simulator
