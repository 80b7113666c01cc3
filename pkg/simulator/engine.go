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

package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/groundctl/mavmon/pkg/failsafe"
)

const (
	// DefaultRate is the emit frequency in Hz.
	DefaultRate = 10.0
	// DefaultInitialVoltage is a fully charged 6S pack (4.2V per cell).
	DefaultInitialVoltage = 25.2
	// DefaultDrainRate drains the pack in volts per second.
	DefaultDrainRate = 0.01
	// FastDrainRate is the accelerated drain used to trigger the
	// failsafe within seconds instead of minutes.
	FastDrainRate = 0.1
	// VoltageFloor is the lowest true pack voltage the engine produces.
	// Reported values can read slightly below it because of noise.
	VoltageFloor = 18.0
	// WarningVoltage is the advisory band above the critical threshold.
	WarningVoltage = 22.0
)

// Nominal flight profile. Altitude and airspeed oscillate slowly around
// their base values with uniform noise on every reading.
const (
	baseAltitude  = 100.0
	altitudeSwing = 5.0
	altitudeOmega = 0.1 // rad/s
	altitudeNoise = 1.0

	baseAirspeed  = 15.0
	airspeedSwing = 2.0
	airspeedOmega = 0.2 // rad/s
	airspeedNoise = 0.5

	voltageNoise = 0.05
)

// MessageTypeTelemetry tags outbound frames.
const MessageTypeTelemetry = "TELEMETRY"

// Status classifies a reported battery voltage.
type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// StatusFor returns the status band for voltage. The critical boundary
// matches the monitor's default failsafe threshold.
func StatusFor(voltage float64) Status {
	switch {
	case voltage < failsafe.DefaultCriticalVoltage:
		return StatusCritical
	case voltage < WarningVoltage:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Reading is one generated telemetry sample. Values are rounded to two
// decimals like a real autopilot report.
type Reading struct {
	Altitude       float64
	Airspeed       float64
	BatteryVoltage float64
}

// Frame is the wire form of a Reading. The monitor consumes only the
// numeric fields; timestamp and message_type ride along for operators
// watching the raw stream.
type Frame struct {
	Altitude       float64 `json:"altitude"`
	Airspeed       float64 `json:"airspeed"`
	BatteryVoltage float64 `json:"battery_voltage"`
	Timestamp      string  `json:"timestamp"`
	MessageType    string  `json:"message_type"`
}

// Frame converts r to its wire form with the given capture time.
func (r Reading) Frame(at time.Time) Frame {
	return Frame{
		Altitude:       r.Altitude,
		Airspeed:       r.Airspeed,
		BatteryVoltage: r.BatteryVoltage,
		Timestamp:      at.UTC().Format(time.RFC3339Nano),
		MessageType:    MessageTypeTelemetry,
	}
}

// Engine produces the synthetic telemetry sequence. Altitude and
// airspeed follow sine oscillations; the battery drains linearly and
// never falls below the floor. A fixed seed reproduces the exact same
// sequence, which the tests rely on.
//
// Engine is not safe for concurrent use; each run loop owns one.
type Engine struct {
	elapsed   float64
	voltage   float64
	drainRate float64
	step      float64
	rng       *rand.Rand
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInitialVoltage sets the starting pack voltage.
func WithInitialVoltage(v float64) EngineOption {
	return func(e *Engine) {
		e.voltage = v
	}
}

// WithDrainRate sets the battery drain in volts per second.
func WithDrainRate(perSecond float64) EngineOption {
	return func(e *Engine) {
		e.drainRate = perSecond
	}
}

// WithEmitRate sets the frequency in Hz the engine is stepped at. Drain
// and phase advance per step scale with it so the profile is the same
// in wall time regardless of rate.
func WithEmitRate(hz float64) EngineOption {
	return func(e *Engine) {
		if hz > 0 {
			e.step = 1.0 / hz
		}
	}
}

// WithSeed makes the noise sequence reproducible.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// NewEngine creates an Engine. Without options it models the nominal
// profile: full pack, slow drain, 10 Hz stepping, clock-seeded noise.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		voltage:   DefaultInitialVoltage,
		drainRate: DefaultDrainRate,
		step:      1.0 / DefaultRate,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Next advances the simulation one step and returns the reading. The
// floor applies to the true voltage before reporting noise, so readings
// can dip just under it.
func (e *Engine) Next() Reading {
	altitude := baseAltitude + math.Sin(e.elapsed*altitudeOmega)*altitudeSwing + e.uniform(altitudeNoise)
	airspeed := baseAirspeed + math.Sin(e.elapsed*airspeedOmega)*airspeedSwing + e.uniform(airspeedNoise)

	e.voltage = math.Max(VoltageFloor, e.voltage-e.drainRate*e.step)
	e.elapsed += e.step

	return Reading{
		Altitude:       round2(math.Max(0, altitude)),
		Airspeed:       round2(math.Max(0, airspeed)),
		BatteryVoltage: round2(e.voltage + e.uniform(voltageNoise)),
	}
}

// uniform returns a value in [-bound, bound).
func (e *Engine) uniform(bound float64) float64 {
	return (e.rng.Float64()*2 - 1) * bound
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
