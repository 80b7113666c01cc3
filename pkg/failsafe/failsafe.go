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

package failsafe

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	// DefaultCriticalVoltage is the pack voltage below which the machine
	// enters the critical state. Tuned for a 6S pack (3.5V per cell).
	DefaultCriticalVoltage = 21.0

	// RecoveryMargin is added to the critical threshold to form the
	// recovery level. The gap prevents alert flapping when the voltage
	// oscillates around the threshold under load.
	RecoveryMargin = 0.5
)

// Alert vocabulary carried on the alert wire payload.
const (
	AlertTypeCritical      = "CRITICAL_ALERT"
	PriorityHigh           = "HIGH"
	ActionImmediateLanding = "IMMEDIATE_LANDING_RECOMMENDED"
)

// State is the alarm state of the battery failsafe machine.
type State int32

const (
	// StateNormal means the battery voltage is above the critical band.
	StateNormal State = iota
	// StateCritical means the voltage dropped below the critical
	// threshold and has not yet recovered past the recovery level.
	StateCritical
)

// String returns the uppercase wire name of the state.
func (s State) String() string {
	switch s {
	case StateCritical:
		return "CRITICAL"
	default:
		return "NORMAL"
	}
}

// Alert describes a single Normal-to-Critical transition. Exactly one
// Alert is produced per transition; remaining in the critical state does
// not produce more.
type Alert struct {
	Priority       string
	Message        string
	ThresholdVolts float64
	CurrentVolts   float64
	EmittedAt      time.Time
	ActionRequired string
}

// AlertPayload is the outbound wire representation of an Alert.
type AlertPayload struct {
	Type           string  `json:"type"`
	Priority       string  `json:"priority"`
	Message        string  `json:"message"`
	Threshold      float64 `json:"threshold"`
	CurrentVoltage float64 `json:"current_voltage"`
	Timestamp      string  `json:"timestamp"`
	ActionRequired string  `json:"action_required"`
}

// Wire returns the outbound payload for a. The timestamp is RFC 3339 UTC.
func (a Alert) Wire() AlertPayload {
	return AlertPayload{
		Type:           AlertTypeCritical,
		Priority:       a.Priority,
		Message:        a.Message,
		Threshold:      a.ThresholdVolts,
		CurrentVoltage: a.CurrentVolts,
		Timestamp:      a.EmittedAt.UTC().Format(time.RFC3339Nano),
		ActionRequired: a.ActionRequired,
	}
}

// Machine is the battery failsafe state machine.
//
// Evaluate must be called from a single goroutine (the ingest loop).
// State and LastAlert are safe to call concurrently from other
// goroutines, such as HTTP handlers.
type Machine struct {
	threshold float64
	state     atomic.Int32
	lastAlert atomic.Pointer[Alert]
}

// NewMachine creates a Machine in StateNormal. A non-positive threshold
// falls back to DefaultCriticalVoltage.
func NewMachine(threshold float64) *Machine {
	if threshold <= 0 {
		threshold = DefaultCriticalVoltage
	}
	return &Machine{threshold: threshold}
}

// Threshold returns the critical voltage level.
func (m *Machine) Threshold() float64 {
	return m.threshold
}

// RecoveryVoltage returns the level the voltage must reach to leave the
// critical state.
func (m *Machine) RecoveryVoltage() float64 {
	return m.threshold + RecoveryMargin
}

// State returns the current alarm state.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// LastAlert returns the most recently raised alert, or nil if the machine
// has never entered the critical state.
func (m *Machine) LastAlert() *Alert {
	return m.lastAlert.Load()
}

// Evaluate feeds one voltage reading through the hysteresis band and
// returns the resulting state. The returned Alert is non-nil only on the
// Normal-to-Critical transition.
//
// The band is asymmetric on purpose: entry is strict (voltage below
// threshold), exit requires the full recovery level. Readings inside the
// band leave the state unchanged.
func (m *Machine) Evaluate(voltage float64, at time.Time) (State, *Alert) {
	current := State(m.state.Load())

	switch current {
	case StateNormal:
		if voltage < m.threshold {
			m.state.Store(int32(StateCritical))
			alert := &Alert{
				Priority:       PriorityHigh,
				Message:        fmt.Sprintf("Battery voltage critical: %vV", voltage),
				ThresholdVolts: m.threshold,
				CurrentVolts:   voltage,
				EmittedAt:      at,
				ActionRequired: ActionImmediateLanding,
			}
			m.lastAlert.Store(alert)
			criticalState.Set(1)
			alertsTotal.Inc()
			return StateCritical, alert
		}

	case StateCritical:
		if voltage >= m.threshold+RecoveryMargin {
			m.state.Store(int32(StateNormal))
			criticalState.Set(0)
			recoveriesTotal.Inc()
			return StateNormal, nil
		}
	}

	return current, nil
}
