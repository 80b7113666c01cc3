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

package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/groundctl/mavmon/pkg/errors"
)

// Inbound field names recognized by the normalizer. Unknown keys in the
// payload are ignored.
const (
	fieldAltitude       = "altitude"
	fieldAirspeed       = "airspeed"
	fieldBatteryVoltage = "battery_voltage"
)

// Sample is one normalized telemetry reading. Values are never mutated
// after construction; treat it as immutable.
type Sample struct {
	// Altitude in meters above home.
	Altitude float64
	// Airspeed in meters per second.
	Airspeed float64
	// BatteryVoltage is the total pack voltage in volts.
	BatteryVoltage float64
	// CapturedAt is when the sample was accepted, not when the vehicle
	// produced it. The inbound format carries no timestamp.
	CapturedAt time.Time
}

// Payload is the outbound wire representation of a Sample.
type Payload struct {
	Altitude       float64 `json:"altitude"`
	Airspeed       float64 `json:"airspeed"`
	BatteryVoltage float64 `json:"battery_voltage"`
	Timestamp      string  `json:"timestamp"`
}

// Wire returns the outbound payload for s. The timestamp is RFC 3339 in
// UTC with nanosecond precision so samples arriving within the same
// second remain distinguishable.
func (s Sample) Wire() Payload {
	return Payload{
		Altitude:       s.Altitude,
		Airspeed:       s.Airspeed,
		BatteryVoltage: s.BatteryVoltage,
		Timestamp:      s.CapturedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the timestamp source for accepted samples.
// Primarily useful in tests.
func WithClock(clock func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = clock
	}
}

// Normalizer converts raw inbound datagrams into Samples.
//
// A payload must be a JSON object. The fields altitude, airspeed, and
// battery_voltage are extracted when present; a missing field yields 0.0
// rather than an error, matching the behavior of telemetry sources that
// omit channels they cannot measure. Values must be JSON numbers or
// numeric strings; anything else fails normalization with
// ErrCodeMalformedInput.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer with the provided options.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize decodes raw into a Sample. On any decode or coercion failure
// it returns a MALFORMED_INPUT error and the Sample is unusable; the
// caller drops the message and continues. Normalize never panics on
// arbitrary input.
func (n *Normalizer) Normalize(raw []byte) (Sample, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Sample{}, apperrors.Wrap(apperrors.ErrCodeMalformedInput,
			"telemetry payload is not a JSON object", err)
	}
	// json "null" unmarshals into a nil map without error.
	if fields == nil {
		return Sample{}, apperrors.New(apperrors.ErrCodeMalformedInput,
			"telemetry payload is null")
	}

	s := Sample{CapturedAt: n.now()}

	var err error
	if s.Altitude, err = numericField(fields, fieldAltitude); err != nil {
		return Sample{}, err
	}
	if s.Airspeed, err = numericField(fields, fieldAirspeed); err != nil {
		return Sample{}, err
	}
	if s.BatteryVoltage, err = numericField(fields, fieldBatteryVoltage); err != nil {
		return Sample{}, err
	}

	return s, nil
}

// numericField extracts key from fields, coercing to float64.
// A missing key is not an error and yields zero.
func numericField(fields map[string]any, key string) (float64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, nil
	}

	f, err := coerceFloat(v)
	if err != nil {
		return 0, apperrors.WrapWithContext(apperrors.ErrCodeMalformedInput,
			fmt.Sprintf("field %s is not numeric", key), err,
			map[string]any{"field": key})
	}
	return f, nil
}

// coerceFloat accepts JSON numbers and numeric strings. Booleans, null,
// arrays, and objects are rejected.
func coerceFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
