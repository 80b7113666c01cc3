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

package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/groundctl/mavmon/pkg/defaults"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/snapshot"
	"github.com/groundctl/mavmon/pkg/telemetry"
)

// Receiver yields raw telemetry payloads. Satisfied by Listener.
type Receiver interface {
	Receive() ([]byte, error)
}

// Sink accepts processed telemetry for delivery. Satisfied by
// fanout.Publisher.
type Sink interface {
	Sample(s telemetry.Sample)
	Alert(a failsafe.Alert) error
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithNormalizer overrides the payload normalizer.
func WithNormalizer(n *telemetry.Normalizer) LoopOption {
	return func(l *Loop) {
		l.norm = n
	}
}

// WithBackoff overrides the pause after a transport failure.
func WithBackoff(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.backoff = d
		}
	}
}

// Loop is the single-consumer ingress pipeline: receive, normalize,
// store, evaluate failsafe, deliver. Samples are processed strictly in
// arrival order.
type Loop struct {
	recv    Receiver
	norm    *telemetry.Normalizer
	store   *snapshot.Store
	machine *failsafe.Machine
	sink    Sink
	backoff time.Duration
}

// NewLoop assembles the ingress pipeline.
func NewLoop(recv Receiver, store *snapshot.Store, machine *failsafe.Machine, sink Sink, opts ...LoopOption) *Loop {
	l := &Loop{
		recv:    recv,
		norm:    telemetry.NewNormalizer(),
		store:   store,
		machine: machine,
		sink:    sink,
		backoff: defaults.IngestErrorBackoff,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes payloads until ctx is canceled, then returns nil. A
// malformed payload is discarded and never disturbs monitor state. A
// transport failure pauses the loop briefly before retrying so a
// persistent fault cannot spin it hot.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("ingress loop started")

	for {
		if ctx.Err() != nil {
			slog.Info("ingress loop stopped")
			return nil
		}

		payload, err := l.recv.Receive()
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeTimeout) {
				// Idle link. The deadline only exists so a stop
				// request is observed.
				continue
			}
			if ctx.Err() != nil {
				slog.Info("ingress loop stopped")
				return nil
			}

			transportFailures.Inc()
			slog.Error("telemetry receive failed", "error", err)
			select {
			case <-ctx.Done():
				slog.Info("ingress loop stopped")
				return nil
			case <-time.After(l.backoff):
			}
			continue
		}

		l.process(payload)
	}
}

func (l *Loop) process(payload []byte) {
	start := time.Now()
	receivedTotal.Inc()

	sample, err := l.norm.Normalize(payload)
	if err != nil {
		malformedTotal.Inc()
		slog.Warn("discarding malformed payload", "bytes", len(payload), "error", err)
		return
	}

	l.store.Replace(sample)

	prev := l.machine.State()
	state, alert := l.machine.Evaluate(sample.BatteryVoltage, sample.CapturedAt)

	l.sink.Sample(sample)

	if alert != nil {
		slog.Warn("battery failsafe engaged",
			"voltage", sample.BatteryVoltage,
			"threshold", l.machine.Threshold())
		if err := l.sink.Alert(*alert); err != nil {
			slog.Error("alert delivery failed", "error", err)
		}
	} else if prev == failsafe.StateCritical && state == failsafe.StateNormal {
		slog.Info("battery recovered",
			"voltage", sample.BatteryVoltage,
			"recovery_voltage", l.machine.RecoveryVoltage())
	}

	acceptedTotal.Inc()
	processingDuration.Observe(time.Since(start).Seconds())
}
