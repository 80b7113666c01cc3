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

package fanout

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/groundctl/mavmon/pkg/broker"
	"github.com/groundctl/mavmon/pkg/defaults"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/telemetry"
)

const (
	// TopicTelemetry carries the live sample stream. Delivered at
	// QoS 1 without retention: the stream is continuous, so a missed
	// sample is superseded within 100 ms.
	TopicTelemetry = "mavlink/telemetry"

	// TopicAlert carries failsafe alerts. Delivered at QoS 2 with
	// retention so a ground station connecting after the fact still
	// sees the active alert.
	TopicAlert = "mavlink/alert"

	// DefaultQueueSize is the depth of the broadcast bridge queue
	// between the ingress loop and the stream hub.
	DefaultQueueSize = 64
)

// Broadcaster pushes a payload to live stream subscribers. Satisfied
// by hub.Hub.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithQueueSize overrides the broadcast bridge queue depth. Values
// below one fall back to the default.
func WithQueueSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// Publisher delivers telemetry and alerts to their sinks: the MQTT
// broker and the live stream hub. The two paths are independent; a
// failing sink never blocks the other, and neither blocks the caller.
type Publisher struct {
	pub       broker.Publisher
	hub       Broadcaster
	queueSize int
	queue     chan []byte
}

// New creates a Publisher delivering to pub and hub.
func New(pub broker.Publisher, hub Broadcaster, opts ...Option) *Publisher {
	p := &Publisher{
		pub:       pub,
		hub:       hub,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan []byte, p.queueSize)
	return p
}

// Sample delivers a telemetry sample to both sinks, best-effort.
//
// The broker publish is fire-and-forget. The stream payload is queued
// for the broadcast consumer; if the queue is full the sample is
// dropped and counted, since the next one supersedes it within 100 ms.
func (p *Publisher) Sample(s telemetry.Sample) {
	payload, err := json.Marshal(s.Wire())
	if err != nil {
		slog.Error("failed to marshal telemetry payload", "error", err)
		return
	}

	if err := p.pub.Publish(TopicTelemetry, payload, broker.PublishOptions{QoS: 1}); err != nil {
		slog.Warn("telemetry publish failed", "topic", TopicTelemetry, "error", err)
	}

	select {
	case p.queue <- payload:
	default:
		broadcastDrops.Inc()
	}
}

// Alert delivers a failsafe alert to the broker with delivery
// guarantees: QoS 2, retained, and a bounded wait for acknowledgement.
// Alerts are not pushed to live stream subscribers; the alarm state
// endpoint and the retained MQTT message carry them.
func (p *Publisher) Alert(a failsafe.Alert) error {
	payload, err := json.Marshal(a.Wire())
	if err != nil {
		alertFailures.Inc()
		slog.Error("failed to marshal alert payload", "error", err)
		return err
	}

	err = p.pub.Publish(TopicAlert, payload, broker.PublishOptions{
		QoS:         2,
		Retain:      true,
		WaitTimeout: defaults.BrokerPublishTimeout,
	})
	if err != nil {
		alertFailures.Inc()
		slog.Error("alert publish failed", "topic", TopicAlert, "error", err)
		return err
	}

	alertsPublished.Inc()
	return nil
}

// Run consumes the broadcast queue and drives the stream hub until ctx
// is canceled. Queued payloads left at cancellation are abandoned; the
// stream is best-effort.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-p.queue:
			p.hub.Broadcast(payload)
		}
	}
}
