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

package broker

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/groundctl/mavmon/pkg/defaults"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
)

// DefaultURL is the broker address used when none is configured.
const DefaultURL = "tcp://localhost:1883"

// PublishOptions controls delivery of a single message.
type PublishOptions struct {
	// QoS is the MQTT quality-of-service level (0, 1, or 2).
	QoS byte
	// Retain marks the message as retained on the broker so late
	// subscribers receive the last value immediately.
	Retain bool
	// WaitTimeout bounds how long Publish blocks for broker
	// acknowledgement. Zero means fire-and-forget: Publish returns
	// immediately and delivery failures are logged asynchronously.
	WaitTimeout time.Duration
}

// Publisher is the message-sink interface the pipeline depends on.
// The production implementation is Client; tests substitute fakes.
type Publisher interface {
	Publish(topic string, payload []byte, opts PublishOptions) error
	Close()
}

// ConnectionListener receives broker connectivity events. Handlers are
// invoked from the MQTT client's network goroutine and must not block.
type ConnectionListener interface {
	OnConnected()
	OnConnectionLost(err error)
}

// Config holds broker connection settings.
type Config struct {
	// URL is the broker address, e.g. tcp://localhost:1883.
	URL string
	// ClientID is the MQTT client identifier. A random suffix is
	// appended so a restarted daemon cannot take over a live session.
	ClientID string
	// Username and Password are optional broker credentials.
	Username string
	Password string
	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ClientID == "" {
		c.ClientID = "mavmond"
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = defaults.BrokerKeepAlive
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaults.BrokerConnectTimeout
	}
	return c
}

// Client is an MQTT publisher backed by eclipse paho. It reconnects
// automatically after a lost connection; only the initial Connect is
// treated as a setup failure.
type Client struct {
	cfg  Config
	mqtt mqtt.Client
}

// New creates an unconnected Client. Call Connect before publishing.
// Listeners are notified of every connect and connection-loss event,
// including reconnects.
func New(cfg Config, listeners ...ConnectionListener) *Client {
	cfg = cfg.withDefaults()
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(clientID).
		SetKeepAlive(cfg.KeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		connectedState.Set(1)
		slog.Info("broker connected", "url", cfg.URL, "client_id", clientID)
		for _, l := range listeners {
			l.OnConnected()
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		connectedState.Set(0)
		slog.Warn("broker connection lost", "url", cfg.URL, "error", err)
		for _, l := range listeners {
			l.OnConnectionLost(err)
		}
	})

	return &Client{
		cfg:  cfg,
		mqtt: mqtt.NewClient(opts),
	}
}

// Connect establishes the broker session. Failure here is a setup
// failure: the daemon must not start without its primary sink.
func (c *Client) Connect() error {
	token := c.mqtt.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"broker connect timed out",
			map[string]any{"url": c.cfg.URL, "timeout": c.cfg.ConnectTimeout.String()})
	}
	if err := token.Error(); err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
			"broker connect failed", err,
			map[string]any{"url": c.cfg.URL})
	}
	return nil
}

// IsConnected reports whether the client currently holds a broker
// session. Used by the readiness endpoint.
func (c *Client) IsConnected() bool {
	return c.mqtt.IsConnected()
}

// Publish sends payload to topic according to opts.
//
// With a zero WaitTimeout the call is fire-and-forget: it returns nil
// immediately and a delivery failure is logged and counted when the
// token completes. With a positive WaitTimeout the call blocks up to
// that long and reports failures as SINK_UNAVAILABLE.
func (c *Client) Publish(topic string, payload []byte, opts PublishOptions) error {
	token := c.mqtt.Publish(topic, opts.QoS, opts.Retain, payload)
	publishesTotal.WithLabelValues(topic).Inc()

	if opts.WaitTimeout <= 0 {
		go func() {
			token.Wait()
			if err := token.Error(); err != nil {
				publishFailures.WithLabelValues(topic).Inc()
				slog.Warn("async publish failed", "topic", topic, "error", err)
			}
		}()
		return nil
	}

	if !token.WaitTimeout(opts.WaitTimeout) {
		publishFailures.WithLabelValues(topic).Inc()
		return apperrors.NewWithContext(apperrors.ErrCodeSinkUnavailable,
			"publish timed out",
			map[string]any{"topic": topic, "timeout": opts.WaitTimeout.String()})
	}
	if err := token.Error(); err != nil {
		publishFailures.WithLabelValues(topic).Inc()
		return apperrors.WrapWithContext(apperrors.ErrCodeSinkUnavailable,
			"publish failed", err,
			map[string]any{"topic": topic})
	}
	return nil
}

// Close disconnects from the broker, allowing a short quiesce for
// in-flight messages. Safe to call on a never-connected client.
func (c *Client) Close() {
	c.mqtt.Disconnect(uint(defaults.BrokerDisconnectQuiesce.Milliseconds()))
	connectedState.Set(0)
	slog.Info("broker disconnected", "url", c.cfg.URL)
}
