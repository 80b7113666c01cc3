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

package monitor

import (
	"os"
	"strconv"
	"time"

	"github.com/groundctl/mavmon/pkg/broker"
	"github.com/groundctl/mavmon/pkg/defaults"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/fanout"
	"github.com/groundctl/mavmon/pkg/hub"
	"github.com/groundctl/mavmon/pkg/ingest"
	"github.com/groundctl/mavmon/pkg/serializer"
)

// Config holds the effective daemon configuration. Durations serialize
// as integer nanoseconds in config files; environment overrides accept
// Go duration strings ("5s", "250ms").
type Config struct {
	UDPHost        string        `json:"udp_host" yaml:"udp_host"`
	UDPPort        int           `json:"udp_port" yaml:"udp_port"`
	ReceiveTimeout time.Duration `json:"receive_timeout" yaml:"receive_timeout"`

	BrokerURL            string        `json:"broker_url" yaml:"broker_url"`
	BrokerClientID       string        `json:"broker_client_id" yaml:"broker_client_id"`
	BrokerUsername       string        `json:"broker_username,omitempty" yaml:"broker_username,omitempty"`
	BrokerPassword       string        `json:"broker_password,omitempty" yaml:"broker_password,omitempty"`
	BrokerKeepAlive      time.Duration `json:"broker_keep_alive" yaml:"broker_keep_alive"`
	BrokerConnectTimeout time.Duration `json:"broker_connect_timeout" yaml:"broker_connect_timeout"`

	HTTPAddress string `json:"http_address" yaml:"http_address"`
	HTTPPort    int    `json:"http_port" yaml:"http_port"`

	CriticalVoltage float64 `json:"critical_voltage" yaml:"critical_voltage"`

	BridgeQueueSize      int `json:"bridge_queue_size" yaml:"bridge_queue_size"`
	SubscriberSendBuffer int `json:"subscriber_send_buffer" yaml:"subscriber_send_buffer"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// NewConfig returns the daemon defaults.
func NewConfig() *Config {
	return &Config{
		UDPHost:              ingest.DefaultHost,
		UDPPort:              ingest.DefaultPort,
		ReceiveTimeout:       defaults.IngestReceiveTimeout,
		BrokerURL:            broker.DefaultURL,
		BrokerClientID:       "mavmond",
		BrokerKeepAlive:      defaults.BrokerKeepAlive,
		BrokerConnectTimeout: defaults.BrokerConnectTimeout,
		HTTPAddress:          "",
		HTTPPort:             8080,
		CriticalVoltage:      failsafe.DefaultCriticalVoltage,
		BridgeQueueSize:      fanout.DefaultQueueSize,
		SubscriberSendBuffer: hub.DefaultSendBuffer,
		LogLevel:             "info",
		ShutdownTimeout:      defaults.ServerShutdownTimeout,
	}
}

// Load builds the effective configuration: defaults, then the optional
// config file (JSON or YAML by extension), then MAVMON_* environment
// overrides. Explicit command line flags are applied by the caller on
// top of the result.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		r, err := serializer.NewFileReaderAuto(path)
		if err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
				"opening config file", err, map[string]any{"path": path})
		}
		defer func() { _ = r.Close() }()

		if err := r.Deserialize(cfg); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
				"parsing config file", err, map[string]any{"path": path})
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv applies MAVMON_* environment variable overrides. Values that
// fail to parse are ignored in favor of the current setting.
func (c *Config) applyEnv() {
	if v := os.Getenv("MAVMON_UDP_HOST"); v != "" {
		c.UDPHost = v
	}
	if v := os.Getenv("MAVMON_UDP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.UDPPort = p
		}
	}
	if v := os.Getenv("MAVMON_RECEIVE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ReceiveTimeout = d
		}
	}

	if v := os.Getenv("MAVMON_BROKER_URL"); v != "" {
		c.BrokerURL = v
	}
	if v := os.Getenv("MAVMON_BROKER_CLIENT_ID"); v != "" {
		c.BrokerClientID = v
	}
	if v := os.Getenv("MAVMON_BROKER_USERNAME"); v != "" {
		c.BrokerUsername = v
	}
	if v := os.Getenv("MAVMON_BROKER_PASSWORD"); v != "" {
		c.BrokerPassword = v
	}
	if v := os.Getenv("MAVMON_BROKER_KEEP_ALIVE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BrokerKeepAlive = d
		}
	}
	if v := os.Getenv("MAVMON_BROKER_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BrokerConnectTimeout = d
		}
	}

	if v := os.Getenv("MAVMON_HTTP_ADDRESS"); v != "" {
		c.HTTPAddress = v
	}
	if v := os.Getenv("MAVMON_HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.HTTPPort = p
		}
	}

	if v := os.Getenv("MAVMON_CRITICAL_VOLTAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CriticalVoltage = f
		}
	}

	if v := os.Getenv("MAVMON_BRIDGE_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BridgeQueueSize = n
		}
	}
	if v := os.Getenv("MAVMON_SUBSCRIBER_SEND_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SubscriberSendBuffer = n
		}
	}

	if v := os.Getenv("MAVMON_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MAVMON_LOG_FILE"); v != "" {
		c.LogFile = v
	}

	if v := os.Getenv("MAVMON_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ShutdownTimeout = d
		}
	}
}

// Validate checks for values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.UDPPort < 0 || c.UDPPort > 65535 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"udp port out of range", map[string]any{"port": c.UDPPort})
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"http port out of range", map[string]any{"port": c.HTTPPort})
	}
	if c.BrokerURL == "" {
		return apperrors.New(apperrors.ErrCodeSetupFailure, "broker url is required")
	}
	if c.CriticalVoltage <= 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"critical voltage must be positive", map[string]any{"voltage": c.CriticalVoltage})
	}
	if c.BridgeQueueSize < 1 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"bridge queue size must be at least 1", map[string]any{"size": c.BridgeQueueSize})
	}
	if c.SubscriberSendBuffer < 1 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"subscriber send buffer must be at least 1", map[string]any{"size": c.SubscriberSendBuffer})
	}
	return nil
}
