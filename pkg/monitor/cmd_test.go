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
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/groundctl/mavmon/pkg/broker"
	apperrors "github.com/groundctl/mavmon/pkg/errors"
)

// runCapturing runs the monitor command with args and returns the config
// the action would have handed to Run.
func runCapturing(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var captured *Config
	var capturedErr error

	cmd := Command()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		captured, capturedErr = configFromCmd(c)
		return capturedErr
	}

	argv := append([]string{"mavmond"}, args...)
	if err := cmd.Run(context.Background(), argv); err != nil {
		return captured, err
	}
	return captured, capturedErr
}

func TestConfigFromCmdDefaults(t *testing.T) {
	cfg, err := runCapturing(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config")
	}
	if cfg.UDPPort != 14550 {
		t.Errorf("expected default udp port, got %d", cfg.UDPPort)
	}
	if cfg.CriticalVoltage != 21.0 {
		t.Errorf("expected default critical voltage, got %v", cfg.CriticalVoltage)
	}
}

func TestConfigFromCmdFlagOverrides(t *testing.T) {
	cfg, err := runCapturing(t,
		"--udp-host", "0.0.0.0",
		"--udp-port", "15004",
		"--broker-url", "tcp://flag.local:1883",
		"--http-port", "9090",
		"--critical-voltage", "19.5",
		"--log-level", "debug",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.UDPHost != "0.0.0.0" {
		t.Errorf("expected udp host 0.0.0.0, got %s", cfg.UDPHost)
	}
	if cfg.UDPPort != 15004 {
		t.Errorf("expected udp port 15004, got %d", cfg.UDPPort)
	}
	if cfg.BrokerURL != "tcp://flag.local:1883" {
		t.Errorf("expected broker url from flag, got %s", cfg.BrokerURL)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("expected http port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.CriticalVoltage != 19.5 {
		t.Errorf("expected critical voltage 19.5, got %v", cfg.CriticalVoltage)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestConfigFromCmdFlagBeatsEnv(t *testing.T) {
	t.Setenv("MAVMON_UDP_PORT", "15003")

	cfg, err := runCapturing(t, "--udp-port", "15004")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UDPPort != 15004 {
		t.Errorf("expected flag to beat env, got %d", cfg.UDPPort)
	}
}

func TestConfigFromCmdEnvOnly(t *testing.T) {
	t.Setenv("MAVMON_UDP_PORT", "15003")

	cfg, err := runCapturing(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UDPPort != 15003 {
		t.Errorf("expected env override, got %d", cfg.UDPPort)
	}
}

func TestConfigFromCmdInvalidOverride(t *testing.T) {
	_, err := runCapturing(t, "--critical-voltage", "-1")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeSetupFailure) {
		t.Errorf("expected SETUP_FAILURE, got %v", err)
	}
}

func TestCommandDumpConfig(t *testing.T) {
	cmd := Command()
	err := cmd.Run(context.Background(), []string{"mavmond", "--dump-config"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommandDumpConfigToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effective.json")

	cmd := Command()
	err := cmd.Run(context.Background(), []string{
		"mavmond", "--dump-config", "--format", "json", "--output", path,
		"--udp-port", "15009",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var got Config
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshaling dump: %v", err)
	}
	if got.UDPPort != 15009 {
		t.Errorf("UDPPort = %d, want 15009", got.UDPPort)
	}
	if got.BrokerURL != broker.DefaultURL {
		t.Errorf("BrokerURL = %q, want %q", got.BrokerURL, broker.DefaultURL)
	}
}

func TestCommandDumpConfigUnknownFormat(t *testing.T) {
	cmd := Command()
	err := cmd.Run(context.Background(), []string{
		"mavmond", "--dump-config", "--format", "xml",
	})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}
