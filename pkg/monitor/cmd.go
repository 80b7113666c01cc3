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
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/groundctl/mavmon/pkg/serializer"
)

// Command builds the mavmond command line interface. Flags beat
// environment variables and the config file; see Load for the rest of
// the precedence chain.
func Command() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "MAVLink telemetry monitor daemon",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `Receives MAVLink-style telemetry over UDP, tracks the latest sample,
watches battery voltage against a critical threshold, and republishes
to MQTT and WebSocket subscribers. An HTTP surface exposes the latest
sample, the alarm state, health/readiness, and Prometheus metrics.

Configuration is resolved in order: built-in defaults, then the
--config file (YAML or JSON), then MAVMON_* environment variables,
then explicit flags.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to config file (YAML or JSON)",
				Sources: cli.EnvVars("MAVMON_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "udp-host",
				Usage: "UDP listen host for telemetry ingest",
			},
			&cli.IntFlag{
				Name:  "udp-port",
				Usage: "UDP listen port for telemetry ingest",
			},
			&cli.StringFlag{
				Name:  "broker-url",
				Usage: "MQTT broker URL (e.g. tcp://localhost:1883)",
			},
			&cli.IntFlag{
				Name:  "http-port",
				Usage: "HTTP status surface port",
			},
			&cli.FloatFlag{
				Name:  "critical-voltage",
				Usage: "Battery voltage threshold for the failsafe alarm",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Optional rotating log file, teed with stderr",
			},
			&cli.BoolFlag{
				Name:  "dump-config",
				Usage: "Print the effective configuration and exit",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: string(serializer.FormatYAML),
				Usage: fmt.Sprintf("Output format for --dump-config (supported values: %s)",
					serializer.SupportedFormats()),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path for --dump-config (default: stdout)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}

			if cmd.Bool("dump-config") {
				return dumpConfig(ctx, cmd, cfg)
			}

			return Run(ctx, cfg)
		},
	}
}

// dumpConfig writes the effective configuration to the requested
// output in the requested format.
func dumpConfig(ctx context.Context, cmd *cli.Command, cfg *Config) error {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q", outFormat)
	}

	ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			_ = closer.Close()
		}
	}()

	return ser.Serialize(ctx, cfg)
}

// configFromCmd resolves the effective configuration for a parsed
// command: Load (defaults, file, environment) with explicitly set flags
// applied on top.
func configFromCmd(cmd *cli.Command) (*Config, error) {
	cfg, err := Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("udp-host") {
		cfg.UDPHost = cmd.String("udp-host")
	}
	if cmd.IsSet("udp-port") {
		cfg.UDPPort = int(cmd.Int("udp-port"))
	}
	if cmd.IsSet("broker-url") {
		cfg.BrokerURL = cmd.String("broker-url")
	}
	if cmd.IsSet("http-port") {
		cfg.HTTPPort = int(cmd.Int("http-port"))
	}
	if cmd.IsSet("critical-voltage") {
		cfg.CriticalVoltage = cmd.Float("critical-voltage")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
