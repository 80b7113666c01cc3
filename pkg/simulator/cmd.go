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
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/groundctl/mavmon/pkg/ingest"
)

const (
	name           = "mavsim"
	versionDefault = "dev"
)

// overridden during build with ldflags to reflect actual version info
var (
	version = versionDefault
	commit  = "none"
	date    = "unknown"
)

// Command builds the mavsim command line interface.
func Command() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "MAVLink telemetry stream simulator",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `Emits a synthetic MAVLink-style telemetry stream over UDP for
exercising mavmond. Altitude and airspeed oscillate around a nominal
flight profile while the battery drains toward the critical
threshold. Use --fast-drain to trigger the failsafe within seconds.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Target host",
				Value:   ingest.DefaultHost,
				Sources: cli.EnvVars("MAVSIM_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Target UDP port",
				Value:   ingest.DefaultPort,
				Sources: cli.EnvVars("MAVSIM_PORT"),
			},
			&cli.FloatFlag{
				Name:    "rate",
				Usage:   "Emit frequency in Hz",
				Value:   DefaultRate,
				Sources: cli.EnvVars("MAVSIM_RATE"),
			},
			&cli.FloatFlag{
				Name:    "initial-voltage",
				Usage:   "Starting pack voltage",
				Value:   DefaultInitialVoltage,
				Sources: cli.EnvVars("MAVSIM_INITIAL_VOLTAGE"),
			},
			&cli.FloatFlag{
				Name:    "drain-rate",
				Usage:   "Battery drain in volts per second",
				Value:   DefaultDrainRate,
				Sources: cli.EnvVars("MAVSIM_DRAIN_RATE"),
			},
			&cli.BoolFlag{
				Name:    "fast-drain",
				Usage:   fmt.Sprintf("Drain at %g V/s to trigger the failsafe quickly", FastDrainRate),
				Sources: cli.EnvVars("MAVSIM_FAST_DRAIN"),
			},
			&cli.DurationFlag{
				Name:    "duration",
				Usage:   "Stop after this long (0 runs until interrupted)",
				Sources: cli.EnvVars("MAVSIM_DURATION"),
			},
			&cli.IntFlag{
				Name:    "seed",
				Usage:   "Noise seed for reproducible runs (0 seeds from the clock)",
				Sources: cli.EnvVars("MAVSIM_SEED"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return Run(ctx, configFromCmd(cmd))
		},
	}
}

// configFromCmd maps parsed flags onto a run Config. Every flag
// carries the Config default as its value, so unconditional reads
// preserve the defaults.
func configFromCmd(cmd *cli.Command) *Config {
	cfg := NewConfig()
	cfg.Host = cmd.String("host")
	cfg.Port = int(cmd.Int("port"))
	cfg.Rate = cmd.Float("rate")
	cfg.InitialVoltage = cmd.Float("initial-voltage")
	cfg.DrainRate = cmd.Float("drain-rate")
	cfg.FastDrain = cmd.Bool("fast-drain")
	cfg.Duration = cmd.Duration("duration")
	cfg.Seed = int64(cmd.Int("seed"))
	return cfg
}
