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
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/groundctl/mavmon/pkg/errors"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/ingest"
)

// Config controls a simulator run.
type Config struct {
	// Host and Port address the monitor's UDP listener.
	Host string
	Port int
	// Rate is the emit frequency in Hz.
	Rate float64
	// InitialVoltage is the starting pack voltage.
	InitialVoltage float64
	// DrainRate is the battery drain in volts per second. FastDrain
	// overrides it with FastDrainRate.
	DrainRate float64
	FastDrain bool
	// Duration bounds the run; zero runs until the context is done.
	Duration time.Duration
	// Seed makes the run reproducible; zero seeds from the clock.
	Seed int64
	// Output receives the status line. Defaults to os.Stdout.
	Output io.Writer
}

// NewConfig returns a Config aimed at a local monitor with the nominal
// flight profile.
func NewConfig() *Config {
	return &Config{
		Host:           ingest.DefaultHost,
		Port:           ingest.DefaultPort,
		Rate:           DefaultRate,
		InitialVoltage: DefaultInitialVoltage,
		DrainRate:      DefaultDrainRate,
	}
}

// Validate checks the configuration for values the run loop cannot
// work with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"target port out of range",
			map[string]any{"port": c.Port})
	}
	if c.Rate <= 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"emit rate must be positive",
			map[string]any{"rate": c.Rate})
	}
	if c.InitialVoltage <= 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"initial voltage must be positive",
			map[string]any{"voltage": c.InitialVoltage})
	}
	if c.DrainRate < 0 {
		return apperrors.NewWithContext(apperrors.ErrCodeSetupFailure,
			"drain rate cannot be negative",
			map[string]any{"drain_rate": c.DrainRate})
	}
	return nil
}

// Run emits telemetry frames over UDP until the duration elapses or ctx
// is canceled; both endings are normal and return nil. Only setup and
// send faults are errors.
func Run(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	drain := cfg.DrainRate
	if cfg.FastDrain {
		drain = FastDrainRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine := NewEngine(
		WithInitialVoltage(cfg.InitialVoltage),
		WithDrainRate(drain),
		WithEmitRate(cfg.Rate),
		WithSeed(seed),
	)

	target, err := net.ResolveUDPAddr("udp",
		net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeSetupFailure,
			"cannot resolve telemetry target", err,
			map[string]any{"host": cfg.Host, "port": cfg.Port})
	}

	// Unconnected socket: frames are fire and forget, so a monitor that
	// is not listening yet must not fail the run.
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSetupFailure,
			"cannot open telemetry socket", err)
	}
	defer conn.Close()

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	fmt.Fprintf(out, "sending telemetry to %s at %g Hz (battery %.2fV, drain %gV/s, critical below %.1fV)\n",
		target, cfg.Rate, cfg.InitialVoltage, drain, failsafe.DefaultCriticalVoltage)

	limiter := rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	criticalSeen := false

	for {
		if err := limiter.Wait(ctx); err != nil {
			fmt.Fprintf(out, "\ntelemetry stream stopped\n")
			return nil
		}

		reading := engine.Next()
		frame, err := json.Marshal(reading.Frame(time.Now()))
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal,
				"cannot encode telemetry frame", err)
		}
		if _, err := conn.WriteToUDP(frame, target); err != nil {
			return apperrors.WrapWithContext(apperrors.ErrCodeTransportFailure,
				"telemetry send failed", err,
				map[string]any{"target": target.String()})
		}

		status := StatusFor(reading.BatteryVoltage)
		if status == StatusCritical && !criticalSeen {
			criticalSeen = true
			fmt.Fprintf(out, "\n*** battery critical: %.2fV ***\n", reading.BatteryVoltage)
		}
		fmt.Fprintf(out, "[%-8s] alt %6.1fm  speed %5.1fm/s  battery %5.2fV\r",
			status, reading.Altitude, reading.Airspeed, reading.BatteryVoltage)
	}
}
