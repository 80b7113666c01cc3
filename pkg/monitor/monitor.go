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
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/groundctl/mavmon/pkg/broker"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/fanout"
	"github.com/groundctl/mavmon/pkg/hub"
	"github.com/groundctl/mavmon/pkg/ingest"
	"github.com/groundctl/mavmon/pkg/logging"
	"github.com/groundctl/mavmon/pkg/server"
	"github.com/groundctl/mavmon/pkg/snapshot"
)

const (
	name           = "mavmond"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/groundctl/mavmon/pkg/monitor.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Run assembles the telemetry pipeline and blocks until ctx is canceled
// or a component fails. Resources are released in reverse acquisition
// order: ingest loop, UDP listener, broker, stream hub, HTTP server.
func Run(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLogs := setupLogging(cfg)
	defer closeLogs()

	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)
	slog.Debug("effective configuration",
		"udp_host", cfg.UDPHost,
		"udp_port", cfg.UDPPort,
		"receive_timeout", cfg.ReceiveTimeout,
		"broker_url", cfg.BrokerURL,
		"http_address", cfg.HTTPAddress,
		"http_port", cfg.HTTPPort,
		"critical_voltage", cfg.CriticalVoltage,
		"log_level", cfg.LogLevel,
	)

	// Pipeline state. New stream subscribers are warmed up with the
	// latest snapshot so a dashboard renders before the next sample.
	store := snapshot.NewStore()
	machine := failsafe.NewMachine(cfg.CriticalVoltage)
	streamHub := hub.New(
		hub.WithSendBuffer(cfg.SubscriberSendBuffer),
		hub.WithWarmup(func() ([]byte, bool) {
			s, ok := store.Latest()
			if !ok {
				return nil, false
			}
			payload, err := json.Marshal(s.Wire())
			if err != nil {
				return nil, false
			}
			return payload, true
		}),
	)

	mq := broker.New(broker.Config{
		URL:            cfg.BrokerURL,
		ClientID:       cfg.BrokerClientID,
		Username:       cfg.BrokerUsername,
		Password:       cfg.BrokerPassword,
		KeepAlive:      cfg.BrokerKeepAlive,
		ConnectTimeout: cfg.BrokerConnectTimeout,
	})
	if err := mq.Connect(); err != nil {
		streamHub.Close()
		return err
	}

	listener, err := ingest.Listen(cfg.UDPHost, cfg.UDPPort, cfg.ReceiveTimeout)
	if err != nil {
		mq.Close()
		streamHub.Close()
		return err
	}

	pub := fanout.New(mq, streamHub, fanout.WithQueueSize(cfg.BridgeQueueSize))
	loop := ingest.NewLoop(listener, store, machine, pub)

	srvCfg := server.NewConfig()
	srvCfg.Name = name
	srvCfg.Version = version
	srvCfg.Address = cfg.HTTPAddress
	srvCfg.Port = cfg.HTTPPort
	srvCfg.ShutdownTimeout = cfg.ShutdownTimeout
	srv := server.New(srvCfg, store, machine, streamHub,
		server.ReadyProbe{Name: "broker", Check: mq.IsConnected},
	)

	// The HTTP server runs on its own context so it can be shut down
	// last, after the pipeline behind it is gone.
	srvCtx, srvCancel := context.WithCancel(context.Background())
	defer srvCancel()

	var srvErr error
	srvExited := make(chan struct{})
	go func() {
		srvErr = srv.Start(srvCtx)
		close(srvExited)
	}()

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(runCtx) })
	g.Go(func() error { return pub.Run(runCtx) })
	g.Go(func() error {
		select {
		case <-srvExited:
			return srvErr
		case <-runCtx.Done():
			return nil
		}
	})

	srv.SetReady(true)
	notify(daemon.SdNotifyReady)
	startWatchdog(runCtx)

	slog.Info("monitor running",
		"udp_addr", listener.Addr().String(),
		"http_addr", srv.Addr(),
		"broker_url", cfg.BrokerURL,
	)

	err = g.Wait()
	notify(daemon.SdNotifyStopping)

	if cerr := listener.Close(); cerr != nil {
		slog.Warn("closing udp listener", "error", cerr)
	}
	mq.Close()
	streamHub.Close()

	srvCancel()
	<-srvExited
	if err == nil && srvErr != nil {
		err = srvErr
	}

	slog.Info("monitor stopped")
	return err
}

// setupLogging installs the process-wide structured logger, teeing to a
// rotating file when one is configured. The returned func flushes the
// file sink.
func setupLogging(cfg *Config) func() {
	if cfg.LogFile == "" {
		logging.SetDefaultStructuredLoggerWithLevel(name, version, cfg.LogLevel)
		return func() {}
	}

	sink := logging.RotatingFileSink(cfg.LogFile)
	slog.SetDefault(logging.NewStructuredLoggerTo(
		io.MultiWriter(os.Stderr, sink), name, version, cfg.LogLevel))
	return func() { _ = sink.Close() }
}

// notify sends a single sd_notify state. Outside of systemd this is a
// no-op.
func notify(state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		slog.Debug("sd_notify failed", "state", state, "error", err)
	}
}

// startWatchdog pings the systemd watchdog at half its configured
// interval until ctx is done. No-op when the watchdog is not armed.
func startWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				notify(daemon.SdNotifyWatchdog)
			}
		}
	}()
}
