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

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/telemetry"
)

// TelemetrySource provides the most recent accepted sample. Satisfied
// by snapshot.Store.
type TelemetrySource interface {
	Latest() (telemetry.Sample, bool)
}

// AlarmSource exposes the battery failsafe state. Satisfied by
// failsafe.Machine.
type AlarmSource interface {
	State() failsafe.State
	Threshold() float64
	RecoveryVoltage() float64
	LastAlert() *failsafe.Alert
}

// StreamAttacher turns a request into a live stream subscription.
// Satisfied by hub.Hub.
type StreamAttacher interface {
	Attach(w http.ResponseWriter, r *http.Request) error
}

// ReadyProbe is a named dependency check consulted by the readiness
// endpoint.
type ReadyProbe struct {
	Name  string
	Check func() bool
}

// Server is the HTTP status surface of the monitor daemon.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter

	mu    sync.RWMutex
	ready bool

	telemetry TelemetrySource
	alarm     AlarmSource
	stream    StreamAttacher
	probes    []ReadyProbe
}

// New creates a server serving the given sources. The server starts
// not ready; the daemon marks it ready once the whole pipeline runs.
func New(config *Config, source TelemetrySource, alarm AlarmSource, stream StreamAttacher, probes ...ReadyProbe) *Server {
	if config == nil {
		config = NewConfig()
	}

	s := &Server{
		config:      config,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
		telemetry:   source,
		alarm:       alarm,
		stream:      stream,
		probes:      probes,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:           s.setupRoutes(),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// SetReady marks the server as ready to serve traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("http server starting", "addr", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting connections and drains in-flight requests,
// bounded by the configured shutdown timeout. The readiness endpoint
// reports not ready for the duration.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
