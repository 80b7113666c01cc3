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
	"net/http"
	"time"

	"github.com/groundctl/mavmon/pkg/serializer"
)

// HealthResponse is the body served by the health and readiness
// endpoints.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func writeHealth(w http.ResponseWriter, httpStatus int, state, reason string) {
	serializer.RespondJSON(w, httpStatus, HealthResponse{
		Status:    state,
		Timestamp: time.Now(),
		Reason:    reason,
	})
}

// handleHealth serves GET /health. Liveness only: the process is up
// and serving, regardless of pipeline state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeHealth(w, http.StatusOK, "healthy", "")
}

// handleReady serves GET /ready. Ready means setup finished and every
// registered dependency probe passes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		writeHealth(w, http.StatusServiceUnavailable, "not_ready", "service is initializing")
		return
	}

	for _, probe := range s.probes {
		if !probe.Check() {
			writeHealth(w, http.StatusServiceUnavailable, "not_ready", probe.Name+" not ready")
			return
		}
	}

	writeHealth(w, http.StatusOK, "ready", "")
}
