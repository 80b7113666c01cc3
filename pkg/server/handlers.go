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
	"log/slog"
	"net/http"

	apperrors "github.com/groundctl/mavmon/pkg/errors"
	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/serializer"
)

// AlarmResponse describes the battery failsafe state for GET /v1/alarm.
type AlarmResponse struct {
	State           string                 `json:"state"`
	CriticalVoltage float64                `json:"critical_voltage"`
	RecoveryMargin  float64                `json:"recovery_margin"`
	LastAlert       *failsafe.AlertPayload `json:"last_alert,omitempty"`
}

// handleTelemetry serves GET /v1/telemetry: the latest accepted sample,
// or 404 while nothing has been received yet.
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r, http.StatusMethodNotAllowed, apperrors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]interface{}{
				"method": r.Method,
			})
		return
	}

	sample, ok := s.telemetry.Latest()
	if !ok {
		WriteError(w, r, http.StatusNotFound, apperrors.ErrCodeNoTelemetry,
			"No telemetry received yet", true, nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, sample.Wire())
}

// handleAlarm serves GET /v1/alarm.
func (s *Server) handleAlarm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r, http.StatusMethodNotAllowed, apperrors.ErrCodeMethodNotAllowed,
			"Method not allowed", false, map[string]interface{}{
				"method": r.Method,
			})
		return
	}

	resp := AlarmResponse{
		State:           s.alarm.State().String(),
		CriticalVoltage: s.alarm.Threshold(),
		RecoveryMargin:  s.alarm.RecoveryVoltage() - s.alarm.Threshold(),
	}
	if last := s.alarm.LastAlert(); last != nil {
		payload := last.Wire()
		resp.LastAlert = &payload
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleStream serves GET /v1/telemetry/stream by upgrading to a
// WebSocket subscription. The hub owns the connection afterward.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if err := s.stream.Attach(w, r); err != nil {
		// The upgrader has already written its handshake error; only
		// pre-upgrade rejections need a response here.
		if apperrors.IsCode(err, apperrors.ErrCodeUnavailable) {
			WriteErrorFromErr(w, r, err, "Stream is shut down", nil)
			return
		}
		slog.Warn("stream attach failed",
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
	}
}
