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

package failsafe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Alarm state metrics
	criticalState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mavmon_failsafe_critical",
			Help: "Whether the battery failsafe is in the critical state (1) or normal (0)",
		},
	)

	alertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mavmon_failsafe_alerts_total",
			Help: "Total number of critical battery alerts raised",
		},
	)

	recoveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mavmon_failsafe_recoveries_total",
			Help: "Total number of recoveries from the critical state",
		},
	)
)
