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

package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	broadcastDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_fanout_broadcast_drops_total",
		Help: "Total number of samples dropped because the broadcast queue was full",
	})

	alertsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_fanout_alerts_published_total",
		Help: "Total number of alerts acknowledged by the broker",
	})

	alertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_fanout_alert_failures_total",
		Help: "Total number of alert publishes that failed or timed out",
	})
)
