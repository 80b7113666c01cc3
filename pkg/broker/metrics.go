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

package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavmon_broker_connected",
		Help: "Whether the MQTT broker session is currently established (1) or not (0)",
	})

	publishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavmon_broker_publishes_total",
		Help: "Total number of messages handed to the MQTT client by topic",
	}, []string{"topic"})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavmon_broker_publish_failures_total",
		Help: "Total number of failed or timed-out publishes by topic",
	}, []string{"topic"})
)
