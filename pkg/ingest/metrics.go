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

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	receivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_ingest_received_total",
		Help: "Total number of datagrams received on the telemetry socket",
	})

	malformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_ingest_malformed_total",
		Help: "Total number of payloads discarded as malformed",
	})

	acceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_ingest_accepted_total",
		Help: "Total number of payloads normalized and delivered",
	})

	transportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_ingest_transport_failures_total",
		Help: "Total number of receive failures on the telemetry socket",
	})

	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mavmon_ingest_processing_seconds",
		Help:    "Time spent processing a single payload end to end",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
)
