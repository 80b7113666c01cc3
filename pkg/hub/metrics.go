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

package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscriberCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavmon_stream_subscribers",
		Help: "Number of currently attached WebSocket stream subscribers",
	})

	pushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_stream_pushes_total",
		Help: "Total number of payloads written to stream subscribers",
	})

	dropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavmon_stream_drops_total",
		Help: "Total number of subscribers detached after falling behind",
	})
)
