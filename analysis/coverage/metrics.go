// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coverage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus metrics of an observation store. A nil *Metrics records nothing.
type Metrics struct {
	observations *prometheus.CounterVec
	duplicates   prometheus.Counter
}

// NewMetrics creates the store metrics and registers them to reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dfcov",
			Name:      "observations_total",
			Help:      "Number of distinct variable observations recorded",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dfcov",
			Name:      "observations_duplicate_total",
			Help:      "Number of observations received that were already recorded",
		}),
	}
	reg.MustRegister(m.observations, m.duplicates)
	return m
}

func (m *Metrics) observed(o Observation) {
	if m == nil {
		return
	}
	kind := "use"
	if o.IsDefinition {
		kind = "def"
	}
	m.observations.WithLabelValues(kind).Inc()
}

func (m *Metrics) duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}
