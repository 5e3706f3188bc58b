// canary
// (C) 2024, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package checks

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var _ prometheus.Collector = (*Metrics)(nil)

// Metrics contains the metric collectors of canary runs
type Metrics struct {
	mu          sync.Mutex
	assertionUp *prometheus.GaugeVec
	canaryUp    *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

// NewMetrics initializes the metric collectors
func NewMetrics() *Metrics {
	return &Metrics{
		assertionUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canary_assertion_up",
				Help: "Outcome of the last evaluation of an assertion (1 passed, 0 failed)",
			},
			[]string{"canary", "assertion"},
		),
		canaryUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "canary_up",
				Help: "Aggregate outcome of the last run of a canary (1 passed, 0 failed)",
			},
			[]string{"canary"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canary_assertion_duration_seconds",
				Help:    "Time it took to evaluate an assertion",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"canary", "assertion"},
		),
	}
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.assertionUp.Describe(ch)
	m.canaryUp.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.assertionUp.Collect(ch)
	m.canaryUp.Collect(ch)
	m.duration.Collect(ch)
}

// Observe records the result of a run. A nil Metrics records nothing.
// The assertion series of the canary are replaced by the ones of res,
// assertions sharing a name are reported as up only if all of them passed.
func (m *Metrics) Observe(res Result) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.canaryUp.WithLabelValues(res.Canary).Set(boolToFloat(res.Passed))
	m.assertionUp.DeletePartialMatch(prometheus.Labels{"canary": res.Canary})

	up := make(map[string]bool, len(res.Outcomes))
	for _, o := range res.Outcomes {
		prev, seen := up[o.Name]
		up[o.Name] = o.Passed && (prev || !seen)
		m.duration.WithLabelValues(res.Canary, o.Name).Observe(o.Duration.Seconds())
	}
	for name, passed := range up {
		m.assertionUp.WithLabelValues(res.Canary, name).Set(boolToFloat(passed))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
