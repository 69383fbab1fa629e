// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsEmbed struct {
	once sync.Once

	computed prometheus.Counter
	skipped  prometheus.Counter
	errors   prometheus.Counter
	retries  prometheus.Counter
	duration prometheus.Histogram
}

var embedMetrics metricsEmbed

func (m *metricsEmbed) init() {
	m.once.Do(func() {
		m.computed = prometheus.NewCounter(prometheus.CounterOpts{Name: "felix_embed_computed_total", Help: "Embeddings computed by a provider"})
		m.skipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "felix_embed_skipped_total", Help: "Embeddings skipped because content hash was unchanged"})
		m.errors = prometheus.NewCounter(prometheus.CounterOpts{Name: "felix_embed_errors_total", Help: "Provider errors after exhausting retries"})
		m.retries = prometheus.NewCounter(prometheus.CounterOpts{Name: "felix_embed_retries_total", Help: "Provider retry attempts"})
		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "felix_embed_seconds", Help: "Duration of a single Embed call", Buckets: buckets})

		prometheus.MustRegister(m.computed, m.skipped, m.errors, m.retries, m.duration)
	})
}

func recordComputed() { embedMetrics.init(); embedMetrics.computed.Inc() }
func recordSkipped()  { embedMetrics.init(); embedMetrics.skipped.Inc() }
func recordError()    { embedMetrics.init(); embedMetrics.errors.Inc() }
func recordRetry()    { embedMetrics.init(); embedMetrics.retries.Inc() }
func observeDuration(seconds float64) {
	embedMetrics.init()
	embedMetrics.duration.Observe(seconds)
}
