// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package engine

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/NVIDIA/onedigit/pkg/errors"
)

// Candidate outcome label values.
const (
	outcomeInserted  = "inserted"
	outcomeImproved  = "improved"
	outcomeDomain    = "domain"
	outcomeBounds    = "bounds"
	outcomeDiscarded = "discarded"
)

var (
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "onedigit_generation_duration_seconds",
			Help:    "Duration of a single search generation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onedigit_candidates_total",
			Help: "Total number of candidate expressions by outcome",
		},
		[]string{"outcome"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onedigit_runs_total",
			Help: "Total number of completed searches by stop reason",
		},
		[]string{"stop"},
	)

	registryCombos = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "onedigit_registry_combos",
			Help: "Number of distinct values known to the registry",
		},
		[]string{"digit"},
	)

	frontierCombos = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "onedigit_frontier_combos",
			Help: "Number of combos in the current search frontier",
		},
		[]string{"digit"},
	)
)

func recordGeneration(digit int, s GenerationStats, registrySize, nextFrontier int) {
	generationDuration.Observe(s.Duration.Seconds())
	candidatesTotal.WithLabelValues(outcomeInserted).Add(float64(s.Accepted))
	candidatesTotal.WithLabelValues(outcomeImproved).Add(float64(s.Improved))
	candidatesTotal.WithLabelValues(outcomeDomain).Add(float64(s.DomainRejected))
	candidatesTotal.WithLabelValues(outcomeBounds).Add(float64(s.BoundsRejected))
	candidatesTotal.WithLabelValues(outcomeDiscarded).Add(float64(s.Discarded))

	d := strconv.Itoa(digit)
	registryCombos.WithLabelValues(d).Set(float64(registrySize))
	frontierCombos.WithLabelValues(d).Set(float64(nextFrontier))
}

func recordRun(stop StopReason) {
	runsTotal.WithLabelValues(string(stop)).Inc()
}

// WriteMetrics writes the default registry in text exposition format to
// path, for node exporter style textfile collection.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write metrics", err,
			map[string]any{"path": path})
	}
	return nil
}
