// Copyright 2025 Tom Barlow
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

// Package metrics exposes Prometheus counters for expression processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsProcessed counts stage configuration documents processed.
	DocumentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stagehand",
		Subsystem: "expression",
		Name:      "documents_processed_total",
		Help:      "Number of stage configuration documents processed.",
	})

	// PlaceholdersEvaluated counts attempted placeholder substitutions.
	PlaceholdersEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stagehand",
		Subsystem: "expression",
		Name:      "placeholders_evaluated_total",
		Help:      "Number of attempted placeholder substitutions.",
	})

	// EvaluationFailures counts recorded per-field evaluation failures.
	EvaluationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stagehand",
		Subsystem: "expression",
		Name:      "evaluation_failures_total",
		Help:      "Number of recorded per-field evaluation failures.",
	})
)
