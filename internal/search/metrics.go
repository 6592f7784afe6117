// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IndexOperations counts index writes by operation.
var IndexOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scmprops_index_operations_total",
		Help: "Total number of search index operations by type",
	},
	[]string{"operation"},
)

// ReindexDuration observes full and per-repository rebuilds.
var ReindexDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "scmprops_reindex_duration_seconds",
		Help:    "Duration of search index rebuilds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"scope"},
)

// RegisterMetrics registers search metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(IndexOperations)
	reg.MustRegister(ReindexDuration)
}

func recordOperation(operation string) {
	IndexOperations.WithLabelValues(operation).Inc()
}

func observeReindex(scope string, started time.Time) {
	ReindexDuration.WithLabelValues(scope).Observe(time.Since(started).Seconds())
}
