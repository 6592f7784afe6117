// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package property

import "github.com/prometheus/client_golang/prometheus"

// Mutation outcomes recorded in MutationsTotal.
const (
	statusSuccess = "success"
	statusNoop    = "noop"
	statusError   = "error"
)

// MutationsTotal counts create, update and delete calls by outcome.
var MutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scmprops_property_mutations_total",
		Help: "Total number of custom property mutations by operation and status",
	},
	[]string{"operation", "status"},
)

// RegisterMetrics registers property metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(MutationsTotal)
}

func recordMutation(operation, status string) {
	MutationsTotal.WithLabelValues(operation, status).Inc()
}
