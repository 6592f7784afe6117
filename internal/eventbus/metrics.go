// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package eventbus

import "github.com/prometheus/client_golang/prometheus"

// EventsPublished counts published events by name.
// Use RegisterMetrics to register this with a Prometheus registry.
var EventsPublished = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scmprops_events_published_total",
		Help: "Total number of events published on the in-process bus",
	},
	[]string{"event"},
)

// HandlerFailures counts handler errors and panics by event and handler.
var HandlerFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scmprops_event_handler_failures_total",
		Help: "Total number of failed event handler invocations",
	},
	[]string{"event", "handler"},
)

// RegisterMetrics registers event bus metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsPublished)
	reg.MustRegister(HandlerFailures)
}

func recordDispatch(event string) {
	EventsPublished.WithLabelValues(event).Inc()
}

func recordHandlerFailure(event, handler string) {
	HandlerFailures.WithLabelValues(event, handler).Inc()
}
