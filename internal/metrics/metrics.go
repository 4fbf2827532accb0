// Package metrics holds the prometheus instrumentation for the client.
// All observe helpers are nil-safe so components can run uninstrumented.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	// API request duration histogram with method, endpoint, and status labels.
	// Status 0 means the request never produced a response.
	RequestDuration *prometheus.HistogramVec
	// Responses discarded because a newer request superseded them.
	StaleResponses prometheus.Counter
	// Failed write operations by operation name.
	MutationFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "blogg_api_request_duration_seconds",
			Help: "Duration of blog API requests in seconds.",
		},
			[]string{"method", "endpoint", "status"},
		),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogg_stale_responses_total",
			Help: "Number of list responses discarded as stale.",
		}),
		MutationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogg_mutation_failures_total",
			Help: "Number of failed write operations.",
		},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.StaleResponses)
	reg.MustRegister(m.MutationFailures)
	return m
}

// ObserveRequest records one API request's duration and outcome.
func (m *Metrics) ObserveRequest(method, endpoint string, start time.Time, status int) {
	if m == nil {
		return
	}
	m.RequestDuration.
		WithLabelValues(method, endpoint, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
}

// StaleDiscard counts one response dropped by the request-sequence guard.
func (m *Metrics) StaleDiscard() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

// MutationFailed counts one failed write operation.
func (m *Metrics) MutationFailed(operation string) {
	if m == nil {
		return
	}
	m.MutationFailures.WithLabelValues(operation).Inc()
}
