// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors so tests can use a private registry
type Metrics struct {
	ReqCount      *prometheus.CounterVec
	ReqDuration   *prometheus.HistogramVec
	Toggles       *prometheus.CounterVec
	WriteFailures *prometheus.CounterVec
	Rollbacks     prometheus.Counter
	Generations   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "habits_http_request_duration_seconds",
				Help:    "Request duration seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		Toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_toggles_total",
				Help: "Habit toggles by action and result",
			},
			[]string{"action", "result"}, // result: changed, noop, failed
		),
		WriteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_write_failures_total",
				Help: "Failed write-backs to storage",
			},
			[]string{"operation"},
		),
		Rollbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "habits_read_model_rollbacks_total",
				Help: "Optimistic read model updates reverted after a failed write",
			},
		),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habits_ai_generations_total",
				Help: "Generative model calls by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	reg.MustRegister(m.ReqCount, m.ReqDuration, m.Toggles, m.WriteFailures, m.Rollbacks, m.Generations)
	return m
}

// NewNop returns collectors registered on a throwaway registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
