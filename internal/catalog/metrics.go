package catalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts catalog requests by collection, operation and outcome.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dattebayo",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog API requests by outcome.",
		}, []string{"collection", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dattebayo",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Catalog API round trip time.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"collection", "op"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}
