package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	reviewsSubmitted prometheus.Counter
	discoveryQueries *prometheus.CounterVec
}

// NewMetrics registers the domain counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reviewsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wampin_reviews_submitted_total",
			Help: "Reviews accepted and folded into a restaurant's rating.",
		}),
		discoveryQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wampin_discovery_queries_total",
			Help: "Discovery queries served, by backend and whether a location was given.",
		}, []string{"backend", "geo"}),
	}
	reg.MustRegister(m.reviewsSubmitted, m.discoveryQueries)
	return m
}

func (m *Metrics) reviewSubmitted() {
	if m == nil {
		return
	}
	m.reviewsSubmitted.Inc()
}

func (m *Metrics) discoveryQuery(backend string, located bool) {
	if m == nil {
		return
	}
	m.discoveryQueries.WithLabelValues(backend, strconv.FormatBool(located)).Inc()
}
