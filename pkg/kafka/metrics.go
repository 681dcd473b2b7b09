package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the producer and consumer collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	published        *prometheus.CounterVec
	publishErrors    *prometheus.CounterVec
	publishDuration  *prometheus.HistogramVec
	received         *prometheus.CounterVec
	processed        *prometheus.CounterVec
	failed           *prometheus.CounterVec
	duplicates       *prometheus.CounterVec
	dlq              *prometheus.CounterVec
	handlerDurations *prometheus.HistogramVec
}

// NewMetrics registers the Kafka collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	topic := []string{"topic"}
	group := []string{"topic", "consumer_group"}
	return &Metrics{
		published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Messages published.",
		}, topic),
		publishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Publish failures.",
		}, topic),
		publishDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Publish latency.",
			Buckets: prometheus.DefBuckets,
		}, topic),
		received: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_received_total",
			Help: "Messages fetched from the broker.",
		}, group),
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_processed_total",
			Help: "Messages handled successfully.",
		}, group),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_failed_total",
			Help: "Messages that exhausted their retries.",
		}, group),
		duplicates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_messages_duplicate_total",
			Help: "Messages skipped as already processed.",
		}, group),
		dlq: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_dlq_published_total",
			Help: "Messages forwarded to the dead-letter topic.",
		}, group),
		handlerDurations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Handler latency.",
			Buckets: prometheus.DefBuckets,
		}, group),
	}
}

func (m *Metrics) observePublish(topic string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.publishDuration.WithLabelValues(topic).Observe(seconds)
	if err != nil {
		m.publishErrors.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}

type consumerOutcome int

const (
	outcomeReceived consumerOutcome = iota
	outcomeProcessed
	outcomeFailed
	outcomeDuplicate
	outcomeDLQ
)

func (m *Metrics) count(o consumerOutcome, topic, group string) {
	if m == nil {
		return
	}
	var vec *prometheus.CounterVec
	switch o {
	case outcomeReceived:
		vec = m.received
	case outcomeProcessed:
		vec = m.processed
	case outcomeFailed:
		vec = m.failed
	case outcomeDuplicate:
		vec = m.duplicates
	case outcomeDLQ:
		vec = m.dlq
	default:
		return
	}
	vec.WithLabelValues(topic, group).Inc()
}

func (m *Metrics) observeHandler(topic, group string, seconds float64) {
	if m == nil {
		return
	}
	m.handlerDurations.WithLabelValues(topic, group).Observe(seconds)
}
