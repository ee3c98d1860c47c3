package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionProduced = "produced"
	DirectionConsumed = "consumed"
)

// ObserveProduceDuration records one latency sample for a topic.
func (m *Metrics) ObserveProduceDuration(topic string, d time.Duration) {
	m.produceDuration.WithLabelValues(topic).Observe(d.Seconds())
}

// RecordCheck counts one verification outcome.
func (m *Metrics) RecordCheck(name string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	m.checksTotal.WithLabelValues(name, result).Inc()
}

// AddMessages adds n to the produced or consumed counter of a topic.
func (m *Metrics) AddMessages(topic, direction string, n int) {
	m.messagesTotal.WithLabelValues(topic, direction).Add(float64(n))
}

// RecordWorkerError counts an aborted worker cycle.
func (m *Metrics) RecordWorkerError(phase string) {
	m.workerErrors.WithLabelValues(phase).Inc()
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}
