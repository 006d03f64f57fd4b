// Package metrics exposes Prometheus collectors for the pipeline runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kafkabench",
			Subsystem: "pipeline",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// PipelineMetrics tracks per-topic publish/consume counts and the observed
// end-to-end delay distribution.
type PipelineMetrics struct {
	publishedTotal *prometheus.CounterVec
	consumedTotal  *prometheus.CounterVec
	delaySeconds   prometheus.Histogram

	registerer prometheus.Registerer
	registered bool
}

// New creates the pipeline collectors. Pass nil to use the default
// registerer.
func New(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PipelineMetrics{
		registerer:     registerer,
		publishedTotal: newCounterVec("messages_published_total", "Total number of messages published, by wire topic", []string{"topic"}),
		consumedTotal:  newCounterVec("messages_consumed_total", "Total number of messages consumed, by wire topic", []string{"topic"}),
		delaySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kafkabench",
			Subsystem: "pipeline",
			Name:      "delay_seconds",
			Help:      "Per-message send-to-receive delay in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

// Register registers the collectors. Calling it twice is a no-op.
func (m *PipelineMetrics) Register() error {
	if m.registered {
		return nil
	}
	for _, collector := range []prometheus.Collector{m.publishedTotal, m.consumedTotal, m.delaySeconds} {
		if err := m.registerer.Register(collector); err != nil {
			return err
		}
	}
	m.registered = true
	return nil
}

func (m *PipelineMetrics) ObservePublished(topic string) {
	m.publishedTotal.WithLabelValues(topic).Inc()
}

func (m *PipelineMetrics) ObserveConsumed(topic string, delaySeconds float64) {
	m.consumedTotal.WithLabelValues(topic).Inc()
	m.delaySeconds.Observe(delaySeconds)
}
