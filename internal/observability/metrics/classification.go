package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// ClassificationMetrics records classifier outcomes and extraction latency.
type ClassificationMetrics struct {
	classifyTotal   *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
}

func newClassificationMetrics(registry prometheus.Registerer) *ClassificationMetrics {
	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dcl",
			Name:      "classify_total",
			Help:      "Total classification requests by format and outcome.",
		},
		[]string{"format", "outcome"},
	)
	extractDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dcl",
			Name:      "extract_duration_seconds",
			Help:      "Text extraction duration in seconds by format.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"format"},
	)
	registry.MustRegister(classifyTotal, extractDuration)

	return &ClassificationMetrics{
		classifyTotal:   classifyTotal,
		extractDuration: extractDuration,
	}
}

func (m *ClassificationMetrics) ObserveExtraction(format string, duration time.Duration) {
	m.extractDuration.WithLabelValues(labelOrUnknown(format)).Observe(duration.Seconds())
}

func (m *ClassificationMetrics) ObserveOutcome(format string, outcome domain.Outcome) {
	m.classifyTotal.WithLabelValues(labelOrUnknown(format), labelOrUnknown(string(outcome))).Inc()
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
