// Package middleware provides cross-cutting concerns for the ranking engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-topsis/internal/ports"
)

// namespace prefixes every metric name.
const namespace = "topsis"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes ranking outcomes, stage latencies and the score distribution.
// Counter, gauge and histogram names it does not know are ignored.
type PrometheusMetrics struct {
	rankTotal     *prometheus.CounterVec
	rankDuration  prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	alternatives  prometheus.Gauge
	scores        prometheus.Histogram
	rowsDropped   prometheus.Counter
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all metrics with reg. A nil reg leaves the metrics unregistered.
// Registering twice on the same registry panics, so callers share one
// instance per registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		rankTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rank_total",
				Help:      "Total number of ranking runs by outcome.",
			},
			[]string{"status"},
		),
		rankDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rank_duration_seconds",
				Help:      "End-to-end duration of a ranking run.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Execution time of each ranking stage.",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"stage"},
		),
		alternatives: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "alternatives",
				Help:      "Number of alternatives in the most recent ranking.",
			},
		),
		scores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "score",
				Help:      "Distribution of closeness scores.",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		rowsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_dropped_total",
				Help:      "Input rows dropped during table ingestion.",
			},
		),
	}
}

// labelOr returns labels[key], or fallback when it is missing or empty.
func labelOr(labels map[string]string, key, fallback string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return fallback
}

// RecordLatency implements the MetricsCollector interface. The "rank"
// operation feeds rank_duration_seconds; every other operation is a stage
// identified by the "stage" label, or by the operation name itself.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	switch operation {
	case "rank":
		pm.rankDuration.Observe(duration.Seconds())
	case "stage":
		pm.stageDuration.WithLabelValues(labelOr(labels, "stage", "unknown")).Observe(duration.Seconds())
	default:
		pm.stageDuration.WithLabelValues(labelOr(labels, "stage", operation)).Observe(duration.Seconds())
	}
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "rank_total":
		pm.rankTotal.WithLabelValues(labelOr(labels, "status", "success")).Add(value)
	case "rows_dropped_total":
		pm.rowsDropped.Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case "alternatives":
		pm.alternatives.Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case "score":
		pm.scores.Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
