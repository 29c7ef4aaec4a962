package ports

import (
	"io"
	"time"

	"github.com/ahrav/go-topsis/internal/domain"
)

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as the
	// distribution of closeness scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// TableWriter renders a ranked table in one output format. Rendering is kept
// apart from the computation so the same result can be written as text,
// CSV or JSON.
type TableWriter interface {
	// Write renders table to w.
	Write(w io.Writer, table *domain.RankedTable) error

	// Format returns the format name, for example "text" or "csv".
	Format() string
}
