package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// Drop ratios at which the observer flags an ingestion span.
const (
	dropWarningThreshold  = 0.2
	dropCriticalThreshold = 0.5
)

// OTelIngestObserver traces the loading of one decision table. It opens a
// span in Start and, in Finish, records every dropped row as a span event
// and reports the drop count to the metrics collector. An observer is
// single use.
type OTelIngestObserver struct {
	metrics ports.MetricsCollector
	source  string
	tracer  trace.Tracer
	span    trace.Span
}

// NewOTelIngestObserver creates an observer for the table read from
// source. metrics may be nil.
func NewOTelIngestObserver(metrics ports.MetricsCollector, source string) *OTelIngestObserver {
	return &OTelIngestObserver{
		metrics: metrics,
		source:  source,
		tracer:  otel.Tracer("github.com/ahrav/go-topsis/infrastructure/middleware"),
	}
}

// Start opens the ingestion span and returns a context carrying it.
func (o *OTelIngestObserver) Start(ctx context.Context) context.Context {
	ctx, o.span = o.tracer.Start(ctx, "Table.Read",
		trace.WithAttributes(attribute.String("table.source", o.source)),
	)
	return ctx
}

// Finish closes the span opened by Start. rows is the number of data
// records seen and warnings the ones that were dropped.
func (o *OTelIngestObserver) Finish(rows int, warnings []domain.RowWarning, elapsed time.Duration, err error) {
	if o.span == nil {
		return
	}
	defer o.span.End()

	o.span.SetAttributes(
		attribute.Int("table.rows", rows),
		attribute.Int("table.rows_dropped", len(warnings)),
		attribute.Int64("table.read_duration_us", elapsed.Microseconds()),
	)

	for _, w := range warnings {
		o.span.AddEvent("table.row_dropped", trace.WithAttributes(
			attribute.Int("line", w.Line),
			attribute.String("column", w.Column),
			attribute.String("reason", w.Reason),
		))
	}
	o.checkDropThresholds(rows, len(warnings))

	if o.metrics != nil {
		o.metrics.RecordLatency("read", elapsed, map[string]string{"stage": "read"})
		if len(warnings) > 0 {
			o.metrics.RecordCounter("rows_dropped_total", float64(len(warnings)), nil)
		}
	}

	if err != nil {
		var emptyErr *domain.EmptyInputError
		if errors.As(err, &emptyErr) {
			o.span.AddEvent("table.empty", trace.WithAttributes(
				attribute.Int("rows_dropped", emptyErr.Dropped),
			))
			if o.metrics != nil && emptyErr.Dropped > 0 {
				o.metrics.RecordCounter("rows_dropped_total", float64(emptyErr.Dropped), nil)
			}
		}
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		return
	}
	o.span.SetStatus(codes.Ok, "table loaded")
}

// checkDropThresholds flags tables that lost a large share of their rows.
func (o *OTelIngestObserver) checkDropThresholds(rows, dropped int) {
	if rows == 0 || dropped == 0 {
		return
	}
	ratio := float64(dropped) / float64(rows)
	switch {
	case ratio >= dropCriticalThreshold:
		o.span.AddEvent("table.drop_threshold.critical", trace.WithAttributes(
			attribute.Float64("drop_percentage", ratio*100),
		))
	case ratio >= dropWarningThreshold:
		o.span.AddEvent("table.drop_threshold.warning", trace.WithAttributes(
			attribute.Float64("drop_percentage", ratio*100),
		))
	}
}
