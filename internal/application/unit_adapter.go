package application

import (
	"context"
	"time"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// UnitAdapter wraps a ports.Unit to implement the ports.Executable
// interface so stage units can be added to a Pipeline. When a metrics
// collector is attached the adapter records the stage latency.
type UnitAdapter struct {
	// unit is the underlying stage that performs the actual work when
	// Execute is called.
	unit ports.Unit
	// id is the unique identifier for this adapter within the pipeline,
	// used for error reporting.
	id string
	// metrics receives the stage latency. It may be nil.
	metrics ports.MetricsCollector
}

// NewUnitAdapter creates a new adapter that wraps unit under id.
func NewUnitAdapter(unit ports.Unit, id string) *UnitAdapter {
	return &UnitAdapter{
		unit: unit,
		id:   id,
	}
}

// WithMetrics returns the adapter with stage latency reporting to m.
func (ua *UnitAdapter) WithMetrics(m ports.MetricsCollector) *UnitAdapter {
	ua.metrics = m
	return ua
}

// Execute delegates to the underlying unit's Execute method,
// providing transparent pass-through of context, state, and results.
func (ua *UnitAdapter) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if ua.metrics == nil {
		return ua.unit.Execute(ctx, state)
	}

	start := time.Now()
	next, err := ua.unit.Execute(ctx, state)
	ua.metrics.RecordLatency("stage", time.Since(start), map[string]string{"stage": ua.id})
	return next, err
}

// ID returns the unique string identifier for this adapter.
func (ua *UnitAdapter) ID() string { return ua.id }
