package units

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*WeightUnit)(nil)

// WeightUnit scales each normalized column by its weight. Weights express
// relative importance and need not sum to 1.
//
// The unit reads domain.KeyNormalized and domain.KeyWeights and stores a
// new matrix under domain.KeyWeighted.
type WeightUnit struct {
	name   string
	tracer trace.Tracer
}

// NewWeightUnit creates a WeightUnit.
func NewWeightUnit(name string) (*WeightUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &WeightUnit{name: name, tracer: otel.Tracer(tracerName)}, nil
}

// Name returns the unique identifier for this unit instance.
func (wu *WeightUnit) Name() string { return wu.name }

// Execute builds the weighted matrix.
func (wu *WeightUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := wu.tracer.Start(ctx, "WeightUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeWeight),
			attribute.String("unit.id", wu.name),
		),
	)
	defer span.End()

	normalized, ok := domain.Get(state, domain.KeyNormalized)
	if !ok {
		return state, fail(span, missingKey(domain.KeyNormalized.Name()))
	}
	weights, ok := domain.Get(state, domain.KeyWeights)
	if !ok {
		return state, fail(span, missingKey(domain.KeyWeights.Name()))
	}

	weighted, err := ApplyWeights(normalized, weights)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(attribute.Float64Slice("weights", weights))
	return domain.With(state, domain.KeyWeighted, weighted), nil
}

// ApplyWeights returns a new matrix with column j multiplied by weights[j].
func ApplyWeights(m domain.Matrix, weights []float64) (domain.Matrix, error) {
	if m.Cols() != len(weights) && m.Rows() > 0 {
		return nil, domain.NewLengthError("weights", m.Cols(), len(weights))
	}
	if err := domain.ValidateWeights(weights); err != nil {
		return nil, err
	}

	out := domain.NewMatrix(m.Rows(), m.Cols())
	for i, row := range m {
		for j, v := range row {
			out[i][j] = v * weights[j]
		}
	}
	return out, nil
}

// Validate verifies the unit is properly configured.
func (wu *WeightUnit) Validate() error { return nil }

// NewWeightFromConfig creates a WeightUnit from a configuration map. The
// weight stage takes no parameters.
func NewWeightFromConfig(id string, _ map[string]any) (ports.Unit, error) {
	return NewWeightUnit(id)
}
