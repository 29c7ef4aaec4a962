package units

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*DistanceUnit)(nil)

// DistanceUnit computes each alternative's Euclidean distance to the ideal
// best vector (S+) and to the ideal worst vector (S-) across all weighted
// criteria.
//
// The unit reads domain.KeyWeighted and domain.KeyIdeal and stores
// domain.KeyDistances.
type DistanceUnit struct {
	name   string
	tracer trace.Tracer
}

// NewDistanceUnit creates a DistanceUnit.
func NewDistanceUnit(name string) (*DistanceUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &DistanceUnit{name: name, tracer: otel.Tracer(tracerName)}, nil
}

// Name returns the unique identifier for this unit instance.
func (du *DistanceUnit) Name() string { return du.name }

// Execute computes the distances.
func (du *DistanceUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := du.tracer.Start(ctx, "DistanceUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeDistance),
			attribute.String("unit.id", du.name),
		),
	)
	defer span.End()

	weighted, ok := domain.Get(state, domain.KeyWeighted)
	if !ok {
		return state, fail(span, missingKey(domain.KeyWeighted.Name()))
	}
	ideal, ok := domain.Get(state, domain.KeyIdeal)
	if !ok {
		return state, fail(span, missingKey(domain.KeyIdeal.Name()))
	}

	distances, err := IdealDistances(weighted, ideal)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(attribute.Int("distances.count", len(distances.ToBest)))
	return domain.With(state, domain.KeyDistances, distances), nil
}

// IdealDistances returns S+ and S- for every row of m.
func IdealDistances(m domain.Matrix, ideal domain.IdealPoints) (domain.Distances, error) {
	if len(ideal.Best) != m.Cols() || len(ideal.Worst) != m.Cols() {
		return domain.Distances{}, domain.NewLengthError("ideal", m.Cols(), len(ideal.Best))
	}

	d := domain.Distances{
		ToBest:  make([]float64, m.Rows()),
		ToWorst: make([]float64, m.Rows()),
	}
	for i, row := range m {
		d.ToBest[i] = domain.EuclideanDistance(row, ideal.Best)
		d.ToWorst[i] = domain.EuclideanDistance(row, ideal.Worst)
	}
	return d, nil
}

// Validate verifies the unit is properly configured.
func (du *DistanceUnit) Validate() error { return nil }

// NewDistanceFromConfig creates a DistanceUnit from a configuration map. The
// distance stage takes no parameters.
func NewDistanceFromConfig(id string, _ map[string]any) (ports.Unit, error) {
	return NewDistanceUnit(id)
}
