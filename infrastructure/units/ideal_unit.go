package units

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*IdealUnit)(nil)

// IdealUnit locates the ideal best and ideal worst vectors of the weighted
// matrix. For a benefit criterion the column maximum is best and the
// minimum is worst; a cost criterion swaps them.
//
// The unit reads domain.KeyWeighted and domain.KeyImpacts and stores
// domain.KeyIdeal.
type IdealUnit struct {
	name   string
	tracer trace.Tracer
}

// NewIdealUnit creates an IdealUnit.
func NewIdealUnit(name string) (*IdealUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &IdealUnit{name: name, tracer: otel.Tracer(tracerName)}, nil
}

// Name returns the unique identifier for this unit instance.
func (iu *IdealUnit) Name() string { return iu.name }

// Execute computes the ideal vectors.
func (iu *IdealUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := iu.tracer.Start(ctx, "IdealUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeIdeal),
			attribute.String("unit.id", iu.name),
		),
	)
	defer span.End()

	weighted, ok := domain.Get(state, domain.KeyWeighted)
	if !ok {
		return state, fail(span, missingKey(domain.KeyWeighted.Name()))
	}
	impacts, ok := domain.Get(state, domain.KeyImpacts)
	if !ok {
		return state, fail(span, missingKey(domain.KeyImpacts.Name()))
	}

	ideal, err := IdealVectors(weighted, impacts)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(
		attribute.Float64Slice("ideal.best", ideal.Best),
		attribute.Float64Slice("ideal.worst", ideal.Worst),
	)
	return domain.With(state, domain.KeyIdeal, ideal), nil
}

// IdealVectors returns the direction-adjusted best and worst value of every
// column of m.
func IdealVectors(m domain.Matrix, impacts []domain.Impact) (domain.IdealPoints, error) {
	if m.Rows() == 0 {
		return domain.IdealPoints{}, &domain.EmptyInputError{}
	}
	if m.Cols() != len(impacts) {
		return domain.IdealPoints{}, domain.NewLengthError("impacts", m.Cols(), len(impacts))
	}

	ideal := domain.IdealPoints{
		Best:  make([]float64, len(impacts)),
		Worst: make([]float64, len(impacts)),
	}
	for j, imp := range impacts {
		if !imp.Valid() {
			return domain.IdealPoints{}, domain.NewElementError("impacts", j, imp.String())
		}
		col := m.Column(j)
		ideal.Best[j], ideal.Worst[j] = imp.Ideal(slices.Min(col), slices.Max(col))
	}
	return ideal, nil
}

// Validate verifies the unit is properly configured.
func (iu *IdealUnit) Validate() error { return nil }

// NewIdealFromConfig creates an IdealUnit from a configuration map. The
// ideal stage takes no parameters.
func NewIdealFromConfig(id string, _ map[string]any) (ports.Unit, error) {
	return NewIdealUnit(id)
}
