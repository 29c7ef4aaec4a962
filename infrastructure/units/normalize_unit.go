package units

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*NormalizeUnit)(nil)

// NormalizeUnit performs vector normalization of the criteria matrix. Every
// value is divided by the Euclidean norm of its column, so the squares of
// each normalized column sum to 1 and criteria measured in different units
// become comparable.
//
// A column of all zeros has no norm. The ZeroNorm policy either fails the
// ranking or keeps the column at zero.
//
// The unit reads domain.KeyTable and stores a new matrix under
// domain.KeyNormalized. It is stateless and safe for concurrent use.
type NormalizeUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// config contains the validated configuration parameters.
	config NormalizeConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NormalizeConfig controls degenerate-column handling.
type NormalizeConfig struct {
	// ZeroNorm is applied to columns whose norm is zero.
	// "error": fail with *domain.DegenerateColumnError
	// "zero": leave the normalized column at 0
	ZeroNorm ZeroNormPolicy `yaml:"zero_norm" json:"zero_norm" validate:"required,oneof=error zero"`
}

// DefaultNormalizeConfig returns the fail-fast configuration.
func DefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{ZeroNorm: ZeroNormError}
}

// NewNormalizeUnit creates a NormalizeUnit with a validated configuration.
func NewNormalizeUnit(name string, config NormalizeConfig) (*NormalizeUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return &NormalizeUnit{
		name:   name,
		config: config,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (nu *NormalizeUnit) Name() string { return nu.name }

// Execute normalizes the input table's criteria matrix.
func (nu *NormalizeUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := nu.tracer.Start(ctx, "NormalizeUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeNormalize),
			attribute.String("unit.id", nu.name),
			attribute.String("config.zero_norm", string(nu.config.ZeroNorm)),
		),
	)
	defer span.End()

	table, ok := domain.Get(state, domain.KeyTable)
	if !ok {
		return state, fail(span, missingKey(domain.KeyTable.Name()))
	}
	if table.NumAlternatives() == 0 {
		return state, fail(span, &domain.EmptyInputError{})
	}

	normalized, zeroCols, err := nu.Normalize(table.Matrix(), table.Criteria)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("matrix.rows", normalized.Rows()),
		attribute.Int("matrix.cols", normalized.Cols()),
		attribute.Int("matrix.zero_norm_columns", zeroCols),
	)

	return domain.With(state, domain.KeyNormalized, normalized), nil
}

// Normalize returns a new matrix with every column divided by its norm and
// the number of zero-norm columns encountered. names is used for error
// context and may be shorter than the column count.
func (nu *NormalizeUnit) Normalize(m domain.Matrix, names []string) (domain.Matrix, int, error) {
	rows, cols := m.Rows(), m.Cols()
	out := domain.NewMatrix(rows, cols)
	zeroCols := 0

	for j := 0; j < cols; j++ {
		norm := m.ColumnNorm(j)
		if !domain.IsFinite(norm) {
			return nil, 0, domain.NewElementError("column", j, "norm overflows float64")
		}
		if norm == 0 {
			zeroCols++
			if nu.config.ZeroNorm == ZeroNormError {
				colErr := &domain.DegenerateColumnError{Column: j}
				if j < len(names) {
					colErr.Name = names[j]
				}
				return nil, 0, colErr
			}
			// ZeroNormZero: out is already zero-filled.
			continue
		}
		for i := 0; i < rows; i++ {
			out[i][j] = m[i][j] / norm
		}
	}

	return out, zeroCols, nil
}

// Validate verifies the unit is properly configured.
func (nu *NormalizeUnit) Validate() error {
	return validateConfig(nu.config)
}

// NewNormalizeFromConfig creates a NormalizeUnit from a configuration map.
// This is the boundary adapter for YAML/JSON configuration.
func NewNormalizeFromConfig(id string, params map[string]any) (ports.Unit, error) {
	cfg := DefaultNormalizeConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewNormalizeUnit(id, cfg)
}
