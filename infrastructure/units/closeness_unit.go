package units

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*ClosenessUnit)(nil)

// ClosenessUnit derives the relative closeness of every alternative to the
// ideal solution: score = S- / (S+ + S-). A score of 1 means the
// alternative is the ideal best, 0 means it is the ideal worst.
//
// When S+ + S- is zero the alternative coincides with both ideal vectors,
// which only happens with a single alternative or identical rows. The
// ZeroDistance policy either scores it 0.5 or fails. Scores are checked
// for NaN and infinities so that no undefined value reaches the rank
// stage.
//
// The unit reads domain.KeyDistances and domain.KeyTable and stores
// domain.KeyScores.
type ClosenessUnit struct {
	name   string
	config ClosenessConfig
	tracer trace.Tracer
}

// ClosenessConfig controls zero-distance handling.
type ClosenessConfig struct {
	// ZeroDistance is applied when S+ + S- == 0.
	// "half": score the alternative 0.5
	// "error": fail with *domain.DegenerateDistanceError
	ZeroDistance ZeroDistancePolicy `yaml:"zero_distance" json:"zero_distance" validate:"required,oneof=half error"`
}

// DefaultClosenessConfig returns the configuration that scores degenerate
// alternatives 0.5.
func DefaultClosenessConfig() ClosenessConfig {
	return ClosenessConfig{ZeroDistance: ZeroDistanceHalf}
}

// NewClosenessUnit creates a ClosenessUnit with a validated configuration.
func NewClosenessUnit(name string, config ClosenessConfig) (*ClosenessUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &ClosenessUnit{name: name, config: config, tracer: otel.Tracer(tracerName)}, nil
}

// Name returns the unique identifier for this unit instance.
func (cu *ClosenessUnit) Name() string { return cu.name }

// Execute computes the closeness scores.
func (cu *ClosenessUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := cu.tracer.Start(ctx, "ClosenessUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeCloseness),
			attribute.String("unit.id", cu.name),
			attribute.String("config.zero_distance", string(cu.config.ZeroDistance)),
		),
	)
	defer span.End()

	distances, ok := domain.Get(state, domain.KeyDistances)
	if !ok {
		return state, fail(span, missingKey(domain.KeyDistances.Name()))
	}
	var labels []string
	if table, ok := domain.Get(state, domain.KeyTable); ok {
		labels = table.Labels()
	}

	scores, degenerate, err := cu.Scores(distances, labels)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("scores.count", len(scores)),
		attribute.Int("scores.degenerate", degenerate),
	)
	return domain.With(state, domain.KeyScores, scores), nil
}

// Scores returns the closeness score of every alternative and the number
// of degenerate alternatives the policy resolved. labels is used for error
// context and may be nil.
func (cu *ClosenessUnit) Scores(d domain.Distances, labels []string) ([]float64, int, error) {
	if len(d.ToBest) != len(d.ToWorst) {
		return nil, 0, domain.NewLengthError("distances", len(d.ToBest), len(d.ToWorst))
	}

	scores := make([]float64, len(d.ToBest))
	degenerate := 0
	for i := range scores {
		plus, minus := d.ToBest[i], d.ToWorst[i]
		total := plus + minus
		if total == 0 {
			degenerate++
			if cu.config.ZeroDistance == ZeroDistanceError {
				distErr := &domain.DegenerateDistanceError{Row: i}
				if i < len(labels) {
					distErr.Label = labels[i]
				}
				return nil, 0, distErr
			}
			scores[i] = 0.5
			continue
		}

		score := minus / total
		if !domain.IsFinite(score) {
			return nil, 0, fmt.Errorf("%w at row %d: S+=%g, S-=%g", ErrNonFiniteScore, i, plus, minus)
		}
		// Rounding can push a score a hair outside [0, 1].
		scores[i] = math.Min(1, math.Max(0, score))
	}
	return scores, degenerate, nil
}

// Validate verifies the unit is properly configured.
func (cu *ClosenessUnit) Validate() error {
	return validateConfig(cu.config)
}

// NewClosenessFromConfig creates a ClosenessUnit from a configuration map.
func NewClosenessFromConfig(id string, params map[string]any) (ports.Unit, error) {
	cfg := DefaultClosenessConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewClosenessUnit(id, cfg)
}
