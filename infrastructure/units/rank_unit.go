package units

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.Unit = (*RankUnit)(nil)

// RankUnit assigns ranks from closeness scores. Alternatives are stably
// sorted by score descending with the input index as secondary key, then
// ranked according to the tie policy. Rank 1 is the highest score.
//
// Ties are detected against the first score of a run: a score belongs to
// the run while |first - score| <= TieTolerance. Exact float equality is
// never the only criterion, so scores that differ only by rounding noise
// rank together.
//
// The unit reads domain.KeyScores and stores domain.KeyRanks in input
// order.
type RankUnit struct {
	name   string
	config RankConfig
	tracer trace.Tracer
}

// RankConfig controls tie handling.
type RankConfig struct {
	// Ties selects the tie policy: "competition" (1,2,2,4), "dense"
	// (1,2,2,3) or "ordinal" (1,2,3,4 by input order).
	Ties TiePolicy `yaml:"ties" json:"ties" validate:"required,oneof=competition dense ordinal"`

	// TieTolerance is the absolute score difference treated as a tie.
	TieTolerance float64 `yaml:"tie_tolerance" json:"tie_tolerance" validate:"min=0,max=1"`
}

// DefaultRankConfig returns standard competition ranking.
func DefaultRankConfig() RankConfig {
	return RankConfig{Ties: TieCompetition, TieTolerance: DefaultTieTolerance}
}

// NewRankUnit creates a RankUnit with a validated configuration.
func NewRankUnit(name string, config RankConfig) (*RankUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &RankUnit{name: name, config: config, tracer: otel.Tracer(tracerName)}, nil
}

// Name returns the unique identifier for this unit instance.
func (ru *RankUnit) Name() string { return ru.name }

// Execute assigns ranks.
func (ru *RankUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := ru.tracer.Start(ctx, "RankUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeRank),
			attribute.String("unit.id", ru.name),
			attribute.String("config.ties", string(ru.config.Ties)),
		),
	)
	defer span.End()

	scores, ok := domain.Get(state, domain.KeyScores)
	if !ok {
		return state, fail(span, missingKey(domain.KeyScores.Name()))
	}

	ranks, err := AssignRanks(scores, ru.config.Ties, ru.config.TieTolerance)
	if err != nil {
		return state, fail(span, err)
	}

	span.SetAttributes(attribute.Int("ranks.count", len(ranks)))
	return domain.With(state, domain.KeyRanks, ranks), nil
}

// AssignRanks returns the rank of every score in input order. Scores must
// be finite; a NaN would make the ordering undefined.
//
// Example:
//
//	AssignRanks([]float64{0.5, 0.9, 0.5, 0.1}, TieCompetition, 0) // [2 1 2 4]
//	AssignRanks([]float64{0.5, 0.9, 0.5, 0.1}, TieDense, 0)       // [2 1 2 3]
//	AssignRanks([]float64{0.5, 0.9, 0.5, 0.1}, TieOrdinal, 0)     // [2 1 3 4]
func AssignRanks(scores []float64, policy TiePolicy, tolerance float64) ([]int, error) {
	for i, s := range scores {
		if !domain.IsFinite(s) {
			return nil, fmt.Errorf("%w at row %d", ErrNonFiniteScore, i)
		}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	ranks := make([]int, len(scores))
	runStart := 0
	denseRank := 0
	for pos, idx := range order {
		newRun := pos == 0 || math.Abs(scores[order[runStart]]-scores[idx]) > tolerance
		if newRun {
			runStart = pos
			denseRank++
		}
		switch policy {
		case TieCompetition:
			ranks[idx] = runStart + 1
		case TieDense:
			ranks[idx] = denseRank
		case TieOrdinal:
			ranks[idx] = pos + 1
		default:
			return nil, fmt.Errorf("unknown tie policy: %q", policy)
		}
	}
	return ranks, nil
}

// Validate verifies the unit is properly configured.
func (ru *RankUnit) Validate() error {
	return validateConfig(ru.config)
}

// NewRankFromConfig creates a RankUnit from a configuration map.
func NewRankFromConfig(id string, params map[string]any) (ports.Unit, error) {
	cfg := DefaultRankConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewRankUnit(id, cfg)
}
