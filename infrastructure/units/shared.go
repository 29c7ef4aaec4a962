// Package units provides the ranking stages that implement the ports.Unit
// interface: normalize, weight, ideal, distance, closeness and rank.
package units

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-topsis/internal/domain"
)

// Stage type names used by the registry and in span attributes.
const (
	TypeNormalize = "normalize"
	TypeWeight    = "weight"
	TypeIdeal     = "ideal"
	TypeDistance  = "distance"
	TypeCloseness = "closeness"
	TypeRank      = "rank"
)

// tracerName is the instrumentation scope shared by all stage units.
const tracerName = "github.com/ahrav/go-topsis/infrastructure/units"

// ZeroNormPolicy decides what happens to a criterion column whose
// Euclidean norm is zero.
type ZeroNormPolicy string

const (
	// ZeroNormError fails with a *domain.DegenerateColumnError.
	ZeroNormError ZeroNormPolicy = "error"

	// ZeroNormZero keeps the column at 0 after normalization, so it
	// contributes nothing to either distance.
	ZeroNormZero ZeroNormPolicy = "zero"
)

// ZeroDistancePolicy decides the closeness score of an alternative whose
// distances to both ideal vectors are zero.
type ZeroDistancePolicy string

const (
	// ZeroDistanceHalf scores the alternative 0.5, halfway between the
	// ideal worst and ideal best.
	ZeroDistanceHalf ZeroDistancePolicy = "half"

	// ZeroDistanceError fails with a *domain.DegenerateDistanceError.
	ZeroDistanceError ZeroDistancePolicy = "error"
)

// TiePolicy decides how alternatives with equal scores are ranked.
type TiePolicy string

const (
	// TieCompetition gives tied alternatives the same rank and skips the
	// following ranks (1, 2, 2, 4).
	TieCompetition TiePolicy = "competition"

	// TieDense gives tied alternatives the same rank without gaps
	// (1, 2, 2, 3).
	TieDense TiePolicy = "dense"

	// TieOrdinal gives every alternative a distinct rank, breaking ties
	// by input order (1, 2, 3, 4).
	TieOrdinal TiePolicy = "ordinal"
)

// DefaultTieTolerance is the absolute score difference under which two
// scores are treated as tied.
const DefaultTieTolerance = 1e-12

// Common errors returned by the stage units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrNonFiniteScore is returned when a computed score is NaN or infinite.
	ErrNonFiniteScore = errors.New("non-finite score")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// missingKey builds the error returned when a stage input is absent.
func missingKey(name string) error {
	return domain.NewStateError(name, "get", domain.ErrKeyNotFound)
}

// fail records err on the span and returns it unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// decodeParams overlays a parameter map onto cfg through a YAML round trip,
// so map-based and file-based configuration share one decoding path.
func decodeParams(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// validateConfig runs struct validation and wraps failures consistently.
func validateConfig(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
