package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/ports"
)

var _ ports.UnitRegistry = (*DefaultUnitRegistry)(nil)

// builtinStages holds the factory of every stage in stageOrder.
var builtinStages = map[string]ports.UnitFactory{
	units.TypeNormalize: units.NewNormalizeFromConfig,
	units.TypeWeight:    units.NewWeightFromConfig,
	units.TypeIdeal:     units.NewIdealFromConfig,
	units.TypeDistance:  units.NewDistanceFromConfig,
	units.TypeCloseness: units.NewClosenessFromConfig,
	units.TypeRank:      units.NewRankFromConfig,
}

// DefaultUnitRegistry builds ranking stages by type name. It starts with
// the six TOPSIS stages; RegisterUnitFactory swaps one out or adds a new
// type, for example an instrumented stage in a test.
type DefaultUnitRegistry struct {
	mu        sync.RWMutex
	factories map[string]ports.UnitFactory
}

// NewDefaultUnitRegistry returns a registry holding the built-in stages.
func NewDefaultUnitRegistry() *DefaultUnitRegistry {
	return &DefaultUnitRegistry{factories: maps.Clone(builtinStages)}
}

// CreateUnit builds the stage unitType under id. params may be nil.
// An unregistered unitType yields an error wrapping
// ports.ErrUnknownUnitType with the closest registered name as a hint.
func (r *DefaultUnitRegistry) CreateUnit(unitType, id string, params map[string]any) (ports.Unit, error) {
	r.mu.RLock()
	factory, ok := r.factories[unitType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q%s", ports.ErrUnknownUnitType, unitType,
			suggestionHint(unitType, r.GetSupportedTypes()))
	}
	if id == "" {
		return nil, errors.New("unit ID cannot be empty")
	}
	if params == nil {
		params = map[string]any{}
	}

	unit, err := factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit %s of type %s: %w", id, unitType, err)
	}
	return unit, nil
}

// RegisterUnitFactory binds unitType to factory, replacing any earlier
// binding.
func (r *DefaultUnitRegistry) RegisterUnitFactory(unitType string, factory ports.UnitFactory) error {
	switch {
	case unitType == "":
		return errors.New("unit type cannot be empty")
	case factory == nil:
		return fmt.Errorf("factory for %q cannot be nil", unitType)
	}

	r.mu.Lock()
	r.factories[unitType] = factory
	r.mu.Unlock()
	return nil
}

// GetSupportedTypes returns the registered type names, sorted.
func (r *DefaultUnitRegistry) GetSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
