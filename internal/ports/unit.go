// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-topsis/internal/domain"
)

// Unit represents one stage of the ranking pipeline. Each Unit reads the
// values stored by earlier stages from the State and returns a new State
// holding its own freshly built result. Units should be stateless and
// thread-safe for concurrent execution.
type Unit interface {
	// Name returns a unique identifier for this unit.
	// The name is used for logging, tracing, and error reporting.
	Name() string

	// Execute performs the unit's transformation on the provided State.
	// It returns a new State containing the results of the transformation.
	// The original State must not be modified.
	// Any errors during execution should be returned rather than panicking.
	//
	// Example:
	//
	//	newState, err := unit.Execute(ctx, state)
	//	if err != nil {
	//	    return state, fmt.Errorf("unit %s failed: %w", unit.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the unit is properly configured and ready for execution.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// UnitFactory creates a Unit from an identifier and a decoded parameter map.
type UnitFactory func(id string, params map[string]any) (Unit, error)

// UnitRegistry resolves stage type names to unit factories.
type UnitRegistry interface {
	// CreateUnit builds a unit of the given type with the given parameters.
	CreateUnit(unitType, id string, params map[string]any) (Unit, error)

	// RegisterUnitFactory adds or replaces the factory for unitType.
	RegisterUnitFactory(unitType string, factory UnitFactory) error

	// GetSupportedTypes returns the registered unit types in sorted order.
	GetSupportedTypes() []string
}

// Executable defines the contract for components that can be executed by a
// Pipeline.
type Executable interface {
	// Execute processes the given state and returns the updated state.
	// The input state is immutable and MUST NOT be modified.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// ID returns the unique identifier of this executable.
	ID() string
}
