// Package domain contains pure, dependency-free domain models and types
// for the ranking engine.
package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Key names a State entry holding a value of type T.
type Key[T any] struct{ name string }

// NewKey returns a key for entries outside the predefined set.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the string form of the key used in errors and traces.
func (k Key[T]) Name() string { return k.name }

// Predefined state keys used by the ranking stages. Each stage reads the
// outputs of the previous stages and stores a fresh value under its own key.
var (
	// KeyTable stores the input table of alternatives.
	KeyTable = Key[Table]{"table"}

	// KeyWeights stores the per-criterion weights.
	KeyWeights = Key[[]float64]{"weights"}

	// KeyImpacts stores the per-criterion impact directions.
	KeyImpacts = Key[[]Impact]{"impacts"}

	// KeyNormalized stores the vector-normalized criteria matrix.
	KeyNormalized = Key[Matrix]{"normalized"}

	// KeyWeighted stores the normalized matrix scaled by the weights.
	KeyWeighted = Key[Matrix]{"weighted"}

	// KeyIdeal stores the ideal best and worst vectors.
	KeyIdeal = Key[IdealPoints]{"ideal"}

	// KeyDistances stores each alternative's distance to the ideal vectors.
	KeyDistances = Key[Distances]{"distances"}

	// KeyScores stores the closeness score of each alternative.
	KeyScores = Key[[]float64]{"scores"}

	// KeyRanks stores the rank of each alternative in input order.
	KeyRanks = Key[[]int]{"ranks"}

	// KeyRankingID stores an identifier for the ranking run, used for
	// tracing and correlation.
	KeyRankingID = Key[string]{"execution.ranking_id"}
)

// cloneValue copies the reference types stored by the ranking stages so
// that neither a stored value nor one handed out by Get aliases another.
// Values of other types are stored as given.
func cloneValue(value any) any {
	switch v := value.(type) {
	case Matrix:
		return v.Clone()
	case []float64:
		return slices.Clone(v)
	case []int:
		return slices.Clone(v)
	case []string:
		return slices.Clone(v)
	case []Impact:
		return slices.Clone(v)
	case Table:
		return v.Clone()
	case IdealPoints:
		return IdealPoints{Best: slices.Clone(v.Best), Worst: slices.Clone(v.Worst)}
	case Distances:
		return Distances{ToBest: slices.Clone(v.ToBest), ToWorst: slices.Clone(v.ToWorst)}
	default:
		return value
	}
}

// State carries the inputs and intermediates of one ranking call through
// the stages. It is copy-on-write: With returns a new State and every
// stored value is copied on the way in and on the way out, so a stage can
// never rewrite a matrix another stage produced. The zero State is empty
// and usable.
type State struct {
	data map[string]any
}

// NewState returns an empty State.
func NewState() State {
	return State{data: map[string]any{}}
}

// Get returns a copy of the value stored under key. It reports false when
// the key is absent or holds a value of another type.
//
//	weighted, ok := Get(state, KeyWeighted)
func Get[T any](s State, key Key[T]) (T, bool) {
	value, ok := s.data[key.name].(T)
	if !ok {
		var zero T
		return zero, false
	}
	return cloneValue(value).(T), true
}

// With returns a State that stores value under key and otherwise matches
// s. s itself is unchanged.
//
//	next := With(state, KeyScores, scores)
func With[T any](s State, key Key[T], value T) State {
	return s.WithMultiple(map[string]any{key.name: value})
}

// WithMultiple stores several values in one copy of s. Entries are keyed by
// name, so code outside the package should chain With instead.
func (s State) WithMultiple(updates map[string]any) State {
	data := make(map[string]any, len(s.data)+len(updates))
	maps.Copy(data, s.data)
	for name, v := range updates {
		data[name] = cloneValue(v)
	}
	return State{data: data}
}

// Has reports whether a value is stored under the key's name.
func (s State) Has(name string) bool {
	_, ok := s.data[name]
	return ok
}

// Keys returns the names of the stored entries, sorted.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s.data))
}

// String lists the entry names, for debugging.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.Keys())
}

// NewRankingState seeds a State with the inputs of a single ranking call.
// The table is deep-copied, so later mutation by the caller has no effect.
func NewRankingState(id string, table Table, weights []float64, impacts []Impact) State {
	return NewState().WithMultiple(map[string]any{
		KeyRankingID.name: id,
		KeyTable.name:     table,
		KeyWeights.name:   weights,
		KeyImpacts.name:   impacts,
	})
}
