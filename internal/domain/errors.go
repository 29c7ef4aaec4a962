package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur during ranking operations.
var (
	// ErrInputShape indicates that weights, impacts or rows do not line up
	// with the criteria columns.
	ErrInputShape = errors.New("input shape mismatch")

	// ErrEmptyInput indicates that no alternatives remain to be ranked.
	ErrEmptyInput = errors.New("no alternatives to rank")

	// ErrDegenerateColumn indicates a criterion column whose Euclidean norm
	// is zero, so it cannot be normalized.
	ErrDegenerateColumn = errors.New("degenerate criterion column")

	// ErrDegenerateDistance indicates an alternative whose distances to both
	// ideal vectors are zero, so its closeness score is undefined.
	ErrDegenerateDistance = errors.New("degenerate alternative distance")

	// ErrUnknownImpact indicates an impact value that is neither benefit
	// nor cost.
	ErrUnknownImpact = errors.New("unknown impact")

	// ErrInvalidState indicates that a State operation received invalid input.
	ErrInvalidState = errors.New("invalid state")

	// ErrKeyNotFound indicates that a requested state key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// InputShapeError reports inputs that do not line up with the criteria
// columns. It is raised before any numeric work begins.
type InputShapeError struct {
	// Field names the offending input: "weights", "impacts", "row" or "header".
	Field string

	// Index is the position of the offending element, or -1 when the
	// whole field is at fault.
	Index int

	// Expected is the length the field should have had.
	Expected int

	// Got is the length actually supplied.
	Got int

	// Reason carries a free-form explanation when lengths do not apply.
	Reason string
}

// Error implements the error interface for InputShapeError.
func (e *InputShapeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "input shape error: field=%s", e.Field)
	if e.Index >= 0 {
		fmt.Fprintf(&b, ", index=%d", e.Index)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ", %s", e.Reason)
	} else {
		fmt.Fprintf(&b, ", expected=%d, got=%d", e.Expected, e.Got)
	}
	return b.String()
}

// Unwrap returns ErrInputShape.
func (e *InputShapeError) Unwrap() error { return ErrInputShape }

// NewLengthError creates an InputShapeError for a length mismatch.
func NewLengthError(field string, expected, got int) *InputShapeError {
	return &InputShapeError{Field: field, Index: -1, Expected: expected, Got: got}
}

// NewElementError creates an InputShapeError for a single bad element.
func NewElementError(field string, index int, reason string) *InputShapeError {
	return &InputShapeError{Field: field, Index: index, Reason: reason}
}

// DegenerateColumnError reports a criterion column with zero norm.
type DegenerateColumnError struct {
	// Column is the zero-based criterion index.
	Column int

	// Name is the criterion header, when known.
	Name string
}

// Error implements the error interface for DegenerateColumnError.
func (e *DegenerateColumnError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("degenerate column: column=%d (%s), norm=0", e.Column, e.Name)
	}
	return fmt.Sprintf("degenerate column: column=%d, norm=0", e.Column)
}

// Unwrap returns ErrDegenerateColumn.
func (e *DegenerateColumnError) Unwrap() error { return ErrDegenerateColumn }

// DegenerateDistanceError reports an alternative that coincides with both
// ideal vectors.
type DegenerateDistanceError struct {
	// Row is the zero-based alternative index.
	Row int

	// Label is the alternative label, when known.
	Label string
}

// Error implements the error interface for DegenerateDistanceError.
func (e *DegenerateDistanceError) Error() string {
	return fmt.Sprintf("degenerate distance: row=%d, label=%q, S+ + S- = 0", e.Row, e.Label)
}

// Unwrap returns ErrDegenerateDistance.
func (e *DegenerateDistanceError) Unwrap() error { return ErrDegenerateDistance }

// EmptyInputError reports a table with no rankable alternatives.
type EmptyInputError struct {
	// Dropped is the number of rows discarded before ranking.
	Dropped int
}

// Error implements the error interface for EmptyInputError.
func (e *EmptyInputError) Error() string {
	if e.Dropped > 0 {
		return fmt.Sprintf("empty input: all %d rows were dropped", e.Dropped)
	}
	return "empty input: no alternatives"
}

// Unwrap returns ErrEmptyInput.
func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// StateError represents an error that occurred during State operations.
// It provides context about which key and operation caused the error.
type StateError struct {
	// Key is the state key that was involved in the failed operation.
	Key string

	// Operation describes what operation was being performed when the error occurred.
	Operation string

	// Err is the underlying error that caused the operation to fail.
	Err error
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	return fmt.Sprintf("state error: operation=%s, key=%s, err=%v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *StateError) Unwrap() error { return e.Err }

// NewStateError creates a new StateError with the given details.
func NewStateError(key, operation string, err error) *StateError {
	return &StateError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfiguration }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}

// ValidateWeights checks that every weight is finite and non-negative.
// It returns nil or a *ValidationError listing every offending index.
func ValidateWeights(weights []float64) error {
	verr := NewValidationError("weights")
	for i, w := range weights {
		if !IsFinite(w) {
			verr.AddError(fmt.Sprintf("weight %d is not finite", i))
		} else if w < 0 {
			verr.AddError(fmt.Sprintf("weight %d is negative: %g", i, w))
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ValidateShape checks that weights and impacts line up with the table's
// criteria and that every row is complete and finite. All checks run
// before any numeric work.
func ValidateShape(table Table, weights []float64, impacts []Impact) error {
	n := table.NumCriteria()
	if len(weights) != n {
		return NewLengthError("weights", n, len(weights))
	}
	if len(impacts) != n {
		return NewLengthError("impacts", n, len(impacts))
	}
	for j, imp := range impacts {
		if !imp.Valid() {
			return NewElementError("impacts", j, fmt.Sprintf("unknown impact %d", int(imp)))
		}
	}
	if err := ValidateWeights(weights); err != nil {
		return err
	}
	if table.NumAlternatives() == 0 {
		return &EmptyInputError{}
	}
	for i, alt := range table.Alternatives {
		if len(alt.Values) != n {
			return &InputShapeError{Field: "row", Index: i, Expected: n, Got: len(alt.Values)}
		}
		for j, v := range alt.Values {
			if !IsFinite(v) {
				return NewElementError("row", i, fmt.Sprintf("column %d is not finite", j))
			}
		}
	}
	return nil
}
