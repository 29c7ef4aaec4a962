// Command topsis ranks the alternatives of a decision table with TOPSIS.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Ranking written
	ExitFailure    = 1 // Ranking could not be computed or written
	ExitInputError = 2 // Bad input table, profile or flags
)

// UsageError reports invalid flags or flag values.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps err to ExitInputError when the problem lies in what the
// user supplied, including data the chosen policies reject, and to
// ExitFailure otherwise.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var metricsErr *ports.MetricsError
	if errors.As(err, &metricsErr) {
		return ExitFailure
	}

	var usageErr *UsageError
	var configErr *ports.ConfigError
	switch {
	case errors.As(err, &usageErr),
		errors.As(err, &configErr),
		errors.Is(err, domain.ErrInputShape),
		errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrDegenerateColumn),
		errors.Is(err, domain.ErrDegenerateDistance),
		errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, domain.ErrUnknownImpact),
		errors.Is(err, ports.ErrUnknownFormat),
		errors.Is(err, os.ErrNotExist):
		return ExitInputError
	default:
		return ExitFailure
	}
}
