package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when a ranking profile file does not
	// exist.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrUnknownFormat indicates that no TableWriter exists for a format.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownUnitType indicates that no factory is registered for a unit type.
	ErrUnknownUnitType = errors.New("unknown unit type")
)

// MetricsError reports a failure to export collected metrics.
type MetricsError struct {
	// Metric names the metric or registry being exported.
	Metric    string
	// Operation is the export step that failed, such as "write".
	Operation string
	Err       error
}

func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError wraps err with the metric and operation it concerns.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{Metric: metric, Operation: operation, Err: err}
}

// ConfigError reports a ranking profile that could not be loaded. ConfigKey
// is the file path, or the decoder name ("yaml") when the document itself
// is malformed.
type ConfigError struct {
	ConfigKey string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err with the profile key it concerns.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{ConfigKey: key, Err: err}
}
