package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-topsis/infrastructure/units"
	"github.com/ahrav/go-topsis/internal/domain"
	"github.com/ahrav/go-topsis/internal/ports"
)

// RankConfig is a ranking profile: the weights and impacts for a family of
// decision tables together with the numeric policies and output settings.
// Use RankConfig to keep a ranking reproducible across runs instead of
// repeating flags on every invocation.
type RankConfig struct {
	// Version specifies the profile schema version using semantic
	// versioning.
	Version string `yaml:"version,omitempty" json:"version,omitempty" validate:"omitempty,semver"`
	// Name is a human-readable label for the profile.
	Name string `yaml:"name,omitempty" json:"name,omitempty" validate:"max=255"`
	// Criteria optionally names the criterion columns. When set, the
	// weights and impacts must have the same length.
	Criteria []string `yaml:"criteria,omitempty" json:"criteria,omitempty" validate:"omitempty,unique,dive,required"`
	// Weights is the relative importance of each criterion, positionally
	// aligned with the criterion columns.
	Weights []float64 `yaml:"weights,omitempty" json:"weights,omitempty" validate:"dive,finite,min=0"`
	// Impacts is the preference direction of each criterion. Any alias
	// accepted by ParseImpact is allowed.
	Impacts []string `yaml:"impacts,omitempty" json:"impacts,omitempty" validate:"dive,impact"`
	// Policies controls degenerate-data and tie handling.
	Policies PolicyConfig `yaml:"policies" json:"policies"`
	// Output controls rendering of the ranked table.
	Output OutputConfig `yaml:"output" json:"output"`
}

// PolicyConfig selects how the pipeline resolves degenerate input.
type PolicyConfig struct {
	// ZeroNorm is applied to a criterion column whose norm is zero.
	ZeroNorm units.ZeroNormPolicy `yaml:"zero_norm" json:"zero_norm" validate:"required,oneof=error zero"`
	// ZeroDistance is applied to an alternative with S+ + S- == 0.
	ZeroDistance units.ZeroDistancePolicy `yaml:"zero_distance" json:"zero_distance" validate:"required,oneof=half error"`
	// Ties selects the ranking scheme for equal scores.
	Ties units.TiePolicy `yaml:"ties" json:"ties" validate:"required,oneof=competition dense ordinal"`
	// TieTolerance is the absolute score difference under which two
	// scores are tied.
	TieTolerance float64 `yaml:"tie_tolerance" json:"tie_tolerance" validate:"finite,min=0,max=1"`
}

// OutputConfig controls how ranked tables are rendered.
type OutputConfig struct {
	// Format is one of text, csv or json.
	Format string `yaml:"format" json:"format" validate:"required,oneof=text csv json"`
	// Precision is the number of decimal places printed for scores.
	Precision int `yaml:"precision" json:"precision" validate:"min=0,max=15"`
}

// DefaultPolicyConfig returns the policies used when a profile is silent.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		ZeroNorm:     units.ZeroNormError,
		ZeroDistance: units.ZeroDistanceHalf,
		Ties:         units.TieCompetition,
		TieTolerance: units.DefaultTieTolerance,
	}
}

// DefaultRankConfig returns a profile with default policies, text output
// at four decimal places and no weights or impacts.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		Policies: DefaultPolicyConfig(),
		Output: OutputConfig{
			Format:    "text",
			Precision: 4,
		},
	}
}

// ParsedImpacts resolves the profile's impact tokens.
func (c RankConfig) ParsedImpacts() ([]domain.Impact, error) {
	return ParseImpacts(c.Impacts)
}

// configValidator is shared by every profile load. validator.Validate is
// safe for concurrent use once its validations are registered.
var configValidator = mustConfigValidator()

func mustConfigValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterRankValidators(v); err != nil {
		panic(err)
	}
	return v
}

// LoadConfig reads and validates a ranking profile from a YAML file.
// LoadConfig returns a *ports.ConfigError wrapping ports.ErrConfigNotFound
// if the file does not exist.
func LoadConfig(path string) (RankConfig, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RankConfig{}, ports.NewConfigError(cleanPath, ports.ErrConfigNotFound)
		}
		return RankConfig{}, ports.NewConfigError(cleanPath, fmt.Errorf("failed to read file: %w", err))
	}
	return parseConfig(data)
}

// ParseConfig reads and validates a ranking profile from r. Values the
// profile omits keep their defaults; an empty document yields
// DefaultRankConfig.
func ParseConfig(r io.Reader) (RankConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return RankConfig{}, fmt.Errorf("failed to read data: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (RankConfig, error) {
	cfg := DefaultRankConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RankConfig{}, ports.NewConfigError("yaml", fmt.Errorf("YAML decode failed: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return RankConfig{}, err
	}
	return cfg, nil
}

// Validate performs struct tag validation and the cross-field length
// checks. It returns a *domain.ValidationError listing every problem.
func (c RankConfig) Validate() error {
	verr := domain.NewValidationError("rank config")

	if err := collectFieldErrors(configValidator.Struct(c), verr); err != nil {
		return err
	}

	if n := len(c.Criteria); n > 0 {
		if len(c.Weights) > 0 && len(c.Weights) != n {
			verr.AddError(fmt.Sprintf("weights: expected %d values to match criteria, got %d", n, len(c.Weights)))
		}
		if len(c.Impacts) > 0 && len(c.Impacts) != n {
			verr.AddError(fmt.Sprintf("impacts: expected %d values to match criteria, got %d", n, len(c.Impacts)))
		}
	} else if len(c.Weights) > 0 && len(c.Impacts) > 0 && len(c.Weights) != len(c.Impacts) {
		verr.AddError(fmt.Sprintf("weights and impacts differ in length: %d != %d", len(c.Weights), len(c.Impacts)))
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// collectFieldErrors adds every field failure in err to verr. Errors that
// are not field failures are returned wrapped.
func collectFieldErrors(err error, verr *domain.ValidationError) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	for _, fe := range fieldErrs {
		verr.AddError(describeFieldError(fe))
	}
	return nil
}

// describeFieldError turns a validator failure into a message keyed by the
// YAML path of the field.
func describeFieldError(fe validator.FieldError) string {
	field := yamlPath(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		allowed := strings.Fields(fe.Param())
		return fmt.Sprintf("%s: %q is not one of [%s]%s",
			field, fmt.Sprint(fe.Value()), strings.Join(allowed, " "), suggestionHint(fmt.Sprint(fe.Value()), allowed))
	case "impact":
		return fmt.Sprintf("%s: unknown impact %q%s",
			field, fmt.Sprint(fe.Value()), suggestionHint(folder().String(fmt.Sprint(fe.Value())), impactNames()))
	case "finite":
		return fmt.Sprintf("%s: must be finite", field)
	case "min", "max":
		return fmt.Sprintf("%s: must be %s %s, got %v", field, boundWord(fe.Tag()), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q validation", field, fe.Tag())
	}
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}

// yamlPath maps "RankConfig.Policies.TieTolerance" to
// "policies.tie_tolerance" and keeps slice indices.
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] != '[' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
