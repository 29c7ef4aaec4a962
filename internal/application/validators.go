package application

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-topsis/internal/domain"
)

// maxSuggestionDistance is the largest edit distance at which an unknown
// token still earns a "did you mean" hint.
const maxSuggestionDistance = 2

// folder case-folds tokens before alias lookup so "Benefit", "BENEFIT"
// and "benefit" resolve alike. cases.Caser is not safe for concurrent use,
// so callers get a fresh one per parse.
func folder() cases.Caser { return cases.Fold() }

// ParseImpact resolves a single impact token. Surrounding whitespace is
// ignored and matching is case-insensitive.
func ParseImpact(token string) (domain.Impact, error) {
	imp, reason := resolveImpact(folder(), token)
	if reason != "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownImpact, reason)
	}
	return imp, nil
}

// ParseImpacts resolves impact tokens positionally. The first unknown
// token is reported as a *domain.InputShapeError carrying its index.
func ParseImpacts(tokens []string) ([]domain.Impact, error) {
	c := folder()
	impacts := make([]domain.Impact, len(tokens))
	for i, tok := range tokens {
		imp, reason := resolveImpact(c, tok)
		if reason != "" {
			return nil, domain.NewElementError("impacts", i, reason)
		}
		impacts[i] = imp
	}
	return impacts, nil
}

// resolveImpact returns the impact for token, or a non-empty reason
// describing why it is unknown.
func resolveImpact(c cases.Caser, token string) (domain.Impact, string) {
	folded := c.String(strings.TrimSpace(token))
	if imp, ok := domain.LookupImpact(folded); ok {
		return imp, ""
	}
	return 0, fmt.Sprintf("unknown impact %q", token) + suggestionHint(folded, impactNames())
}

// impactNames lists the canonical spellings offered as suggestions.
// Symbolic aliases are one or two characters long and would match almost
// anything.
func impactNames() []string {
	return []string{"benefit", "cost", "max", "min"}
}

// suggest returns the candidate closest to token by Levenshtein distance,
// or "" when none is within maxSuggestionDistance. Ties go to the earlier
// candidate.
func suggest(token string, candidates []string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(token, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// suggestionHint formats the " (did you mean ...)" suffix for value
// against the allowed values, or "" when nothing is close.
func suggestionHint(value string, allowed []string) string {
	if slices.Contains(allowed, value) {
		return ""
	}
	if s := suggest(value, allowed); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", s)
	}
	return ""
}

// RegisterRankValidators registers the custom validation functions used
// by RankConfig struct tags.
// RegisterRankValidators returns an error if any validator registration
// fails.
func RegisterRankValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("impact", validateImpactTag); err != nil {
		return fmt.Errorf("failed to register impact validator: %w", err)
	}
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return fmt.Errorf("failed to register finite validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateImpactTag accepts any spelling ParseImpact understands.
func validateImpactTag(fl validator.FieldLevel) bool {
	_, err := ParseImpact(fl.Field().String())
	return err == nil
}

// validateFinite rejects NaN and infinities.
func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
