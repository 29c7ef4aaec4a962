package domain

import "fmt"

// Impact is the preference direction of a criterion. The numeric values
// match the conventional +1/-1 encoding.
type Impact int

const (
	// ImpactCost marks a criterion where lower raw values are preferred.
	ImpactCost Impact = -1
	// ImpactBenefit marks a criterion where higher raw values are preferred.
	ImpactBenefit Impact = 1
)

// ImpactAliases maps every accepted spelling, already case-folded, to its
// Impact. Parsers fold input before looking it up.
var ImpactAliases = map[string]Impact{
	"benefit": ImpactBenefit,
	"+":       ImpactBenefit,
	"+1":      ImpactBenefit,
	"1":       ImpactBenefit,
	"max":     ImpactBenefit,
	"cost":    ImpactCost,
	"-":       ImpactCost,
	"-1":      ImpactCost,
	"min":     ImpactCost,
}

// Valid reports whether i is one of the two known directions.
func (i Impact) Valid() bool {
	return i == ImpactBenefit || i == ImpactCost
}

// String returns the canonical name of the impact.
func (i Impact) String() string {
	switch i {
	case ImpactBenefit:
		return "benefit"
	case ImpactCost:
		return "cost"
	default:
		return fmt.Sprintf("Impact(%d)", int(i))
	}
}

// MarshalText encodes the impact by its canonical name.
func (i Impact) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownImpact, int(i))
	}
	return []byte(i.String()), nil
}

// Ideal returns the best and worst value of a weighted column for this
// direction: the maximum is best for benefit criteria and the minimum is
// best for cost criteria.
func (i Impact) Ideal(colMin, colMax float64) (best, worst float64) {
	if i == ImpactCost {
		return colMin, colMax
	}
	return colMax, colMin
}

// LookupImpact resolves an already case-folded, trimmed token against
// ImpactAliases.
func LookupImpact(token string) (Impact, bool) {
	imp, ok := ImpactAliases[token]
	return imp, ok
}
