package application

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-topsis/internal/domain"
)

// Resolve lines the profile's weights and impacts up with the criterion
// columns of a table.
//
// When the profile names its criteria, values are matched to columns by
// case-insensitive name, so a table may order its columns freely; every
// column must be named exactly once. Otherwise values are taken
// positionally. Missing weights default to 1 for every criterion. Impacts
// are required.
func (c RankConfig) Resolve(columns []string) ([]float64, []domain.Impact, error) {
	n := len(columns)
	if len(c.Impacts) == 0 {
		return nil, nil, domain.NewLengthError("impacts", n, 0)
	}
	impacts, err := c.ParsedImpacts()
	if err != nil {
		return nil, nil, err
	}

	weights := c.Weights
	if len(weights) == 0 {
		weights = make([]float64, len(impacts))
		for i := range weights {
			weights[i] = 1
		}
	}

	if len(c.Criteria) == 0 {
		if len(impacts) != n {
			return nil, nil, domain.NewLengthError("impacts", n, len(impacts))
		}
		if len(weights) != n {
			return nil, nil, domain.NewLengthError("weights", n, len(weights))
		}
		return append([]float64(nil), weights...), impacts, nil
	}

	if len(c.Criteria) != n {
		return nil, nil, &domain.InputShapeError{
			Field:    "criteria",
			Index:    -1,
			Expected: n,
			Got:      len(c.Criteria),
			Reason:   "profile criteria do not match the table columns",
		}
	}

	if len(impacts) != n {
		return nil, nil, domain.NewLengthError("impacts", n, len(impacts))
	}
	if len(weights) != n {
		return nil, nil, domain.NewLengthError("weights", n, len(weights))
	}

	fold := cases.Fold()
	position := make(map[string]int, n)
	for i, name := range c.Criteria {
		position[fold.String(name)] = i
	}

	alignedWeights := make([]float64, n)
	alignedImpacts := make([]domain.Impact, n)
	for j, col := range columns {
		i, ok := position[fold.String(col)]
		if !ok {
			return nil, nil, domain.NewElementError("criteria", j,
				fmt.Sprintf("column %q is not named in the profile%s", col, suggestionHint(col, c.Criteria)))
		}
		alignedWeights[j] = weights[i]
		alignedImpacts[j] = impacts[i]
	}
	return alignedWeights, alignedImpacts, nil
}
