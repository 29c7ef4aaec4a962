package domain

import "context"

// Ranker defines the contract for multi-criteria ranking of alternatives.
// Implementations normalize the criteria, apply weights, locate the ideal
// best and worst vectors and derive a closeness score and rank for every
// alternative.
type Ranker interface {
	// Rank scores every alternative of table. The number of criteria must
	// equal len(weights) and len(impacts); a mismatch is reported as an
	// *InputShapeError before any numeric work starts and no partial
	// output is produced.
	//
	// The returned table keeps the input row order and appends a score
	// and a rank per row. Calling Rank twice with identical inputs yields
	// identical output.
	//
	// Example:
	//
	//	ranked, err := ranker.Rank(ctx, table, []float64{0.5, 0.5},
	//	    []Impact{ImpactCost, ImpactBenefit})
	Rank(ctx context.Context, table Table, weights []float64, impacts []Impact) (*RankedTable, error)
}
