package domain

import (
	"fmt"
	"slices"
)

// Alternative is one candidate being ranked: an opaque label plus one
// value per criterion.
type Alternative struct {
	// Label identifies the alternative, taken from the first input column.
	Label string `json:"label"`

	// Values holds the raw criterion values in column order.
	Values []float64 `json:"values"`
}

// Table is the ranking input: a label column followed by N criteria
// columns. Header names are kept so they can be reused in the output.
type Table struct {
	// LabelName is the header of the label column.
	LabelName string `json:"label_name"`

	// Criteria holds the criterion column names in order.
	Criteria []string `json:"criteria"`

	// Alternatives holds the rows in input order.
	Alternatives []Alternative `json:"alternatives"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	var alts []Alternative
	if t.Alternatives != nil {
		alts = make([]Alternative, len(t.Alternatives))
		for i, alt := range t.Alternatives {
			alts[i] = Alternative{Label: alt.Label, Values: slices.Clone(alt.Values)}
		}
	}
	return Table{
		LabelName:    t.LabelName,
		Criteria:     slices.Clone(t.Criteria),
		Alternatives: alts,
	}
}

// NumCriteria returns N, the number of criteria columns. When no header
// names were supplied it falls back to the width of the first row.
func (t Table) NumCriteria() int {
	if len(t.Criteria) > 0 {
		return len(t.Criteria)
	}
	if len(t.Alternatives) > 0 {
		return len(t.Alternatives[0].Values)
	}
	return 0
}

// NumAlternatives returns M, the number of rows.
func (t Table) NumAlternatives() int { return len(t.Alternatives) }

// Matrix returns a fresh copy of the criteria values.
func (t Table) Matrix() Matrix {
	m := make(Matrix, len(t.Alternatives))
	for i, alt := range t.Alternatives {
		m[i] = slices.Clone(alt.Values)
	}
	return m
}

// Labels returns the alternative labels in input order.
func (t Table) Labels() []string {
	labels := make([]string, len(t.Alternatives))
	for i, alt := range t.Alternatives {
		labels[i] = alt.Label
	}
	return labels
}

// ResultRow pairs an alternative with its computed closeness score and
// rank. Rank 1 is best.
type ResultRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Score  float64   `json:"score"`
	Rank   int       `json:"rank"`
}

// Output column names appended after the criteria columns.
const (
	ScoreColumn = "score"
	RankColumn  = "rank"
)

// RankedTable is the ranking output: the input columns plus a score and
// a rank column. Rows keep the input order; ranks are derived data, not a
// reordering.
type RankedTable struct {
	LabelName string      `json:"label_name"`
	Criteria  []string    `json:"criteria"`
	Rows      []ResultRow `json:"rows"`
}

// Header returns the full output header: label, criteria, score, rank.
func (rt *RankedTable) Header() []string {
	header := make([]string, 0, len(rt.Criteria)+3)
	header = append(header, rt.LabelName)
	header = append(header, rt.Criteria...)
	return append(header, ScoreColumn, RankColumn)
}

// ByRank returns a copy of the rows ordered by rank, ties kept in input
// order.
func (rt *RankedTable) ByRank() []ResultRow {
	rows := slices.Clone(rt.Rows)
	slices.SortStableFunc(rows, func(a, b ResultRow) int {
		return a.Rank - b.Rank
	})
	return rows
}

// Best returns the first row holding rank 1 and false when the table is
// empty.
func (rt *RankedTable) Best() (ResultRow, bool) {
	for _, row := range rt.Rows {
		if row.Rank == 1 {
			return row, true
		}
	}
	return ResultRow{}, false
}

// RowWarning records an input row that was dropped before ranking.
type RowWarning struct {
	// Line is the 1-based line number of the record in the source file.
	Line int `json:"line"`

	// Column is the offending column name, or empty when the whole
	// record was malformed.
	Column string `json:"column,omitempty"`

	// Reason explains why the row was dropped.
	Reason string `json:"reason"`
}

// String formats the warning for logs.
func (w RowWarning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("line %d: column %q: %s", w.Line, w.Column, w.Reason)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}
