package domain

import "math"

// Matrix is a rectangular table of criterion values: rows are
// alternatives and columns are criteria. Stages never modify a Matrix
// they received; they build a new one.
type Matrix [][]float64

// NewMatrix allocates a zero-filled rows×cols matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Rows returns the number of alternatives.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of criteria, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Column returns a copy of column j.
func (m Matrix) Column(j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// ColumnNorm returns the Euclidean norm of column j. It is zero only when
// every value in the column is zero.
func (m Matrix) ColumnNorm(j int) float64 {
	return scaledNorm(len(m), func(i int) float64 { return m[i][j] })
}

// IdealPoints holds the direction-adjusted best and worst value of every
// weighted criterion column.
type IdealPoints struct {
	Best  []float64 `json:"best"`
	Worst []float64 `json:"worst"`
}

// Distances holds each alternative's Euclidean distance to the ideal best
// vector (S+) and to the ideal worst vector (S-), in input order.
type Distances struct {
	ToBest  []float64 `json:"to_best"`
	ToWorst []float64 `json:"to_worst"`
}

// EuclideanDistance returns the L2 distance between two equal-length
// vectors.
func EuclideanDistance(a, b []float64) float64 {
	return scaledNorm(len(a), func(i int) float64 { return a[i] - b[i] })
}

// scaledNorm returns sqrt(Σ at(i)²) for i in [0, n). Every term is divided
// by the largest magnitude before squaring, so squares neither underflow
// for tiny values nor overflow for huge ones.
func scaledNorm(n int, at func(int) float64) float64 {
	var scale float64
	for i := range n {
		scale = max(scale, math.Abs(at(i)))
	}
	if scale == 0 || !IsFinite(scale) {
		return scale
	}
	var sum float64
	for i := range n {
		r := at(i) / scale
		sum += r * r
	}
	return scale * math.Sqrt(sum)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
