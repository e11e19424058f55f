// Package numeric implements the small numeric utilities of spec.md §4.1:
// column variation, the two-unique-rows test, NaN-sentinel-aware
// standardization, and safe division. These are grounded in the constant-
// feature test embedded in the teacher's splitter
// (tree/build.go: "xt[len(xt)-1] <= xt[0]+1e-7") generalized into named,
// reusable predicates instead of an inline comparison.
package numeric

import "math"

// ColumnVaries reports whether column col of X has max-min > tol over rows,
// ignoring NaN sentinels (spec.md §4.1).
func ColumnVaries(X [][]float64, rows []int, col int, tol float64) bool {
	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		v := X[r][col]
		if math.IsNaN(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if max-min > tol {
			return true
		}
	}
	return false
}

// AnyColumnVaries reports whether at least one column in cols varies.
func AnyColumnVaries(X [][]float64, rows []int, cols []int, tol float64) bool {
	for _, c := range cols {
		if ColumnVaries(X, rows, c, tol) {
			return true
		}
	}
	return false
}

// VaryingColumns returns the subset of cols whose column varies.
func VaryingColumns(X [][]float64, rows []int, cols []int, tol float64) []int {
	var out []int
	for _, c := range cols {
		if ColumnVaries(X, rows, c, tol) {
			out = append(out, c)
		}
	}
	return out
}

// TwoUniqueRows reports whether rows index exactly two distinct rows of X
// (within tol), the §4.4 "two-point special case" precondition: true iff,
// after excluding rows equal to the first row, all remaining rows are
// equal to a single other row.
func TwoUniqueRows(X [][]float64, rows []int, cols []int, tol float64) (bool, int, int) {
	if len(rows) < 2 {
		return false, -1, -1
	}
	first := rows[0]
	var second = -1
	for _, r := range rows[1:] {
		if rowsEqual(X, first, r, cols, tol) {
			continue
		}
		if second == -1 {
			second = r
			continue
		}
		if !rowsEqual(X, second, r, cols, tol) {
			return false, -1, -1
		}
	}
	if second == -1 {
		return false, -1, -1
	}
	return true, first, second
}

func rowsEqual(X [][]float64, a, b int, cols []int, tol float64) bool {
	for _, c := range cols {
		if math.Abs(X[a][c]-X[b][c]) > tol {
			return false
		}
	}
	return true
}

// Standardize computes per-column mean and stddev over rows, ignoring NaN
// sentinels; a zero stddev is replaced by 1 to avoid dividing by zero
// (spec.md §4.1).
func Standardize(X [][]float64, rows []int, nCols int) (mean, std []float64) {
	mean = make([]float64, nCols)
	std = make([]float64, nCols)
	count := make([]int, nCols)

	for _, r := range rows {
		for c := 0; c < nCols; c++ {
			v := X[r][c]
			if math.IsNaN(v) {
				continue
			}
			mean[c] += v
			count[c]++
		}
	}
	for c := 0; c < nCols; c++ {
		if count[c] > 0 {
			mean[c] /= float64(count[c])
		}
	}

	for _, r := range rows {
		for c := 0; c < nCols; c++ {
			v := X[r][c]
			if math.IsNaN(v) {
				continue
			}
			d := v - mean[c]
			std[c] += d * d
		}
	}
	for c := 0; c < nCols; c++ {
		if count[c] > 0 {
			std[c] = math.Sqrt(std[c] / float64(count[c]))
		}
		if std[c] == 0 {
			std[c] = 1
		}
	}

	return mean, std
}

// SafeDiv returns a/b, substituting 0 when b is 0 instead of producing NaN
// or +/-Inf.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
