package tree

// twoPointDirection implements the §4.4/§9 two-point special case: when a
// node's bag contains exactly two unique rows, the maximum-margin
// hyperplane perpendicular to the vector between them is used directly
// instead of fitting a projection. The partition point sits midway along
// that vector. Only the documented, non-buggy behavior is implemented (see
// DESIGN.md, "Open Questions resolved": the original CCF source flags this
// path as historically buggy; this reimplementation does not reproduce the
// bug).
func twoPointDirection(X [][]float64, cols []int, rowA, rowB int) (proj []float64, partition float64) {
	proj = make([]float64, len(cols))
	for i, c := range cols {
		proj[i] = X[rowB][c] - X[rowA][c]
	}
	var dotA, dotB float64
	for i, c := range cols {
		dotA += X[rowA][c] * proj[i]
		dotB += X[rowB][c] * proj[i]
	}
	return proj, 0.5 * (dotA + dotB)
}
