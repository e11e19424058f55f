// Package linalg collects the small gonum-backed matrix helpers shared by
// the projection and rotation fitters: centering, symmetric inverse square
// root (for CCA whitening), random orthogonal matrices, finiteness checks,
// and column concatenation. None of this has a teacher precedent in
// wlattner/rf (it never needed linear algebra beyond sorting a column), so
// it is built directly against gonum.org/v1/gonum/mat following the usage
// pattern of the pack's other gonum-based numeric code.
package linalg

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ColMeans returns the per-column mean of m.
func ColMeans(m *mat.Dense) []float64 {
	r, c := m.Dims()
	means := make([]float64, c)
	if r == 0 {
		return means
	}
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += m.At(i, j)
		}
		means[j] = sum / float64(r)
	}
	return means
}

// Center returns a copy of m with mu subtracted from every row.
func Center(m *mat.Dense, mu []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(i, j)-mu[j])
		}
	}
	return out
}

// RegularizeSym adds ridge to the diagonal of a square matrix in place, the
// standard fix for a near-singular covariance/cross-covariance matrix before
// inverting it.
func RegularizeSym(m *mat.Dense, ridge float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		m.Set(i, i, m.At(i, i)+ridge)
	}
}

// InvSqrtSym computes the inverse square root of a symmetric positive
// (semi-)definite n x n matrix via its eigendecomposition, clamping
// eigenvalues away from zero. Used to whiten the covariance blocks in CCA.
func InvSqrtSym(m *mat.Dense, n int) (*mat.Dense, error) {
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			// average to force exact symmetry against float round-off
			data[i*n+j] = 0.5 * (m.At(i, j) + m.At(j, i))
		}
	}
	sym := mat.NewSymDense(n, data)

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("linalg: eigendecomposition failed")
	}
	values := eig.Values(nil)

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	invSqrt := make([]float64, n)
	for i, v := range values {
		if v < 1e-10 {
			v = 1e-10
		}
		invSqrt[i] = 1 / math.Sqrt(v)
	}
	diag := mat.NewDiagDense(n, invSqrt)

	var tmp, result mat.Dense
	tmp.Mul(&vectors, diag)
	result.Mul(&tmp, vectors.T())

	return &result, nil
}

// RandomOrthogonal returns a d x d random orthogonal matrix, the Q factor of
// the QR decomposition of a d x d matrix of iid standard normal draws.
func RandomOrthogonal(d int, rng *rand.Rand) *mat.Dense {
	raw := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			raw.Set(i, j, rng.NormFloat64())
		}
	}
	var qr mat.QR
	qr.Factorize(raw)
	var q mat.Dense
	qr.QTo(&q)
	return &q
}

// ToDense copies a row-major slice matrix into a gonum Dense.
func ToDense(X [][]float64) *mat.Dense {
	r := len(X)
	if r == 0 {
		return mat.NewDense(0, 0, nil)
	}
	c := len(X[0])
	m := mat.NewDense(r, c, nil)
	for i, row := range X {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m
}

// FromDense copies a gonum Dense back into a row-major slice matrix.
func FromDense(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

// Identity returns the n x n identity matrix.
func Identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Finite reports whether every entry of m is finite.
func Finite(m *mat.Dense) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// HConcat stacks matrices with equal row counts side by side, skipping any
// nil entries. Returns nil if there is nothing to concatenate.
func HConcat(mats ...*mat.Dense) *mat.Dense {
	var rows, cols int
	first := true
	for _, m := range mats {
		if m == nil {
			continue
		}
		r, c := m.Dims()
		if c == 0 {
			continue
		}
		if first {
			rows = r
			first = false
		}
		cols += c
	}
	if first || cols == 0 {
		return nil
	}

	out := mat.NewDense(rows, cols, nil)
	col := 0
	for _, m := range mats {
		if m == nil {
			continue
		}
		_, c := m.Dims()
		if c == 0 {
			continue
		}
		out.Slice(0, rows, col, col+c).(*mat.Dense).Copy(m)
		col += c
	}
	return out
}
