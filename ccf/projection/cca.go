package projection

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// ridge is the regularization added to the X and Y covariance blocks before
// whitening; without it a node with more columns than bagged rows has a
// singular covariance and CCA cannot be fit at all.
const ridge = 1e-6

// CCAFitter fits canonical correlation analysis directions between the
// bagged covariates and targets: the columns of P are the X-side canonical
// weight vectors, found via the classical whitened-SVD formulation
//
//	M = Sxx^-1/2 Sxy Syy^-1/2,  U, _, _ = svd(M),  P = Sxx^-1/2 U
//
// CCA outputs are not normalized (spec.md §4.2), only required to be
// finite.
type CCAFitter struct{}

func (CCAFitter) Fit(XBag, YBag *mat.Dense, _ *rand.Rand) (*mat.Dense, error) {
	n, d := XBag.Dims()
	ny, k := YBag.Dims()
	if n != ny {
		return nil, fmt.Errorf("projection: cca row mismatch %d vs %d", n, ny)
	}
	if n < 2 || d == 0 || k == 0 {
		return nil, nil
	}

	muX := linalg.ColMeans(XBag)
	muY := linalg.ColMeans(YBag)
	xc := linalg.Center(XBag, muX)
	yc := linalg.Center(YBag, muY)

	var sxx, sxy, syy mat.Dense
	sxx.Mul(xc.T(), xc)
	sxy.Mul(xc.T(), yc)
	syy.Mul(yc.T(), yc)

	linalg.RegularizeSym(&sxx, ridge)
	linalg.RegularizeSym(&syy, ridge)

	sxxInvSqrt, err := linalg.InvSqrtSym(&sxx, d)
	if err != nil {
		return nil, fmt.Errorf("projection: cca: %w", err)
	}
	syyInvSqrt, err := linalg.InvSqrtSym(&syy, k)
	if err != nil {
		return nil, fmt.Errorf("projection: cca: %w", err)
	}

	var tmp, m mat.Dense
	tmp.Mul(sxxInvSqrt, &sxy)
	m.Mul(&tmp, syyInvSqrt)

	var svd mat.SVD
	if ok := svd.Factorize(&m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("projection: cca svd did not converge")
	}
	var u mat.Dense
	svd.UTo(&u)

	var p mat.Dense
	p.Mul(sxxInvSqrt, &u)

	return &p, nil
}
