package projection

import (
	"fmt"
	"math/rand"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// PCAFitter returns the right singular vectors of the centered bagged
// covariates, ignoring the targets entirely. Columns are orthonormal
// (spec.md §4.2).
type PCAFitter struct{}

func (PCAFitter) Fit(XBag, _ *mat.Dense, _ *rand.Rand) (*mat.Dense, error) {
	n, d := XBag.Dims()
	if n < 2 || d == 0 {
		return nil, nil
	}

	xc := linalg.Center(XBag, linalg.ColMeans(XBag))

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, fmt.Errorf("projection: pca svd did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	if glog.V(2) {
		var totalVar float64
		for c := 0; c < d; c++ {
			totalVar += stat.Variance(mat.Col(nil, c, xc), nil)
		}
		glog.Infof("projection: pca total bag variance %.4f over %d columns", totalVar, d)
	}

	return &v, nil
}
