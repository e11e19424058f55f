package rotation

import (
	"fmt"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// fitPCA implements pcaLite (spec.md §6), returning (R, mu) for X_bag.
// R is the matrix of right singular vectors of the centered bag; the
// rotated bag is obtained with Result.Apply.
func fitPCA(XBag *mat.Dense) (*Result, error) {
	n, d := XBag.Dims()
	if n < 2 || d == 0 {
		return nil, nil
	}

	mu := linalg.ColMeans(XBag)
	xc := linalg.Center(XBag, mu)

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, fmt.Errorf("rotation: pca svd did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	if glog.V(2) {
		glog.Infof("rotation: pca total input variance %.4f over %d columns", totalVariance(xc, d), d)
	}

	return &Result{R: &v, Mu: mu}, nil
}

// totalVariance sums each column's variance, for the verbose diagnostic
// above; not used in the rotation decision itself.
func totalVariance(xc *mat.Dense, d int) float64 {
	var total float64
	for c := 0; c < d; c++ {
		total += stat.Variance(mat.Col(nil, c, xc), nil)
	}
	return total
}
