package rotation

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// fitRandom implements randomRotation (spec.md §6): (R, mu) <-
// (random_orthogonal(d), colmean(X_bag)).
func fitRandom(XBag *mat.Dense, rng *rand.Rand) (*Result, error) {
	_, d := XBag.Dims()
	if d == 0 {
		return nil, nil
	}
	return &Result{
		R:  linalg.RandomOrthogonal(d, rng),
		Mu: linalg.ColMeans(XBag),
	}, nil
}
