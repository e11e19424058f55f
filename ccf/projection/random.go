package projection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// RandomFitter returns a random orthogonal d x d matrix, independent of
// both X and Y, drawn from the node's tree-local RNG (spec.md §5: "every
// stochastic choice ... draws from a tree-local RNG").
type RandomFitter struct{}

func (RandomFitter) Fit(XBag, _ *mat.Dense, rng *rand.Rand) (*mat.Dense, error) {
	_, d := XBag.Dims()
	if d == 0 {
		return nil, nil
	}
	return linalg.RandomOrthogonal(d, rng), nil
}
