package projection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// CCAClasswiseFitter fits one CCA direction per column of YBag (one class,
// or one task's column, at a time) instead of a single joint CCA over the
// whole target block. This surfaces directions that separate an individual
// class from the rest even when the joint fit would be dominated by the
// majority classes.
type CCAClasswiseFitter struct{}

func (CCAClasswiseFitter) Fit(XBag, YBag *mat.Dense, rng *rand.Rand) (*mat.Dense, error) {
	n, k := YBag.Dims()
	if k == 0 {
		return nil, nil
	}

	cca := CCAFitter{}
	var parts []*mat.Dense
	for c := 0; c < k; c++ {
		col := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			col.Set(i, 0, YBag.At(i, c))
		}
		p, err := cca.Fit(XBag, col, rng)
		if err != nil {
			return nil, err
		}
		if p != nil {
			parts = append(parts, p)
		}
	}
	return linalg.HConcat(parts...), nil
}
