package projection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// OriginalFitter returns the identity matrix over the node's active
// columns, i.e. "project onto each input axis unchanged". Distinct from
// the include_original_axes option (spec.md §4.2), which appends identity
// columns to whatever P the enabled kinds produced; ProjOriginal is itself
// an enabled kind, so a node can ask for untransformed axes as one
// candidate family among several.
type OriginalFitter struct{}

func (OriginalFitter) Fit(XBag, _ *mat.Dense, _ *rand.Rand) (*mat.Dense, error) {
	_, d := XBag.Dims()
	if d == 0 {
		return nil, nil
	}
	return linalg.Identity(d), nil
}
