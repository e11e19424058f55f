// Package projection implements the projection providers sketched as an
// external contract in spec.md §4.2/§6: given a node's bagged data, return a
// matrix whose columns are candidate split directions.
package projection

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// Fitter is the contract every projection provider implements: given the
// bagged covariates and targets for one node, return P (d x p), or (nil,
// nil) if the bag is too degenerate for this kind to contribute any
// columns. A non-nil error means the provider itself failed (e.g. a
// decomposition did not converge), which is distinct from "contributed
// nothing".
type Fitter interface {
	Fit(XBag, YBag *mat.Dense, rng *rand.Rand) (*mat.Dense, error)
}

// FitEnabled runs every enabled projection kind, in the fixed order
// config.AllProjectionKinds, and concatenates their columns into a single P.
// Returns (nil, nil) if nothing was enabled or every enabled kind was
// degenerate for this bag (spec.md §4.2: "may return fewer columns than
// requested if the rank is deficient").
func FitEnabled(XBag, YBag *mat.Dense, enabled map[config.ProjectionKind]bool, rng *rand.Rand) (*mat.Dense, error) {
	var parts []*mat.Dense
	for _, kind := range config.AllProjectionKinds {
		if !enabled[kind] {
			continue
		}
		fitter := forKind(kind)
		p, err := fitter.Fit(XBag, YBag, rng)
		if err != nil {
			return nil, err
		}
		if p != nil {
			if !linalg.Finite(p) {
				return nil, errNonFinite(kind)
			}
			parts = append(parts, p)
		}
	}
	return linalg.HConcat(parts...), nil
}

func forKind(k config.ProjectionKind) Fitter {
	switch k {
	case config.ProjCCA:
		return CCAFitter{}
	case config.ProjPCA:
		return PCAFitter{}
	case config.ProjCCAClasswise:
		return CCAClasswiseFitter{}
	case config.ProjOriginal:
		return OriginalFitter{}
	case config.ProjRandom:
		return RandomFitter{}
	default:
		return noopFitter{}
	}
}

type noopFitter struct{}

func (noopFitter) Fit(*mat.Dense, *mat.Dense, *rand.Rand) (*mat.Dense, error) { return nil, nil }
