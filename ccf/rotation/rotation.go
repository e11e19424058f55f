// Package rotation implements the whole-tree input rotation fitters
// sketched in spec.md §6: random orthogonal, PCA, and Rotation-Forest
// block-diagonal PCA. Each returns the rotation matrix R and the centering
// vector mu; the rotated bag X_bag = (X_bag - mu)*R is computed separately
// by Result.Apply.
package rotation

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// Result holds a fitted rotation, stored on the tree wrapper (spec.md §3
// "Tree wrapper") and reapplied at inference.
type Result struct {
	R  *mat.Dense
	Mu []float64
}

// Apply centers and rotates X by the fitted transform.
func (r *Result) Apply(X *mat.Dense) *mat.Dense {
	if r == nil {
		return X
	}
	xc := linalg.Center(X, r.Mu)
	var out mat.Dense
	out.Mul(xc, r.R)
	return &out
}

// Fit dispatches to the configured rotation scheme. Returns (nil, nil) for
// config.RotationNone.
func Fit(kind config.TreeRotation, XBag, YBag *mat.Dense, opt config.Options, rng *rand.Rand) (*Result, error) {
	switch kind {
	case config.RotationNone:
		return nil, nil
	case config.RotationRandom:
		return fitRandom(XBag, rng)
	case config.RotationPCA:
		return fitPCA(XBag)
	case config.RotationForest:
		return fitRotationForest(XBag, YBag, opt, rng)
	default:
		return nil, fmt.Errorf("%w: unknown tree_rotation %v", config.ErrConfiguration, kind)
	}
}
