package ccf

import (
	"math"
	"math/rand"

	"github.com/golang/glog"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
	"github.com/ttomita/ccfs/ccf/predict"
	"github.com/ttomita/ccfs/ccf/rotation"
	"github.com/ttomita/ccfs/ccf/tree"
)

// fitTree implements the per-tree driver of spec.md §4.5: missing-value
// resolution, bagging, optional whole-tree rotation, growing, OOB
// inference on the held-out rows, and, when a test matrix is supplied,
// scoring it once before the tree is optionally discarded (§4.6 step 5).
func fitTree(X, Y [][]float64, featureGroup []int, opt config.Options, rng *rand.Rand, xTest [][]float64) (*tree.Tree, error) {
	n := len(X)
	Xres := resolveMissing(X, opt.MissingValuesMethod, rng)

	bagRows := allRows(n)
	var oobRows []int
	if opt.BagTrees {
		bagRows, oobRows = bootstrapRows(n, rng)
	}

	XBag := selectRows(Xres, bagRows)
	YBag := selectRows(Y, bagRows)

	var rot *rotation.Result
	if opt.TreeRotation != config.RotationNone {
		XBagDense := linalg.ToDense(XBag)
		YBagDense := linalg.ToDense(YBag)
		fitted, err := rotation.Fit(opt.TreeRotation, XBagDense, YBagDense, opt, rng)
		if err != nil {
			return nil, err
		}
		rot = fitted
		if rot != nil {
			XBag = linalg.FromDense(rot.Apply(XBagDense))
		}
	}

	root, err := tree.Grow(XBag, YBag, featureGroup, opt, rng)
	if err != nil {
		return nil, err
	}

	t := &tree.Tree{Root: root, Rotation: rot}

	if opt.BagTrees {
		t.OOBRows = oobRows
		t.OOBPredictions = make([][]float64, len(oobRows))
		for i, r := range oobRows {
			leaf := predict.Row(t, Xres[r])
			t.OOBPredictions[i] = leafOutput(leaf, opt.SplitCriterion)
		}
	}

	if xTest != nil {
		t.TestPredictions = make([][]float64, len(xTest))
		for i, row := range xTest {
			leaf := predict.Row(t, row)
			t.TestPredictions[i] = leafOutput(leaf, opt.SplitCriterion)
		}
		if !opt.KeepTrees {
			t.Root = nil
			t.Rotation = nil
			t.OOBRows = nil
			t.OOBPredictions = nil
		}
	}
	return t, nil
}

// resolveMissing implements the MissingRandom branch of spec.md §4.5 step
// 1: a per-tree, per-missing-entry draw from the empirical distribution of
// that column. MissingMean is a no-op here — the mean substitution happens
// once upstream in ccf/input.
func resolveMissing(X [][]float64, method config.MissingValuesMethod, rng *rand.Rand) [][]float64 {
	if method != config.MissingRandom || len(X) == 0 {
		return X
	}
	d := len(X[0])
	pools := make([][]float64, d)
	for _, row := range X {
		for c := 0; c < d; c++ {
			if !math.IsNaN(row[c]) {
				pools[c] = append(pools[c], row[c])
			}
		}
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		nr := append([]float64(nil), row...)
		for c := 0; c < d; c++ {
			if math.IsNaN(nr[c]) && len(pools[c]) > 0 {
				nr[c] = pools[c][rng.Intn(len(pools[c]))]
			}
		}
		out[i] = nr
	}
	return out
}

func bootstrapRows(n int, rng *rand.Rand) (bagRows, oobRows []int) {
	inBag := make([]bool, n)
	bagRows = make([]int, n)
	for i := range bagRows {
		r := rng.Intn(n)
		bagRows[i] = r
		inBag[r] = true
	}
	for i, in := range inBag {
		if !in {
			oobRows = append(oobRows, i)
		}
	}
	if len(oobRows) == 0 {
		glog.V(1).Info("bootstrap sample left no out-of-bag rows")
	}
	return bagRows, oobRows
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func selectRows(X [][]float64, rows []int) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = X[r]
	}
	return out
}

// leafOutput normalizes a leaf's training counts into class probabilities
// for classification, or passes through the standardized mean for
// regression, so OOB accumulation and forest aggregation share one shape.
func leafOutput(leaf *tree.Node, criterion config.SplitCriterion) []float64 {
	if criterion == config.MSE {
		return leaf.Mean
	}
	total := 0.0
	for _, c := range leaf.TrainingCounts {
		total += c
	}
	out := make([]float64, len(leaf.TrainingCounts))
	if total == 0 {
		return out
	}
	for i, c := range leaf.TrainingCounts {
		out[i] = c / total
	}
	return out
}
