// Package ccf implements the canonical correlation forest driver of
// spec.md §4.6: standardization/class-encoding, parallel tree growth,
// aggregation, out-of-bag error, variable importance, and persistence.
//
// Grounded in the teacher's forest package (forest/forest.go,
// forest/regressor.go): the functional-options config surface, the
// worker-pool tree fit, the OOB confusion-matrix accumulator, and
// gob-based Save/Load are all generalized from there. The worker pool is
// rebuilt on golang.org/x/sync/errgroup so a failed tree actually stops the
// remaining fan-out (spec.md §5 "Suspension / cancellation"), which the
// teacher's raw channel pool does not support.
package ccf

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/input"
	"github.com/ttomita/ccfs/ccf/predict"
	"github.com/ttomita/ccfs/ccf/tree"
)

// Forest is a fitted canonical correlation forest, classification or
// regression (spec.md §3 "Persisted state").
type Forest struct {
	Options        config.Options
	Classification bool

	Ordinal      []bool
	FeatureGroup []int
	InputDetails input.Details

	ClassNames []string
	TaskIDs    []int

	MuY, StdY []float64 // regression only

	// Trees is empty of Root/Rotation per-tree once KeepTrees is false and
	// a test matrix was supplied: PredictProb/PredictClass/Predict then
	// have nothing left to traverse, and only TestPredictions is valid.
	Trees []*tree.Tree

	OOBAvailable bool
	OOBError     float64

	// TestPredictions holds the per-row aggregate over trees' recorded
	// test-matrix predictions (spec.md §4.6 step 5): classification rows
	// are mean class probabilities, regression rows are un-standardized
	// means. Nil unless config.WithTestData supplied a test matrix.
	TestPredictions [][]float64
}

// FitClassifier trains a forest on raw feature columns and per-row, per-
// task class labels (spec.md §4.6 steps 1-2, classification branch).
func FitClassifier(X [][]float64, isOrdinal []bool, labels [][]string, opts ...config.Option) (*Forest, error) {
	opt, err := config.New(opts...)
	if err != nil {
		return nil, err
	}

	processed := input.Process(X, isOrdinal, opt.TestX, opt.MissingValuesMethod == config.MissingMean)
	Y, classNames, taskIDs := input.EncodeClasses(labels)
	opt.TaskIDs = taskIDs

	trees, err := growTrees(processed.X, Y, processed.FeatureGroup, opt, processed.XTest)
	if err != nil {
		return nil, err
	}

	f := &Forest{
		Options:        opt,
		Classification: true,
		Ordinal:        isOrdinal,
		FeatureGroup:   processed.FeatureGroup,
		InputDetails:   processed.Details,
		ClassNames:     classNames,
		TaskIDs:        taskIDs,
		Trees:          trees,
	}
	if processed.XTest != nil {
		f.TestPredictions = averageTestPredictions(trees, len(processed.XTest))
	}
	if opt.BagTrees && treesRetained(opt, processed.XTest) {
		f.computeOOBError(processed.X, Y)
	}
	return f, nil
}

// FitRegressor trains a forest on raw feature columns and real-valued
// targets (spec.md §4.6 steps 1-2, regression branch). The split
// criterion is always MSE for a regression forest, mirroring the
// teacher's Regressor (which ignores any configured impurity measure).
func FitRegressor(X [][]float64, isOrdinal []bool, Y [][]float64, opts ...config.Option) (*Forest, error) {
	opts = append(opts, config.WithSplitCriterion(config.MSE))
	opt, err := config.New(opts...)
	if err != nil {
		return nil, err
	}

	processed := input.Process(X, isOrdinal, opt.TestX, opt.MissingValuesMethod == config.MissingMean)
	Ystd, muY, stdY := input.StandardizeTargets(Y)

	trees, err := growTrees(processed.X, Ystd, processed.FeatureGroup, opt, processed.XTest)
	if err != nil {
		return nil, err
	}

	f := &Forest{
		Options:        opt,
		Classification: false,
		Ordinal:        isOrdinal,
		FeatureGroup:   processed.FeatureGroup,
		InputDetails:   processed.Details,
		MuY:            muY,
		StdY:           stdY,
		Trees:          trees,
	}
	if processed.XTest != nil {
		avg := averageTestPredictions(trees, len(processed.XTest))
		f.TestPredictions = make([][]float64, len(avg))
		for i, row := range avg {
			out := make([]float64, len(row))
			for c, v := range row {
				out[c] = v*stdY[c] + muY[c]
			}
			f.TestPredictions[i] = out
		}
	}
	if opt.BagTrees && treesRetained(opt, processed.XTest) {
		f.computeOOBError(processed.X, Ystd)
	}
	return f, nil
}

// treesRetained reports whether the forest's trees survive fitting intact:
// always true when no test matrix was supplied, otherwise only when
// keep_trees is set (spec.md §4.6 step 7: "OOB error ... only if ...
// trees retained").
func treesRetained(opt config.Options, xTest [][]float64) bool {
	return xTest == nil || opt.KeepTrees
}

// averageTestPredictions means each tree's recorded test-matrix output
// column-wise (spec.md §4.6 step 6's aggregation, applied to the step 5
// test-scoring path instead of live Predict/PredictProb).
func averageTestPredictions(trees []*tree.Tree, n int) [][]float64 {
	if n == 0 || len(trees) == 0 {
		return nil
	}
	k := len(trees[0].TestPredictions[0])
	sums := make([][]float64, n)
	for i := range sums {
		sums[i] = make([]float64, k)
	}
	for _, t := range trees {
		for i, p := range t.TestPredictions {
			for c, v := range p {
				sums[i][c] += v
			}
		}
	}
	nt := float64(len(trees))
	for i := range sums {
		for c := range sums[i] {
			sums[i][c] /= nt
		}
	}
	return sums
}

// growTrees implements spec.md §4.6 step 4: n_trees independent fits, each
// from its own deterministic per-tree RNG, fanned out across NumWorkers
// when UseParallel is set.
func growTrees(Xnum, Y [][]float64, featureGroup []int, opt config.Options, xTest [][]float64) ([]*tree.Tree, error) {
	if opt.UseParallel && opt.NumWorkers > 1 {
		return growParallel(Xnum, Y, featureGroup, opt, xTest)
	}
	if opt.UseParallel {
		glog.V(1).Info("use_parallel requested with num_workers <= 1, falling back to serial fit")
	}
	return growSerial(Xnum, Y, featureGroup, opt, xTest)
}

func growSerial(Xnum, Y [][]float64, featureGroup []int, opt config.Options, xTest [][]float64) ([]*tree.Tree, error) {
	trees := make([]*tree.Tree, opt.NTrees)
	for i := 0; i < opt.NTrees; i++ {
		rng := rand.New(rand.NewSource(opt.Seed + int64(i)))
		t, err := fitTree(Xnum, Y, featureGroup, opt, rng, xTest)
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	return trees, nil
}

func growParallel(Xnum, Y [][]float64, featureGroup []int, opt config.Options, xTest [][]float64) ([]*tree.Tree, error) {
	trees := make([]*tree.Tree, opt.NTrees)
	g, ctx := errgroup.WithContext(context.Background())

	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opt.NTrees; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opt.NumWorkers; w++ {
		g.Go(func() error {
			for i := range jobs {
				rng := rand.New(rand.NewSource(opt.Seed + int64(i)))
				t, err := fitTree(Xnum, Y, featureGroup, opt, rng, xTest)
				if err != nil {
					return err
				}
				trees[i] = t
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// computeOOBError implements spec.md §4.6 step 7: accumulate per-row OOB
// predictions across trees, then compare against the (already encoded or
// standardized) training targets.
func (f *Forest) computeOOBError(Xnum, Y [][]float64) {
	n := len(Xnum)
	k := len(Y[0])
	sums := make([][]float64, n)
	counts := make([]int, n)

	for _, t := range f.Trees {
		for i, r := range t.OOBRows {
			if sums[r] == nil {
				sums[r] = make([]float64, k)
			}
			for c, v := range t.OOBPredictions[i] {
				sums[r][c] += v
			}
			counts[r]++
		}
	}

	if f.Classification {
		var wrong, total int
		for r := 0; r < n; r++ {
			if counts[r] == 0 {
				continue
			}
			got := predict.ArgmaxPerTask(sums[r], f.TaskIDs)
			want := predict.ArgmaxPerTask(Y[r], f.TaskIDs)
			for t := range want {
				total++
				if got[t] != want[t] {
					wrong++
				}
			}
		}
		if total > 0 {
			f.OOBAvailable = true
			f.OOBError = float64(wrong) / float64(total)
		}
		return
	}

	var sse float64
	var total int
	for r := 0; r < n; r++ {
		if counts[r] == 0 {
			continue
		}
		total++
		for c := 0; c < k; c++ {
			mean := sums[r][c] / float64(counts[r])
			pred := mean*f.StdY[c] + f.MuY[c]
			actual := Y[r][c]*f.StdY[c] + f.MuY[c]
			d := pred - actual
			sse += d * d
		}
	}
	if total > 0 {
		f.OOBAvailable = true
		f.OOBError = sse / float64(total*k)
	}
}

// PredictProb returns per-row class probabilities (spec.md §4.6 step 6,
// classification). X is raw, untransformed feature columns.
func (f *Forest) PredictProb(X [][]float64) [][]float64 {
	Xnum := input.ApplyDetails(X, f.Ordinal, f.InputDetails)
	out := make([][]float64, len(Xnum))
	for i, row := range Xnum {
		out[i] = predict.ClassProbabilities(f.Trees, row)
	}
	return out
}

// PredictClass returns, per row, the winning class name for each task block
// (spec.md §4.6 step 6: "argmax per task, ties broken by first").
func (f *Forest) PredictClass(X [][]float64) [][]string {
	probs := f.PredictProb(X)
	out := make([][]string, len(probs))
	for i, p := range probs {
		winners := predict.ArgmaxPerTask(p, f.TaskIDs)
		names := make([]string, len(winners))
		for t, col := range winners {
			names[t] = f.ClassNames[col]
		}
		out[i] = names
	}
	return out
}

// Predict returns the un-standardized regression output per row.
func (f *Forest) Predict(X [][]float64) [][]float64 {
	Xnum := input.ApplyDetails(X, f.Ordinal, f.InputDetails)
	out := make([][]float64, len(Xnum))
	for i, row := range Xnum {
		out[i] = predict.Regress(f.Trees, row, f.MuY, f.StdY)
	}
	return out
}

func argmax(v []float64) int {
	best, idx := math.Inf(-1), 0
	for i, x := range v {
		if x > best {
			best, idx = x, i
		}
	}
	return idx
}

// Save writes the forest's gob-encoded state (spec.md §6 "Persisted
// state"), exactly as the teacher's Classifier/Regressor Save does.
func (f *Forest) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f)
}

// Load decodes a forest previously written by Save.
func Load(r io.Reader) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("ccf: decoding forest: %w", err)
	}
	return &f, nil
}
