package ccf

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/ttomita/ccfs/ccf/config"
)

func ordinal(d int) []bool {
	out := make([]bool, d)
	for i := range out {
		out[i] = true
	}
	return out
}

// TestFitClassifierLinearlySeparable is end-to-end scenario 1 of spec.md §8,
// run through the forest driver instead of the bare tree grower.
func TestFitClassifierLinearlySeparable(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}}

	f, err := FitClassifier(X, ordinal(2), labels,
		config.NTrees(1), config.BagTrees(false),
		config.WithProjection(config.ProjOriginal, true),
		config.WithProjection(config.ProjCCA, false),
	)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	preds := f.PredictClass(X)
	for i, want := range []string{"A", "A", "B", "B"} {
		if preds[i][0] != want {
			t.Errorf("row %d: predicted %s, want %s", i, preds[i][0], want)
		}
	}
}

func TestFitRegressorConstantTarget(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	Y := [][]float64{{7}, {7}, {7}}

	f, err := FitRegressor(X, ordinal(2), Y, config.NTrees(3), config.BagTrees(false))
	if err != nil {
		t.Fatalf("FitRegressor: %v", err)
	}

	out := f.Predict(X)
	for i, row := range out {
		if math.Abs(row[0]-7) > 1e-6 {
			t.Errorf("row %d: predicted %v, want 7", i, row)
		}
	}
}

// TestOOBErrorBoundedOnXOR is end-to-end scenario 5 of spec.md §8: the
// accumulated OOB error must at least be a well-formed rate.
func TestOOBErrorBoundedOnXOR(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 200
	X := make([][]float64, n)
	labels := make([][]string, n)
	for i := 0; i < n; i++ {
		x1, x2 := rng.Float64(), rng.Float64()
		X[i] = []float64{x1, x2}
		if (x1 > 0.5) != (x2 > 0.5) {
			labels[i] = []string{"pos"}
		} else {
			labels[i] = []string{"neg"}
		}
	}

	f, err := FitClassifier(X, ordinal(2), labels,
		config.NTrees(50), config.BagTrees(true),
		config.WithProjection(config.ProjCCA, true),
		config.Seed(11),
	)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}
	if !f.OOBAvailable {
		t.Fatal("expected OOB error to be available with bag_trees=true")
	}
	if f.OOBError < 0 || f.OOBError > 1 {
		t.Errorf("OOB error = %f, want a rate in [0,1]", f.OOBError)
	}
}

func TestDeterminismUnderSeed(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.5, 0.5}, {0.2, 0.8}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}, {"A"}, {"B"}}

	opts := []config.Option{
		config.NTrees(5), config.BagTrees(true), config.Seed(42),
		config.WithProjection(config.ProjCCA, true),
	}

	f1, err := FitClassifier(X, ordinal(2), labels, opts...)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}
	f2, err := FitClassifier(X, ordinal(2), labels, opts...)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	p1, p2 := f1.PredictProb(X), f2.PredictProb(X)
	for i := range p1 {
		for c := range p1[i] {
			if p1[i][c] != p2[i][c] {
				t.Fatalf("row %d class %d: %f != %f, want identical seeded builds", i, c, p1[i][c], p2[i][c])
			}
		}
	}
}

func TestSaveLoadRoundTripPredictionsMatch(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}}

	f, err := FitClassifier(X, ordinal(2), labels, config.NTrees(3), config.BagTrees(false))
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want, got := f.PredictProb(X), loaded.PredictProb(X)
	for i := range want {
		for c := range want[i] {
			if want[i][c] != got[i][c] {
				t.Errorf("row %d class %d: %f != %f after round-trip", i, c, want[i][c], got[i][c])
			}
		}
	}
}

func TestVarImpSumsToOne(t *testing.T) {
	X := [][]float64{{0, 5}, {0, 6}, {1, 5}, {1, 6}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}}

	f, err := FitClassifier(X, ordinal(2), labels, config.NTrees(10), config.BagTrees(false))
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	imp := f.VarImp()
	var total float64
	for _, v := range imp {
		total += v
	}
	if math.Abs(total-1) > 1e-6 {
		t.Errorf("VarImp sums to %f, want 1", total)
	}
	if imp[1] > 1e-6 {
		t.Errorf("column 1 never varies with the label, expected ~0 importance, got %f", imp[1])
	}
}

// TestFitClassifierWithTestDataRecordsPredictions is spec.md §4.6 step 5:
// supplying a test matrix at fit time records aggregated predictions for
// it without requiring a separate PredictProb call.
func TestFitClassifierWithTestDataRecordsPredictions(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}}
	Xtest := [][]float64{{0, 0}, {1, 1}}

	f, err := FitClassifier(X, ordinal(2), labels,
		config.NTrees(5), config.BagTrees(false), config.WithTestData(Xtest))
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	if len(f.TestPredictions) != len(Xtest) {
		t.Fatalf("got %d test prediction rows, want %d", len(f.TestPredictions), len(Xtest))
	}
	if f.Trees[0].Root == nil {
		t.Fatal("keep_trees defaults to true, tree should not be discarded")
	}
	if argmax(f.TestPredictions[0]) == argmax(f.TestPredictions[1]) {
		t.Errorf("expected opposite classes for the two well-separated test rows")
	}
}

// TestFitClassifierKeepTreesFalseDiscardsTreesAndOOB exercises the memory-
// saving path: trees are discarded after scoring the test matrix, and OOB
// error is unavailable since the trees needed to compute it are gone.
func TestFitClassifierKeepTreesFalseDiscardsTreesAndOOB(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.2, 0.1}, {0.9, 0.8}}
	labels := [][]string{{"A"}, {"A"}, {"B"}, {"B"}, {"A"}, {"B"}}
	Xtest := [][]float64{{0, 0}, {1, 1}}

	f, err := FitClassifier(X, ordinal(2), labels,
		config.NTrees(5), config.BagTrees(true), config.KeepTrees(false), config.WithTestData(Xtest))
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	if len(f.TestPredictions) != len(Xtest) {
		t.Fatalf("got %d test prediction rows, want %d", len(f.TestPredictions), len(Xtest))
	}
	for i, tr := range f.Trees {
		if tr.Root != nil {
			t.Errorf("tree %d: Root should be discarded when keep_trees is false", i)
		}
		if tr.OOBPredictions != nil {
			t.Errorf("tree %d: OOBPredictions should be discarded when keep_trees is false", i)
		}
	}
	if f.OOBAvailable {
		t.Error("OOB error should be unavailable once trees are discarded")
	}
}
