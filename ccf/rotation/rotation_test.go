package rotation

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

func TestFitRandomOrthogonal(t *testing.T) {
	X := mat.NewDense(5, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	})
	res, err := Fit(config.RotationRandom, X, nil, config.Default(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var gram mat.Dense
	gram.Mul(res.R.T(), res.R)
	r, c := gram.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := gram.At(i, j); got < want-1e-6 || got > want+1e-6 {
				t.Errorf("gram[%d][%d] = %f, want %f", i, j, got, want)
			}
		}
	}
}

func TestFitRotationForestBlockDiagonalFinite(t *testing.T) {
	X := mat.NewDense(8, 4, []float64{
		0, 0, 1, 2,
		1, 0, 0, 1,
		0, 1, 1, 0,
		1, 1, 0, 2,
		0.5, 0.2, 1, 1,
		0.2, 0.8, 0, 0,
		0.9, 0.1, 1, 2,
		0.3, 0.6, 0, 1,
	})
	Y := mat.NewDense(8, 2, []float64{
		1, 0,
		1, 0,
		0, 1,
		0, 1,
		1, 0,
		0, 1,
		1, 0,
		0, 1,
	})
	opt := config.Default()
	opt.RotForestNumBlocks = 2

	res, err := Fit(config.RotationForest, X, Y, opt, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, cols := res.R.Dims()
	if rows != 4 || cols != 4 {
		t.Fatalf("expected a 4x4 rotation, got %dx%d", rows, cols)
	}
	if !linalg.Finite(res.R) {
		t.Fatal("expected every entry of R to be finite")
	}
	// two blocks of two columns each: a row of R is nonzero only inside its block
	for i := 0; i < rows; i++ {
		nonzero := 0
		for j := 0; j < cols; j++ {
			if res.R.At(i, j) != 0 {
				nonzero++
			}
		}
		if nonzero > 2 {
			t.Errorf("row %d of R has %d nonzero entries, want at most 2", i, nonzero)
		}
	}
}

func TestApplyCentersAndRotates(t *testing.T) {
	res := &Result{
		R:  mat.NewDense(2, 2, []float64{0, 1, 1, 0}), // swap columns
		Mu: []float64{1, 2},
	}
	X := mat.NewDense(1, 2, []float64{3, 5})
	out := res.Apply(X)
	if got := out.At(0, 0); got != 3.0 { // (5-2) swapped into col 0
		t.Errorf("got %f, want 3.0", got)
	}
	if got := out.At(0, 1); got != 2.0 { // (3-1) swapped into col 1
		t.Errorf("got %f, want 2.0", got)
	}
}
