package tree

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
)

func TestSelectFeaturesDropsConstantGroup(t *testing.T) {
	// column 0 is constant, column 1 varies; both in their own group.
	X := [][]float64{{1, 0}, {1, 1}, {1, 2}}
	rows := []int{0, 1, 2}
	group := []int{0, 1}

	cols, _ := selectFeatures(X, rows, group, 2, 1e-9, rand.New(rand.NewSource(1)))
	if len(cols) != 1 || cols[0] != 1 {
		t.Errorf("selectFeatures = %v, want [1]", cols)
	}
}

func TestSelectFeaturesAllConstantReturnsEmpty(t *testing.T) {
	X := [][]float64{{1, 2}, {1, 2}, {1, 2}}
	rows := []int{0, 1, 2}
	group := []int{0, 1}

	cols, _ := selectFeatures(X, rows, group, 2, 1e-9, rand.New(rand.NewSource(1)))
	if cols != nil {
		t.Errorf("selectFeatures = %v, want nil", cols)
	}
}

func TestComposeProjectionIncludeSampledAppendsIdentity(t *testing.T) {
	sampled := []int{0, 2}
	group := []int{0, -1, 0}
	_, p := composeProjection(nil, sampled, group, 3, config.IncludeSampled)
	r, c := p.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("dims = %dx%d, want 2x2 identity", r, c)
	}
	if p.At(0, 0) != 1 || p.At(0, 1) != 0 || p.At(1, 0) != 0 || p.At(1, 1) != 1 {
		t.Error("expected an identity matrix over the sampled columns")
	}
}

func TestComposeProjectionIncludeAllExpandsToActiveColumns(t *testing.T) {
	// 3 columns total, column 1 marked absent by an earlier resampling step.
	sampled := []int{0}
	group := []int{0, config.Absent, 2}
	P := mat.NewDense(1, 1, []float64{5})

	cols, p := composeProjection(P, sampled, group, 3, config.IncludeAll)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 2 {
		t.Fatalf("active columns = %v, want [0 2]", cols)
	}
	r, c := p.Dims()
	if r != 2 || c != 3 { // 1 fitted column + identity(2) over the 2 active columns
		t.Fatalf("dims = %dx%d, want 2x3", r, c)
	}
	if p.At(0, 0) != 5 {
		t.Errorf("expanded P row for sampled column 0 = %f, want 5", p.At(0, 0))
	}
	if p.At(1, 0) != 0 {
		t.Errorf("expanded P row for column 2 (never sampled) = %f, want 0", p.At(1, 0))
	}
}

func TestTwoPointDirectionMidpointStrictlyBetween(t *testing.T) {
	X := [][]float64{{0, 0}, {2, 2}}
	proj, partition := twoPointDirection(X, []int{0, 1}, 0, 1)
	if proj[0] != 2 || proj[1] != 2 {
		t.Fatalf("proj = %v, want [2 2]", proj)
	}
	if partition <= 0 || partition >= 8 {
		t.Errorf("partition = %f, want strictly between the two projected values", partition)
	}
}
