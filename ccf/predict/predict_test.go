package predict

import (
	"math"
	"testing"

	"github.com/ttomita/ccfs/ccf/tree"
)

func stubTree() *tree.Tree {
	// splits on x[0] <= 0.5
	left := &tree.Node{Leaf: true, TrainingCounts: []float64{3, 0}, Label: 0}
	right := &tree.Node{Leaf: true, TrainingCounts: []float64{0, 2}, Label: 1}
	root := &tree.Node{
		InCols:     []int{0},
		Projection: []float64{1},
		Partition:  0.5,
		Left:       left,
		Right:      right,
	}
	return &tree.Tree{Root: root}
}

func TestRowRoutesLeft(t *testing.T) {
	tr := stubTree()
	leaf := Row(tr, []float64{0})
	if leaf.Label != 0 {
		t.Errorf("label = %d, want 0", leaf.Label)
	}
}

func TestRowRoutesRight(t *testing.T) {
	tr := stubTree()
	leaf := Row(tr, []float64{1})
	if leaf.Label != 1 {
		t.Errorf("label = %d, want 1", leaf.Label)
	}
}

func TestRowPartitionBoundaryGoesLeft(t *testing.T) {
	tr := stubTree()
	leaf := Row(tr, []float64{0.5})
	if leaf.Label != 0 {
		t.Errorf("boundary row should route left (<=), got label %d", leaf.Label)
	}
}

func TestClassProbabilitiesAveragesAcrossTrees(t *testing.T) {
	trees := []*tree.Tree{stubTree(), stubTree()}
	probs := ClassProbabilities(trees, []float64{0})
	if math.Abs(probs[0]-1) > 1e-9 || math.Abs(probs[1]) > 1e-9 {
		t.Errorf("probs = %v, want [1 0]", probs)
	}
}

func TestArgmaxPerTaskPicksHighestPerBlock(t *testing.T) {
	probs := []float64{0.2, 0.8, 0.9, 0.1}
	taskIDs := []int{0, 0, 1, 1}
	winners := ArgmaxPerTask(probs, taskIDs)
	if winners[0] != 1 || winners[1] != 2 {
		t.Errorf("winners = %v, want [1 2]", winners)
	}
}

func TestRegressAveragesAndUnstandardizes(t *testing.T) {
	left := &tree.Node{Leaf: true, Mean: []float64{1}}
	right := &tree.Node{Leaf: true, Mean: []float64{-1}}
	root := &tree.Node{InCols: []int{0}, Projection: []float64{1}, Partition: 0, Left: left, Right: right}
	trees := []*tree.Tree{{Root: root}, {Root: root}}

	out := Regress(trees, []float64{-1}, []float64{10}, []float64{2})
	// both trees route left (x[0]=-1 <= 0), mean=1, avg=1, unstandardized = 1*2+10 = 12
	if math.Abs(out[0]-12) > 1e-9 {
		t.Errorf("regress = %v, want [12]", out)
	}
}
