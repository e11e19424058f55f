// Package tree implements the per-node CCT (canonical correlation tree)
// grower (spec.md §4.4) and the split evaluator it calls (§4.3): feature
// subsampling with resampling, projection bootstrap, the two-point
// max-margin fallback, projection fitting, split search, partition-point
// construction, recursion via an explicit stack, and leaf finalization.
//
// Grounded in the teacher's tree package (tree/tree.go, tree/build.go): the
// tagged Node variant, the explicit-stack (non-recursive) grower, and the
// per-feature sort-then-scan split search are all generalized from there.
package tree

import "github.com/ttomita/ccfs/ccf/rotation"

// Node is a tagged variant: Leaf distinguishes a terminal node (Label/Mean
// populated) from an internal one (InCols/Projection/Partition/Left/Right
// populated). TrainingCounts is populated on both (spec.md §3).
type Node struct {
	Leaf bool

	InCols     []int
	Projection []float64
	Partition  float64
	Left       *Node
	Right      *Node

	TrainingCounts []float64
	Impurity       float64 // this node's impurity, for VarImp's impurity-decrease accounting
	N              int     // number of training rows that reached this node

	Label int       // classification leaf: argmax class index
	Mean  []float64 // regression leaf: per-output mean of standardized targets
}

// Tree wraps a grown Node with the optional whole-tree rotation applied
// before induction and reapplied at inference, plus any out-of-bag
// bookkeeping the tree driver recorded (spec.md §3 "Tree wrapper").
type Tree struct {
	Root     *Node
	Rotation *rotation.Result

	OOBRows        []int
	OOBPredictions [][]float64

	// TestPredictions holds this tree's output for every row of an optional
	// fit-time test matrix, recorded once so the tree can be discarded
	// immediately afterward when keep_trees is false (spec.md §4.6 step 5).
	TestPredictions [][]float64
}
