// Package predict implements the inference-time half of spec.md §4.4/§4.6:
// routing one input row down a fitted tree's splits, then aggregating
// per-tree leaves into a forest-level classification or regression output.
//
// Grounded in the teacher's tree/predict.go (walk a Node by evaluating its
// projection against its partition) and forest/predict.go (average
// per-tree class masses, or per-tree means for regression).
package predict

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/tree"
)

// Row applies tr's whole-tree rotation (if any) to x, then walks splits
// down to a leaf.
func Row(tr *tree.Tree, x []float64) *tree.Node {
	return traverse(tr.Root, applyRotation(tr, x))
}

func applyRotation(tr *tree.Tree, x []float64) []float64 {
	if tr.Rotation == nil {
		return x
	}
	rotated := tr.Rotation.Apply(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	out := make([]float64, rotated.RawMatrix().Cols)
	mat.Row(out, 0, rotated)
	return out
}

func traverse(node *tree.Node, x []float64) *tree.Node {
	for !node.Leaf {
		var proj float64
		for i, c := range node.InCols {
			proj += x[c] * node.Projection[i]
		}
		if proj <= node.Partition {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// ClassProbabilities averages each tree's normalized leaf class counts for
// one row (spec.md §4.6 "aggregate class probabilities across trees").
func ClassProbabilities(trees []*tree.Tree, x []float64) []float64 {
	var sum []float64
	for _, tr := range trees {
		p := normalize(Row(tr, x).TrainingCounts)
		if sum == nil {
			sum = make([]float64, len(p))
		}
		for i, v := range p {
			sum[i] += v
		}
	}
	for i := range sum {
		sum[i] /= float64(len(trees))
	}
	return sum
}

// ArgmaxPerTask picks, within each task's column block, the column with
// the highest probability (spec.md §3 "task_ids" multi-task support).
func ArgmaxPerTask(probs []float64, taskIDs []int) []int {
	numTasks := 0
	for _, t := range taskIDs {
		if t+1 > numTasks {
			numTasks = t + 1
		}
	}
	best := make([]float64, numTasks)
	winner := make([]int, numTasks)
	for i := range best {
		best[i] = math.Inf(-1)
	}
	for col, t := range taskIDs {
		if probs[col] > best[t] {
			best[t] = probs[col]
			winner[t] = col
		}
	}
	return winner
}

// Regress averages each tree's leaf mean for one row and un-standardizes
// the result with the forest's target mu/std (spec.md §4.6 step 2).
func Regress(trees []*tree.Tree, x []float64, mu, std []float64) []float64 {
	k := len(mu)
	sum := make([]float64, k)
	for _, tr := range trees {
		mean := Row(tr, x).Mean
		for c := 0; c < k; c++ {
			sum[c] += mean[c]
		}
	}
	out := make([]float64, k)
	for c := 0; c < k; c++ {
		out[c] = sum[c]/float64(len(trees))*std[c] + mu[c]
	}
	return out
}

func normalize(v []float64) []float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	out := make([]float64, len(v))
	if total == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / total
	}
	return out
}
