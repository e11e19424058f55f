package ccf

import "github.com/ttomita/ccfs/ccf/tree"

// VarImp attributes each internal node's impurity decrease to the original
// feature group(s) touched by that node's in_cols, generalizing the
// teacher's tree.Classifier.VarImp / forest.Classifier.VarImp (spec.md §12
// "Variable importance") from a single selected feature per node to a
// projection that may span several.
func (f *Forest) VarImp() []float64 {
	numGroups := 0
	for _, g := range f.FeatureGroup {
		if g+1 > numGroups {
			numGroups = g + 1
		}
	}
	imp := make([]float64, numGroups)

	for _, t := range f.Trees {
		accumulateImportance(t.Root, f.FeatureGroup, imp)
	}

	total := 0.0
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}

func accumulateImportance(node *tree.Node, featureGroup []int, imp []float64) {
	if node == nil || node.Leaf {
		return
	}
	decrease := float64(node.N)*node.Impurity -
		float64(node.Left.N)*node.Left.Impurity -
		float64(node.Right.N)*node.Right.Impurity

	groups := make(map[int]bool)
	for _, c := range node.InCols {
		if c >= 0 && c < len(featureGroup) {
			groups[featureGroup[c]] = true
		}
	}
	if len(groups) > 0 {
		share := decrease / float64(len(groups))
		for g := range groups {
			if g >= 0 && g < len(imp) {
				imp[g] += share
			}
		}
	}

	accumulateImportance(node.Left, featureGroup, imp)
	accumulateImportance(node.Right, featureGroup, imp)
}
