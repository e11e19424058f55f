package tree

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
	"github.com/ttomita/ccfs/ccf/numeric"
	"github.com/ttomita/ccfs/ccf/projection"
)

// workItem is one unit of pending node expansion, pushed/popped from an
// explicit stack in place of runtime recursion (spec.md §5, §9 "recursive
// grower depth").
type workItem struct {
	node  *Node
	rows  []int
	depth int
	path  config.PathContext
	group []int
}

// Grow builds one tree over the (already bagged, already rotated) training
// matrices X (n x D) and Y (n x K), per the node algorithm of spec.md §4.4.
// featureGroup has length D; a value of config.Absent marks a column
// excluded up front. The returned error is non-nil only for the fatal
// invariant/recursion-exhaustion cases of spec.md §7 — degenerate nodes
// never error, they become leaves.
func Grow(X, Y [][]float64, featureGroup []int, opt config.Options, rng *rand.Rand) (*Node, error) {
	root := &Node{}
	rows := make([]int, len(X))
	for i := range rows {
		rows[i] = i
	}
	group := append([]int(nil), featureGroup...)

	stack := []*workItem{{node: root, rows: rows, depth: 0, group: group}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		left, right, err := expandNode(it.node, X, Y, it.rows, it.group, it.depth, it.path, opt, rng)
		if err != nil {
			return nil, err
		}
		if left != nil {
			stack = append(stack, left, right)
		}
	}
	return root, nil
}

// expandNode either finalizes node as a leaf (returning nil, nil, nil) or
// turns it into an internal node and returns the two child work items to
// push onto the caller's stack.
func expandNode(node *Node, X, Y [][]float64, rows, group []int, depth int, path config.PathContext, opt config.Options, rng *rand.Rand) (left, right *workItem, err error) {
	k := len(Y[0])
	node.N = len(rows)
	node.Impurity = Impurity(opt.SplitCriterion, Y, rows)

	if depth > config.MaxStackDepth && opt.MaxDepth == config.StackDepth {
		return nil, nil, fmt.Errorf("%w: tree exceeded %d levels with max_depth=stack", config.ErrRecursionExhausted, config.MaxStackDepth)
	}
	if shouldTerminate(rows, Y, k, depth, opt) {
		if opt.SplitCriterion != config.MSE && fewerThanTwoClassMasses(Y, rows, k) {
			glog.V(1).Infof("node at depth %d: only one class has mass over %d rows, leafing out", depth, len(rows))
		}
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}

	inCols, group := selectFeatures(X, rows, group, opt.LambdaProjBoot, opt.XVariationTol, rng)
	if len(inCols) == 0 {
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}

	bagRows := rows
	if opt.ProjBoot {
		candidate := bootstrapRows(rows, rng)
		if isBagDegenerate(X, Y, candidate, inCols, k, opt.XVariationTol) {
			if !opt.ContinueProjBootDegenerate {
				glog.V(1).Infof("node at depth %d: projection bootstrap degenerate over %d rows, leafing out", depth, len(rows))
				finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
				return nil, nil, nil
			}
		} else {
			bagRows = candidate
		}
	}

	enabled := opt.EnabledProjections()
	anyProj := anyProjectionEnabled(enabled)

	var finalCols []int
	var finalP *mat.Dense

	twoUnique, a, b := numeric.TwoUniqueRows(X, bagRows, inCols, opt.XVariationTol)
	switch {
	case anyProj && twoUnique:
		proj, _ := twoPointDirection(X, inCols, a, b)
		finalCols = inCols
		finalP = mat.NewDense(len(inCols), 1, proj)
	default:
		XBag := toDense(X, bagRows, inCols)
		YBag := toDense(Y, bagRows, allCols(k))
		P, ferr := projection.FitEnabled(XBag, YBag, enabled, rng)
		if ferr != nil {
			return nil, nil, ferr
		}
		finalCols, finalP = composeProjection(P, inCols, group, len(X[0]), opt.IncludeOriginalAxes)
	}

	if finalP == nil {
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}
	if _, p := finalP.Dims(); p == 0 {
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}

	U := projectRows(X, rows, finalCols, finalP)
	keep := varyingColumnIndices(U, opt.XVariationTol)
	if len(keep) == 0 {
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}
	Ufiltered := selectColumns(U, keep)

	dirLocal, partition, found := evaluateSplit(Ufiltered, Y, rows, opt.SplitCriterion, opt.DirIfEqual, opt.XVariationTol, rng)
	if !found {
		finalizeLeaf(node, Y, rows, opt.SplitCriterion, path, rng)
		return nil, nil, nil
	}
	if math.IsNaN(partition) || math.IsInf(partition, 0) {
		return nil, nil, fmt.Errorf("%w: split produced a non-finite partition", config.ErrInvariant)
	}

	leftRows, rightRows := partitionRows(Ufiltered, rows, dirLocal, partition)
	if len(leftRows) == 0 || len(rightRows) == 0 {
		return nil, nil, fmt.Errorf("%w: split produced an empty child", config.ErrInvariant)
	}

	counts := columnSums(Y, rows, k)
	node.InCols = finalCols
	node.Projection = columnSlice(finalP, keep[dirLocal])
	node.Partition = partition
	node.TrainingCounts = counts
	node.Left = &Node{}
	node.Right = &Node{}

	childPath := path.Extend(normalize(counts))

	return &workItem{node: node.Left, rows: leftRows, depth: depth + 1, path: childPath, group: group},
		&workItem{node: node.Right, rows: rightRows, depth: depth + 1, path: childPath, group: group},
		nil
}

// shouldTerminate implements the §4.4 early-termination checks (the hard
// recursion guard is handled separately in expandNode since it is fatal,
// not a leaf).
func shouldTerminate(rows []int, Y [][]float64, k, depth int, opt config.Options) bool {
	minSplit := opt.MinPointsForSplit
	if minSplit < 2 {
		minSplit = 2
	}
	if len(rows) < minSplit {
		return true
	}
	if isPure(Y, rows, k, opt.SplitCriterion, opt.XVariationTol) {
		return true
	}
	if opt.MaxDepth != config.StackDepth && depth >= opt.MaxDepth {
		return true
	}
	return false
}

func isPure(Y [][]float64, rows []int, k int, criterion config.SplitCriterion, tol float64) bool {
	if criterion == config.MSE {
		for c := 0; c < k; c++ {
			if numeric.ColumnVaries(Y, rows, c, tol) {
				return false
			}
		}
		return true
	}
	return fewerThanTwoClassMasses(Y, rows, k)
}

// fewerThanTwoClassMasses reports whether at most one class carries
// non-negligible mass over rows (spec.md §4.4).
func fewerThanTwoClassMasses(Y [][]float64, rows []int, k int) bool {
	negligible := 0
	for c := 0; c < k; c++ {
		sum := 0.0
		for _, r := range rows {
			sum += math.Abs(Y[r][c])
		}
		if sum < 1e-12 {
			negligible++
		}
	}
	return negligible >= k-1
}

func isBagDegenerate(X, Y [][]float64, rows, cols []int, k int, tol float64) bool {
	if fewerThanTwoClassMasses(Y, rows, k) {
		return true
	}
	return !numeric.AnyColumnVaries(X, rows, cols, tol)
}

// selectFeatures implements §4.4's "feature subsampling with resampling":
// draw distinct feature groups until either every chosen group's columns
// vary over rows, or the selectable pool is exhausted.
func selectFeatures(X [][]float64, rows []int, featureGroup []int, lambda int, tol float64, rng *rand.Rand) (inCols []int, localGroup []int) {
	localGroup = append([]int(nil), featureGroup...)
	for {
		selectable := selectableGroups(localGroup)
		if len(selectable) == 0 {
			return nil, localGroup
		}
		n := lambda
		if n > len(selectable) {
			n = len(selectable)
		}
		perm := rng.Perm(len(selectable))
		chosen := make(map[int]bool, n)
		for i := 0; i < n; i++ {
			chosen[selectable[perm[i]]] = true
		}

		groupVaries := make(map[int]bool, n)
		for c, g := range localGroup {
			if chosen[g] && numeric.ColumnVaries(X, rows, c, tol) {
				groupVaries[g] = true
			}
		}

		ok := true
		for g := range chosen {
			if !groupVaries[g] {
				ok = false
				localGroup = markAbsent(localGroup, g)
			}
		}
		if !ok {
			continue
		}

		var cols []int
		for c, g := range localGroup {
			if chosen[g] {
				cols = append(cols, c)
			}
		}
		return cols, localGroup
	}
}

func selectableGroups(featureGroup []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, g := range featureGroup {
		if g == config.Absent || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

func markAbsent(featureGroup []int, g int) []int {
	out := append([]int(nil), featureGroup...)
	for i, v := range out {
		if v == g {
			out[i] = config.Absent
		}
	}
	return out
}

func bootstrapRows(rows []int, rng *rand.Rand) []int {
	out := make([]int, len(rows))
	for i := range out {
		out[i] = rows[rng.Intn(len(rows))]
	}
	return out
}

func anyProjectionEnabled(enabled map[config.ProjectionKind]bool) bool {
	for _, on := range enabled {
		if on {
			return true
		}
	}
	return false
}

// composeProjection applies the §4.2 include_original_axes rule. For
// "all", active columns are re-derived from the current (possibly
// resampling-narrowed) feature group, per the §9 design note.
func composeProjection(P *mat.Dense, sampledCols, localGroup []int, d int, include config.IncludeOriginalAxes) (finalCols []int, finalP *mat.Dense) {
	switch include {
	case config.IncludeSampled:
		return sampledCols, linalg.HConcat(P, linalg.Identity(len(sampledCols)))
	case config.IncludeAll:
		active := activeColumns(localGroup)
		expanded := expandRows(P, sampledCols, active)
		return active, linalg.HConcat(expanded, linalg.Identity(len(active)))
	default: // IncludeNone
		return sampledCols, P
	}
}

func activeColumns(localGroup []int) []int {
	var out []int
	for c, g := range localGroup {
		if g != config.Absent {
			out = append(out, c)
		}
	}
	return out
}

// expandRows re-expresses P's rows (indexed by sampledCols) in the larger
// active-column index space, zero-filling rows for columns P never covered.
func expandRows(P *mat.Dense, sampledCols, active []int) *mat.Dense {
	if P == nil {
		return nil
	}
	_, p := P.Dims()
	pos := make(map[int]int, len(sampledCols))
	for i, c := range sampledCols {
		pos[c] = i
	}
	out := mat.NewDense(len(active), p, nil)
	for i, c := range active {
		if srcRow, ok := pos[c]; ok {
			for j := 0; j < p; j++ {
				out.Set(i, j, P.At(srcRow, j))
			}
		}
	}
	return out
}

func toDense(X [][]float64, rows, cols []int) *mat.Dense {
	m := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			m.Set(i, j, X[r][c])
		}
	}
	return m
}

func allCols(k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = i
	}
	return out
}

// projectRows computes U = X[rows, cols] . P for the full (unbagged) rows
// of the current node.
func projectRows(X [][]float64, rows, cols []int, P *mat.Dense) [][]float64 {
	_, p := P.Dims()
	U := make([][]float64, len(rows))
	for i, r := range rows {
		out := make([]float64, p)
		for j := 0; j < p; j++ {
			var sum float64
			for ci, c := range cols {
				sum += X[r][c] * P.At(ci, j)
			}
			out[j] = sum
		}
		U[i] = out
	}
	return U
}

func varyingColumnIndices(U [][]float64, tol float64) []int {
	if len(U) == 0 {
		return nil
	}
	var keep []int
	for j := 0; j < len(U[0]); j++ {
		min, max := math.Inf(1), math.Inf(-1)
		for _, row := range U {
			v := row[j]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if max-min > tol {
			keep = append(keep, j)
		}
	}
	return keep
}

func selectColumns(U [][]float64, keep []int) [][]float64 {
	out := make([][]float64, len(U))
	for i, row := range U {
		nr := make([]float64, len(keep))
		for k, j := range keep {
			nr[k] = row[j]
		}
		out[i] = nr
	}
	return out
}

func partitionRows(U [][]float64, rows []int, dir int, partition float64) (left, right []int) {
	for i, r := range rows {
		if U[i][dir] <= partition {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

func columnSlice(P *mat.Dense, j int) []float64 {
	r, _ := P.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = P.At(i, j)
	}
	return out
}

func columnSums(Y [][]float64, rows []int, k int) []float64 {
	sums := make([]float64, k)
	for _, r := range rows {
		for c := 0; c < k; c++ {
			sums[c] += Y[r][c]
		}
	}
	return sums
}

func normalize(v []float64) []float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = numeric.SafeDiv(x, total)
	}
	return out
}

// finalizeLeaf computes training counts and, for classification, the
// tie-broken label (spec.md §4.4 "leaf label"), or for regression the
// per-output mean (§4.4 "leaf output").
func finalizeLeaf(node *Node, Y [][]float64, rows []int, criterion config.SplitCriterion, path config.PathContext, rng *rand.Rand) {
	k := len(Y[0])
	counts := columnSums(Y, rows, k)
	node.Leaf = true
	node.TrainingCounts = counts

	if criterion == config.MSE {
		mean := make([]float64, k)
		for c := 0; c < k; c++ {
			mean[c] = numeric.SafeDiv(counts[c], float64(len(rows)))
		}
		node.Mean = mean
		return
	}
	node.Label = classificationLabel(counts, path, rng)
}

func classificationLabel(counts []float64, path config.PathContext, rng *rand.Rand) int {
	label, tied := argmaxTie(counts)
	if !tied {
		return label
	}

	working := append([]float64(nil), counts...)
	for _, anc := range path.NewestFirst() {
		for i := range working {
			if i < len(anc) {
				working[i] += anc[i] / 1e9
			}
		}
		label, tied = argmaxTie(working)
		if !tied {
			return label
		}
	}

	for i := range working {
		working[i] += rng.Float64() / 1e9
	}
	label, _ = argmaxTie(working)
	return label
}

func argmaxTie(v []float64) (idx int, tied bool) {
	best := math.Inf(-1)
	count := 0
	for i, x := range v {
		switch {
		case x > best:
			best, idx, count = x, i, 1
		case x == best:
			count++
		}
	}
	return idx, count > 1
}
