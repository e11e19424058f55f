package tree

import (
	"math"
	"math/rand"

	"github.com/ttomita/ccfs/ccf/config"
)

// machineEpsilon is float64 epsilon, used as the relative tolerance for gain
// comparisons (spec.md §4.3: "relative tolerance 10*machine_epsilon").
const machineEpsilon = 2.220446049250313e-16

type directionResult struct {
	gain      float64
	partition float64
}

// evaluateSplit runs §4.3 over every column of U (n x p, rows in the same
// order as `rows`), returning the winning column index (into U) and its
// partition point. found is false if no column offered a legal candidate or
// every candidate's gain was negative.
func evaluateSplit(U [][]float64, Y [][]float64, rows []int, criterion config.SplitCriterion, dirIfEqual config.DirIfEqual, tol float64, rng *rand.Rand) (dir int, partition float64, found bool) {
	n := len(rows)
	if n < 2 || len(U) == 0 || len(U[0]) == 0 {
		return 0, 0, false
	}
	p := len(U[0])
	k := len(Y[0])

	parentSum, parentSumSq := nodeStats(Y, rows, k)
	parentMetric := impurity(criterion, parentSum, parentSumSq, float64(n))

	results := make([]directionResult, p)
	ok := make([]bool, p)

	for j := 0; j < p; j++ {
		xt := make([]float64, n)
		order := make([]int, n)
		for i, r := range rows {
			xt[i] = U[i][j]
			order[i] = r
		}
		bSort(xt, order)

		dr, found := evaluateDirection(xt, order, Y, parentMetric, parentSum, parentSumSq, k, criterion, tol, rng)
		results[j], ok[j] = dr, found
	}

	gainTol := func(g float64) float64 { return 10 * machineEpsilon * math.Max(1, math.Abs(g)) }

	bestGain := math.Inf(-1)
	var tied []int
	for j := 0; j < p; j++ {
		if !ok[j] {
			continue
		}
		g := results[j].gain
		switch {
		case g > bestGain+gainTol(bestGain):
			bestGain = g
			tied = []int{j}
		case math.Abs(g-bestGain) <= gainTol(bestGain):
			tied = append(tied, j)
		}
	}
	if len(tied) == 0 || bestGain < 0 {
		return 0, 0, false
	}

	chosen := tied[0]
	if len(tied) > 1 && dirIfEqual == config.DirRand {
		chosen = tied[rng.Intn(len(tied))]
	}

	return chosen, results[chosen].partition, true
}

// evaluateDirection scans the candidates of one sorted direction, tracking
// incremental left/right sufficient statistics, and returns the
// best-gain split (ties among equal gains broken uniformly at random,
// spec.md §4.3 step 6).
func evaluateDirection(xt []float64, order []int, Y [][]float64, parentMetric float64, parentSum, parentSumSq []float64, k int, criterion config.SplitCriterion, tol float64, rng *rand.Rand) (directionResult, bool) {
	n := len(order)
	leftSum := make([]float64, k)
	leftSumSq := make([]float64, k)
	rightSum := append([]float64(nil), parentSum...)
	rightSumSq := append([]float64(nil), parentSumSq...)

	bestGain := math.Inf(-1)
	var ties []int
	gainTol := func(g float64) float64 { return 10 * machineEpsilon * math.Max(1, math.Abs(g)) }

	for idx := 1; idx < n; idx++ {
		r := order[idx-1]
		for c := 0; c < k; c++ {
			v := Y[r][c]
			leftSum[c] += v
			leftSumSq[c] += v * v
			rightSum[c] -= v
			rightSumSq[c] -= v * v
		}
		if xt[idx]-xt[idx-1] <= tol {
			continue // illegal candidate (spec.md §4.3 step 3)
		}

		nLeft, nRight := float64(idx), float64(n-idx)
		leftMetric := impurity(criterion, leftSum, leftSumSq, nLeft)
		rightMetric := impurity(criterion, rightSum, rightSumSq, nRight)
		gain := parentMetric - (nLeft*leftMetric+nRight*rightMetric)/float64(n)

		switch {
		case gain > bestGain+gainTol(bestGain):
			bestGain = gain
			ties = []int{idx}
		case math.Abs(gain-bestGain) <= gainTol(bestGain):
			ties = append(ties, idx)
		}
	}
	if len(ties) == 0 {
		return directionResult{}, false
	}
	splitIdx := ties[rng.Intn(len(ties))]
	return directionResult{
		gain:      bestGain,
		partition: partitionPoint(xt, splitIdx),
	}, true
}

// partitionPoint computes the cancellation-robust midpoint between two
// adjacent sorted values (spec.md §4.4): offsetting both values by the
// smaller one before averaging avoids precision loss when both are large
// and nearly equal.
func partitionPoint(xt []float64, idx int) float64 {
	s := xt[idx-1]
	return 0.5*(xt[idx-1]-s) + 0.5*(xt[idx]-s) + s
}

// Impurity computes the configured criterion's impurity over rows,
// exported for Forest.VarImp's impurity-decrease accounting (spec.md §12
// "Variable importance").
func Impurity(criterion config.SplitCriterion, Y [][]float64, rows []int) float64 {
	k := len(Y[0])
	sum, sumSq := nodeStats(Y, rows, k)
	return impurity(criterion, sum, sumSq, float64(len(rows)))
}

func nodeStats(Y [][]float64, rows []int, k int) (sum, sumSq []float64) {
	sum = make([]float64, k)
	sumSq = make([]float64, k)
	for _, r := range rows {
		for c := 0; c < k; c++ {
			v := Y[r][c]
			sum[c] += v
			sumSq[c] += v * v
		}
	}
	return sum, sumSq
}

func impurity(criterion config.SplitCriterion, sum, sumSq []float64, n float64) float64 {
	switch criterion {
	case config.Info:
		return entropyImpurity(sum, n)
	case config.MSE:
		return mseImpurity(sum, sumSq, n)
	default:
		return giniImpurity(sum, n)
	}
}

func giniImpurity(counts []float64, n float64) float64 {
	if n <= 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func entropyImpurity(counts []float64, n float64) float64 {
	if n <= 0 {
		return 0
	}
	e := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / n
		e -= p * math.Log2(p)
	}
	return e
}

func mseImpurity(sum, sumSq []float64, n float64) float64 {
	if n <= 0 {
		return 0
	}
	total := 0.0
	for c := range sum {
		mean := sum[c] / n
		variance := sumSq[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		total += variance
	}
	return total
}
