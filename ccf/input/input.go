// Package input implements the external process_input_data contract of
// spec.md §6: turning raw columns (a mix of ordinal and categorical) into a
// numeric matrix with a feature_group vector, plus class/target encoding
// for the forest driver.
//
// Grounded in the teacher's own parse.go (which reads a CSV into typed
// columns and distinguishes categorical from continuous) and generalized
// into the numeric-standardization step described by spec.md §4.1/§4.6.
package input

import (
	"math"
	"sort"

	"github.com/ttomita/ccfs/ccf/numeric"
)

// Details records what Process did to each column, enough to transform a
// future test matrix the same way. Regression target statistics are not
// kept here; StandardizeTargets returns them separately.
type Details struct {
	Mean       []float64         // per-output-column mean (0 for one-hot columns)
	Std        []float64         // per-output-column stddev (1 for one-hot columns)
	Categories map[int][]float64 // original column index -> sorted distinct values, for categorical columns only
}

// Processed is the numeric matrix plus everything the forest driver needs
// to carry forward (spec.md §6 process_input_data return value).
type Processed struct {
	X            [][]float64
	FeatureGroup []int
	Details      Details
	XTest        [][]float64 // nil if no test matrix was supplied
}

// Process expands categorical columns (isOrdinal[c] == false) into one-hot
// blocks sharing a feature_group id, and standardizes ordinal columns with
// NaN-safe mean/std (spec.md §4.1). nanToMean resolves missing ordinal
// entries to 0 in the standardized output (equivalent to the original
// column mean) instead of leaving the NaN sentinel for the tree driver's
// missing_values_method to resolve later.
func Process(X [][]float64, isOrdinal []bool, xTest [][]float64, nanToMean bool) Processed {
	n := len(X)
	d := 0
	if n > 0 {
		d = len(X[0])
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	var cols, testCols [][]float64
	var group []int
	var mean, std []float64
	categories := make(map[int][]float64)

	for c := 0; c < d; c++ {
		ordinal := c >= len(isOrdinal) || isOrdinal[c]
		if ordinal {
			m, s := columnMeanStd(X, rows, c)
			mean = append(mean, m)
			std = append(std, s)
			group = append(group, c)
			cols = append(cols, standardizeColumn(X, c, m, s, nanToMean))
			if xTest != nil {
				testCols = append(testCols, standardizeColumn(xTest, c, m, s, nanToMean))
			}
			continue
		}

		values := distinctValues(X, c)
		categories[c] = values
		for _, v := range values {
			mean = append(mean, 0)
			std = append(std, 1)
			group = append(group, c)
			cols = append(cols, oneHotColumn(X, c, v))
			if xTest != nil {
				testCols = append(testCols, oneHotColumn(xTest, c, v))
			}
		}
	}

	details := Details{Mean: mean, Std: std, Categories: categories}
	out := Processed{
		X:            toRows(cols, n),
		FeatureGroup: group,
		Details:      details,
	}
	if xTest != nil {
		out.XTest = toRows(testCols, len(xTest))
	}
	return out
}

// StandardizeOnly implements the "already numerical and grouped" branch of
// spec.md §4.6 step 1: every column is treated as ordinal, and feature_group
// comes out trivial (group[c] == c).
func StandardizeOnly(X, xTest [][]float64) Processed {
	d := 0
	if len(X) > 0 {
		d = len(X[0])
	}
	ordinal := make([]bool, d)
	for i := range ordinal {
		ordinal[i] = true
	}
	return Process(X, ordinal, xTest, false)
}

// ApplyDetails standardizes/encodes X the same way Process did, reusing a
// previously computed Details (training means/stds/category lists) instead
// of recomputing them — the transform a later test matrix needs (spec.md
// §6 "details capture means, stds, category lists... per-column
// ordinality").
func ApplyDetails(X [][]float64, isOrdinal []bool, d Details) [][]float64 {
	n := len(X)
	dims := 0
	if n > 0 {
		dims = len(X[0])
	}

	var cols [][]float64
	pos := 0
	for c := 0; c < dims; c++ {
		ordinal := c >= len(isOrdinal) || isOrdinal[c]
		if ordinal {
			cols = append(cols, standardizeColumn(X, c, d.Mean[pos], d.Std[pos], false))
			pos++
			continue
		}
		values := d.Categories[c]
		for _, v := range values {
			cols = append(cols, oneHotColumn(X, c, v))
		}
		pos += len(values)
	}
	return toRows(cols, n)
}

// EncodeClasses one-hot encodes per-row labels, one column slice per
// classification task, into a single concatenated Y (spec.md §3 "optionally
// partitioned into task blocks task_ids"). A single-task problem is just
// len(labels[0]) == 1.
func EncodeClasses(labels [][]string) (Y [][]float64, classNames []string, taskIDs []int) {
	numTasks := 0
	if len(labels) > 0 {
		numTasks = len(labels[0])
	}
	taskClassIndex := make([]map[string]int, numTasks)
	taskClassNames := make([][]string, numTasks)
	for t := 0; t < numTasks; t++ {
		taskClassIndex[t] = make(map[string]int)
	}
	for _, row := range labels {
		for t, v := range row {
			if _, ok := taskClassIndex[t][v]; !ok {
				taskClassIndex[t][v] = len(taskClassIndex[t])
				taskClassNames[t] = append(taskClassNames[t], v)
			}
		}
	}

	offsets := make([]int, numTasks)
	total := 0
	for t := 0; t < numTasks; t++ {
		offsets[t] = total
		total += len(taskClassIndex[t])
	}

	taskIDs = make([]int, total)
	classNames = make([]string, total)
	for t := 0; t < numTasks; t++ {
		for i, name := range taskClassNames[t] {
			idx := offsets[t] + i
			taskIDs[idx] = t
			classNames[idx] = name
		}
	}

	Y = make([][]float64, len(labels))
	for r, row := range labels {
		y := make([]float64, total)
		for t, v := range row {
			y[offsets[t]+taskClassIndex[t][v]] = 1
		}
		Y[r] = y
	}
	return Y, classNames, taskIDs
}

// StandardizeTargets implements the regression branch of spec.md §4.6 step
// 2: per-output mean/std, with a zero std replaced by 1.
func StandardizeTargets(Y [][]float64) (standardized [][]float64, mu, std []float64) {
	n := len(Y)
	k := 0
	if n > 0 {
		k = len(Y[0])
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	mu, std = numeric.Standardize(Y, rows, k)

	standardized = make([][]float64, n)
	for i, row := range Y {
		out := make([]float64, k)
		for c := 0; c < k; c++ {
			out[c] = (row[c] - mu[c]) / std[c]
		}
		standardized[i] = out
	}
	return standardized, mu, std
}

func columnMeanStd(X [][]float64, rows []int, col int) (mean, std float64) {
	tmp := make([][]float64, len(X))
	for _, r := range rows {
		tmp[r] = []float64{X[r][col]}
	}
	means, stds := numeric.Standardize(tmp, rows, 1)
	return means[0], stds[0]
}

func standardizeColumn(X [][]float64, col int, mean, std float64, nanToMean bool) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		v := row[col]
		switch {
		case math.IsNaN(v) && nanToMean:
			out[i] = 0
		case math.IsNaN(v):
			out[i] = math.NaN()
		default:
			out[i] = (v - mean) / std
		}
	}
	return out
}

func oneHotColumn(X [][]float64, col int, value float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		if row[col] == value {
			out[i] = 1
		}
	}
	return out
}

func distinctValues(X [][]float64, col int) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, row := range X {
		v := row[col]
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func toRows(cols [][]float64, n int) [][]float64 {
	if len(cols) == 0 {
		return nil
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(cols))
		for c, col := range cols {
			row[c] = col[i]
		}
		out[i] = row
	}
	return out
}
