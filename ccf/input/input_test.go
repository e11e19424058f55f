package input

import (
	"math"
	"testing"
)

func TestProcessStandardizesOrdinalColumn(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	p := Process(X, []bool{true}, nil, false)

	if len(p.FeatureGroup) != 1 || p.FeatureGroup[0] != 0 {
		t.Fatalf("feature group = %v, want [0]", p.FeatureGroup)
	}
	var sum float64
	for _, row := range p.X {
		sum += row[0]
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("standardized column should have ~0 mean, sum = %f", sum)
	}
}

func TestProcessExpandsCategoricalIntoOneHotSharingGroup(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	p := Process(X, []bool{false}, nil, false)

	if len(p.FeatureGroup) != 3 {
		t.Fatalf("expected 3 one-hot columns, got %d", len(p.FeatureGroup))
	}
	for _, g := range p.FeatureGroup {
		if g != 0 {
			t.Errorf("one-hot columns must share original group id, got %d", g)
		}
	}
	for i, row := range p.X {
		var rowSum float64
		for _, v := range row {
			rowSum += v
		}
		if rowSum != 1 {
			t.Errorf("row %d: one-hot row should sum to 1, got %f", i, rowSum)
		}
	}
}

func TestProcessNaNToMeanSubstitutesZero(t *testing.T) {
	X := [][]float64{{1}, {math.NaN()}, {3}}
	p := Process(X, []bool{true}, nil, true)
	if p.X[1][0] != 0 {
		t.Errorf("missing value with nanToMean=true should standardize to 0, got %f", p.X[1][0])
	}
}

func TestProcessPreservesNaNSentinelByDefault(t *testing.T) {
	X := [][]float64{{1}, {math.NaN()}, {3}}
	p := Process(X, []bool{true}, nil, false)
	if !math.IsNaN(p.X[1][0]) {
		t.Errorf("missing value with nanToMean=false should stay NaN, got %f", p.X[1][0])
	}
}

func TestProcessAppliesTrainingStatsToTestMatrix(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	xTest := [][]float64{{2}}
	p := Process(X, []bool{true}, xTest, false)
	if p.XTest == nil || len(p.XTest) != 1 {
		t.Fatalf("expected one test row, got %v", p.XTest)
	}
	if math.Abs(p.XTest[0][0]) > 1e-9 {
		t.Errorf("test row at the training mean should standardize to ~0, got %f", p.XTest[0][0])
	}
}

func TestStandardizeOnlyProducesTrivialGroups(t *testing.T) {
	X := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	p := StandardizeOnly(X, nil)
	if len(p.FeatureGroup) != 2 || p.FeatureGroup[0] != 0 || p.FeatureGroup[1] != 1 {
		t.Errorf("feature group = %v, want [0 1]", p.FeatureGroup)
	}
}

func TestEncodeClassesSingleTask(t *testing.T) {
	labels := [][]string{{"cat"}, {"dog"}, {"cat"}}
	Y, names, taskIDs := EncodeClasses(labels)

	if len(names) != 2 {
		t.Fatalf("expected 2 classes, got %v", names)
	}
	for _, id := range taskIDs {
		if id != 0 {
			t.Errorf("single task problem should have taskIDs all 0, got %v", taskIDs)
		}
	}
	for i, row := range Y {
		var sum float64
		for _, v := range row {
			sum += v
		}
		if sum != 1 {
			t.Errorf("row %d should be one-hot, got %v", i, row)
		}
	}
	if Y[0][0] != Y[2][0] || Y[0][0] != 1 {
		t.Errorf("identical labels should encode identically: %v vs %v", Y[0], Y[2])
	}
}

func TestEncodeClassesMultiTaskPartitionsColumns(t *testing.T) {
	labels := [][]string{{"cat", "big"}, {"dog", "small"}}
	Y, _, taskIDs := EncodeClasses(labels)

	var task0, task1 int
	for _, id := range taskIDs {
		if id == 0 {
			task0++
		} else if id == 1 {
			task1++
		}
	}
	if task0 != 2 || task1 != 2 {
		t.Fatalf("taskIDs = %v, want two columns per task", taskIDs)
	}
	if len(Y[0]) != 4 {
		t.Fatalf("expected 4 total columns, got %d", len(Y[0]))
	}
}

func TestStandardizeTargetsZeroMean(t *testing.T) {
	Y := [][]float64{{1}, {2}, {3}}
	std, mu, sd := StandardizeTargets(Y)
	if math.Abs(mu[0]-2) > 1e-9 {
		t.Errorf("mu = %v, want 2", mu)
	}
	if sd[0] <= 0 {
		t.Errorf("std = %v, want > 0", sd)
	}
	var sum float64
	for _, row := range std {
		sum += row[0]
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("standardized targets should sum to ~0, got %f", sum)
	}
}
