package numeric

import (
	"math"
	"testing"
)

func TestColumnVaries(t *testing.T) {
	X := [][]float64{{1, 1}, {1, 1}, {1, 2}}
	rows := []int{0, 1, 2}

	if ColumnVaries(X, rows, 0, 1e-9) {
		t.Error("column 0 should be constant")
	}
	if !ColumnVaries(X, rows, 1, 1e-9) {
		t.Error("column 1 should vary")
	}
}

func TestColumnVariesIgnoresNaN(t *testing.T) {
	X := [][]float64{{1}, {math.NaN()}, {1}}
	rows := []int{0, 1, 2}
	if ColumnVaries(X, rows, 0, 1e-9) {
		t.Error("column should be constant once NaN sentinels are ignored")
	}
}

func TestTwoUniqueRows(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 1}, {0, 0}, {1, 1}}
	rows := []int{0, 1, 2, 3}
	ok, a, b := TwoUniqueRows(X, rows, []int{0, 1}, 1e-9)
	if !ok {
		t.Fatal("expected exactly two unique rows")
	}
	if a != 0 || b != 1 {
		t.Errorf("got (%d, %d), want (0, 1)", a, b)
	}
}

func TestTwoUniqueRowsFalseWithThreeDistinct(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	rows := []int{0, 1, 2}
	ok, _, _ := TwoUniqueRows(X, rows, []int{0, 1}, 1e-9)
	if ok {
		t.Error("expected three distinct rows to fail the two-unique-rows test")
	}
}

func TestStandardizeZeroStdBecomesOne(t *testing.T) {
	X := [][]float64{{5}, {5}, {5}}
	mean, std := Standardize(X, []int{0, 1, 2}, 1)
	if mean[0] != 5 {
		t.Errorf("mean = %f, want 5", mean[0])
	}
	if std[0] != 1 {
		t.Errorf("std = %f, want 1 (zero-std substitution)", std[0])
	}
}

func TestStandardizeIgnoresNaN(t *testing.T) {
	X := [][]float64{{1}, {math.NaN()}, {3}}
	mean, _ := Standardize(X, []int{0, 1, 2}, 1)
	if mean[0] != 2 {
		t.Errorf("mean = %f, want 2 (NaN-sentinel excluded)", mean[0])
	}
}

func TestSafeDiv(t *testing.T) {
	if v := SafeDiv(1, 0); v != 0 {
		t.Errorf("SafeDiv(1, 0) = %f, want 0", v)
	}
	if v := SafeDiv(4, 2); v != 2 {
		t.Errorf("SafeDiv(4, 2) = %f, want 2", v)
	}
}
