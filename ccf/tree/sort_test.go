package tree

import "testing"

func TestBSortAscendingPermutesIndex(t *testing.T) {
	x2 := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	idx2 := []int{10, 11, 12, 13, 14, 15, 16, 17}
	bSort(x2, idx2)

	for i := 1; i < len(x2); i++ {
		if x2[i-1] > x2[i] {
			t.Fatalf("not sorted at %d: %v", i, x2)
		}
	}
	// idx2[i] must still point at the original position of x2[i]'s value
	orig := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	for i, id := range idx2 {
		if orig[id-10] != x2[i] {
			t.Errorf("permutation broken at %d: x=%f but orig[idx]=%f", i, x2[i], orig[id-10])
		}
	}
}
