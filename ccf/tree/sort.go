package tree

import "sort"

// bySplitValue sorts a column of projected values ascending while permuting
// a parallel slice of global row ids the same way, the one primitive the
// split evaluator leans on at every candidate direction.
type bySplitValue struct {
	x   []float64
	inx []int
}

func (s bySplitValue) Len() int           { return len(s.x) }
func (s bySplitValue) Less(i, j int) bool { return s.x[i] < s.x[j] }
func (s bySplitValue) Swap(i, j int) {
	s.x[i], s.x[j] = s.x[j], s.x[i]
	s.inx[i], s.inx[j] = s.inx[j], s.inx[i]
}

// bSort sorts x ascending, permuting inx (a parallel slice of row ids) the
// same way.
func bSort(x []float64, inx []int) {
	sort.Sort(bySplitValue{x: x, inx: inx})
}
