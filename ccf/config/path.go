package config

// PathContext carries the class-proportion history from root to the current
// node (spec.md §4.4 "ancestral probs", §9 redesign note). The teacher's
// lineage threads this kind of state by mutating a shared options struct;
// here it is an immutable value extended at each recursion step so a single
// Options value stays read-only and safe to share across a tree's subtrees
// without synchronization (spec.md §5).
type PathContext struct {
	ancestralProbs [][]float64
}

// Extend returns a new PathContext with probs appended, leaving the
// receiver (and anything else holding it) untouched. Children inherit and
// extend the parent's list, never mutate it.
func (p PathContext) Extend(probs []float64) PathContext {
	next := make([][]float64, len(p.ancestralProbs)+1)
	copy(next, p.ancestralProbs)
	cp := make([]float64, len(probs))
	copy(cp, probs)
	next[len(next)-1] = cp
	return PathContext{ancestralProbs: next}
}

// NewestFirst returns the recorded class-proportion vectors ordered from
// most recent ancestor to the root, the order spec.md §4.4/§9 says the
// tie-break consults.
func (p PathContext) NewestFirst() [][]float64 {
	out := make([][]float64, len(p.ancestralProbs))
	for i, v := range p.ancestralProbs {
		out[len(out)-1-i] = v
	}
	return out
}
