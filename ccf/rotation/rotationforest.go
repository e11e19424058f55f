package rotation

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ttomita/ccfs/ccf/config"
	"github.com/ttomita/ccfs/ccf/internal/linalg"
)

// fitRotationForest implements rotationForestDataProcess (spec.md §6): the
// d input columns are split into M contiguous blocks of a random column
// permutation; each block's local rotation is a PCA fit on a
// class-subsampled bootstrap of that block's columns, with a random subset
// of classes left out of the bootstrap entirely. The blocks' local
// rotations are assembled into one block-diagonal R over the original
// column order.
func fitRotationForest(XBag, YBag *mat.Dense, opt config.Options, rng *rand.Rand) (*Result, error) {
	n, d := XBag.Dims()
	if n < 2 || d == 0 {
		return nil, nil
	}

	numBlocks := opt.RotForestNumBlocks
	if numBlocks < 1 {
		numBlocks = 1
	}
	if numBlocks > d {
		numBlocks = d
	}

	blocks := partitionColumns(rng.Perm(d), numBlocks)
	labels := argmaxRows(YBag)
	classes := uniqueInts(labels)

	mu := linalg.ColMeans(XBag)
	R := mat.NewDense(d, d, nil)

	for _, block := range blocks {
		full, err := blockRotation(XBag, labels, classes, block, opt, rng)
		if err != nil {
			return nil, err
		}
		for i, ci := range block {
			for j, cj := range block {
				R.Set(ci, cj, full.At(i, j))
			}
		}
	}

	if !linalg.Finite(R) {
		return nil, errRotForestNonFinite
	}

	return &Result{R: R, Mu: mu}, nil
}

// blockRotation fits one block's local PCA rotation on a class-subsampled
// bootstrap of the block's columns, padding with identity where the
// bootstrap was too small or too rank-deficient to fill the block.
func blockRotation(XBag *mat.Dense, labels []int, classes []int, block []int, opt config.Options, rng *rand.Rand) (*mat.Dense, error) {
	n, _ := XBag.Dims()
	blockLen := len(block)

	leaveOutN := int(opt.RotForestPropClassLeaveOut * float64(len(classes)))
	leftOut := make(map[int]bool, leaveOutN)
	perm := rng.Perm(len(classes))
	for i := 0; i < leaveOutN && i < len(classes); i++ {
		leftOut[classes[perm[i]]] = true
	}

	var keepRows []int
	for i, lbl := range labels {
		if !leftOut[lbl] {
			keepRows = append(keepRows, i)
		}
	}
	if len(keepRows) < 2 {
		keepRows = make([]int, n)
		for i := range keepRows {
			keepRows[i] = i
		}
	}

	m := int(opt.RotForestPropSubsample * float64(len(keepRows)))
	if m < 2 {
		m = len(keepRows)
		if m > 2 {
			m = 2
		}
	}
	sampleRows := make([]int, m)
	for i := range sampleRows {
		sampleRows[i] = keepRows[rng.Intn(len(keepRows))]
	}

	sub := mat.NewDense(len(sampleRows), blockLen, nil)
	for i, r := range sampleRows {
		for j, c := range block {
			sub.Set(i, j, XBag.At(r, c))
		}
	}

	full := linalg.Identity(blockLen)
	if len(sampleRows) >= 2 {
		subC := linalg.Center(sub, linalg.ColMeans(sub))
		var svd mat.SVD
		if svd.Factorize(subC, mat.SVDThin) {
			var v mat.Dense
			svd.VTo(&v)
			vr, vc := v.Dims()
			for i := 0; i < vr && i < blockLen; i++ {
				for j := 0; j < vc && j < blockLen; j++ {
					full.Set(i, j, v.At(i, j))
				}
			}
		}
	}

	return full, nil
}

// partitionColumns splits a permutation of 0..d-1 into numBlocks nearly
// equal contiguous chunks.
func partitionColumns(perm []int, numBlocks int) [][]int {
	d := len(perm)
	blocks := make([][]int, numBlocks)
	base := d / numBlocks
	rem := d % numBlocks
	idx := 0
	for b := 0; b < numBlocks; b++ {
		size := base
		if b < rem {
			size++
		}
		blocks[b] = append([]int(nil), perm[idx:idx+size]...)
		idx += size
	}
	return blocks
}

// argmaxRows returns, for each row of a one-hot (or soft) class-encoded
// matrix, the index of its largest column.
func argmaxRows(Y *mat.Dense) []int {
	if Y == nil {
		return nil
	}
	n, k := Y.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestV := 0, Y.At(i, 0)
		for j := 1; j < k; j++ {
			if v := Y.At(i, j); v > bestV {
				best, bestV = j, v
			}
		}
		labels[i] = best
	}
	return labels
}

func uniqueInts(vals []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
