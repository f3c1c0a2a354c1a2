package pvr

import (
	"container/heap"
	"log/slog"
	"math"
)

const projDims = 16

// trainVec is one pixel vector plus its training weight, the array element
// that partitions hold contiguous windows into. Partitions never shuffle
// the PixelVectors themselves (those live in the ImageVectorMaps); only
// this reference slice is sorted.
type trainVec struct {
	pv     *PixelVector
	weight float64
}

// partition is a contiguous window [start, start+len) into the shared
// trainVec array, with its current sum-of-squared-error score and a
// back-pointer to its tree node.
type partition struct {
	refs []trainVec // window, aliases the shared backing array
	node *TreeNode
	err  float64
}

// partitionHeap is a max-heap on err, used to always split the
// highest-error partition next (§4.4).
type partitionHeap []*partition

func (h partitionHeap) Len() int            { return len(h) }
func (h partitionHeap) Less(i, j int) bool  { return h[i].err > h[j].err }
func (h partitionHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *partitionHeap) Push(x any)         { *h = append(*h, x.(*partition)) }
func (h *partitionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TreeNode is one node of the search tree built by the partitioner and
// finalised by FinalizeTree: either a Leaf carrying a codebook index, or an
// Internal node carrying a splitting axis and owned children.
type TreeNode struct {
	Left, Right *TreeNode
	Axis        [projDims]float64
	D           float64
	CodeIndex   int
	Leaf        bool
}

// CodebookResult is the output of BuildCodebook: the representative
// vectors (raw, not yet quantised to an output format), the root of the
// search tree whose leaves reference them by index, and the actual number
// of codes produced (which may be less than the requested target if the
// partitioner ran out of distinguishable partitions).
type CodebookResult struct {
	Tree  *TreeNode
	Reps  []PixelVector // centroid PixelVectors, raw bytes only
	Count int
}

// BuildCodebook grows a forest of partitions over the vectors of ivms by
// repeatedly splitting the highest-error partition along its principal
// axis, until target representatives exist or max(err) hits zero.
//
// reserved is the number of codebook slots a caller holds back for its own
// special entries (the mipmapped 1×1 map's RGB565 codeword, §4.6);
// target+reserved must not exceed 256. Every IVM in ivms is trained on.
func BuildCodebook(ivms []*ImageVectorMap, weights []int, target, reserved int, logger *slog.Logger) (*CodebookResult, error) {
	if target <= 0 || target+reserved > 256 {
		return nil, ErrInvalidParameter
	}

	all := collectTrainVecs(ivms, weights)
	if len(all) == 0 {
		return nil, ErrInvalidParameter
	}

	root := &partition{refs: all, node: &TreeNode{Leaf: true, CodeIndex: 0}}
	root.err = partitionError(root.refs)

	h := &partitionHeap{root}
	heap.Init(h)
	count := 1

	maxTarget := target
	if maxTarget > 256-reserved {
		maxTarget = 256 - reserved
	}

	for count < maxTarget {
		top := (*h)[0]
		if top.err <= 0 {
			break // image fully representable with fewer codes than target
		}
		heap.Pop(h)

		axis, converged := principalAxis(top.refs, logger)
		_ = converged

		sortByProjection(top.refs, axis)
		splitAt := bestSplit(top.refs, axis)

		left := &partition{refs: top.refs[:splitAt]}
		right := &partition{refs: top.refs[splitAt:]}
		left.err = partitionError(left.refs)
		right.err = partitionError(right.refs)

		leftLeaf := &TreeNode{Leaf: true, CodeIndex: top.node.CodeIndex}
		rightLeaf := &TreeNode{Leaf: true, CodeIndex: count}
		left.node, right.node = leftLeaf, rightLeaf

		// Axis/D are left zero here; FinalizeTree (searchtree.go) fills them
		// in from the finished centroids during its post-order walk (§4.5).
		*top.node = TreeNode{Leaf: false, Left: leftLeaf, Right: rightLeaf}

		heap.Push(h, left)
		heap.Push(h, right)
		count++
	}

	reps := make([]PixelVector, count)
	for _, p := range *h {
		fillCentroid(&reps[p.node.CodeIndex], p.refs)
	}

	FinalizeTree(root.node, reps)

	return &CodebookResult{Tree: root.node, Reps: reps, Count: count}, nil
}

func collectTrainVecs(ivms []*ImageVectorMap, weights []int) []trainVec {
	n := 0
	for _, m := range ivms {
		n += len(m.Vectors)
	}
	out := make([]trainVec, 0, n)
	for li, m := range ivms {
		w := 1.0
		if li < len(weights) {
			w = float64(weights[li])
		}
		for i := range m.Vectors {
			out = append(out, trainVec{pv: &m.Vectors[i], weight: w})
		}
	}
	return out
}

// partitionError computes Σ|v|²·w − |Σw·v|²/Σw over the partition's
// projected vectors.
func partitionError(refs []trainVec) float64 {
	var sumW float64
	var sumWV [projDims]float64
	var sumSq float64
	for _, t := range refs {
		sumW += t.weight
		for d := 0; d < projDims; d++ {
			x := t.pv.Proj[d]
			sumWV[d] += t.weight * x
			sumSq += t.weight * x * x
		}
	}
	if sumW == 0 {
		return 0
	}
	var normSq float64
	for d := 0; d < projDims; d++ {
		normSq += sumWV[d] * sumWV[d]
	}
	return sumSq - normSq/sumW
}

// principalAxis computes the weighted covariance matrix of refs and
// returns its dominant eigenvector via classical cyclic Jacobi
// diagonalisation (a threshold that decays with iteration count, at most
// 50 sweeps). Non-convergence is logged, not fatal; the last estimate is
// returned.
func principalAxis(refs []trainVec, logger *slog.Logger) (axis [projDims]float64, converged bool) {
	var mean [projDims]float64
	var sumW float64
	for _, t := range refs {
		sumW += t.weight
		for d := 0; d < projDims; d++ {
			mean[d] += t.weight * t.pv.Proj[d]
		}
	}
	if sumW == 0 {
		return axis, true
	}
	for d := 0; d < projDims; d++ {
		mean[d] /= sumW
	}

	var cov [projDims][projDims]float64
	for _, t := range refs {
		var centered [projDims]float64
		for d := 0; d < projDims; d++ {
			centered[d] = t.pv.Proj[d] - mean[d]
		}
		for i := 0; i < projDims; i++ {
			wi := t.weight * centered[i]
			for j := i; j < projDims; j++ {
				cov[i][j] += wi * centered[j]
			}
		}
	}
	for i := 0; i < projDims; i++ {
		for j := i + 1; j < projDims; j++ {
			cov[j][i] = cov[i][j]
		}
	}

	eigvec, eigval, ok := jacobiDominantEigenvector(cov)
	if !ok && logger != nil {
		logger.Warn("pvr: jacobi eigensolve did not converge within 50 sweeps; using last estimate")
	}
	_ = eigval
	return eigvec, ok
}

// jacobiDominantEigenvector runs classical cyclic Jacobi on a symmetric
// matrix with an off-diagonal threshold that decays each sweep, capped at
// 50 sweeps, and returns the eigenvector of the largest eigenvalue.
func jacobiDominantEigenvector(a [projDims][projDims]float64) (vec [projDims]float64, val float64, converged bool) {
	var v [projDims][projDims]float64
	for i := range v {
		v[i][i] = 1
	}

	const maxSweeps = 50
	converged = false
	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := offDiagonalSum(a)
		if off < 1e-12 {
			converged = true
			break
		}
		threshold := off / float64(projDims*projDims) / math.Pow(2, float64(sweep)/4+1)

		for p := 0; p < projDims-1; p++ {
			for q := p + 1; q < projDims; q++ {
				if math.Abs(a[p][q]) < threshold {
					continue
				}
				jacobiRotate(&a, &v, p, q)
			}
		}
	}

	best := 0
	for i := 1; i < projDims; i++ {
		if a[i][i] > a[best][best] {
			best = i
		}
	}
	for i := 0; i < projDims; i++ {
		vec[i] = v[i][best]
	}
	return vec, a[best][best], converged
}

func offDiagonalSum(a [projDims][projDims]float64) float64 {
	var sum float64
	for i := 0; i < projDims; i++ {
		for j := i + 1; j < projDims; j++ {
			sum += a[i][j] * a[i][j]
		}
	}
	return sum
}

func jacobiRotate(a *[projDims][projDims]float64, v *[projDims][projDims]float64, p, q int) {
	if a[p][q] == 0 {
		return
	}
	theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
	t := 1.0 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
	if theta < 0 {
		t = -t
	}
	c := 1.0 / math.Sqrt(t*t+1)
	s := t * c

	app, aqq, apq := a[p][p], a[q][q], a[p][q]
	a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
	a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
	a[p][q] = 0
	a[q][p] = 0

	for i := 0; i < projDims; i++ {
		if i != p && i != q {
			aip, aiq := a[i][p], a[i][q]
			a[i][p] = c*aip - s*aiq
			a[p][i] = a[i][p]
			a[i][q] = s*aip + c*aiq
			a[q][i] = a[i][q]
		}
		vip, viq := v[i][p], v[i][q]
		v[i][p] = c*vip - s*viq
		v[i][q] = s*vip + c*viq
	}
}

// sortByProjection sorts refs by dot(proj, axis) ascending using shell
// sort with halving gaps. Equal keys are never moved, so it stays fast when
// most vectors share one (near-)constant dot product — unlike naive
// quicksort, which is forbidden here (§4.4).
func sortByProjection(refs []trainVec, axis [projDims]float64) {
	n := len(refs)
	keys := make([]float64, n)
	for i, t := range refs {
		keys[i] = dot(t.pv.Proj, axis)
	}

	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			tmp := refs[i]
			k := keys[i]
			j := i
			for j >= gap && keys[j-gap] > k {
				refs[j] = refs[j-gap]
				keys[j] = keys[j-gap]
				j -= gap
			}
			refs[j] = tmp
			keys[j] = k
		}
	}
}

func dot(v [projDims]float64, axis [projDims]float64) float64 {
	var s float64
	for i := 0; i < projDims; i++ {
		s += v[i] * axis[i]
	}
	return s
}

// bestSplit sweeps a split point from 1 to len-1 over refs (already sorted
// by projection), maintaining running weighted sums incrementally, and
// returns the index minimising the combined left+right error. Ties break
// at the lowest index.
func bestSplit(refs []trainVec, axis [projDims]float64) int {
	n := len(refs)

	var totalW, totalSumSq float64
	var totalSumWV [projDims]float64
	for _, t := range refs {
		totalW += t.weight
		for d := 0; d < projDims; d++ {
			x := t.pv.Proj[d]
			totalSumWV[d] += t.weight * x
			totalSumSq += t.weight * x * x
		}
	}

	var leftW, leftSumSq float64
	var leftSumWV [projDims]float64
	bestIdx := 1
	bestErr := math.Inf(1)

	for split := 1; split < n; split++ {
		t := refs[split-1]
		leftW += t.weight
		for d := 0; d < projDims; d++ {
			x := t.pv.Proj[d]
			leftSumWV[d] += t.weight * x
			leftSumSq += t.weight * x * x
		}

		rightW := totalW - leftW
		rightSumSq := totalSumSq - leftSumSq

		var leftNormSq, rightNormSq float64
		for d := 0; d < projDims; d++ {
			rightWV := totalSumWV[d] - leftSumWV[d]
			leftNormSq += leftSumWV[d] * leftSumWV[d]
			rightNormSq += rightWV * rightWV
		}

		errL := leftSumSq - leftNormSq/nz(leftW)
		errR := rightSumSq - rightNormSq/nz(rightW)

		combined := errL + errR
		if combined < bestErr {
			bestErr = combined
			bestIdx = split
		}
	}
	return bestIdx
}

func nz(w float64) float64 {
	if w == 0 {
		return 1
	}
	return w
}

// fillCentroid writes the weighted-average raw colour of refs into out, one
// byte per channel, rounded.
func fillCentroid(out *PixelVector, refs []trainVec) {
	var sumW [4]float64
	var sum [4][4]float64 // [subpixel][channel: b,g,r,a]
	for _, t := range refs {
		for i := 0; i < 4; i++ {
			b, g, r, a := t.pv.subPixel(i)
			sum[i][0] += t.weight * float64(b)
			sum[i][1] += t.weight * float64(g)
			sum[i][2] += t.weight * float64(r)
			sum[i][3] += t.weight * float64(a)
			sumW[i] += t.weight
		}
	}
	for i := 0; i < 4; i++ {
		w := nz(sumW[i])
		b := clampU8f(sum[i][0]/w + 0.5)
		g := clampU8f(sum[i][1]/w + 0.5)
		r := clampU8f(sum[i][2]/w + 0.5)
		a := clampU8f(sum[i][3]/w + 0.5)
		out.setSubPixel(i, b, g, r, a)
	}
}

// AssertWeightBudget reports ErrInvalidParameter if maxWeight*maxPixels
// would exceed the 2^31 accumulator budget the partitioner relies on
// (§4.4: "the product of maximum weight and maximum pixel count must not
// exceed 2^31").
func AssertWeightBudget(maxWeight, maxPixels int) error {
	if int64(maxWeight)*int64(maxPixels) > (1 << 31) {
		return ErrInvalidParameter
	}
	return nil
}
