package pvr

// FinalizeTree walks the tree post-order, turning each internal node's
// bare Left/Right structure (as left by BuildCodebook) into a usable
// branch-and-bound node: Axis becomes the difference of the children's
// centroids, D becomes the midpoint of their projected dot products, and
// children are swapped if needed so Left is the lower-dot side (§4.5).
// Returns the node's own centroid (the average of its children's, or the
// leaf's representative) for the caller's recursion.
func FinalizeTree(node *TreeNode, reps []PixelVector) [projDims]float64 {
	if node.Leaf {
		return projectRaw(&reps[node.CodeIndex])
	}

	leftCentroid := FinalizeTree(node.Left, reps)
	rightCentroid := FinalizeTree(node.Right, reps)

	var axis [projDims]float64
	var mid [projDims]float64
	for i := 0; i < projDims; i++ {
		axis[i] = leftCentroid[i] - rightCentroid[i]
		mid[i] = (leftCentroid[i] + rightCentroid[i]) / 2
	}
	d := dot(mid, axis)

	leftDot := dot(leftCentroid, axis)
	rightDot := dot(rightCentroid, axis)
	if leftDot > rightDot {
		node.Left, node.Right = node.Right, node.Left
	}

	node.Axis = axis
	node.D = d

	var avg [projDims]float64
	for i := 0; i < projDims; i++ {
		avg[i] = (leftCentroid[i] + rightCentroid[i]) / 2
	}
	return avg
}

// projectRaw re-derives a representative's projection from its raw bytes.
// Centroids are computed from raw colour averages (fillCentroid), not from
// the training projections, so the tree's distance geometry is built from
// the same raw-space representation the neighbour table uses.
func projectRaw(pv *PixelVector) [projDims]float64 {
	var out [projDims]float64
	for i := 0; i < 4; i++ {
		b, g, r, a := pv.subPixel(i)
		out[i*4+0] = float64(r)
		out[i*4+1] = float64(g)
		out[i*4+2] = float64(b)
		out[i*4+3] = float64(a)
	}
	return out
}

// WalkToLeaf descends the tree using the dot-product heuristic
// (dot(query, axis) <= d steers left) and returns the leaf reached.
func WalkToLeaf(root *TreeNode, query [projDims]float64) *TreeNode {
	n := root
	for !n.Leaf {
		if dot(query, n.Axis) <= n.D {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

// neighbourEntry is one (codeword, squared distance) pair in a sorted
// neighbour list.
type neighbourEntry struct {
	index int
	distSq float64
}

// NeighbourTable holds, for every codeword i, the list of all other
// codewords sorted ascending by squared raw-RGBA distance (§4.5).
type NeighbourTable [][]neighbourEntry

// BuildNeighbourTable computes the full pairwise squared-distance table
// over reps (raw colour space) and sorts each codeword's list ascending.
func BuildNeighbourTable(reps []PixelVector) NeighbourTable {
	n := len(reps)
	proj := make([][projDims]float64, n)
	for i := range reps {
		proj[i] = projectRaw(&reps[i])
	}

	nl := make(NeighbourTable, n)
	for i := 0; i < n; i++ {
		list := make([]neighbourEntry, 0, n-1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			list = append(list, neighbourEntry{index: j, distSq: distSq(proj[i], proj[j])})
		}
		insertionSortNeighbours(list)
		nl[i] = list
	}
	return nl
}

// insertionSortNeighbours sorts in place by distSq ascending, then by
// index ascending for ties, so the branch-and-bound scan's tie-break
// (lower index first) is deterministic.
func insertionSortNeighbours(list []neighbourEntry) {
	for i := 1; i < len(list); i++ {
		v := list[i]
		j := i - 1
		for j >= 0 && (list[j].distSq > v.distSq || (list[j].distSq == v.distSq && list[j].index > v.index)) {
			list[j+1] = list[j]
			j--
		}
		list[j+1] = v
	}
}

func distSq(a, b [projDims]float64) float64 {
	var s float64
	for i := 0; i < projDims; i++ {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// QueryResult is the outcome of a nearest-codeword search.
type QueryResult struct {
	Index  int
	DistSq float64
	Probes int // number of neighbour-list entries examined; stats mode
}

// Query finds the nearest codeword to a raw-space query vector: walk the
// tree to a warm-start leaf, then scan that leaf's sorted neighbour list
// with a triangle-inequality cutoff (§4.5). Correct against a complete
// codebook regardless of tree quality; the tree only affects how many
// neighbours get scanned.
func Query(root *TreeNode, nl NeighbourTable, reps []PixelVector, query [projDims]float64) QueryResult {
	start := WalkToLeaf(root, query)
	best := start.CodeIndex
	bestProj := projectRaw(&reps[best])
	bestDist := distSq(query, bestProj)
	cutoff := 4 * bestDist

	tested := make(map[int]bool, len(reps))
	tested[best] = true
	probes := 0

	for {
		improved := false
		for _, e := range nl[best] {
			if e.distSq >= cutoff {
				break
			}
			if tested[e.index] {
				continue
			}
			probes++
			d := distSq(query, projectRaw(&reps[e.index]))
			if d < bestDist {
				best = e.index
				bestDist = d
				cutoff = 4 * bestDist
				tested[best] = true
				improved = true
				break // restart scan from the new best's neighbour list
			}
			tested[e.index] = true
		}
		if !improved {
			break
		}
	}

	return QueryResult{Index: best, DistSq: bestDist, Probes: probes}
}

// BruteForceNearest scans every codeword directly; used by tests to check
// Query's exactness and by Query's stats-mode callers as a baseline.
func BruteForceNearest(reps []PixelVector, query [projDims]float64) QueryResult {
	best := 0
	bestDist := distSq(query, projectRaw(&reps[0]))
	for i := 1; i < len(reps); i++ {
		d := distSq(query, projectRaw(&reps[i]))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return QueryResult{Index: best, DistSq: bestDist, Probes: len(reps) - 1}
}
