package pvr

// ReorderResult holds a codebook permutation and its inverse.
type ReorderResult struct {
	// Perm[newIndex] = oldIndex
	Perm []int
	// Inverse[oldIndex] = newIndex
	Inverse []int
}

// BuildAdjacency counts, for every pair of codewords, how often they are
// assigned to spatially adjacent vectors (right and down neighbours) across
// every level in ivms. This drives the §4.7 reordering heuristic: codewords
// that tend to sit next to each other in the image should sit next to each
// other in the codebook too, since the hardware VQ decoder's cache favours
// locality of reference.
func BuildAdjacency(ivms []*ImageVectorMap, n int) [][]int {
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, n)
	}
	bump := func(a, b int) {
		if a == b {
			return
		}
		adj[a][b]++
		adj[b][a]++
	}
	for _, m := range ivms {
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				ci, ok := codeOf(m.at(x, y))
				if !ok {
					continue
				}
				if x+1 < m.Width {
					if cj, ok := codeOf(m.at(x+1, y)); ok {
						bump(ci, cj)
					}
				}
				if y+1 < m.Height {
					if cj, ok := codeOf(m.at(x, y+1)); ok {
						bump(ci, cj)
					}
				}
			}
		}
	}
	return adj
}

func codeOf(pv *PixelVector) (int, bool) {
	ci, ok := pv.Meta.(CodeIndex)
	return int(ci), ok
}

// Reorder greedily builds a codebook permutation that places
// strongly-adjacent codewords next to each other: starting from codeword 0,
// repeatedly append the unplaced codeword with the strongest adjacency
// count to the last placed one, breaking ties by lower original index.
func Reorder(adj [][]int) ReorderResult {
	n := len(adj)
	placed := make([]bool, n)
	perm := make([]int, 0, n)

	cur := 0
	placed[cur] = true
	perm = append(perm, cur)

	for len(perm) < n {
		best := -1
		bestWeight := -1
		for j := 0; j < n; j++ {
			if placed[j] {
				continue
			}
			w := adj[cur][j]
			if w > bestWeight {
				bestWeight = w
				best = j
			}
		}
		if best == -1 {
			// no unplaced codeword has been scored yet; take the lowest
			// remaining index to keep the permutation total.
			for j := 0; j < n; j++ {
				if !placed[j] {
					best = j
					break
				}
			}
		}
		placed[best] = true
		perm = append(perm, best)
		cur = best
	}

	inv := make([]int, n)
	for newIdx, oldIdx := range perm {
		inv[oldIdx] = newIdx
	}
	return ReorderResult{Perm: perm, Inverse: inv}
}

// ApplyReorder permutes reps into codebook order and remaps every IVM's
// CodeIndex assignments to match.
func ApplyReorder(reps []PixelVector, ivms []*ImageVectorMap, r ReorderResult) []PixelVector {
	out := make([]PixelVector, len(reps))
	for newIdx, oldIdx := range r.Perm {
		out[newIdx] = reps[oldIdx]
	}
	for _, m := range ivms {
		for i := range m.Vectors {
			if ci, ok := codeOf(&m.Vectors[i]); ok {
				m.Vectors[i].Meta = CodeIndex(r.Inverse[ci])
			}
		}
	}
	return out
}
