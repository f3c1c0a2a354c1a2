package pvr

import (
	"math/rand"
	"testing"
)

func randomReps(n int, seed int64) []PixelVector {
	r := rand.New(rand.NewSource(seed))
	reps := make([]PixelVector, n)
	for i := range reps {
		for sp := 0; sp < 4; sp++ {
			reps[i].setSubPixel(sp, byte(r.Intn(256)), byte(r.Intn(256)), byte(r.Intn(256)), 0xFF)
		}
	}
	return reps
}

func buildTestTree(reps []PixelVector) *TreeNode {
	m := &ImageVectorMap{Width: len(reps), Height: 1, Vectors: make([]PixelVector, len(reps))}
	for i := range m.Vectors {
		m.Vectors[i] = reps[i]
		Project(&m.Vectors[i], MetricEqual)
	}
	cb, err := BuildCodebook([]*ImageVectorMap{m}, []int{1}, len(reps), 0, nil)
	if err != nil {
		panic(err)
	}
	return cb.Tree
}

func TestQueryMatchesBruteForce(t *testing.T) {
	reps := randomReps(32, 9)
	tree := buildTestTree(reps)
	nl := BuildNeighbourTable(reps)

	r := rand.New(rand.NewSource(123))
	for i := 0; i < 50; i++ {
		var q [projDims]float64
		for d := 0; d < projDims; d++ {
			q[d] = r.Float64() * 255
		}
		got := Query(tree, nl, reps, q)
		want := BruteForceNearest(reps, q)
		if got.Index != want.Index {
			// ties are possible at equal distance; only fail on an actual
			// distance mismatch
			if got.DistSq != want.DistSq {
				t.Fatalf("Query = index %d dist %v, want index %d dist %v", got.Index, got.DistSq, want.Index, want.DistSq)
			}
		}
	}
}

func TestNeighbourTableSortedAscending(t *testing.T) {
	reps := randomReps(16, 5)
	nl := BuildNeighbourTable(reps)
	for i, list := range nl {
		for j := 1; j < len(list); j++ {
			if list[j-1].distSq > list[j].distSq {
				t.Fatalf("codeword %d neighbour list not sorted at %d", i, j)
			}
		}
	}
}

func TestWalkToLeafAlwaysReachesValidLeaf(t *testing.T) {
	reps := randomReps(20, 11)
	tree := buildTestTree(reps)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		var q [projDims]float64
		for d := 0; d < projDims; d++ {
			q[d] = r.Float64() * 255
		}
		leaf := WalkToLeaf(tree, q)
		if !leaf.Leaf {
			t.Fatal("WalkToLeaf returned a non-leaf node")
		}
		if leaf.CodeIndex < 0 || leaf.CodeIndex >= len(reps) {
			t.Fatalf("leaf.CodeIndex = %d out of range", leaf.CodeIndex)
		}
	}
}
