package pvr

import "testing"

func TestUntwiddleIsPermutation(t *testing.T) {
	t.Parallel()
	for _, size := range []int{2, 4, 8, 16, 32} {
		size := size
		t.Run("", func(t *testing.T) {
			t.Parallel()
			mask, shift := MaskShift(size, size)
			seen := make(map[uint32]bool, size*size)
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					off := Untwiddle(uint32(x), uint32(y), mask, shift)
					if off >= uint32(size*size) {
						t.Fatalf("offset %d out of range for %dx%d", off, size, size)
					}
					if seen[off] {
						t.Fatalf("duplicate offset %d for %dx%d at (%d,%d)", off, size, size, x, y)
					}
					seen[off] = true
				}
			}
		})
	}
}

func TestUntwiddleOriginIsZero(t *testing.T) {
	mask, shift := MaskShift(32, 32)
	if off := Untwiddle(0, 0, mask, shift); off != 0 {
		t.Fatalf("Untwiddle(0,0) = %d, want 0", off)
	}
}

func TestMortonMatchesDirectForLargeIndices(t *testing.T) {
	for _, k := range []uint32{twiddleTableSize, twiddleTableSize + 1, twiddleTableSize * 3} {
		if morton(k) != mortonValue(k) {
			t.Fatalf("morton(%d) = %d, want %d", k, morton(k), mortonValue(k))
		}
	}
}
