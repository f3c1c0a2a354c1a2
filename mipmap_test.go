package pvr

import "testing"

func TestBuildMipmapChainEndsAt1x1(t *testing.T) {
	top := NewRaster(8, 8)
	chain := BuildMipmapChain(top)
	want := []int{4, 2, 1}
	if len(chain) != len(want) {
		t.Fatalf("len(chain) = %d, want %d", len(chain), len(want))
	}
	for i, level := range chain {
		if level.Width != want[i] || level.Height != want[i] {
			t.Fatalf("level %d = %dx%d, want %dx%d", i, level.Width, level.Height, want[i], want[i])
		}
	}
}

func TestHalveRasterAverages(t *testing.T) {
	top := NewRaster(2, 2)
	// four corners: 0, 10, 20, 30 -> average rounds to (0+10+20+30+2)/4 = 15
	top.RGB[0*3] = 0
	top.RGB[1*3] = 10
	top.RGB[2*3] = 20
	top.RGB[3*3] = 30
	half := halveRaster(top)
	if half.Width != 1 || half.Height != 1 {
		t.Fatalf("half = %dx%d, want 1x1", half.Width, half.Height)
	}
	if got := half.RGB[0]; got != 15 {
		t.Fatalf("averaged channel = %d, want 15", got)
	}
}

func TestMipWeightsCapsAtCoarsestLevel(t *testing.T) {
	w := MipWeights(5)
	if w[0] != 1 || w[1] != 1 {
		t.Fatalf("w[0],w[1] = %d,%d, want 1,1", w[0], w[1])
	}
	for i := 2; i < len(w)-1; i++ {
		if w[i] != w[i-1]*2 {
			t.Fatalf("w[%d] = %d, want doubling of w[%d]=%d", i, w[i], i-1, w[i-1])
		}
	}
	if w[len(w)-1] != w[len(w)-2] {
		t.Fatalf("coarsest weight should equal the prior level's (capped), got %d vs %d", w[len(w)-1], w[len(w)-2])
	}
}

func TestBuildIVMDegenerateOnePixel(t *testing.T) {
	r := NewRaster(1, 1)
	r.RGB[0], r.RGB[1], r.RGB[2] = 10, 20, 30
	m := BuildIVM(r, 0xFF)
	if m.Width != 1 || m.Height != 1 {
		t.Fatalf("IVM = %dx%d, want 1x1", m.Width, m.Height)
	}
	for i := 0; i < 4; i++ {
		b, g, rr, a := m.at(0, 0).subPixel(i)
		if b != 30 || g != 20 || rr != 10 || a != 0xFF {
			t.Fatalf("subpixel %d = %d,%d,%d,%d, want 30,20,10,255", i, b, g, rr, a)
		}
	}
}
