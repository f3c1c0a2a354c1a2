package pvr

// ImageVectorMap (IVM) is a 2-D grid of PixelVectors built from one raster
// level: each PV covers one 2×2 block of that level's pixels. Width and
// Height are the PV grid's dimensions (half the raster level's, rounded up
// for the degenerate 1×1 level).
type ImageVectorMap struct {
	Vectors []PixelVector
	Width   int
	Height  int
}

func (m *ImageVectorMap) at(x, y int) *PixelVector {
	return &m.Vectors[y*m.Width+x]
}

// BuildIVM builds the vector grid for one raster level. For a level with
// W,H >= 2 the grid is (W/2)×(H/2) and each PV takes its four sub-pixels
// from the corresponding 2×2 block in raster order (top-left, top-right,
// bottom-left, bottom-right). For the degenerate 1×1 level the grid is a
// single PV whose four sub-pixels are all copies of that one pixel.
func BuildIVM(level *Raster, opaqueAlpha uint8) *ImageVectorMap {
	if level.Width == 1 && level.Height == 1 {
		m := &ImageVectorMap{Width: 1, Height: 1, Vectors: make([]PixelVector, 1)}
		r, g, b, a := level.At(0, 0, opaqueAlpha)
		for i := 0; i < 4; i++ {
			m.Vectors[0].setSubPixel(i, b, g, r, a)
		}
		return m
	}

	w, h := level.Width/2, level.Height/2
	m := &ImageVectorMap{Width: w, Height: h, Vectors: make([]PixelVector, w*h)}
	for vy := 0; vy < h; vy++ {
		for vx := 0; vx < w; vx++ {
			pv := m.at(vx, vy)
			px, py := vx*2, vy*2
			corners := [4][2]int{{px, py}, {px + 1, py}, {px, py + 1}, {px + 1, py + 1}}
			for i, c := range corners {
				r, g, b, a := level.At(c[0], c[1], opaqueAlpha)
				pv.setSubPixel(i, b, g, r, a)
			}
		}
	}
	return m
}

// BuildIVMChain builds the full ordered IVM sequence for a texture: entry 0
// is the top map's vector grid, entries 1..N-2 are the mip chain's vector
// grids, and entry N-1 is the degenerate 1×1 map.
func BuildIVMChain(top *Raster, mipChain []*Raster, opaqueAlpha uint8) []*ImageVectorMap {
	ivms := make([]*ImageVectorMap, 0, len(mipChain)+1)
	ivms = append(ivms, BuildIVM(top, opaqueAlpha))
	for _, level := range mipChain {
		ivms = append(ivms, BuildIVM(level, opaqueAlpha))
	}
	return ivms
}
