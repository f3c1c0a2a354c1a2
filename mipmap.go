package pvr

// BuildMipmapChain computes each coarser level of top by averaging every
// 2×2 block of its parent with rounding, down to and including the 1×1
// level. The returned slice holds the coarser levels only (top itself is
// not included), finest first.
func BuildMipmapChain(top *Raster) []*Raster {
	var chain []*Raster
	cur := top
	for cur.Width > 1 || cur.Height > 1 {
		next := halveRaster(cur)
		chain = append(chain, next)
		cur = next
	}
	return chain
}

// halveRaster averages every 2×2 block of src (rounding each channel via
// ⌊(a+b+c+d+2)/4⌋) into a Raster of half the dimensions (minimum 1×1).
func halveRaster(src *Raster) *Raster {
	w, h := max(src.Width/2, 1), max(src.Height/2, 1)
	out := NewRaster(w, h)
	if src.Alpha != nil {
		out.AppendAlpha()
	}

	for y := 0; y < h; y++ {
		sy0 := min(2*y, src.Height-1)
		sy1 := min(2*y+1, src.Height-1)
		for x := 0; x < w; x++ {
			sx0 := min(2*x, src.Width-1)
			sx1 := min(2*x+1, src.Width-1)

			for c := 0; c < 3; c++ {
				a := int(src.RGB[(sy0*src.Width+sx0)*3+c])
				b := int(src.RGB[(sy0*src.Width+sx1)*3+c])
				cc := int(src.RGB[(sy1*src.Width+sx0)*3+c])
				d := int(src.RGB[(sy1*src.Width+sx1)*3+c])
				out.RGB[(y*w+x)*3+c] = byte((a + b + cc + d + 2) / 4)
			}
			if src.Alpha != nil {
				a := int(src.Alpha[sy0*src.Width+sx0])
				b := int(src.Alpha[sy0*src.Width+sx1])
				cc := int(src.Alpha[sy1*src.Width+sx0])
				d := int(src.Alpha[sy1*src.Width+sx1])
				out.Alpha[y*w+x] = byte((a + b + cc + d + 2) / 4)
			}
		}
	}
	return out
}

// MipWeights returns the per-level training-importance schedule for
// levels training importance doubles at each coarser level beyond the
// first two (which are identical), then holds steady at the coarsest
// (1×1) level to keep the weight*pixel-count product bounded.
func MipWeights(levels int) []int {
	w := make([]int, levels)
	if levels == 0 {
		return w
	}
	w[0] = 1
	if levels == 1 {
		return w
	}
	w[1] = 1
	for i := 2; i < levels; i++ {
		if i == levels-1 {
			w[i] = w[i-1] // cap at the coarsest supported level
		} else {
			w[i] = w[i-1] * 2
		}
	}
	return w
}

// EncodeYUV422Level packs one mipmap level's RGB plane into YUV422 texels
// in raster (row-major, untwiddled) order. Width must be even.
func EncodeYUV422Level(r *Raster) []uint16 {
	out := make([]uint16, r.Width*r.Height)
	for y := 0; y < r.Height; y++ {
		var enc YUV422Encoder
		for x := 0; x < r.Width; x++ {
			i := y*r.Width + x
			red, green, blue := r.RGB[i*3], r.RGB[i*3+1], r.RGB[i*3+2]
			even, odd, ok := enc.Push(x, red, green, blue)
			if ok {
				out[y*r.Width+x-1] = even
				out[y*r.Width+x] = odd
			}
		}
	}
	return out
}
