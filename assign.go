package pvr

import "math"

// DitherMode selects the post-quantisation error-diffusion strength
// applied during the final assignment pass.
type DitherMode int

const (
	DitherNone DitherMode = iota
	DitherSubtle
	DitherFull
)

// gla accumulates per-codeword sums and counts across an assignment pass,
// for the Generalised Lloyd Algorithm refinement step.
type gla struct {
	sum   [][4][4]float64 // [code][subpixel][channel: b,g,r,a]
	count []float64
}

func newGLA(n int) *gla {
	return &gla{sum: make([][4][4]float64, n), count: make([]float64, n)}
}

func (g *gla) add(code int, pv *PixelVector) {
	g.count[code]++
	for i := 0; i < 4; i++ {
		b, gg, r, a := pv.subPixel(i)
		g.sum[code][i][0] += float64(b)
		g.sum[code][i][1] += float64(gg)
		g.sum[code][i][2] += float64(r)
		g.sum[code][i][3] += float64(a)
	}
}

// Refine replaces every codeword whose count is non-zero with the rounded
// average of its assignees (§4.6 GLA refinement). This runs unconditionally,
// even on a dithered pass: the legacy encoder never special-cased it.
func (g *gla) Refine(reps []PixelVector) {
	for code := range reps {
		if g.count[code] == 0 {
			continue
		}
		n := g.count[code]
		for i := 0; i < 4; i++ {
			b := clampU8f(g.sum[code][i][0]/n + 0.5)
			gg := clampU8f(g.sum[code][i][1]/n + 0.5)
			r := clampU8f(g.sum[code][i][2]/n + 0.5)
			a := clampU8f(g.sum[code][i][3]/n + 0.5)
			reps[code].setSubPixel(i, b, gg, r, a)
		}
	}
}

// subErr is the per-subpixel, per-channel (b,g,r,a) diffusion error carried
// between vectors.
type subErr [4]float64

// AssignLevelOptions configures one assignment pass over an ImageVectorMap.
type AssignLevelOptions struct {
	Dither                 DitherMode
	RestrictToFirstChannel bool // YUV mode: diffuse only the luma-proxy channel
	GLA                    *gla // non-nil to accumulate centroid sums/counts
}

// AssignLevel assigns every vector of ivm to its nearest codeword, applying
// Floyd-Steinberg-style error diffusion across the scan when opts.Dither is
// set, and returns the RMS error for the level
// (sqrt(Σ best_d² / (vector_count × active_dimensions))).
//
// Diffusion state (§4.6): a "top" row, built while scanning the previous
// row and consumed by top-left/top-right of this row, and a "left"
// (horizontal) value carried within the current row and consumed by
// top-left/bottom-left. Top-left's own post-quantisation error is never
// propagated anywhere: the legacy encoder's fourth distribution branch was
// dead code.
func AssignLevel(ivm *ImageVectorMap, tree *TreeNode, nl NeighbourTable, reps []PixelVector, activeDims int, opts AssignLevelOptions) float64 {
	w, h := ivm.Width, ivm.Height
	topRow := make([]subErr, w)
	nextTopRow := make([]subErr, w)

	var sumDistSq float64
	var n int

	for y := 0; y < h; y++ {
		var horiz subErr
		for i := range nextTopRow {
			nextTopRow[i] = subErr{}
		}

		for x := 0; x < w; x++ {
			pv := ivm.at(x, y)

			var vq [4]subErr
			for i := 0; i < 4; i++ {
				b, g, r, a := pv.subPixel(i)
				vq[i] = subErr{float64(b), float64(g), float64(r), float64(a)}
			}
			if opts.Dither != DitherNone {
				for c := 0; c < 4; c++ {
					vq[0][c] += topRow[x][c] + horiz[c] // top-left: top + left
					vq[1][c] += topRow[x][c]            // top-right: top
					vq[2][c] += horiz[c]                // bottom-left: left
					// bottom-right receives nothing
				}
				for i := range vq {
					for c := range vq[i] {
						if vq[i][c] < 0 {
							vq[i][c] = 0
						}
						if vq[i][c] > 255 {
							vq[i][c] = 255
						}
					}
				}
			}

			var query [projDims]float64
			for i := 0; i < 4; i++ {
				query[i*4+0] = vq[i][2] // r
				query[i*4+1] = vq[i][1] // g
				query[i*4+2] = vq[i][0] // b
				query[i*4+3] = vq[i][3] // a
			}

			res := Query(tree, nl, reps, query)
			pv.Meta = CodeIndex(res.Index)
			sumDistSq += res.DistSq
			n++

			if opts.GLA != nil {
				opts.GLA.add(res.Index, pv)
			}

			if opts.Dither != DitherNone {
				e := quantError(vq, &reps[res.Index], opts.Dither, opts.RestrictToFirstChannel)
				eTR, eBL, eBR := e[1], e[2], e[3]

				for c := 0; c < 4; c++ {
					horiz[c] = 0.75*eTR[c] + 0.375*eBR[c]
					nextTopRow[x][c] += 0.75*eBL[c] + 0.375*eBR[c]
					if x+1 < w {
						nextTopRow[x+1][c] += 0.25 * (eTR[c] + eBL[c] + eBR[c])
					}
				}
			}
		}
		topRow, nextTopRow = nextTopRow, topRow
	}

	if n == 0 || activeDims == 0 {
		return 0
	}
	return math.Sqrt(sumDistSq / float64(n*activeDims))
}

// quantError returns the clamped (±16), optionally halved, per-subpixel
// error between the (already error-adjusted) quantisation input and the
// matched codeword: input value minus codeword value.
func quantError(vq [4]subErr, rep *PixelVector, dither DitherMode, restrictFirst bool) [4]subErr {
	var e [4]subErr
	for i := 0; i < 4; i++ {
		b, g, r, a := rep.subPixel(i)
		e[i] = subErr{
			vq[i][0] - float64(b),
			vq[i][1] - float64(g),
			vq[i][2] - float64(r),
			vq[i][3] - float64(a),
		}
		for c := 0; c < 4; c++ {
			if e[i][c] > 16 {
				e[i][c] = 16
			}
			if e[i][c] < -16 {
				e[i][c] = -16
			}
			if dither == DitherSubtle {
				e[i][c] /= 2
			}
		}
		if restrictFirst {
			// only the blue slot (channel 0) stands in for YUV's luma
			// component; chroma error is dropped rather than diffused.
			e[i][1], e[i][2], e[i][3] = 0, 0, 0
		}
	}
	return e
}
