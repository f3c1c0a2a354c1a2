package pvr

// ColorFormat identifies a 16-bit (or 32-bit palette) PVR texel encoding.
type ColorFormat uint8

// Color format byte values, as stored in the low byte of a PVR texture type
// (PVR.h KM_TEXTURE_* pixel format codes).
const (
	FormatARGB1555 ColorFormat = 0
	FormatRGB565   ColorFormat = 1
	FormatARGB4444 ColorFormat = 2
	FormatYUV422   ColorFormat = 3
	FormatBump     ColorFormat = 4 // reserved; decode returns ErrUnsupportedFormat
	FormatRGB555   ColorFormat = 5
	FormatYUV420   ColorFormat = 6 // reserved; decode returns ErrUnsupportedFormat
)

// Pack encodes one texel. YUV422 cannot be packed one pixel at a time (it
// shares U/V across a horizontal pixel pair); use YUV422Encoder instead.
// Pack returns ErrInvalidParameter for YUV422 and any unrecognised format.
func Pack(format ColorFormat, a, r, g, b uint8) (uint16, error) {
	switch format {
	case FormatARGB1555:
		alpha := uint16(0)
		if a >= 0x80 {
			alpha = 1
		}
		return (alpha << 15) | (uint16(r>>3) << 10) | (uint16(g>>3) << 5) | uint16(b>>3), nil
	case FormatRGB555:
		return (uint16(r>>3) << 10) | (uint16(g>>3) << 5) | uint16(b>>3), nil
	case FormatRGB565:
		return (uint16(r>>3) << 11) | (uint16(g>>2) << 5) | uint16(b>>3), nil
	case FormatARGB4444:
		return (uint16(a>>4) << 12) | (uint16(r>>4) << 8) | (uint16(g>>4) << 4) | uint16(b>>4), nil
	default:
		return 0, ErrInvalidParameter
	}
}

// Unpack decodes one texel back to 8-bit (a, r, g, b). For YUV422 use
// YUV422Decoder, which needs the paired texel to reconstruct chroma.
func Unpack(format ColorFormat, texel uint16, opaqueAlpha uint8) (a, r, g, b uint8) {
	switch format {
	case FormatARGB1555:
		if texel&0x8000 != 0 {
			a = 0xFF
		}
		r = replicate5(uint8((texel >> 10) & 0x1F))
		g = replicate5(uint8((texel >> 5) & 0x1F))
		b = replicate5(uint8(texel & 0x1F))
		return a, r, g, b
	case FormatRGB555:
		a = opaqueAlpha
		r = replicate5(uint8((texel >> 10) & 0x1F))
		g = replicate5(uint8((texel >> 5) & 0x1F))
		b = replicate5(uint8(texel & 0x1F))
		return a, r, g, b
	case FormatRGB565:
		a = opaqueAlpha
		r = replicate5(uint8((texel >> 11) & 0x1F))
		g = replicate6(uint8((texel >> 5) & 0x3F))
		b = replicate5(uint8(texel & 0x1F))
		return a, r, g, b
	case FormatARGB4444:
		a = replicate4(uint8((texel >> 12) & 0xF))
		r = replicate4(uint8((texel >> 8) & 0xF))
		g = replicate4(uint8((texel >> 4) & 0xF))
		b = replicate4(uint8(texel & 0xF))
		return a, r, g, b
	default:
		return opaqueAlpha, 0, 0, 0
	}
}

func replicate4(v uint8) uint8 { return v<<4 | v }
func replicate5(v uint8) uint8 { return v<<3 | v>>2 }
func replicate6(v uint8) uint8 { return v<<2 | v>>4 }

// yuvMatrix converts one RGB sample to Y, U, V using the fixed matrix
// specified for YUV422. U and V are saturated into [0, 255].
func yuvMatrix(r, g, b uint8) (y, u, v uint8) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	yf := 0.299*rf + 0.587*gf + 0.114*bf
	uf := -0.14*rf - 0.29*gf + 0.43*bf + 128
	vf := 0.36*rf - 0.29*gf - 0.07*bf + 128
	return clampU8f(yf), clampU8f(uf), clampU8f(vf)
}

func clampU8f(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// YUV422Encoder packs a horizontal run of pixels into YUV422 texels. Two
// pixels share one U/V pair: on an even x it buffers R,G,B; on the
// following odd x it combines with the buffered pixel and emits both
// texels. The state is local to one scanline; create a fresh encoder per
// row.
type YUV422Encoder struct {
	bufR, bufG, bufB uint8
	haveEven         bool
}

// Push feeds one pixel at horizontal position x. It returns ok=true with
// two texels (even, odd) once a pair is complete (i.e. on odd x).
func (e *YUV422Encoder) Push(x int, r, g, b uint8) (even, odd uint16, ok bool) {
	if x%2 == 0 {
		e.bufR, e.bufG, e.bufB = r, g, b
		e.haveEven = true
		return 0, 0, false
	}
	if !e.haveEven {
		e.bufR, e.bufG, e.bufB = r, g, b
	}
	y0, u0, v0 := yuvMatrix(e.bufR, e.bufG, e.bufB)
	y1, u1, v1 := yuvMatrix(r, g, b)
	uAvg := uint8((uint16(u0) + uint16(u1)) / 2)
	vAvg := uint8((uint16(v0) + uint16(v1)) / 2)
	even = (uint16(y0) << 8) | uint16(uAvg)
	odd = (uint16(y1) << 8) | uint16(vAvg)
	e.haveEven = false
	return even, odd, true
}

// YUV422Decoder mirrors YUV422Encoder: feed texels in scan order; Push
// yields the odd-position pixel of each pair. YUVPairToRGB decodes both
// pixels of a pair from its two texels.
type YUV422Decoder struct {
	evenY, evenU uint8
	haveEven     bool
}

// Push feeds one texel at horizontal position x and returns the decoded
// pixel for that position once enough state is available (every position
// after the first in a pair).
func (d *YUV422Decoder) Push(x int, texel uint16) (r, g, b uint8, ok bool) {
	y := uint8(texel >> 8)
	c := uint8(texel & 0xFF)
	if x%2 == 0 {
		d.evenY, d.evenU = y, c
		d.haveEven = true
		return 0, 0, 0, false
	}
	u := d.evenU
	if !d.haveEven {
		u = c
	}
	v := c
	return yuvToRGB(y, u, v)
}

// YUVPairToRGB decodes both pixels of a pair from its even texel (Y0, U)
// and odd texel (Y1, V), for callers that want both outputs at once.
func YUVPairToRGB(even, odd uint16) (r0, g0, b0, r1, g1, b1 uint8) {
	y0 := uint8(even >> 8)
	u := uint8(even & 0xFF)
	y1 := uint8(odd >> 8)
	v := uint8(odd & 0xFF)
	r0, g0, b0, _ = yuvToRGB(y0, u, v)
	r1, g1, b1, _ = yuvToRGB(y1, u, v)
	return
}

// yuvToRGB inverts yuvMatrix exactly (that matrix, not a standard BT.601
// one) so that round-tripping a solid-color pair reproduces the source
// within rounding.
func yuvToRGB(y, u, v uint8) (r, g, b uint8, ok bool) {
	yf := float64(y)
	uf := float64(u) - 128
	vf := float64(v) - 128
	r = clampU8f(yf + 0.055379310344827616*uf + 1.9687586206896552*vf)
	g = clampU8f(yf - 0.4273793103448277*uf - 0.9967586206896554*vf)
	b = clampU8f(yf + 2.055379310344828*uf - 0.031241379310344784*vf)
	return r, g, b, true
}
