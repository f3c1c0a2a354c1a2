package pvr

// Decode parses a PVR container (with or without a leading GBIX chunk) into
// a Raster. The returned Raster's finest level is the top-level image;
// coarser levels, if any, are chained via Mipmaps.
func (d *Decoder) Decode(data []byte) (*Raster, uint32, error) {
	rest, gbix, hasGBIX, err := ReadGBIX(data)
	if err != nil {
		return nil, 0, err
	}
	header, rest, err := ReadPVRHeader(rest)
	if err != nil {
		return nil, 0, err
	}

	r, err := d.decodeBody(header, rest)
	if err != nil {
		return nil, 0, err
	}
	if !hasGBIX {
		return r, 0, nil
	}
	return r, gbix, nil
}

// DecodeVQF parses a legacy VQF container.
func (d *Decoder) DecodeVQF(data []byte) (*Raster, error) {
	h, rest, err := ReadVQFHeader(data)
	if err != nil {
		return nil, err
	}
	sc := StorageVQ
	if h.Mipmapped {
		sc = StorageVQMM
	}
	header := PVRHeader{
		ColorFormat:  h.ColorFormat,
		Storage:      sc,
		Width:        uint16(h.Width),
		Height:       uint16(h.Width),
		CodebookSize: h.CodebookSize,
	}
	return d.decodeBody(header, rest)
}

func (d *Decoder) decodeBody(header PVRHeader, body []byte) (*Raster, error) {
	switch {
	case header.Storage.isVQ():
		return d.decodeVQ(header, body)
	case header.Storage == StoragePal4 || header.Storage == StoragePal4MM:
		return d.decodePalette(header, body, 4)
	case header.Storage == StoragePal8 || header.Storage == StoragePal8MM:
		return d.decodePalette(header, body, 8)
	case header.Storage.isTwiddled():
		return d.decodeTwiddled(header, body)
	case header.Storage == StorageRectangle || header.Storage == StorageStride:
		return d.decodeLinear(header, body)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func (d *Decoder) codebookEntrySize(format ColorFormat) int { return 8 }

// decodeVQ reads the codebook then every mipmap level's index plane
// (coarsest first, per §4.8), reconstructing each level's raster by
// expanding every index to its codebook entry's 2×2 block.
func (d *Decoder) decodeVQ(header PVRHeader, body []byte) (*Raster, error) {
	width, height := int(header.Width), int(header.Height)
	if width != height {
		return nil, ErrUnsupportedFormat // rectangular VQ refused, §9 Open Question
	}

	numLevels := 1
	if header.Storage.hasMipmaps() {
		numLevels = log2(width) + 1
	}

	cbSize, err := d.codebookSizeFor(header, width)
	if err != nil {
		return nil, err
	}

	reps := make([]PixelVector, cbSize)
	for i := 0; i < cbSize; i++ {
		format := header.ColorFormat
		if header.Storage.hasMipmaps() && i == cbSize-1 {
			format = FormatRGB565
		}
		pv, err := ReadVQCodebookEntry(body, format, d.opaqueAlpha())
		if err != nil {
			return nil, err
		}
		reps[i] = pv
		body = body[8:]
	}

	if !header.Storage.hasMipmaps() {
		// single full-size level, no reserved 1×1 codeword, no placeholder.
		r, _, err := readVQLevel(body, width, height, reps, d.opaqueAlpha())
		return r, err
	}

	if len(body) < 1 {
		return nil, ErrTruncatedFile
	}
	body = body[1:] // 1×1 placeholder byte: its codeword is reps[cbSize-1]

	// The codebook payload is written coarsest-first (smallest non-1×1
	// level first, full size last, §4.8); read back in the same order.
	levels := make([]*Raster, numLevels)
	for lvl := 1; lvl < numLevels; lvl++ {
		w := 1 << uint(lvl)
		r, consumed, err := readVQLevel(body, w, w, reps, d.opaqueAlpha())
		if err != nil {
			return nil, err
		}
		levels[lvl] = r
		body = body[consumed:]
	}

	oneByOne := NewRaster(1, 1)
	red, green, blue, _ := unpackColor(reps[cbSize-1], 0, FormatRGB565, d.opaqueAlpha())
	oneByOne.RGB[0], oneByOne.RGB[1], oneByOne.RGB[2] = red, green, blue
	levels[0] = oneByOne

	top := levels[numLevels-1]
	for i := numLevels - 2; i >= 0; i-- {
		top.Mipmaps = append(top.Mipmaps, levels[i])
	}
	return top, nil
}

func (d *Decoder) codebookSizeFor(header PVRHeader, width int) (int, error) {
	if header.Storage == StorageSmallVQ || header.Storage == StorageSmallVQMM {
		return SmallVQCodebookSize(width, header.Storage == StorageSmallVQMM), nil
	}
	if header.CodebookSize != 0 {
		return header.CodebookSize, nil
	}
	// non-SmallVQ codebook size is not recorded in the PVRT header; callers
	// that need it must use DecodeVQF (whose header carries it explicitly)
	// or populate header.CodebookSize out of band. 256 is the fallback.
	return 256, nil
}

// readVQLevel expands one level's twiddled index plane to a full raster,
// returning the bytes consumed.
func readVQLevel(body []byte, w, h int, reps []PixelVector, opaqueAlpha uint8) (*Raster, int, error) {
	ivmW, ivmH := w/2, h/2
	n := ivmW * ivmH
	if len(body) < n {
		return nil, 0, ErrTruncatedFile
	}
	mask, shift := MaskShift(ivmW, ivmH)

	out := NewRaster(w, h)
	for y := 0; y < ivmH; y++ {
		for x := 0; x < ivmW; x++ {
			code := body[Untwiddle(uint32(x), uint32(y), mask, shift)]
			pv := reps[code]
			corners := [4][2]int{{x * 2, y * 2}, {x*2 + 1, y * 2}, {x * 2, y*2 + 1}, {x*2 + 1, y*2 + 1}}
			for i, c := range corners {
				b, g, r, a := pv.subPixel(i)
				idx := c[1]*w + c[0]
				out.RGB[idx*3], out.RGB[idx*3+1], out.RGB[idx*3+2] = r, g, b
				if a != opaqueAlpha {
					out.AppendAlpha()
				}
			}
		}
	}
	return out, n, nil
}

func unpackColor(pv PixelVector, sub int, format ColorFormat, opaqueAlpha uint8) (r, g, b, a uint8) {
	bb, gg, rr, aa := pv.subPixel(sub)
	return rr, gg, bb, aa
}

// decodeTwiddled reads a single-level (or mipmapped) twiddled non-VQ,
// non-palette texture. Unlike VQ, the 1×1 mip level carries real encoded
// texel data (not a codebook index): the dummy placeholder precedes it,
// and levels are read ascending from 1×1 up to full size (§4.8).
func (d *Decoder) decodeTwiddled(header PVRHeader, body []byte) (*Raster, error) {
	width, height := int(header.Width), int(header.Height)
	if !header.Storage.hasMipmaps() {
		r, _, err := readTwiddledPlane(body, width, height, header.ColorFormat, d.opaqueAlpha())
		return r, err
	}

	numLevels := log2(width) + 1
	placeholder := mipmapPlaceholderSize(header.Storage)
	if len(body) < placeholder {
		return nil, ErrTruncatedFile
	}
	body = body[placeholder:]

	levels := make([]*Raster, numLevels)
	for lvl := 0; lvl < numLevels; lvl++ {
		w := 1 << uint(lvl)
		r, consumed, err := readTwiddledPlane(body, w, w, header.ColorFormat, d.opaqueAlpha())
		if err != nil {
			return nil, err
		}
		levels[lvl] = r
		body = body[consumed:]
	}

	top := levels[numLevels-1]
	for i := numLevels - 2; i >= 0; i-- {
		top.Mipmaps = append(top.Mipmaps, levels[i])
	}
	return top, nil
}

func readTwiddledPlane(body []byte, w, h int, format ColorFormat, opaqueAlpha uint8) (*Raster, int, error) {
	n := w * h
	if len(body) < n*2 {
		return nil, 0, ErrTruncatedFile
	}
	mask, shift := MaskShift(w, h)
	out := NewRaster(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := int(Untwiddle(uint32(x), uint32(y), mask, shift)) * 2
			texel := uint16(body[off]) | uint16(body[off+1])<<8
			idx := y*w + x
			if format == FormatYUV422 {
				if x%2 == 1 {
					evenOff := int(Untwiddle(uint32(x-1), uint32(y), mask, shift)) * 2
					even := uint16(body[evenOff]) | uint16(body[evenOff+1])<<8
					r0, g0, b0, r1, g1, b1 := YUVPairToRGB(even, texel)
					out.RGB[(idx-1)*3], out.RGB[(idx-1)*3+1], out.RGB[(idx-1)*3+2] = r0, g0, b0
					out.RGB[idx*3], out.RGB[idx*3+1], out.RGB[idx*3+2] = r1, g1, b1
				}
				continue
			}
			a, r, g, b := Unpack(format, texel, opaqueAlpha)
			out.RGB[idx*3], out.RGB[idx*3+1], out.RGB[idx*3+2] = r, g, b
			if a != opaqueAlpha {
				out.AppendAlpha()
				out.Alpha[idx] = a
			}
		}
	}
	return out, n * 2, nil
}

// decodeLinear reads a non-twiddled rectangle or stride texture, texels in
// row-major order.
func (d *Decoder) decodeLinear(header PVRHeader, body []byte) (*Raster, error) {
	r, _, err := readLinearPlane(body, int(header.Width), int(header.Height), header.ColorFormat, d.opaqueAlpha())
	return r, err
}

func readLinearPlane(body []byte, w, h int, format ColorFormat, opaqueAlpha uint8) (*Raster, int, error) {
	n := w * h
	if len(body) < n*2 {
		return nil, 0, ErrTruncatedFile
	}
	out := NewRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 2
			texel := uint16(body[off]) | uint16(body[off+1])<<8
			idx := y*w + x
			if format == FormatYUV422 {
				if x%2 == 1 {
					even := uint16(body[off-2]) | uint16(body[off-1])<<8
					r0, g0, b0, r1, g1, b1 := YUVPairToRGB(even, texel)
					out.RGB[(idx-1)*3], out.RGB[(idx-1)*3+1], out.RGB[(idx-1)*3+2] = r0, g0, b0
					out.RGB[idx*3], out.RGB[idx*3+1], out.RGB[idx*3+2] = r1, g1, b1
				}
				continue
			}
			a, r, g, b := Unpack(format, texel, opaqueAlpha)
			out.RGB[idx*3], out.RGB[idx*3+1], out.RGB[idx*3+2] = r, g, b
			if a != opaqueAlpha {
				out.AppendAlpha()
				out.Alpha[idx] = a
			}
		}
	}
	return out, n * 2, nil
}

// decodePalette reads a palette-indexed (4 or 8 bit) texture. No embedded
// PVP is consulted here; callers needing palette colours supply one via
// Raster.Palette, or fall back to the default greyscale ramp (§7).
func (d *Decoder) decodePalette(header PVRHeader, body []byte, bpp int) (*Raster, error) {
	width, height := int(header.Width), int(header.Height)
	out := NewRaster(width, height)
	out.IsPalette = true
	out.Palette = defaultGreyscaleRamp()
	out.PaletteIndex = make([]byte, width*height)

	mask, shift := MaskShift(width, height)
	n := width * height
	needed := n
	if bpp == 4 {
		needed = (n + 1) / 2
	}
	if len(body) < needed {
		return nil, ErrTruncatedFile
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := int(Untwiddle(uint32(x), uint32(y), mask, shift))
			var idx byte
			if bpp == 8 {
				idx = body[pos]
			} else {
				b := body[pos/2]
				if pos%2 == 0 {
					idx = b & 0x0F
				} else {
					idx = b >> 4
				}
			}
			out.PaletteIndex[y*width+x] = idx
		}
	}
	return out, nil
}

func log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}
