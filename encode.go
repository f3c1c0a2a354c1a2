package pvr

import "encoding/binary"

// EncodeOptions configures a single Encode call (§6 primary encode
// operation).
type EncodeOptions struct {
	BGROrder      bool
	Mipmap        bool
	AlphaPresent  bool
	IncludeHeader bool
	InvertAlpha   bool

	Dither    DitherMode
	Metric    Metric
	// CodebookSize is the requested VQ codebook size; rounded up to the
	// next supported power of two (16, 32, ..., 256).
	CodebookSize int
	ColorFormat  ColorFormat
	// SmallVQ selects the SmallVQ storage class, whose codebook size is
	// instead derived from width (§4.8); CodebookSize is ignored.
	SmallVQ bool
	// ExtraGLAPasses is the number of additional (non-dithered)
	// assign-then-refine passes before the final, possibly dithered, pass.
	ExtraGLAPasses int

	// VQOff selects the non-VQ encode path (§4.8): texels are packed
	// directly, with no codebook. Twiddle/Stride select the storage class
	// within that path; they are ignored when VQOff is false.
	VQOff bool
	// Twiddle, with VQOff, selects a twiddled (Morton-order) square texture
	// instead of a row-major rectangle. Mutually exclusive with Stride.
	Twiddle bool
	// Stride, with VQOff, selects a row-major stride texture: width must be
	// a multiple of 32 in [32,992]; never twiddled, never mipmapped.
	Stride bool
	// PadStride zero-pads a stride texture's payload up to the next
	// power-of-two allocation (§4.8).
	PadStride bool
}

var validWidths = func() map[int]bool {
	m := map[int]bool{}
	for w := 8; w <= 1024; w *= 2 {
		m[w] = true
	}
	return m
}()

// Encode builds a PVR container from a raw interleaved RGB(A) raster:
// VQ-compressed, or with texels packed directly when opts.VQOff is set (see
// encodeNonVQ, whose size rules differ). Without opts.IncludeHeader only the
// payload is returned; EncodeVQF wraps that payload in a VQF header. rgb is
// 3 bytes/pixel (or BGR if opts.BGROrder); alpha, if non-nil, is 1
// byte/pixel. On the VQ path width/height must be equal, a power of two in
// [8,1024] (§3, §6). Returns the encoded bytes and the number of codewords
// actually used (0 on the VQOff path).
func (e *Encoder) Encode(rgb, alpha []byte, width, height int, opts EncodeOptions) ([]byte, int, error) {
	if opts.VQOff {
		return e.encodeNonVQ(rgb, alpha, width, height, opts)
	}

	if width != height || !validWidths[width] {
		return nil, 0, ErrInvalidSize
	}
	if len(rgb) != width*height*3 {
		return nil, 0, ErrInvalidParameter
	}
	if alpha != nil && len(alpha) != width*height {
		return nil, 0, ErrInvalidParameter
	}

	top := rasterFromBytes(rgb, alpha, width, height, opts.BGROrder, opts.InvertAlpha)

	mipChain := []*Raster(nil)
	if opts.Mipmap {
		mipChain = BuildMipmapChain(top)
	}
	allLevels := append([]*Raster{top}, mipChain...)

	ivms := BuildIVMChain(top, mipChain, e.opaqueAlpha())
	for _, ivm := range ivms {
		for i := range ivm.Vectors {
			Project(&ivm.Vectors[i], opts.Metric)
		}
	}
	weights := MipWeights(len(ivms))

	storage, codebookTarget, reserved, err := vqStorageClass(opts, width)
	if err != nil {
		return nil, 0, err
	}
	if err := CheckWritableStorage(storage); err != nil {
		return nil, 0, err
	}

	cb, err := BuildCodebook(ivms, weights, codebookTarget, reserved, e.Logger)
	if err != nil {
		return nil, 0, err
	}
	reps := cb.Reps

	for pass := 0; pass < opts.ExtraGLAPasses; pass++ {
		g := newGLA(len(reps))
		for _, ivm := range ivms {
			AssignLevel(ivm, cb.Tree, BuildNeighbourTable(reps), reps, ActiveDimensions(opts.Metric, opts.AlphaPresent), AssignLevelOptions{GLA: g})
		}
		g.Refine(reps)
		FinalizeTree(cb.Tree, reps)
	}

	nl := BuildNeighbourTable(reps)
	finalGLA := newGLA(len(reps))
	var rms float64
	restrictFirst := opts.ColorFormat == FormatYUV422
	for i, ivm := range ivms {
		// the degenerate 1×1 map is handled separately below (its own
		// reserved codeword, RGB565-only, linear-scanned).
		if len(allLevels) > 0 && allLevels[i].Width == 1 && allLevels[i].Height == 1 {
			continue
		}
		r := AssignLevel(ivm, cb.Tree, nl, reps, ActiveDimensions(opts.Metric, opts.AlphaPresent), AssignLevelOptions{
			Dither:                 opts.Dither,
			RestrictToFirstChannel: restrictFirst,
			GLA:                    finalGLA,
		})
		rms = r
	}
	finalGLA.Refine(reps)

	reorderResult := Reorder(BuildAdjacency(ivms, len(reps)))
	reps = ApplyReorder(reps, ivms, reorderResult)
	_ = rms

	// cb.Count codewords were actually trained; the remaining slots up to
	// codebookTarget are unused but still occupy codebook entries on disk
	// (the stored codebook size is always a fixed class, §4.8). Pad by
	// duplicating the last trained codeword so the written codebook's
	// entry count always matches codebookTarget exactly.
	actualUsed := len(reps)
	if actualUsed < codebookTarget {
		last := reps[actualUsed-1]
		for len(reps) < codebookTarget {
			reps = append(reps, last)
		}
	}

	sc := storage
	if sc.hasMipmaps() {
		// The 1×1 map is never trained or searched: its own colour becomes
		// the reserved last codeword, stored as RGB565 regardless of the
		// texture's own colour format (§4.6, §4.8).
		oneByOne := ivms[len(ivms)-1]
		v := oneByOne.at(0, 0)
		special := *v
		special.Meta = nil
		idx := len(reps)
		reps = append(reps, special)
		v.Meta = CodeIndex(idx)
	}

	var out []byte
	if opts.IncludeHeader && e.EnableGlobalIndex {
		out = WriteGBIX(out, e.takeGlobalIndex())
	}

	payload, err := encodeVQPayload(allLevels, ivms, reps, sc, opts, e.opaqueAlpha())
	if err != nil {
		return nil, 0, err
	}

	if opts.IncludeHeader {
		out = WritePVRHeader(out, PVRHeader{
			// DataSize covers everything after itself: the 4-byte texture
			// type, 2-byte width, 2-byte height, and the payload (§4.8).
			DataSize:    uint32(len(payload) + 8),
			ColorFormat: opts.ColorFormat,
			Storage:     sc,
			Width:       uint16(width),
			Height:      uint16(height),
		})
	}
	out = append(out, payload...)

	return out, actualUsed, nil
}

// encodeNonVQ builds a non-VQ-compressed PVR container (§4.8, §6's VQ-off
// path): texels are packed directly with no codebook, in Morton order for
// a twiddled square texture or row-major for a plain rectangle or stride
// texture.
func (e *Encoder) encodeNonVQ(rgb, alpha []byte, width, height int, opts EncodeOptions) ([]byte, int, error) {
	var sc StorageClass
	switch {
	case opts.Stride:
		if width%32 != 0 || width < 32 || width > 992 || !validWidths[height] {
			return nil, 0, ErrInvalidSize
		}
		sc = StorageStride
	case opts.Twiddle:
		if width != height || !validWidths[width] {
			return nil, 0, ErrInvalidSize
		}
		sc = StorageTwiddled
		if opts.Mipmap {
			sc = StorageTwiddledMM
		}
	default:
		if !validWidths[width] || !validWidths[height] {
			return nil, 0, ErrInvalidSize
		}
		sc = StorageRectangle
		if opts.Mipmap {
			sc = StorageRectangleMM
		}
		if err := CheckWritableStorage(sc); err != nil {
			return nil, 0, err
		}
	}
	if len(rgb) != width*height*3 {
		return nil, 0, ErrInvalidParameter
	}
	if alpha != nil && len(alpha) != width*height {
		return nil, 0, ErrInvalidParameter
	}

	top := rasterFromBytes(rgb, alpha, width, height, opts.BGROrder, opts.InvertAlpha)
	opaque := e.opaqueAlpha()

	var payload []byte
	var err error
	switch sc {
	case StorageTwiddledMM:
		mipChain := BuildMipmapChain(top)
		levels := append([]*Raster{top}, mipChain...) // finest first, 1×1 last
		payload = append(payload, make([]byte, mipmapPlaceholderSize(sc))...)
		for i := len(levels) - 1; i >= 0; i-- {
			var plane []byte
			plane, err = writeTwiddledPlane(levels[i], opts.ColorFormat, opaque)
			if err != nil {
				return nil, 0, err
			}
			payload = append(payload, plane...)
		}
	case StorageTwiddled:
		payload, err = writeTwiddledPlane(top, opts.ColorFormat, opaque)
	case StorageStride:
		payload, err = writeLinearPlane(top, opts.ColorFormat, opaque)
		if err == nil && opts.PadStride {
			full := nextPow2(width) * nextPow2(height) * 2
			if full > len(payload) {
				payload = append(payload, make([]byte, full-len(payload))...)
			}
		}
	default: // StorageRectangle
		payload, err = writeLinearPlane(top, opts.ColorFormat, opaque)
	}
	if err != nil {
		return nil, 0, err
	}

	var out []byte
	if opts.IncludeHeader && e.EnableGlobalIndex {
		out = WriteGBIX(out, e.takeGlobalIndex())
	}
	if opts.IncludeHeader {
		out = WritePVRHeader(out, PVRHeader{
			DataSize:    uint32(len(payload) + 8),
			ColorFormat: opts.ColorFormat,
			Storage:     sc,
			Width:       uint16(width),
			Height:      uint16(height),
		})
	}
	out = append(out, payload...)
	return out, 0, nil
}

// writeTwiddledPlane packs r's texels in Morton order (inverse of
// readTwiddledPlane).
func writeTwiddledPlane(r *Raster, format ColorFormat, opaqueAlpha uint8) ([]byte, error) {
	w, h := r.Width, r.Height
	buf := make([]byte, w*h*2)
	mask, shift := MaskShift(w, h)

	if format == FormatYUV422 {
		for y := 0; y < h; y++ {
			var enc YUV422Encoder
			for x := 0; x < w; x++ {
				red, green, blue, _ := r.At(x, y, opaqueAlpha)
				even, odd, ok := enc.Push(x, red, green, blue)
				if !ok {
					continue
				}
				offEven := int(Untwiddle(uint32(x-1), uint32(y), mask, shift)) * 2
				offOdd := int(Untwiddle(uint32(x), uint32(y), mask, shift)) * 2
				binary.LittleEndian.PutUint16(buf[offEven:], even)
				binary.LittleEndian.PutUint16(buf[offOdd:], odd)
			}
		}
		return buf, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			red, green, blue, a := r.At(x, y, opaqueAlpha)
			texel, err := Pack(format, a, red, green, blue)
			if err != nil {
				return nil, err
			}
			off := int(Untwiddle(uint32(x), uint32(y), mask, shift)) * 2
			binary.LittleEndian.PutUint16(buf[off:], texel)
		}
	}
	return buf, nil
}

// writeLinearPlane packs r's texels row-major (inverse of readLinearPlane).
func writeLinearPlane(r *Raster, format ColorFormat, opaqueAlpha uint8) ([]byte, error) {
	w, h := r.Width, r.Height
	buf := make([]byte, w*h*2)

	if format == FormatYUV422 {
		for y := 0; y < h; y++ {
			var enc YUV422Encoder
			for x := 0; x < w; x++ {
				red, green, blue, _ := r.At(x, y, opaqueAlpha)
				even, odd, ok := enc.Push(x, red, green, blue)
				if !ok {
					continue
				}
				i := y*w + x
				binary.LittleEndian.PutUint16(buf[(i-1)*2:], even)
				binary.LittleEndian.PutUint16(buf[i*2:], odd)
			}
		}
		return buf, nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			red, green, blue, a := r.At(x, y, opaqueAlpha)
			texel, err := Pack(format, a, red, green, blue)
			if err != nil {
				return nil, err
			}
			i := y*w + x
			binary.LittleEndian.PutUint16(buf[i*2:], texel)
		}
	}
	return buf, nil
}

// nextPow2 rounds n up to the next power of two.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// vqStorageClass resolves the requested options to a storage class and
// codebook sizing, reserving the last codeword for the 1×1 map when
// mipmapped (§4.8).
func vqStorageClass(opts EncodeOptions, width int) (StorageClass, int, int, error) {
	if opts.SmallVQ {
		size := SmallVQCodebookSize(width, opts.Mipmap)
		if opts.Mipmap {
			return StorageSmallVQMM, size - 1, 1, nil
		}
		return StorageSmallVQ, size, 0, nil
	}

	size := nextPow2CodebookSize(opts.CodebookSize)
	if opts.Mipmap {
		return StorageVQMM, size - 1, 1, nil
	}
	return StorageVQ, size, 0, nil
}

func nextPow2CodebookSize(n int) int {
	if n <= 0 {
		n = 256
	}
	size := 16
	for size < n && size < 256 {
		size *= 2
	}
	return size
}

// encodeVQPayload writes the codebook followed by every mipmap level's
// index plane, coarsest first, with the 1×1 placeholder in between (§4.8).
func encodeVQPayload(levels []*Raster, ivms []*ImageVectorMap, reps []PixelVector, sc StorageClass, opts EncodeOptions, opaqueAlpha uint8) ([]byte, error) {
	var buf []byte
	for i := range reps {
		format := opts.ColorFormat
		if sc.hasMipmaps() && i == len(reps)-1 {
			format = FormatRGB565
		}
		var err error
		buf, err = WriteVQCodebookEntry(buf, &reps[i], format, opaqueAlpha)
		if err != nil {
			return nil, err
		}
	}

	if sc.hasMipmaps() {
		oneByOne := ivms[len(ivms)-1]
		code, _ := codeOf(oneByOne.at(0, 0))
		buf = append(buf, byte(code)) // 1×1 placeholder: codebook index
	}

	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		if level.Width == 1 && level.Height == 1 {
			continue // already emitted as the placeholder above
		}
		ivm := ivms[i]
		mask, shift := MaskShift(ivm.Width, ivm.Height)
		idx := make([]byte, ivm.Width*ivm.Height)
		for y := 0; y < ivm.Height; y++ {
			for x := 0; x < ivm.Width; x++ {
				code, _ := codeOf(ivm.at(x, y))
				idx[Untwiddle(uint32(x), uint32(y), mask, shift)] = byte(code)
			}
		}
		buf = append(buf, idx...)
	}
	return buf, nil
}

// rasterFromBytes builds a Raster from interleaved RGB(A) bytes, applying
// BGR reordering and alpha inversion as requested.
func rasterFromBytes(rgb, alpha []byte, width, height int, bgrOrder, invertAlpha bool) *Raster {
	r := NewRaster(width, height)
	for i := 0; i < width*height; i++ {
		c0, c1, c2 := rgb[i*3], rgb[i*3+1], rgb[i*3+2]
		if bgrOrder {
			c0, c2 = c2, c0
		}
		r.RGB[i*3], r.RGB[i*3+1], r.RGB[i*3+2] = c0, c1, c2
	}
	if alpha != nil {
		r.AppendAlpha()
		for i, a := range alpha {
			if invertAlpha {
				a = 0xFF - a
			}
			r.Alpha[i] = a
		}
	}
	return r
}

// EncodeVQF writes the same VQ-compressed payload under the legacy 12-byte
// VQF header instead of the chunked PVRT form (§4.8).
func (e *Encoder) EncodeVQF(rgb, alpha []byte, width, height int, opts EncodeOptions) ([]byte, int, error) {
	opts.IncludeHeader = false
	payload, n, err := e.Encode(rgb, alpha, width, height, opts)
	if err != nil {
		return nil, 0, err
	}
	// The codebook is always padded out to a fixed size class (§4.8); that
	// class, not the actually-trained count n, is what the header's size
	// code must describe.
	_, codebookTarget, reserved, err := vqStorageClass(opts, width)
	if err != nil {
		return nil, 0, err
	}
	var out []byte
	out, err = WriteVQFHeader(out, VQFHeader{
		ColorFormat:  opts.ColorFormat,
		Mipmapped:    opts.Mipmap,
		Width:        width,
		CodebookSize: codebookTarget + reserved,
	})
	if err != nil {
		return nil, 0, err
	}
	out = append(out, payload...)
	return out, n, nil
}
