package pvr

// Raster holds one decoded texture level: RGB planes, an optional alpha
// plane, and/or a palette-index plane, plus the 256-entry palette used when
// IsPalette is true. Mipmaps (if any) are chained via the Mipmaps slice,
// finest levels first, down to and including the 1×1 placeholder.
type Raster struct {
	RGB          []byte // len W*H*3, R,G,B per pixel
	Alpha        []byte // len W*H, nil if no alpha plane
	PaletteIndex []byte // len W*H, nil unless IsPalette
	Mipmaps      []*Raster
	Palette      [256][4]byte // R,G,B,A; valid iff IsPalette
	Width        int
	Height       int
	IsPalette    bool
}

// NewRaster allocates a Raster of the given dimensions with an RGB plane
// only (no alpha, no palette).
func NewRaster(width, height int) *Raster {
	return &Raster{Width: width, Height: height, RGB: make([]byte, width*height*3)}
}

// At returns the R,G,B,A at (x, y), resolving through the palette if
// IsPalette is set. opaqueAlpha substitutes when no alpha plane exists.
func (r *Raster) At(x, y int, opaqueAlpha uint8) (red, green, blue, alpha uint8) {
	i := y*r.Width + x
	if r.IsPalette {
		idx := r.PaletteIndex[i]
		p := r.Palette[idx]
		return p[0], p[1], p[2], p[3]
	}
	red, green, blue = r.RGB[i*3], r.RGB[i*3+1], r.RGB[i*3+2]
	if r.Alpha != nil {
		alpha = r.Alpha[i]
	} else {
		alpha = opaqueAlpha
	}
	return red, green, blue, alpha
}

// Clone returns a deep copy of r, including its mipmap chain.
func (r *Raster) Clone() *Raster {
	if r == nil {
		return nil
	}
	out := &Raster{
		Width:     r.Width,
		Height:    r.Height,
		IsPalette: r.IsPalette,
		Palette:   r.Palette,
	}
	if r.RGB != nil {
		out.RGB = append([]byte(nil), r.RGB...)
	}
	if r.Alpha != nil {
		out.Alpha = append([]byte(nil), r.Alpha...)
	}
	if r.PaletteIndex != nil {
		out.PaletteIndex = append([]byte(nil), r.PaletteIndex...)
	}
	if r.Mipmaps != nil {
		out.Mipmaps = make([]*Raster, len(r.Mipmaps))
		for i, m := range r.Mipmaps {
			out.Mipmaps[i] = m.Clone()
		}
	}
	return out
}

// Replace overwrites r's contents with a deep copy of other's.
func (r *Raster) Replace(other *Raster) {
	*r = *other.Clone()
}

// AppendAlpha adds an alpha plane initialised to zero if one is not already
// present.
func (r *Raster) AppendAlpha() {
	if r.Alpha != nil {
		return
	}
	r.Alpha = make([]byte, r.Width*r.Height)
}

// RegenerateMipmaps rebuilds r.Mipmaps from r's own RGB/alpha planes.
func (r *Raster) RegenerateMipmaps() {
	r.Mipmaps = BuildMipmapChain(r)
}

// FromPalette returns a new non-palette Raster with RGB(A) resolved via
// palette lookup. Palette-to-palette downsampling (a smaller output
// palette) is not implemented.
func (r *Raster) FromPalette(opaqueAlpha uint8) *Raster {
	out := NewRaster(r.Width, r.Height)
	out.AppendAlpha()
	for i, idx := range r.PaletteIndex {
		p := r.Palette[idx]
		out.RGB[i*3], out.RGB[i*3+1], out.RGB[i*3+2] = p[0], p[1], p[2]
		a := p[3]
		if a == 0 && !r.hasPaletteAlpha() {
			a = opaqueAlpha
		}
		out.Alpha[i] = a
	}
	return out
}

func (r *Raster) hasPaletteAlpha() bool {
	for _, p := range r.Palette {
		if p[3] != 0 {
			return true
		}
	}
	return false
}

// defaultGreyscaleRamp produces a 256-entry linear greyscale palette,
// substituted when a palette decode has no PVP file and no embedded
// palette block (§7: non-fatal, a greyscale ramp substitutes).
func defaultGreyscaleRamp() [256][4]byte {
	var pal [256][4]byte
	for i := 0; i < 256; i++ {
		v := uint8(i) //nolint:gosec // i < 256
		pal[i] = [4]byte{v, v, v, 0xFF}
	}
	return pal
}
