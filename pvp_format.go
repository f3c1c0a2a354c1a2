package pvr

import "encoding/binary"

// PaletteFormat is the PVP file's palette entry type.
type PaletteFormat uint32

const (
	Palette1555 PaletteFormat = 0
	Palette565  PaletteFormat = 1
	Palette4444 PaletteFormat = 2
	Palette8888 PaletteFormat = 6
)

func (f PaletteFormat) entrySize() int {
	if f == Palette8888 {
		return 4
	}
	return 2
}

// PVPHeader is the 16-byte PVP palette-file header (§4.8).
type PVPHeader struct {
	DataSize   uint32
	Format     PaletteFormat
	EntryCount uint16
}

// WritePVP appends a complete PVP file: header followed by entryCount
// palette entries, each taken from pal (always stored as R,G,B,A bytes)
// and packed to the target format (or written as raw 8888 bytes).
func WritePVP(buf []byte, format PaletteFormat, pal [][4]byte) ([]byte, error) {
	entrySize := format.entrySize()
	dataSize := uint32(len(pal) * entrySize)

	buf = append(buf, tagPVPL[:]...)
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], dataSize)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(format))
	binary.LittleEndian.PutUint16(hdr[8:10], 0) // reserved
	binary.LittleEndian.PutUint16(hdr[10:12], uint16(len(pal)))
	buf = append(buf, hdr[:]...)

	for _, entry := range pal {
		r, g, b, a := entry[0], entry[1], entry[2], entry[3]
		if format == Palette8888 {
			buf = append(buf, a, r, g, b)
			continue
		}
		cf := paletteColorFormat(format)
		texel, err := Pack(cf, a, r, g, b)
		if err != nil {
			return nil, err
		}
		buf = putU16LE(buf, texel)
	}
	return buf, nil
}

// ReadPVP parses a PVP file into an RGBA palette slice with one element per
// entry in the file.
func ReadPVP(data []byte, opaqueAlpha uint8) ([][4]byte, error) {
	if len(data) < 16 || [4]byte{data[0], data[1], data[2], data[3]} != tagPVPL {
		return nil, ErrInvalidMagic
	}
	format := PaletteFormat(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint16(data[14:16]))
	entrySize := format.entrySize()

	rest := data[16:]
	if len(rest) < count*entrySize {
		return nil, ErrTruncatedFile
	}

	pal := make([][4]byte, count)
	for i := 0; i < count; i++ {
		chunk := rest[i*entrySize : i*entrySize+entrySize]
		if format == Palette8888 {
			pal[i] = [4]byte{chunk[1], chunk[2], chunk[3], chunk[0]}
			continue
		}
		texel := binary.LittleEndian.Uint16(chunk)
		a, r, g, b := Unpack(paletteColorFormat(format), texel, opaqueAlpha)
		pal[i] = [4]byte{r, g, b, a}
	}
	return pal, nil
}

func paletteColorFormat(f PaletteFormat) ColorFormat {
	switch f {
	case Palette1555:
		return FormatARGB1555
	case Palette565:
		return FormatRGB565
	case Palette4444:
		return FormatARGB4444
	default:
		return FormatARGB1555
	}
}
