package pvr

import (
	"encoding/binary"
)

// StorageClass is the high byte of a PVRT texture-type field.
type StorageClass uint8

const (
	StorageTwiddled          StorageClass = 0x01
	StorageTwiddledMM        StorageClass = 0x02
	StorageVQ                StorageClass = 0x03
	StorageVQMM              StorageClass = 0x04
	StoragePal4              StorageClass = 0x05
	StoragePal4MM            StorageClass = 0x06
	StoragePal8              StorageClass = 0x07
	StoragePal8MM            StorageClass = 0x08
	StorageRectangle         StorageClass = 0x09
	StorageRectangleMM       StorageClass = 0x0A // reserved, refused on write
	StorageStride            StorageClass = 0x0B
	StorageTwiddledRectangle StorageClass = 0x0D
	StorageSmallVQ           StorageClass = 0x10
	StorageSmallVQMM         StorageClass = 0x11
)

func (s StorageClass) hasMipmaps() bool {
	switch s {
	case StorageTwiddledMM, StorageVQMM, StoragePal4MM, StoragePal8MM, StorageSmallVQMM:
		return true
	}
	return false
}

func (s StorageClass) isVQ() bool {
	switch s {
	case StorageVQ, StorageVQMM, StorageSmallVQ, StorageSmallVQMM:
		return true
	}
	return false
}

func (s StorageClass) isTwiddled() bool {
	switch s {
	case StorageTwiddled, StorageTwiddledMM, StorageVQ, StorageVQMM, StoragePal4, StoragePal4MM,
		StoragePal8, StoragePal8MM, StorageTwiddledRectangle, StorageSmallVQ, StorageSmallVQMM:
		return true
	}
	return false
}

var (
	tagGBIX = [4]byte{'G', 'B', 'I', 'X'}
	tagPVRT = [4]byte{'P', 'V', 'R', 'T'}
	tagPVPL = [4]byte{'P', 'V', 'P', 'L'}
)

// PVRHeader is the fixed 16-byte PVRT chunk header (§4.8).
type PVRHeader struct {
	DataSize    uint32
	ColorFormat ColorFormat
	Storage     StorageClass
	Width       uint16
	Height      uint16
	// CodebookSize is not part of the 16-byte wire header (PVRT carries no
	// such field); it is populated in memory by callers that know it from
	// another source (a VQF header, SmallVQ's width-derived rule, or an
	// out-of-band size supplied by the caller). Zero means "unknown".
	CodebookSize int
}

func (h PVRHeader) textureType() uint32 {
	return uint32(h.ColorFormat) | uint32(h.Storage)<<8
}

func textureTypeParts(t uint32) (ColorFormat, StorageClass) {
	return ColorFormat(t & 0xFF), StorageClass((t >> 8) & 0xFF)
}

// WriteGBIX appends a 16-byte GBIX chunk for globalIndex: tag, big-endian
// offset (8, always), then the 8 bytes that offset covers: little-endian
// index and 4 bytes of zero padding.
func WriteGBIX(buf []byte, globalIndex uint32) []byte {
	buf = append(buf, tagGBIX[:]...)
	var off [4]byte
	binary.BigEndian.PutUint32(off[:], 8)
	buf = append(buf, off[:]...)
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], globalIndex)
	buf = append(buf, idx[:]...)
	buf = append(buf, 0, 0, 0, 0)
	return buf
}

// ReadGBIX reads an optional leading GBIX chunk, returning the remaining
// bytes and the global index (0, false if absent).
func ReadGBIX(data []byte) (rest []byte, globalIndex uint32, present bool, err error) {
	if len(data) < 4 || [4]byte{data[0], data[1], data[2], data[3]} != tagGBIX {
		return data, 0, false, nil
	}
	if len(data) < 12 {
		return nil, 0, false, ErrTruncatedFile
	}
	offset := binary.BigEndian.Uint32(data[4:8])
	globalIndex = binary.LittleEndian.Uint32(data[8:12])
	next := 8 + int(offset)
	if next < 0 || len(data) < next {
		return nil, 0, false, ErrTruncatedFile
	}
	return data[next:], globalIndex, true, nil
}

// WritePVRHeader appends a 16-byte PVRT header.
func WritePVRHeader(buf []byte, h PVRHeader) []byte {
	buf = append(buf, tagPVRT[:]...)
	var tmp [12]byte
	binary.LittleEndian.PutUint32(tmp[0:4], h.DataSize)
	binary.LittleEndian.PutUint32(tmp[4:8], h.textureType())
	binary.LittleEndian.PutUint16(tmp[8:10], h.Width)
	binary.LittleEndian.PutUint16(tmp[10:12], h.Height)
	return append(buf, tmp[:]...)
}

// ReadPVRHeader parses a 16-byte PVRT header from the front of data.
func ReadPVRHeader(data []byte) (PVRHeader, []byte, error) {
	if len(data) < 16 || [4]byte{data[0], data[1], data[2], data[3]} != tagPVRT {
		return PVRHeader{}, nil, ErrInvalidMagic
	}
	dataSize := binary.LittleEndian.Uint32(data[4:8])
	textureType := binary.LittleEndian.Uint32(data[8:12])
	width := binary.LittleEndian.Uint16(data[12:14])
	height := binary.LittleEndian.Uint16(data[14:16])
	cf, sc := textureTypeParts(textureType)
	h := PVRHeader{DataSize: dataSize, ColorFormat: cf, Storage: sc, Width: width, Height: height}
	return h, data[16:], nil
}

// SmallVQCodebookSize returns the codebook size mandated for SmallVQ
// textures of the given width and mipmap-ness (§4.8).
func SmallVQCodebookSize(width int, mipmapped bool) int {
	switch {
	case width <= 16:
		return 16
	case width == 32:
		if mipmapped {
			return 64
		}
		return 32
	case width == 64:
		if mipmapped {
			return 256
		}
		return 128
	default:
		return 256
	}
}

// mipmapPlaceholderSize returns the byte count of the zero/index placeholder
// that precedes the 1×1 level for the given storage class (§4.8). The
// palette-4 case is a documented 2-byte FIXME in the legacy source, kept
// here for bit-compatibility rather than "fixed" to the 1 byte a reader
// might expect.
func mipmapPlaceholderSize(sc StorageClass) int {
	switch sc {
	case StorageVQMM, StorageSmallVQMM:
		return 1
	case StoragePal4MM:
		return 2
	case StoragePal8MM:
		return 3
	default:
		return 2
	}
}

// vqCodebookTexelOrder is the write order of the four sub-pixels of a VQ
// codebook entry: writing in this order means, once the block is read back
// through the twiddle addressing applied at decode time, pixels come out in
// raster order (§4.8).
var vqCodebookTexelOrder = [4]int{0, 2, 1, 3}

// WriteVQCodebookEntry appends one codebook entry's four 16-bit texels.
func WriteVQCodebookEntry(buf []byte, pv *PixelVector, format ColorFormat, opaqueAlpha uint8) ([]byte, error) {
	for _, sp := range vqCodebookTexelOrder {
		b, g, r, a := pv.subPixel(sp)
		texel, err := Pack(format, a, r, g, b)
		if err != nil {
			return nil, err
		}
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], texel)
		buf = append(buf, tmp[:]...)
	}
	return buf, nil
}

// ReadVQCodebookEntry reads one codebook entry's four 16-bit texels back
// into raster order (inverse of vqCodebookTexelOrder).
func ReadVQCodebookEntry(data []byte, format ColorFormat, opaqueAlpha uint8) (PixelVector, error) {
	if len(data) < 8 {
		return PixelVector{}, ErrTruncatedFile
	}
	var pv PixelVector
	for i, sp := range vqCodebookTexelOrder {
		texel := binary.LittleEndian.Uint16(data[i*2 : i*2+2])
		a, r, g, b := Unpack(format, texel, opaqueAlpha)
		pv.setSubPixel(sp, b, g, r, a)
	}
	return pv, nil
}

// CheckWritableStorage rejects the storage class the hardware spec marks
// reserved (Rectangle+MM never existed on real parts).
func CheckWritableStorage(sc StorageClass) error {
	if sc == StorageRectangleMM {
		return ErrInvalidParameter
	}
	return nil
}
