package pvr

import "encoding/binary"

// VQFHeader is the legacy 12-byte VQF container header (§4.8), predating
// the PVRT/GBIX chunked format.
type VQFHeader struct {
	ColorFormat   ColorFormat
	Mipmapped     bool
	Width         int
	CodebookSize  int
}

var vqfSizeCode = map[int]byte{
	8: 4, 16: 5, 32: 0, 64: 1, 128: 2, 256: 3, 512: 6, 1024: 7,
}

var vqfSizeFromCode = map[byte]int{
	4: 8, 5: 16, 0: 32, 1: 64, 2: 128, 3: 256, 6: 512, 7: 1024,
}

var vqfCodebookCode = map[int]byte{
	8: 0, 16: 1, 32: 2, 64: 3, 128: 4, 256: 5,
}

var vqfCodebookFromCode = map[byte]int{
	0: 8, 1: 16, 2: 32, 3: 64, 4: 128, 5: 256,
}

// WriteVQFHeader appends the 12-byte legacy header.
func WriteVQFHeader(buf []byte, h VQFHeader) ([]byte, error) {
	sizeCode, ok := vqfSizeCode[h.Width]
	if !ok {
		return nil, ErrInvalidSize
	}
	cbCode, ok := vqfCodebookCode[h.CodebookSize]
	if !ok {
		return nil, ErrInvalidParameter
	}

	var hdr [12]byte
	hdr[0], hdr[1] = 'P', 'V'
	mapType := byte(h.ColorFormat) & 0x3F
	if h.Mipmapped {
		mapType |= 0x40
	}
	hdr[2] = mapType
	hdr[3] = sizeCode
	hdr[4] = 0 // reserved
	hdr[5] = cbCode
	// hdr[6:12] reserved, left zero
	return append(buf, hdr[:]...), nil
}

// ReadVQFHeader parses the 12-byte legacy header from the front of data.
func ReadVQFHeader(data []byte) (VQFHeader, []byte, error) {
	if len(data) < 12 || data[0] != 'P' || data[1] != 'V' {
		return VQFHeader{}, nil, ErrInvalidMagic
	}
	mapType := data[2]
	width, ok := vqfSizeFromCode[data[3]]
	if !ok {
		return VQFHeader{}, nil, ErrInvalidSize
	}
	cb, ok := vqfCodebookFromCode[data[5]]
	if !ok {
		return VQFHeader{}, nil, ErrInvalidParameter
	}
	h := VQFHeader{
		ColorFormat:  ColorFormat(mapType & 0x3F),
		Mipmapped:    mapType&0x40 != 0,
		Width:        width,
		CodebookSize: cb,
	}
	return h, data[12:], nil
}

func putU16LE(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}
