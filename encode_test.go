package pvr

import (
	"math/rand"
	"testing"
)

func syntheticImage(width, height int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, width*height*3)
	// a handful of solid blocks rather than pure noise, so the VQ codebook
	// has something to converge onto.
	palette := [][3]byte{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 0}}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := palette[(x/4+y/4)%len(palette)]
			i := y*width + x
			buf[i*3], buf[i*3+1], buf[i*3+2] = c[0], c[1], c[2]
			if r.Intn(8) == 0 {
				buf[i*3] = byte(r.Intn(256))
			}
		}
	}
	return buf
}

func TestEncodeDecodeVQRoundTrip(t *testing.T) {
	width := 16
	rgb := syntheticImage(width, width, 1)

	var enc Encoder
	data, numCodes, err := enc.EncodeVQF(rgb, nil, width, width, EncodeOptions{
		ColorFormat:  FormatRGB565,
		CodebookSize: 16,
		Metric:       MetricEqual,
	})
	if err != nil {
		t.Fatalf("EncodeVQF: %v", err)
	}
	if numCodes == 0 || numCodes > 16 {
		t.Fatalf("numCodes = %d, want in (0,16]", numCodes)
	}
	if len(data) == 0 {
		t.Fatal("EncodeVQF produced no output")
	}

	var dec Decoder
	raster, err := dec.DecodeVQF(data)
	if err != nil {
		t.Fatalf("DecodeVQF: %v", err)
	}
	if raster.Width != width || raster.Height != width {
		t.Fatalf("decoded size = %dx%d, want %dx%d", raster.Width, raster.Height, width, width)
	}
}

func TestEncodeRejectsBadSize(t *testing.T) {
	var enc Encoder
	_, _, err := enc.Encode(make([]byte, 10*10*3), nil, 10, 10, EncodeOptions{ColorFormat: FormatRGB565, CodebookSize: 16})
	if err != ErrInvalidSize {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

func TestEncodeRejectsMismatchedBufferLength(t *testing.T) {
	var enc Encoder
	_, _, err := enc.Encode(make([]byte, 5), nil, 8, 8, EncodeOptions{ColorFormat: FormatRGB565, CodebookSize: 16})
	if err != ErrInvalidParameter {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func halfSplitImage(width, height int) []byte {
	buf := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x < width/2 {
				buf[i*3], buf[i*3+1], buf[i*3+2] = 0xFF, 0xFF, 0xFF
			}
		}
	}
	return buf
}

func TestEncodeNonVQTwiddledRoundTrip(t *testing.T) {
	width := 16
	rgb := halfSplitImage(width, width)

	var enc Encoder
	data, _, err := enc.Encode(rgb, nil, width, width, EncodeOptions{
		ColorFormat:   FormatRGB565,
		VQOff:         true,
		Twiddle:       true,
		IncludeHeader: true,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) < 16 {
		t.Fatalf("output too short: %d bytes", len(data))
	}
	// textureType is little-endian ColorFormat | Storage<<8, at offset 8.
	if data[8] != 0x01 || data[9] != 0x01 {
		t.Fatalf("texture-type bytes = %#x %#x, want 0x01 0x01", data[8], data[9])
	}
	header, body, err := ReadPVRHeader(data)
	if err != nil {
		t.Fatalf("ReadPVRHeader: %v", err)
	}
	if header.DataSize != 520 {
		t.Fatalf("DataSize = %d, want 520", header.DataSize)
	}

	var dec Decoder
	raster, err := dec.decodeBody(header, body)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	r, g, b, _ := raster.At(0, 0, 0xFF)
	if r != 0xFF || g != 0xFF || b != 0xFF {
		t.Fatalf("pixel(0,0) = (%d,%d,%d), want white", r, g, b)
	}
	r, g, b, _ = raster.At(15, 0, 0xFF)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("pixel(15,0) = (%d,%d,%d), want black", r, g, b)
	}
}

func TestEncodeNonVQStrideDataSize(t *testing.T) {
	width, height := 96, 16
	rgb := halfSplitImage(width, height)

	var enc Encoder
	data, _, err := enc.Encode(rgb, nil, width, height, EncodeOptions{
		ColorFormat:   FormatRGB565,
		VQOff:         true,
		Stride:        true,
		IncludeHeader: true,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	header, _, err := ReadPVRHeader(data)
	if err != nil {
		t.Fatalf("ReadPVRHeader: %v", err)
	}
	if header.Storage != StorageStride {
		t.Fatalf("Storage = %v, want StorageStride", header.Storage)
	}
	if header.DataSize != 3080 {
		t.Fatalf("DataSize = %d, want 3080", header.DataSize)
	}

	data, _, err = enc.Encode(rgb, nil, width, height, EncodeOptions{
		ColorFormat:   FormatRGB565,
		VQOff:         true,
		Stride:        true,
		PadStride:     true,
		IncludeHeader: true,
	})
	if err != nil {
		t.Fatalf("Encode with padding: %v", err)
	}
	header, _, err = ReadPVRHeader(data)
	if err != nil {
		t.Fatalf("ReadPVRHeader: %v", err)
	}
	if header.DataSize != 4104 {
		t.Fatalf("padded DataSize = %d, want 4104", header.DataSize)
	}
}

func TestEncodeNonVQTwiddledMipmapRoundTrip(t *testing.T) {
	width := 16
	rgb := syntheticImage(width, width, 2)

	var enc Encoder
	data, _, err := enc.Encode(rgb, nil, width, width, EncodeOptions{
		ColorFormat:   FormatARGB4444,
		VQOff:         true,
		Twiddle:       true,
		Mipmap:        true,
		IncludeHeader: true,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var dec Decoder
	raster, _, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raster.Width != width || raster.Height != width {
		t.Fatalf("decoded size = %dx%d, want %dx%d", raster.Width, raster.Height, width, width)
	}
	if len(raster.Mipmaps) != log2(width) {
		t.Fatalf("len(Mipmaps) = %d, want %d", len(raster.Mipmaps), log2(width))
	}
	smallest := raster.Mipmaps[len(raster.Mipmaps)-1]
	if smallest.Width != 1 || smallest.Height != 1 {
		t.Fatalf("smallest mipmap size = %dx%d, want 1x1", smallest.Width, smallest.Height)
	}
}

func TestEncodeDecodeVQMipmapRoundTrip(t *testing.T) {
	width := 16
	rgb := syntheticImage(width, width, 3)

	var enc Encoder
	data, _, err := enc.EncodeVQF(rgb, nil, width, width, EncodeOptions{
		ColorFormat:  FormatRGB565,
		CodebookSize: 16,
		Metric:       MetricEqual,
		Mipmap:       true,
	})
	if err != nil {
		t.Fatalf("EncodeVQF: %v", err)
	}

	var dec Decoder
	raster, err := dec.DecodeVQF(data)
	if err != nil {
		t.Fatalf("DecodeVQF: %v", err)
	}
	if raster.Width != width || raster.Height != width {
		t.Fatalf("decoded size = %dx%d, want %dx%d", raster.Width, raster.Height, width, width)
	}
	if len(raster.Mipmaps) != log2(width) {
		t.Fatalf("len(Mipmaps) = %d, want %d", len(raster.Mipmaps), log2(width))
	}
	smallest := raster.Mipmaps[len(raster.Mipmaps)-1]
	if smallest.Width != 1 || smallest.Height != 1 {
		t.Fatalf("smallest mipmap size = %dx%d, want 1x1", smallest.Width, smallest.Height)
	}
}
