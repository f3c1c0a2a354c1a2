package pvr

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	// want* is each channel reduced to its stored bit depth and expanded back
	// by bit replication (5-bit 0x1F, 6-bit 0x3F and 4-bit 0xF all give 0xFF).
	cases := []struct {
		name   string
		format ColorFormat
		a, r, g, b uint8
		wantR, wantG, wantB uint8
	}{
		{"argb1555 opaque", FormatARGB1555, 0xFF, 0xF8, 0xF8, 0xF8, 0xFF, 0xFF, 0xFF},
		{"argb1555 transparent", FormatARGB1555, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{"rgb565", FormatRGB565, 0xFF, 0xF8, 0xFC, 0xF8, 0xFF, 0xFF, 0xFF},
		{"argb4444", FormatARGB4444, 0xF0, 0xF0, 0xF0, 0xF0, 0xFF, 0xFF, 0xFF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			texel, err := Pack(c.format, c.a, c.r, c.g, c.b)
			if err != nil {
				t.Fatalf("Pack: %v", err)
			}
			a, r, g, b := Unpack(c.format, texel, 0xFF)
			if c.format != FormatARGB1555 {
				if r != c.wantR || g != c.wantG || b != c.wantB {
					t.Fatalf("Unpack = %d,%d,%d,%d want r,g,b %d,%d,%d", a, r, g, b, c.wantR, c.wantG, c.wantB)
				}
			}
		})
	}
}

func TestPackYUV422Rejected(t *testing.T) {
	if _, err := Pack(FormatYUV422, 0xFF, 0, 0, 0); err == nil {
		t.Fatal("Pack(YUV422) should fail; use YUV422Encoder")
	}
}

func TestYUV422RoundTripApprox(t *testing.T) {
	var enc YUV422Encoder
	even, odd, ok := enc.Push(0, 200, 100, 50)
	if ok {
		t.Fatal("Push(x=0) should buffer, not emit")
	}
	even, odd, ok = enc.Push(1, 180, 90, 40)
	if !ok {
		t.Fatal("Push(x=1) should emit a pair")
	}

	r0, g0, b0, r1, g1, b1 := YUVPairToRGB(even, odd)
	if absDiff(r0, 200) > 12 || absDiff(g0, 100) > 12 || absDiff(b0, 50) > 12 {
		t.Errorf("pixel0 = %d,%d,%d too far from 200,100,50", r0, g0, b0)
	}
	if absDiff(r1, 180) > 12 || absDiff(g1, 90) > 12 || absDiff(b1, 40) > 12 {
		t.Errorf("pixel1 = %d,%d,%d too far from 180,90,40", r1, g1, b1)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
