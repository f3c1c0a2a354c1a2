package pvr

import "testing"

func TestPVRHeaderRoundTrip(t *testing.T) {
	h := PVRHeader{DataSize: 1234, ColorFormat: FormatRGB565, Storage: StorageVQMM, Width: 64, Height: 64}
	buf := WritePVRHeader(nil, h)
	if len(buf) != 16 {
		t.Fatalf("header length = %d, want 16", len(buf))
	}
	got, rest, err := ReadPVRHeader(buf)
	if err != nil {
		t.Fatalf("ReadPVRHeader: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("rest should be empty, got %d bytes", len(rest))
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestGBIXRoundTrip(t *testing.T) {
	buf := WriteGBIX(nil, 42)
	if len(buf) != 16 {
		t.Fatalf("GBIX length = %d, want 16", len(buf))
	}
	rest, idx, present, err := ReadGBIX(buf)
	if err != nil {
		t.Fatalf("ReadGBIX: %v", err)
	}
	if !present || idx != 42 {
		t.Fatalf("idx=%d present=%v, want 42/true", idx, present)
	}
	if len(rest) != 0 {
		t.Fatalf("rest should be empty")
	}
}

func TestReadGBIXAbsent(t *testing.T) {
	h := PVRHeader{ColorFormat: FormatRGB565, Storage: StorageTwiddled, Width: 8, Height: 8}
	buf := WritePVRHeader(nil, h)
	rest, _, present, err := ReadGBIX(buf)
	if err != nil {
		t.Fatalf("ReadGBIX: %v", err)
	}
	if present {
		t.Fatal("present should be false when no GBIX chunk exists")
	}
	if len(rest) != len(buf) {
		t.Fatal("rest should be unchanged when no GBIX chunk is present")
	}
}

func TestSmallVQCodebookSize(t *testing.T) {
	cases := []struct {
		width     int
		mipmapped bool
		want      int
	}{
		{8, false, 16},
		{16, true, 16},
		{32, false, 32},
		{32, true, 64},
		{64, false, 128},
		{64, true, 256},
		{128, false, 256},
		{256, true, 256},
	}
	for _, c := range cases {
		if got := SmallVQCodebookSize(c.width, c.mipmapped); got != c.want {
			t.Errorf("SmallVQCodebookSize(%d, %v) = %d, want %d", c.width, c.mipmapped, got, c.want)
		}
	}
}

func TestVQCodebookEntryRoundTrip(t *testing.T) {
	var pv PixelVector
	pv.setSubPixel(0, 10, 20, 30, 0xFF)
	pv.setSubPixel(1, 40, 50, 60, 0xFF)
	pv.setSubPixel(2, 70, 80, 90, 0xFF)
	pv.setSubPixel(3, 100, 110, 120, 0xFF)

	buf, err := WriteVQCodebookEntry(nil, &pv, FormatARGB4444, 0xFF)
	if err != nil {
		t.Fatalf("WriteVQCodebookEntry: %v", err)
	}
	if len(buf) != 8 {
		t.Fatalf("entry length = %d, want 8", len(buf))
	}

	got, err := ReadVQCodebookEntry(buf, FormatARGB4444, 0xFF)
	if err != nil {
		t.Fatalf("ReadVQCodebookEntry: %v", err)
	}
	for i := 0; i < 4; i++ {
		wb, wg, wr, _ := pv.subPixel(i)
		gb, gg, gr, _ := got.subPixel(i)
		// ARGB4444 only carries 4 bits/channel; compare the high nibble.
		if wb&0xF0 != gb&0xF0 || wg&0xF0 != gg&0xF0 || wr&0xF0 != gr&0xF0 {
			t.Errorf("subpixel %d mismatch: got %d,%d,%d want %d,%d,%d", i, gb, gg, gr, wb, wg, wr)
		}
	}
}

func TestCheckWritableStorageRejectsReserved(t *testing.T) {
	if err := CheckWritableStorage(StorageRectangleMM); err == nil {
		t.Fatal("expected error for reserved storage class")
	}
	if err := CheckWritableStorage(StorageVQ); err != nil {
		t.Fatalf("unexpected error for a writable storage class: %v", err)
	}
}
