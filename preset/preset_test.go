package preset

import (
	"testing"

	"github.com/buhman/pvr"
)

const sampleYAML = `
vq256-dither-mipmap:
  name: vq256-dither-mipmap
  mipmap: true
  dither: full
  metric: weighted_yuv
  codebook_size: 256
  color_format: yuv422
small-vq:
  name: small-vq
  small_vq: true
  color_format: rgb565
`

func TestLoadAndResolve(t *testing.T) {
	set, err := Load([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("len(set) = %d, want 2", len(set))
	}

	p, ok := set["vq256-dither-mipmap"]
	if !ok {
		t.Fatal("missing preset vq256-dither-mipmap")
	}
	opts, err := p.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !opts.Mipmap || opts.Dither != pvr.DitherFull || opts.Metric != pvr.MetricWeightedYUV {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.CodebookSize != 256 || opts.ColorFormat != pvr.FormatYUV422 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	sv, ok := set["small-vq"]
	if !ok {
		t.Fatal("missing preset small-vq")
	}
	svOpts, err := sv.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if !svOpts.SmallVQ || svOpts.ColorFormat != pvr.FormatRGB565 {
		t.Fatalf("unexpected options: %+v", svOpts)
	}
}

func TestOptionsRejectsUnknownEnum(t *testing.T) {
	p := Preset{Dither: "strobe"}
	if _, err := p.Options(); err != pvr.ErrInvalidParameter {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/path/to/presets.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
