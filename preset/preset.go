// Package preset loads named EncodeOptions bundles from YAML, so a build
// pipeline can select "vq256-dither-mipmap" instead of repeating flags.
package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/buhman/pvr"
)

// Preset is one named, YAML-serialisable bundle of encode options.
type Preset struct {
	Name          string `yaml:"name"`
	BGROrder      bool   `yaml:"bgr_order"`
	Mipmap        bool   `yaml:"mipmap"`
	AlphaPresent  bool   `yaml:"alpha_present"`
	IncludeHeader bool   `yaml:"include_header"`
	InvertAlpha   bool   `yaml:"invert_alpha"`

	Dither       string `yaml:"dither"` // "none" | "subtle" | "full"
	Metric       string `yaml:"metric"` // "equal" | "weighted_argb" | "weighted_yuv"
	Frequency    bool   `yaml:"frequency"`
	CodebookSize int    `yaml:"codebook_size"`
	ColorFormat  string `yaml:"color_format"` // "argb1555" | "rgb565" | "argb4444" | "yuv422"
	SmallVQ      bool   `yaml:"small_vq"`
}

// Set is a named collection of Presets, as loaded from one YAML document.
type Set map[string]Preset

// Load parses a YAML document of named presets.
func Load(data []byte) (Set, error) {
	var raw map[string]Preset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("pvr/preset: %w", err)
	}
	return Set(raw), nil
}

// LoadFile reads and parses a preset file from disk.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pvr/preset: %w", err)
	}
	return Load(data)
}

// Options resolves p to a pvr.EncodeOptions, returning pvr.ErrInvalidParameter
// for any unrecognised enum field.
func (p Preset) Options() (pvr.EncodeOptions, error) {
	dither, err := parseDither(p.Dither)
	if err != nil {
		return pvr.EncodeOptions{}, err
	}
	metric, err := parseMetric(p.Metric)
	if err != nil {
		return pvr.EncodeOptions{}, err
	}
	if p.Frequency {
		metric |= pvr.FrequencyFlag
	}
	format, err := parseColorFormat(p.ColorFormat)
	if err != nil {
		return pvr.EncodeOptions{}, err
	}

	return pvr.EncodeOptions{
		BGROrder:      p.BGROrder,
		Mipmap:        p.Mipmap,
		AlphaPresent:  p.AlphaPresent,
		IncludeHeader: p.IncludeHeader,
		InvertAlpha:   p.InvertAlpha,
		Dither:        dither,
		Metric:        metric,
		CodebookSize:  p.CodebookSize,
		ColorFormat:   format,
		SmallVQ:       p.SmallVQ,
	}, nil
}

func parseDither(s string) (pvr.DitherMode, error) {
	switch s {
	case "", "none":
		return pvr.DitherNone, nil
	case "subtle":
		return pvr.DitherSubtle, nil
	case "full":
		return pvr.DitherFull, nil
	default:
		return 0, pvr.ErrInvalidParameter
	}
}

func parseMetric(s string) (pvr.Metric, error) {
	switch s {
	case "", "equal":
		return pvr.MetricEqual, nil
	case "weighted_argb":
		return pvr.MetricWeightedARGB, nil
	case "weighted_yuv":
		return pvr.MetricWeightedYUV, nil
	default:
		return 0, pvr.ErrInvalidParameter
	}
}

func parseColorFormat(s string) (pvr.ColorFormat, error) {
	switch s {
	case "", "argb1555":
		return pvr.FormatARGB1555, nil
	case "rgb565":
		return pvr.FormatRGB565, nil
	case "argb4444":
		return pvr.FormatARGB4444, nil
	case "yuv422":
		return pvr.FormatYUV422, nil
	case "rgb555":
		return pvr.FormatRGB555, nil
	default:
		return 0, pvr.ErrInvalidParameter
	}
}
