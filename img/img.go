// Package img registers the PVR and GBIX-prefixed container formats with
// Go's image package, so image.Decode and image.DecodeConfig recognise
// ".pvr" data the same way they recognise PNG or JPEG. Importing this
// package for its side effect is enough:
//
//	import _ "github.com/buhman/pvr/img"
package img

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/buhman/pvr"
)

func init() {
	image.RegisterFormat("pvr", "PVRT", decode, decodeConfig)
	image.RegisterFormat("pvr.gbix", "GBIX", decode, decodeConfig)
}

func decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	var d pvr.Decoder
	raster, _, err := d.Decode(data)
	if err != nil {
		return nil, err
	}
	return &rasterImage{r: raster, opaqueAlpha: d.OpaqueAlpha}, nil
}

func decodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, err
	}
	var d pvr.Decoder
	raster, _, err := d.Decode(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: raster.Width, Height: raster.Height}, nil
}

func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rasterImage adapts a *pvr.Raster to image.Image.
type rasterImage struct {
	r           *pvr.Raster
	opaqueAlpha uint8
}

func (i *rasterImage) ColorModel() color.Model { return color.NRGBAModel }

func (i *rasterImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.r.Width, i.r.Height)
}

func (i *rasterImage) At(x, y int) color.Color {
	r, g, b, a := i.r.At(x, y, i.opaqueAlpha)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
