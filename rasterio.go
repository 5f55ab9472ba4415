// Package rasterio is a multi-format still-image codec library (spec
// section 1): JPEG, PNG, TIFF, WebP, GIF, HDR/Radiance, OpenEXR, PNM/PAM,
// PSD and JPEG-XL behind one uniform codec.Codec ABI. This file is the
// single place codecs self-register into DefaultRegistry and the
// convert/quantize wiring happens, mirroring the teacher's own top-level
// package init() that registered its TIFF decoder with the standard
// library's image package.
package rasterio

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/gif"
	"github.com/mdouchement/rasterio/codecs/hdr"
	"github.com/mdouchement/rasterio/codecs/jpeg"
	"github.com/mdouchement/rasterio/codecs/jpegxl"
	"github.com/mdouchement/rasterio/codecs/openexr"
	"github.com/mdouchement/rasterio/codecs/png"
	"github.com/mdouchement/rasterio/codecs/pnm"
	"github.com/mdouchement/rasterio/codecs/psd"
	"github.com/mdouchement/rasterio/codecs/tiff"
	"github.com/mdouchement/rasterio/codecs/webp"
	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/driver"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/quantize"
	"github.com/mdouchement/rasterio/rimage"
)

// DefaultRegistry holds every built-in codec, in the order probing should
// try them (spec section 4.1). FromExtension/FromMIME lookups are order
// independent; FromMagic tries signatures in this order, so the most
// common formats on the wire come first.
var DefaultRegistry = codec.NewRegistry()

func init() {
	DefaultRegistry.Register(jpeg.Codec{})
	DefaultRegistry.Register(png.Codec{})
	DefaultRegistry.Register(gif.Codec{})
	DefaultRegistry.Register(webp.Codec{})
	DefaultRegistry.Register(tiff.Codec{})
	DefaultRegistry.Register(psd.Codec{})
	DefaultRegistry.Register(pnm.Codec{})
	DefaultRegistry.Register(hdr.Codec{})
	DefaultRegistry.Register(openexr.Codec{})
	DefaultRegistry.Register(jpegxl.Codec{})

	// generalConvert's indexed-target path has no direct import of
	// package quantize to avoid a convert<->quantize import cycle
	// (quantize.Quantize takes a decodeRGB callback that convert itself
	// supplies); this package sits above both, so it is the natural
	// place to close the loop. Dithering defaults on: spec section 4.5
	// calls Floyd-Steinberg the expected behavior for indexed targets
	// unless a caller asks otherwise, and Options has no Dither knob to
	// opt out with yet (see DESIGN.md Open Questions).
	convert.Quantizer = func(src *rimage.Image, target pixelformat.Format) (*rimage.Image, error) {
		return quantize.Quantize(src, target, true, func(x, y int) (byte, byte, byte) {
			return convert.DecodeRGB8(src, x, y)
		})
	}
}

// Probe reads only the first frame's skeleton (no pixel data), resolving
// the codec by magic signature.
func Probe(io iostream.Io, opts *codec.LoadOptions) (*rimage.Image, *codec.Info, error) {
	return driver.Probe(DefaultRegistry, io, nil, opts)
}

// Load decodes the first frame of io using a codec resolved from
// DefaultRegistry by magic signature.
func Load(io iostream.Io, opts *codec.LoadOptions) (*rimage.Image, error) {
	return driver.Load(DefaultRegistry, io, nil, opts)
}

// StartLoading begins a multi-frame load session against DefaultRegistry.
func StartLoading(io iostream.Io, opts *codec.LoadOptions) (*driver.LoadSession, error) {
	return driver.StartLoading(DefaultRegistry, io, nil, opts)
}

// Save encodes img as a single frame with c.
func Save(c codec.Codec, io iostream.Io, img *rimage.Image, opts *codec.SaveOptions) error {
	return driver.Save(c, io, img, opts)
}

// StartSaving begins a multi-frame save session with c.
func StartSaving(c codec.Codec, io iostream.Io, opts *codec.SaveOptions) (*driver.SaveSession, error) {
	return driver.StartSaving(c, io, opts)
}

// CodecFor resolves a codec from DefaultRegistry by file extension (with
// or without the leading dot).
func CodecFor(ext string) (codec.Codec, error) {
	return DefaultRegistry.FromExtension(ext)
}
