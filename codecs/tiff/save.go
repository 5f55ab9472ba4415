package tiff

import (
	"bytes"
	"image"
	"image/color"

	tiffgo "golang.org/x/image/tiff"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// rgbaBridge adapts any rimage.Image pixel format to image.Image via
// convert.DecodeRGBA8, the same save-bridge pattern codecs/png uses, for
// every pixel format delegated to golang.org/x/image/tiff.Encode.
type rgbaBridge struct {
	img *rimage.Image
}

func (b *rgbaBridge) ColorModel() color.Model { return color.NRGBAModel }

func (b *rgbaBridge) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.img.Width, b.img.Height)
}

func (b *rgbaBridge) At(x, y int) color.Color {
	r, g, bl, a := convert.DecodeRGBA8(b.img, x, y)
	return color.NRGBA{R: r, G: g, B: bl, A: a}
}

type saveState struct {
	io   iostream.Io
	opts *codec.SaveOptions

	frameSaved bool
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if s.frameSaved {
		return status.New(status.ConflictingOperation)
	}
	return nil
}

func (s *saveState) Frame(img *rimage.Image) error {
	s.frameSaved = true

	if img.PixelFormat == pixelformat.BPP96RGBFloat {
		return s.io.StrictWrite(writeMinimalTIFF(img))
	}
	return s.saveBaseline(img)
}

func (s *saveState) saveBaseline(img *rimage.Image) error {
	var buf bytes.Buffer
	opt := &tiffgo.Options{Compression: compressionOf(s.opts)}
	if err := tiffgo.Encode(&buf, &rgbaBridge{img: img}, opt); err != nil {
		return status.Wrap(status.UnderlyingCodec, "tiff: encode", err)
	}
	return s.io.StrictWrite(buf.Bytes())
}

// compressionOf maps the codec-level Compression tuning to x/image/tiff's
// own enum, which only implements Uncompressed and Deflate on the encode
// side (PackBits/LZW are decode-only in that package, which is why
// codecs/tiff's own CodecInfo.Save only declares NONE/DEFLATE even though
// Load accepts the wider set this package's own HDR decompress() handles).
// No custom ASCII-metadata injection exists on this path: x/image/tiff.Encode
// doesn't expose a hook for extra IFD entries, and retrofitting correct
// IFD-offset bookkeeping onto its output would cost more than this codec's
// scope justifies -- metadata writing is only implemented for the
// hand-rolled HDR path in write.go.
func compressionOf(opts *codec.SaveOptions) tiffgo.CompressionType {
	if opts != nil && opts.Compression == "NONE" {
		return tiffgo.Uncompressed
	}
	return tiffgo.Deflate
}

func (s *saveState) Finish() error { return nil }
