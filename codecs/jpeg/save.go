package jpeg

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// rgbBridge adapts any rimage.Image pixel format to image.Image via
// convert.DecodeRGB8, the same sampling entry point quantize uses, so
// stdlib's encoder never needs to know about the source pixel format.
type rgbBridge struct {
	img *rimage.Image
}

func (b *rgbBridge) ColorModel() color.Model { return color.RGBAModel }

func (b *rgbBridge) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.img.Width, b.img.Height)
}

func (b *rgbBridge) At(x, y int) color.Color {
	r, g, bl := convert.DecodeRGB8(b.img, x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 255}
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

	// quality = max - clamp(level, min, max): higher compression level,
	// lower quality. Level 0 (the zero value) yields the spec's documented
	// default quality of 85.
	level := 15.0
	if s.opts != nil && s.opts.CompressionLevel != 0 {
		level = s.opts.CompressionLevel
	}
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	quality := 100 - int(level)

	var buf bytes.Buffer
	if err := stdjpeg.Encode(&buf, &rgbBridge{img: img}, &stdjpeg.Options{Quality: quality}); err != nil {
		return status.Wrap(status.UnderlyingCodec, "jpeg: encode", err)
	}

	out := insertComment(buf.Bytes(), findComment(img))
	return s.io.StrictWrite(out)
}

// findComment returns the first MetaComment node's string value, or "".
func findComment(img *rimage.Image) string {
	for n := img.MetaDataHead; n != nil; n = n.Next {
		if n.Key == rimage.MetaComment {
			if s, err := n.Value.String(); err == nil {
				return s
			}
		}
	}
	return ""
}

// insertComment splices a COM marker right after SOI, ahead of every
// segment stdjpeg.Encode already wrote, where scanMarkers reads it back
// on load.
func insertComment(jpg []byte, comment string) []byte {
	if comment == "" || len(jpg) < 2 {
		return jpg
	}

	payload := []byte(comment)
	if len(payload) > 65533 {
		payload = payload[:65533]
	}
	segLen := len(payload) + 2

	out := make([]byte, 0, len(jpg)+4+len(payload))
	out = append(out, jpg[0], jpg[1]) // SOI
	out = append(out, 0xFF, markerCOM, byte(segLen>>8), byte(segLen))
	out = append(out, payload...)
	out = append(out, jpg[2:]...)
	return out
}

func (s *saveState) Finish() error { return nil }
