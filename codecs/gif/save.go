package gif

import (
	"bytes"
	"image"
	"image/color"
	stdgif "image/gif"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/quantize"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// saveState buffers every frame (stdlib's encoder has no incremental API
// either) and emits the whole file on Finish. Each frame is independently
// Wu-quantized to 256 colors and Floyd-Steinberg dithered via the quantize
// package, the same quantizer convert.Quantizer wires in for general
// pixel-format conversion (spec section 4.5).
type saveState struct {
	io   iostream.Io
	opts *codec.SaveOptions

	width, height int
	frames        []*image.Paletted
	delays        []int
	disposals     []byte
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if img.PixelFormat != pixelformat.BPP32RGBA {
		return status.Newf(status.UnsupportedPixelFormat, "gif: only BPP32-RGBA is supported for writing")
	}
	if s.width == 0 {
		s.width, s.height = img.Width, img.Height
	}
	if img.Width != s.width || img.Height != s.height {
		return status.Newf(status.InvalidImageDimensions, "gif: every frame must share the first frame's dimensions")
	}
	return nil
}

func (s *saveState) Frame(img *rimage.Image) error {
	indexed, err := quantize.Quantize(img, pixelformat.BPP8Indexed, true, func(x, y int) (byte, byte, byte) {
		return convert.DecodeRGB8(img, x, y)
	})
	if err != nil {
		return err
	}

	paletted := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), colorPalette(indexed.Palette))
	for y := 0; y < img.Height; y++ {
		row := indexed.Row(y)
		copy(paletted.Pix[y*paletted.Stride:y*paletted.Stride+img.Width], row[:img.Width])
	}

	s.frames = append(s.frames, paletted)
	s.delays = append(s.delays, centiseconds(img.DelayMilliseconds))
	s.disposals = append(s.disposals, stdgif.DisposalNone)
	return nil
}

func centiseconds(ms int) int {
	if ms <= 0 {
		return 10
	}
	return ms / 10
}

func colorPalette(p *rimage.Palette) color.Palette {
	cp := make(color.Palette, p.Count)
	for i := 0; i < p.Count; i++ {
		o := i * 3
		cp[i] = color.RGBA{R: p.Data[o], G: p.Data[o+1], B: p.Data[o+2], A: 255}
	}
	return cp
}

func (s *saveState) Finish() error {
	if len(s.frames) == 0 {
		return status.New(status.InvalidImage)
	}

	g := &stdgif.GIF{
		Image:    s.frames,
		Delay:    s.delays,
		Disposal: s.disposals,
	}

	var buf bytes.Buffer
	if err := stdgif.EncodeAll(&buf, g); err != nil {
		return status.Wrap(status.UnderlyingCodec, "gif: encode", err)
	}
	return s.io.StrictWrite(buf.Bytes())
}
