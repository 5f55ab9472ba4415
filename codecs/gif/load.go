package gif

import (
	"bytes"
	"image"
	"image/color"
	stdgif "image/gif"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// loadState decodes the whole GIF stream up front (stdlib's DecodeAll has
// no incremental API) and replays frames one at a time through the
// canvas-composition algorithm of spec section 4.6.2.
type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions

	decoded *stdgif.GIF
	meta    metadata
	canvas  *image.RGBA

	index        int
	prevDisposal byte
	prevRect     image.Rectangle
}

func readAll(s iostream.Io) ([]byte, error) {
	if err := s.Seek(0, iostream.Set); err != nil {
		return nil, status.Wrap(status.SeekIO, "gif: seek", err)
	}
	size, err := s.Size()
	if err != nil {
		return nil, status.Wrap(status.ReadIO, "gif: size", err)
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := s.StrictRead(buf); err != nil {
			return nil, status.Wrap(status.ReadIO, "gif: read", err)
		}
	}
	return buf, nil
}

func (s *loadState) ensureDecoded() error {
	if s.decoded != nil {
		return nil
	}

	data, err := readAll(s.io)
	if err != nil {
		return err
	}

	g, err := stdgif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return status.Wrap(status.InvalidImage, "gif: decode", err)
	}

	s.decoded = g
	s.meta = scanMetadata(data)
	s.canvas = image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	return nil
}

// applyDisposal replays the previous frame's disposal method onto the
// canvas before the current frame is composited (spec section 4.6.2,
// "Disposal method state"). Restore-to-background is treated as fill with
// transparent, the explicit Open Question decision; Unspecified, Do-not-
// dispose and Restore-to-previous are all left as no-ops, matching the
// reference decoder's own handling.
func (s *loadState) applyDisposal() {
	if s.prevDisposal != stdgif.DisposalBackground {
		return
	}
	draw := s.prevRect.Intersect(s.canvas.Bounds())
	for y := draw.Min.Y; y < draw.Max.Y; y++ {
		for x := draw.Min.X; x < draw.Max.X; x++ {
			s.canvas.SetRGBA(x, y, color.RGBA{})
		}
	}
}

// compositeFrame draws frame over the canvas, leaving transparent-index
// pixels untouched so the existing canvas content shows through (spec
// section 4.6.2, "Transparency"). Go's gif decoder already zeroes the
// alpha of a frame's transparent palette entry, so a plain alpha check is
// enough; there is no blending, only replace-or-skip.
func (s *loadState) compositeFrame(frame *image.Paletted) {
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			idx := frame.ColorIndexAt(x, y)
			c := color.RGBAModel.Convert(frame.Palette[idx]).(color.RGBA)
			if c.A == 0 {
				continue
			}
			s.canvas.SetRGBA(x, y, c)
		}
	}
}

func delayMilliseconds(centiseconds int) int {
	if centiseconds <= 0 {
		return 100
	}
	return centiseconds * 10
}

func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if err := s.ensureDecoded(); err != nil {
		return nil, err
	}
	if s.index >= len(s.decoded.Image) {
		return nil, status.New(status.NoMoreFrames)
	}

	if s.index > 0 {
		s.applyDisposal()
	}
	frame := s.decoded.Image[s.index]
	s.compositeFrame(frame)
	s.prevDisposal = s.decoded.Disposal[s.index]
	s.prevRect = frame.Bounds()
	s.index++

	img, err := rimage.New(s.decoded.Config.Width, s.decoded.Config.Height, pixelformat.BPP32RGBA)
	if err != nil {
		return nil, err
	}
	img.DelayMilliseconds = delayMilliseconds(s.decoded.Delay[s.index-1])

	if s.opts != nil && s.opts.Features&codec.LoadMetaData != 0 {
		attachMetadata(img, s.meta)
	}
	return img, nil
}

func (s *loadState) Frame(img *rimage.Image) error {
	w := img.Width * 4
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		off := s.canvas.PixOffset(0, y)
		copy(row[:w], s.canvas.Pix[off:off+w])
	}
	return nil
}

func (s *loadState) Finish() error { return nil }
