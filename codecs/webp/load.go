package webp

import (
	"bytes"

	"golang.org/x/image/webp"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
	"github.com/mdouchement/rasterio/variant"
)

type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions

	c     *container
	index int

	canvas *canvas
}

func readAll(s iostream.Io) ([]byte, error) {
	if err := s.Seek(0, iostream.Set); err != nil {
		return nil, status.Wrap(status.SeekIO, "webp: seek", err)
	}
	size, err := s.Size()
	if err != nil {
		return nil, status.Wrap(status.ReadIO, "webp: size", err)
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := s.StrictRead(buf); err != nil {
			return nil, status.Wrap(status.ReadIO, "webp: read", err)
		}
	}
	return buf, nil
}

// SeekNextFrame decodes and composites the next animation frame onto the
// running canvas, per the disposal/blend algorithm of spec §4.6.5, ported
// from sail_codec_load_seek_next_frame_v7_webp / sail_codec_load_frame_v7_webp.
func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if s.index >= len(s.c.frames) {
		return nil, status.New(status.NoMoreFrames)
	}

	if s.canvas == nil {
		s.canvas = newCanvas(s.c.canvasWidth, s.c.canvasHeight)
		if s.c.animated {
			s.canvas.fillRect(0, 0, s.canvas.width, s.canvas.height,
				[4]byte{s.c.background.r, s.c.background.g, s.c.background.b, s.c.background.a})
		}
	} else {
		prev := s.c.frames[s.index-1]
		if prev.dispose == disposeBackground {
			s.canvas.fillRect(prev.x, prev.y, prev.width, prev.height,
				[4]byte{s.c.background.r, s.c.background.g, s.c.background.b, s.c.background.a})
		}
	}

	f := s.c.frames[s.index]

	decoded, err := webp.Decode(bytes.NewReader(f.wrapped))
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "webp: decode frame", err)
	}
	s.canvas.drawImage(f.x, f.y, decoded, f.blend == blendAlpha)

	img, err := rimage.New(s.canvas.width, s.canvas.height, pixelformat.BPP32RGBA)
	if err != nil {
		return nil, err
	}
	img.DelayMilliseconds = f.durationMS
	if img.DelayMilliseconds == 0 {
		img.DelayMilliseconds = 100
	}

	if s.opts != nil && s.opts.Features&codec.LoadICCProfile != 0 && s.c.iccp != nil {
		img.ICCProfile = &rimage.ICC{Data: append([]byte(nil), s.c.iccp...)}
	}
	if s.opts != nil && s.opts.Features&codec.LoadMetaData != 0 {
		if s.c.exif != nil {
			rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaEXIF, Value: variant.FromData(s.c.exif)})
		}
		if s.c.xmp != nil {
			rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaXMP, Value: variant.FromData(s.c.xmp)})
		}
	}

	if s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0 {
		img.Source = &rimage.SourceImage{PixelFormat: pixelformat.BPP32RGBA, Compression: "WEBP"}
	}

	s.index++
	return img, nil
}

// Frame snapshots the composited canvas into img's already-allocated
// pixel buffer.
func (s *loadState) Frame(img *rimage.Image) error {
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		copy(row, s.canvas.pix[y*s.canvas.width*4:(y+1)*s.canvas.width*4])
	}
	return nil
}

func (s *loadState) Finish() error { return nil }

func checkSignature(data []byte) error {
	if len(data) < 12 || string(data[0:4]) != fourCCRIFF || string(data[8:12]) != fourCCWEBP {
		return status.New(status.InvalidImage)
	}
	return nil
}
