package pnm

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

type saveState struct {
	io   iostream.Io
	opts *codec.SaveOptions
	done bool

	ver version
	bpc int
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if s.done {
		return status.Newf(status.NoMoreFrames, "pnm: only a single frame is supported for saving")
	}
	s.done = true

	v, bpc, depth, tt, err := pixelFormatToPNMParams(img.PixelFormat)
	if err != nil {
		return err
	}
	s.ver, s.bpc = v, bpc

	maxval := (1 << uint(bpc)) - 1

	if v == p7 {
		return writePAMHeader(s.io, img.Width, img.Height, depth, maxval, tt)
	}
	return writePNMHeader(s.io, v, img.Width, img.Height, maxval)
}

// Frame writes the raster as-is: every PNM/PAM binary sub-format this
// codec accepts for saving is already in the image's native byte layout
// (1bpp MSB-first for P4, big-endian samples for 16-bit formats, matching
// how the pixel buffer itself stores them - see convert's be16/putBE16).
func (s *saveState) Frame(img *rimage.Image) error {
	for y := 0; y < img.Height; y++ {
		if err := s.io.StrictWrite(img.Row(y)); err != nil {
			return status.Wrap(status.WriteIO, "pnm: write raster", err)
		}
	}
	return nil
}

func (s *saveState) Finish() error { return nil }
