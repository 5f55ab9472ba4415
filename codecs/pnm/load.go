package pnm

import (
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
	done bool

	ver        version
	bpc        int
	multiplier float64
	width      int
	height     int
}

func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if s.done {
		return nil, status.New(status.NoMoreFrames)
	}
	s.done = true

	magic, err := readWord(s.io)
	if err != nil {
		return nil, err
	}
	if len(magic) != 2 || magic[0] != 'P' {
		return nil, status.Newf(status.InvalidImage, "pnm: invalid magic %q", magic)
	}

	var format pixelformat.Format
	switch magic[1] {
	case '1':
		s.ver = p1
	case '2':
		s.ver = p2
	case '3':
		s.ver = p3
	case '4':
		s.ver = p4
	case '5':
		s.ver = p5
	case '6':
		s.ver = p6
	case '7':
		s.ver = p7
	default:
		return nil, status.Newf(status.UnsupportedCompression, "pnm: unsupported version %q", magic)
	}

	if s.ver == p7 {
		width, height, depth, maxval, tt, err := readPAMHeader(s.io)
		if err != nil {
			return nil, err
		}
		s.bpc, s.multiplier, err = bpcAndMultiplier(maxval)
		if err != nil {
			return nil, err
		}
		format = pamPixelFormat(tt, depth, s.bpc)
		s.width, s.height = width, height
	} else {
		width, err := readUint(s.io)
		if err != nil {
			return nil, err
		}
		height, err := readUint(s.io)
		if err != nil {
			return nil, err
		}
		s.width, s.height = width, height

		switch s.ver {
		case p2, p3, p5, p6:
			maxval, err := readUint(s.io)
			if err != nil {
				return nil, err
			}
			s.bpc, s.multiplier, err = bpcAndMultiplier(maxval)
			if err != nil {
				return nil, err
			}
		default:
			s.bpc, s.multiplier = 1, 1
		}
		format = rgbPixelFormat(s.ver, s.bpc)
	}

	if format == pixelformat.Format(0) {
		return nil, status.New(status.UnsupportedPixelFormat)
	}

	img, err := rimage.New(s.width, s.height, format)
	if err != nil {
		return nil, err
	}

	wantSource := s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0
	if wantSource {
		img.Source = &rimage.SourceImage{PixelFormat: format, Compression: "NONE"}
	}
	if format == pixelformat.BPP1Indexed {
		img.Palette = &rimage.Palette{Format: pixelformat.BPP24RGB, Count: 2, Data: append([]byte(nil), monoPalette...)}
	}
	if s.opts != nil && s.opts.Features&codec.LoadMetaData != 0 {
		img.Properties = sourceProperties(s.ver)
	}

	return img, nil
}

func bpcAndMultiplier(maxval int) (int, float64, error) {
	switch {
	case maxval <= 0:
		return 0, 0, status.Newf(status.InvalidImage, "pnm: invalid maxval %d", maxval)
	case maxval <= 255:
		return 8, 255.0 / float64(maxval), nil
	case maxval <= 65535:
		return 16, 65535.0 / float64(maxval), nil
	default:
		return 0, 0, status.Newf(status.UnsupportedCompression, "pnm: maxval %d exceeds 16 bits", maxval)
	}
}

func (s *loadState) Frame(img *rimage.Image) error {
	switch s.ver {
	case p1:
		return s.readAsciiBitmap(img)
	case p2:
		return s.readAsciiSamples(img, 1)
	case p3:
		return s.readAsciiSamples(img, 3)
	case p4, p5, p6, p7:
		for y := 0; y < img.Height; y++ {
			if err := s.io.StrictRead(img.Row(y)); err != nil {
				return status.Wrap(status.ReadIO, "pnm: read raster", err)
			}
		}
		return nil
	}
	return status.New(status.UnsupportedCompression)
}

// readAsciiBitmap ports the P1 branch of sail_codec_load_frame_v8_pnm:
// one '0'/'1' character per pixel, packed MSB-first into BPP1_INDEXED rows.
func (s *loadState) readAsciiBitmap(img *rimage.Image) error {
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		shift := 8
		byteIdx := 0
		for x := 0; x < img.Width; x++ {
			c, err := skipWhitespaceAndComments(s.io)
			if err != nil {
				return err
			}
			if c != '0' && c != '1' {
				return status.Newf(status.InvalidImage, "pnm: unexpected character %q in P1 raster", c)
			}
			if shift == 8 {
				row[byteIdx] = 0
			}
			shift--
			if c == '1' {
				row[byteIdx] |= 1 << uint(shift)
			}
			if shift == 0 {
				byteIdx++
				shift = 8
			}
		}
	}
	return nil
}

// readAsciiSamples ports pnm_private_read_pixels (P2/P3): whitespace-
// delimited decimal samples, scaled to the 8/16-bit full range.
func (s *loadState) readAsciiSamples(img *rimage.Image, channels int) error {
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for x := 0; x < img.Width*channels; x++ {
			v, err := readUint(s.io)
			if err != nil {
				return err
			}
			scaled := int(float64(v)*s.multiplier + 0.5)
			if s.bpc == 8 {
				row[x] = byte(scaled)
			} else {
				row[x*2] = byte(scaled >> 8)
				row[x*2+1] = byte(scaled)
			}
		}
	}
	return nil
}

func (s *loadState) Finish() error { return nil }

func versionName(v version) string {
	return [...]string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"}[v]
}

// sourceProperties mirrors pnm_private_store_ascii: records which of the
// seven on-disk sub-formats produced this image.
func sourceProperties(v version) *variant.HashMap {
	hm := variant.NewHashMap()
	hm.Insert("pnm-version", variant.FromString(versionName(v)))
	return hm
}
