package hdr

import (
	"math"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// rowToFloats decodes a BPP96-RGB-FLOAT scanline's raw bytes into a
// float32 slice, little-endian, the byte order floatsToRow writes and
// codecs/tiff uses for the same format (no unsafe pointer cast, so
// alignment never matters).
func rowToFloats(row []byte, dst []float32) {
	for i := range dst {
		o := i * 4
		bits := uint32(row[o]) | uint32(row[o+1])<<8 | uint32(row[o+2])<<16 | uint32(row[o+3])<<24
		dst[i] = math.Float32frombits(bits)
	}
}

func floatsToRow(src []float32, row []byte) {
	for i, v := range src {
		bits := math.Float32bits(v)
		o := i * 4
		row[o] = byte(bits)
		row[o+1] = byte(bits >> 8)
		row[o+2] = byte(bits >> 16)
		row[o+3] = byte(bits >> 24)
	}
}

// Info describes the Radiance RGBE codec, a single-frame, single-pixel-
// format format (spec section 4.6.1).
func Info() *codec.Info {
	return &codec.Info{
		Name:        "HDR",
		Description: "Radiance RGBE",
		MIMETypes:   []string{"image/vnd.radiance"},
		Extensions:  []string{"hdr", "pic"},
		Signatures: []codec.Signature{
			{Pattern: []byte("#?RADIANCE")},
			{Pattern: []byte("#?RGBE")},
		},
		Load: codec.LoadFeatures{
			MetaData:    true,
			SourceImage: true,
		},
		Save: codec.SaveFeatures{
			PixelFormats:       []pixelformat.Format{pixelFormat},
			Compressions:       []codec.Compression{"RLE", "NONE"},
			DefaultCompression: "RLE",
		},
	}
}

// Codec implements codec.Codec for Radiance RGBE files.
type Codec struct{}

func (Codec) Info() *codec.Info { return Info() }

func (Codec) LoadInit(io iostream.Io, opts *codec.LoadOptions) (codec.LoadState, error) {
	return &loadState{io: io, opts: opts}, nil
}

func (Codec) SaveInit(io iostream.Io, opts *codec.SaveOptions) (codec.SaveState, error) {
	return &saveState{io: io, opts: opts}, nil
}

type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions
	done bool
	h    header
}

func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if s.done {
		return nil, status.New(status.NoMoreFrames)
	}
	s.done = true

	h, err := readHeader(s.io)
	if err != nil {
		return nil, err
	}
	s.h = h

	wantSource := s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0
	return imageFromHeader(h, wantSource)
}

func (s *loadState) Frame(img *rimage.Image) error {
	scanline := make([]float32, s.h.width*3)
	dest := make([]float32, s.h.width*3)

	for y := 0; y < s.h.height; y++ {
		if err := readScanline(s.io, s.h.width, scanline); err != nil {
			return err
		}

		targetY := y
		if s.h.yIncreasing {
			targetY = s.h.height - 1 - y
		}

		if s.h.xIncreasing {
			copy(dest, scanline)
		} else {
			for x := 0; x < s.h.width; x++ {
				srcX := s.h.width - 1 - x
				copy(dest[x*3:x*3+3], scanline[srcX*3:srcX*3+3])
			}
		}

		floatsToRow(dest, img.Row(targetY))
	}
	return nil
}

func (s *loadState) Finish() error { return nil }

type saveState struct {
	io     iostream.Io
	opts   *codec.SaveOptions
	done   bool
	h      header
	useRLE bool
}

func (s *saveState) SeekNextFrame(img *rimage.Image) error {
	if s.done {
		return status.Newf(status.NoMoreFrames, "hdr: only a single frame is supported for saving")
	}
	if img.PixelFormat != pixelFormat {
		return status.Newf(status.UnsupportedPixelFormat, "hdr: only BPP96-RGB-FLOAT is supported for writing")
	}
	s.done = true

	s.h = newHeader()
	s.useRLE = s.opts == nil || s.opts.Compression != "NONE"
	s.h.width = img.Width
	s.h.height = img.Height

	fetchProperties(img.Properties, &s.h)
	if s.opts != nil {
		applyTuning(s.opts.Tuning, &s.h, &s.useRLE)
	}

	software := ""
	for n := img.MetaDataHead; n != nil; n = n.Next {
		if n.Key == rimage.MetaSoftware && n.Value != nil {
			if str, err := n.Value.String(); err == nil {
				software = str
				break
			}
		}
	}

	return writeHeader(s.io, s.h, software)
}

func (s *saveState) Frame(img *rimage.Image) error {
	if img.PixelFormat != pixelFormat {
		return status.Newf(status.UnsupportedPixelFormat, "hdr: only BPP96-RGB-FLOAT is supported for writing")
	}
	scanline := make([]float32, s.h.width*3)
	for y := 0; y < s.h.height; y++ {
		rowToFloats(img.Row(y), scanline)
		if err := writeScanline(s.io, s.h.width, scanline, s.useRLE); err != nil {
			return err
		}
	}
	return nil
}

func (s *saveState) Finish() error { return nil }
