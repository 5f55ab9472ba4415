package tiff

import (
	"bytes"
	"image"

	tiffgo "golang.org/x/image/tiff"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

func readAll(s iostream.Io) ([]byte, error) {
	if err := s.Seek(0, iostream.Set); err != nil {
		return nil, status.Wrap(status.SeekIO, "tiff: seek", err)
	}
	size, err := s.Size()
	if err != nil {
		return nil, status.Wrap(status.ReadIO, "tiff: size", err)
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := s.StrictRead(buf); err != nil {
			return nil, status.Wrap(status.ReadIO, "tiff: read", err)
		}
	}
	return buf, nil
}

type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions

	frameLoaded bool

	orientation uint
	naturalW    int
	naturalH    int

	// HDR path (mode != mBaseline).
	hdr []byte

	// Baseline path.
	decoded image.Image
}

func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if s.frameLoaded {
		return nil, status.New(status.NoMoreFrames)
	}
	s.frameLoaded = true

	data, err := readAll(s.io)
	if err != nil {
		return nil, err
	}

	d, err := newIDF(newReaderAt(data))
	if err != nil {
		return nil, err
	}

	s.orientation = d.firstVal(tOrientation)
	if s.orientation == 0 {
		s.orientation = 1
	}

	mode := modeFor(d)

	var img *rimage.Image
	if mode == mBaseline {
		img, err = s.loadBaseline(data)
	} else {
		img, err = s.loadHDR(d, mode)
	}
	if err != nil {
		return nil, err
	}

	attachMetadata(d, img)

	if xr, ok := d.features[tXResolution]; ok && len(xr) > 0 {
		yr := d.firstVal(tYResolution)
		unit := rimage.ResolutionUnitInch
		if d.firstVal(tResolutionUnit) == resPerCM {
			unit = rimage.ResolutionUnitCentimeter
		}
		img.Resolution = &rimage.Resolution{
			X:    rationalOf(xr[0]),
			Y:    rationalOf(yr),
			Unit: unit,
		}
	}

	if s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0 {
		img.Source = &rimage.SourceImage{
			PixelFormat: img.PixelFormat,
			Compression: compressionName(d.firstVal(tCompression)),
		}
	}

	return img, nil
}

func (s *loadState) loadHDR(d *idf, mode imageMode) (*rimage.Image, error) {
	sw := int(d.firstVal(tImageWidth))
	sh := int(d.firstVal(tImageLength))
	if sw <= 0 || sh <= 0 {
		return nil, status.New(status.InvalidImageDimensions)
	}

	hd := &hdrDecoder{r: d.r, byteOrder: d.byteOrder, mode: mode, width: sw, height: sh}
	natural, err := hd.decodeAll(d)
	if err != nil {
		return nil, err
	}

	s.hdr = natural
	s.naturalW, s.naturalH = sw, sh

	dw, dh := orientationDims(s.orientation, sw, sh)
	return rimage.New(dw, dh, pixelformat.BPP96RGBFloat)
}

func (s *loadState) loadBaseline(data []byte) (*rimage.Image, error) {
	decoded, err := tiffgo.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "tiff: decode", err)
	}
	s.decoded = decoded

	b := decoded.Bounds()
	s.naturalW, s.naturalH = b.Dx(), b.Dy()

	format, palette := formatOf(decoded)
	dw, dh := orientationDims(s.orientation, s.naturalW, s.naturalH)
	img, err := rimage.New(dw, dh, format)
	if err != nil {
		return nil, err
	}
	img.Palette = palette
	return img, nil
}

// formatOf picks the pixel format closest to x/image/tiff's concrete
// decoded type, the same role codecs/png's formatOf plays for
// image/png's decoder, extended with image.CMYK (TIFF's own baseline
// photometric modes include CMYK, which PNG never needs to handle).
func formatOf(img image.Image) (pixelformat.Format, *rimage.Palette) {
	switch im := img.(type) {
	case *image.Paletted:
		data := make([]byte, len(im.Palette)*3)
		for i, c := range im.Palette {
			r, g, b, _ := c.RGBA()
			data[i*3], data[i*3+1], data[i*3+2] = byte(r>>8), byte(g>>8), byte(b>>8)
		}
		return pixelformat.BPP8Indexed, &rimage.Palette{Format: pixelformat.BPP24RGB, Count: len(im.Palette), Data: data}
	case *image.Gray:
		return pixelformat.BPP8Gray, nil
	case *image.Gray16:
		return pixelformat.BPP16Gray, nil
	case *image.CMYK:
		return pixelformat.BPP32CMYK, nil
	case *image.NRGBA:
		return pixelformat.BPP32RGBA, nil
	case *image.NRGBA64:
		return pixelformat.BPP64RGBA, nil
	default:
		return pixelformat.BPP24RGB, nil
	}
}

func (s *loadState) Frame(img *rimage.Image) error {
	if s.hdr != nil {
		return s.frameHDR(img)
	}
	return s.frameBaseline(img)
}

func (s *loadState) frameHDR(img *rimage.Image) error {
	sw, sh := s.naturalW, s.naturalH
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for x := 0; x < img.Width; x++ {
			sx, sy := orientationSource(s.orientation, x, y, sw, sh)
			src := s.hdr[(sy*sw+sx)*12 : (sy*sw+sx)*12+12]
			copy(row[x*12:x*12+12], src)
		}
	}
	return nil
}

func (s *loadState) frameBaseline(img *rimage.Image) error {
	sw, sh := s.naturalW, s.naturalH
	b := s.decoded.Bounds()

	var pal *image.Paletted
	if img.PixelFormat == pixelformat.BPP8Indexed {
		pal = s.decoded.(*image.Paletted)
	}

	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for x := 0; x < img.Width; x++ {
			sx, sy := orientationSource(s.orientation, x, y, sw, sh)

			switch img.PixelFormat {
			case pixelformat.BPP8Indexed:
				row[x] = pal.Pix[sy*pal.Stride+sx]
			case pixelformat.BPP8Gray:
				gr, _, _, _ := s.decoded.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
				row[x] = byte(gr >> 8)
			case pixelformat.BPP16Gray:
				gr, _, _, _ := s.decoded.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
				row[x*2], row[x*2+1] = byte(gr>>8), byte(gr)
			case pixelformat.BPP32CMYK:
				cmyk := s.decoded.(*image.CMYK)
				o := (sy*cmyk.Stride + sx*4)
				copy(row[x*4:x*4+4], cmyk.Pix[o:o+4])
			case pixelformat.BPP64RGBA:
				r, g, bl, a := s.decoded.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
				o := x * 8
				row[o], row[o+1] = byte(r>>8), byte(r)
				row[o+2], row[o+3] = byte(g>>8), byte(g)
				row[o+4], row[o+5] = byte(bl>>8), byte(bl)
				row[o+6], row[o+7] = byte(a>>8), byte(a)
			default: // BPP24RGB, BPP32RGBA
				hasAlpha := img.PixelFormat == pixelformat.BPP32RGBA
				stride := 3
				if hasAlpha {
					stride = 4
				}
				r, g, bl, a := s.decoded.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
				o := x * stride
				row[o], row[o+1], row[o+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
				if hasAlpha {
					row[o+3] = byte(a >> 8)
				}
			}
		}
	}
	return nil
}

func (s *loadState) Finish() error { return nil }
