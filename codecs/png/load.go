package png

import (
	"bytes"
	"image"
	stdpng "image/png"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
	"github.com/mdouchement/rasterio/variant"
)

// textKeyMap maps the PNG spec's reserved tEXt/iTXt keywords to the
// closed MetaKey enumeration (spec section 3).
var textKeyMap = map[string]rimage.MetaKey{
	"Title":         rimage.MetaTitle,
	"Author":        rimage.MetaAuthor,
	"Description":   rimage.MetaDescription,
	"Copyright":     rimage.MetaCopyright,
	"Creation Time": rimage.MetaCreationTime,
	"Software":      rimage.MetaSoftware,
	"Comment":       rimage.MetaComment,
}

type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions

	decoded     image.Image
	frameLoaded bool
}

func readAll(s iostream.Io) ([]byte, error) {
	if err := s.Seek(0, iostream.Set); err != nil {
		return nil, status.Wrap(status.SeekIO, "png: seek", err)
	}
	size, err := s.Size()
	if err != nil {
		return nil, status.Wrap(status.ReadIO, "png: size", err)
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := s.StrictRead(buf); err != nil {
			return nil, status.Wrap(status.ReadIO, "png: read", err)
		}
	}
	return buf, nil
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

	decoded, err := stdpng.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "png: decode", err)
	}
	s.decoded = decoded

	format, palette := formatOf(decoded)

	b := decoded.Bounds()
	img, err := rimage.New(b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, err
	}
	img.Palette = palette

	if s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0 {
		img.Source = &rimage.SourceImage{PixelFormat: format, Compression: "DEFLATE"}
	}

	meta := scanChunks(data)
	if s.opts != nil && s.opts.Features&codec.LoadMetaData != 0 {
		for key, value := range meta.text {
			mk, ok := textKeyMap[key]
			var node *rimage.MetaData
			if ok {
				node = &rimage.MetaData{Key: mk, Value: variant.FromString(value)}
			} else {
				node = &rimage.MetaData{Key: rimage.MetaUnknown, FreeKey: key, Value: variant.FromString(value)}
			}
			rimage.Append(&img.MetaDataHead, node)
		}
	}
	if s.opts != nil && s.opts.Features&codec.LoadICCProfile != 0 && meta.iccp != nil {
		img.ICCProfile = &rimage.ICC{Data: meta.iccp}
	}

	return img, nil
}

// formatOf picks the pixel format closest to the stdlib-decoded image's
// concrete color model, preserving palette/grayscale/alpha distinctions
// PNG itself makes.
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
	case *image.NRGBA:
		return pixelformat.BPP32RGBA, nil
	case *image.NRGBA64:
		return pixelformat.BPP64RGBA, nil
	default:
		return pixelformat.BPP24RGB, nil
	}
}

func (s *loadState) Frame(img *rimage.Image) error {
	b := s.decoded.Bounds()

	switch img.PixelFormat {
	case pixelformat.BPP8Indexed:
		pal := s.decoded.(*image.Paletted)
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			srcRow := pal.Pix[(y)*pal.Stride : (y)*pal.Stride+img.Width]
			copy(row, srcRow)
		}
	case pixelformat.BPP8Gray:
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				gr, _, _, _ := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = byte(gr >> 8)
			}
		}
	case pixelformat.BPP16Gray:
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				gr, _, _, _ := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x*2], row[x*2+1] = byte(gr>>8), byte(gr)
			}
		}
	case pixelformat.BPP64RGBA:
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				r, g, bl, a := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
				o := x * 8
				row[o], row[o+1] = byte(r>>8), byte(r)
				row[o+2], row[o+3] = byte(g>>8), byte(g)
				row[o+4], row[o+5] = byte(bl>>8), byte(bl)
				row[o+6], row[o+7] = byte(a>>8), byte(a)
			}
		}
	default: // BPP24RGB, BPP32RGBA
		hasAlpha := img.PixelFormat == pixelformat.BPP32RGBA
		stride := 3
		if hasAlpha {
			stride = 4
		}
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				r, g, bl, a := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
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
