package jpeg

import (
	"bytes"
	"image"
	"image/color"
	stdjpeg "image/jpeg"

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

	decoded     image.Image
	data        []byte
	frameLoaded bool
}

func readAll(s iostream.Io) ([]byte, error) {
	if err := s.Seek(0, iostream.Set); err != nil {
		return nil, status.Wrap(status.SeekIO, "jpeg: seek", err)
	}
	size, err := s.Size()
	if err != nil {
		return nil, status.Wrap(status.ReadIO, "jpeg: size", err)
	}
	buf := make([]byte, size)
	if size > 0 {
		if err := s.StrictRead(buf); err != nil {
			return nil, status.Wrap(status.ReadIO, "jpeg: read", err)
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
	s.data = data

	decoded, err := stdjpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, status.Wrap(status.UnderlyingCodec, "jpeg: decode", err)
	}
	s.decoded = decoded

	format := pixelformat.BPP24RGB
	if decoded.ColorModel() == color.GrayModel {
		format = pixelformat.BPP8Gray
	}

	b := decoded.Bounds()
	img, err := rimage.New(b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, err
	}

	if s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0 {
		subsampling := ""
		if ycbcr, ok := decoded.(*image.YCbCr); ok {
			subsampling = ycbcrSubsamplingName(ycbcr.SubsampleRatio)
		}
		img.Source = &rimage.SourceImage{
			PixelFormat:       format,
			Compression:       "JPEG",
			ChromaSubsampling: subsampling,
		}
	}

	exif, icc, comment := scanMarkers(data)
	if s.opts != nil && s.opts.Features&codec.LoadMetaData != 0 {
		if exif != nil {
			rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaEXIF, Value: variant.FromData(exif)})
		}
		if comment != "" {
			rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaComment, Value: variant.FromString(comment)})
		}
	}
	if s.opts != nil && s.opts.Features&codec.LoadICCProfile != 0 && icc != nil {
		img.ICCProfile = &rimage.ICC{Data: icc}
	}

	return img, nil
}

func (s *loadState) Frame(img *rimage.Image) error {
	b := s.decoded.Bounds()

	switch img.PixelFormat {
	case pixelformat.BPP8Gray:
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				gr, _, _, _ := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = byte(gr >> 8)
			}
		}
	default:
		for y := 0; y < img.Height; y++ {
			row := img.Row(y)
			for x := 0; x < img.Width; x++ {
				r, g, bl, _ := s.decoded.At(b.Min.X+x, b.Min.Y+y).RGBA()
				o := x * 3
				row[o], row[o+1], row[o+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
			}
		}
	}

	return nil
}

func (s *loadState) Finish() error { return nil }

func ycbcrSubsamplingName(r image.YCbCrSubsampleRatio) string {
	switch r {
	case image.YCbCrSubsampleRatio444:
		return "444"
	case image.YCbCrSubsampleRatio422:
		return "422"
	case image.YCbCrSubsampleRatio420:
		return "420"
	case image.YCbCrSubsampleRatio440:
		return "440"
	case image.YCbCrSubsampleRatio411:
		return "411"
	case image.YCbCrSubsampleRatio410:
		return "410"
	default:
		return ""
	}
}
