package psd

import (
	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

type loadState struct {
	io   iostream.Io
	opts *codec.LoadOptions

	frameLoaded bool

	channels        uint16
	depth           uint16
	compression     psdCompression
	bytesPerChannel int
	scanBuffer      []byte
}

func (s *loadState) SeekNextFrame() (*rimage.Image, error) {
	if s.frameLoaded {
		return nil, status.New(status.NoMoreFrames)
	}
	s.frameLoaded = true

	// Skip 6 reserved zero bytes.
	if err := s.io.Seek(6, iostream.Cur); err != nil {
		return nil, err
	}

	channels, err := readUint16BE(s.io)
	if err != nil {
		return nil, err
	}
	s.channels = channels

	height, err := readUint32BE(s.io)
	if err != nil {
		return nil, err
	}
	width, err := readUint32BE(s.io)
	if err != nil {
		return nil, err
	}

	depth, err := readUint16BE(s.io)
	if err != nil {
		return nil, err
	}
	s.depth = depth

	mode16, err := readUint16BE(s.io)
	if err != nil {
		return nil, err
	}
	mode := psdMode(mode16)

	var palette *rimage.Palette

	dataSize, err := readUint32BE(s.io)
	if err != nil {
		return nil, err
	}
	switch {
	case dataSize > 0:
		if dataSize != 768 {
			return nil, status.Newf(status.InvalidImage, "psd: invalid palette size %d", dataSize)
		}

		var buf [256 * 3]byte
		if err := s.io.StrictRead(buf[:]); err != nil {
			return nil, status.Wrap(status.ReadIO, "psd: read palette", err)
		}

		// RR..GG..BB.. -> RGB RGB ...
		data := make([]byte, 256*3)
		for i := 0; i < 256; i++ {
			for channel := 0; channel < 3; channel++ {
				data[i*3+channel] = buf[256*channel+i]
			}
		}
		palette = &rimage.Palette{Format: pixelformat.BPP24RGB, Count: 256, Data: data}
	case mode == modeBitmap:
		palette = &rimage.Palette{Format: pixelformat.BPP24RGB, Count: 2, Data: append([]byte(nil), monoPalette...)}
	case mode == modeIndexed:
		return nil, status.Newf(status.InvalidImage, "psd: indexed image without color data")
	}

	// Skip image resources.
	resSize, err := readUint32BE(s.io)
	if err != nil {
		return nil, err
	}
	if err := s.io.Seek(int64(resSize), iostream.Cur); err != nil {
		return nil, err
	}

	// Skip layer and mask info.
	layerSize, err := readUint32BE(s.io)
	if err != nil {
		return nil, err
	}
	if err := s.io.Seek(int64(layerSize), iostream.Cur); err != nil {
		return nil, err
	}

	compression, err := readUint16BE(s.io)
	if err != nil {
		return nil, err
	}
	if compression != uint16(compressionNone) && compression != uint16(compressionRLE) {
		return nil, status.Newf(status.UnsupportedCompression, "psd: unsupported compression value %d", compression)
	}
	s.compression = psdCompression(compression)

	if s.compression == compressionRLE {
		// Skip the per-scanline byte-count table: height * channels * 2 bytes.
		if err := s.io.Seek(int64(height)*int64(s.channels)*2, iostream.Cur); err != nil {
			return nil, err
		}
	} else {
		s.bytesPerChannel = (int(width)*int(s.depth) + 7) / 8
		s.scanBuffer = make([]byte, s.bytesPerChannel)
	}

	format, err := pixelFormat(mode, s.channels, s.depth)
	if err != nil {
		return nil, err
	}

	img, err := rimage.New(int(width), int(height), format)
	if err != nil {
		return nil, err
	}
	img.Palette = palette

	if s.opts != nil && s.opts.Features&codec.LoadSourceImage != 0 {
		img.Source = &rimage.SourceImage{
			PixelFormat: format,
			Compression: sailCompression(s.compression),
		}
	}

	return img, nil
}

// Frame assembles the planar on-disk channels into the target image's
// interleaved pixel format, ports sail_codec_load_frame_v8_psd.
func (s *loadState) Frame(img *rimage.Image) error {
	bpp := (int(s.channels)*int(s.depth) + 7) / 8

	if s.compression == compressionRLE {
		return s.readRLE(img, bpp)
	}
	return s.readRaw(img, bpp)
}

func (s *loadState) readRLE(img *rimage.Image, bpp int) error {
	bytesPerSample := (int(s.depth) + 7) / 8

	for channel := 0; channel < int(s.channels); channel++ {
		for row := 0; row < img.Height; row++ {
			scan := img.Row(row)

			for count := 0; count < img.Width; {
				var cbuf [1]byte
				if err := s.io.StrictRead(cbuf[:]); err != nil {
					return status.Wrap(status.ReadIO, "psd: read RLE opcode", err)
				}
				c := cbuf[0]

				switch {
				case c > 128:
					run := int(c^0xFF) + 2

					value := make([]byte, bytesPerSample)
					if err := s.io.StrictRead(value); err != nil {
						return status.Wrap(status.ReadIO, "psd: read RLE repeat value", err)
					}

					if count+run > img.Width {
						run = img.Width - count
					}

					for i := count; i < count+run; i++ {
						off := i*bpp + channel*bytesPerSample
						copy(scan[off:off+bytesPerSample], value)
					}
					count += run

				case c < 128:
					run := int(c) + 1
					actual := run
					if count+run > img.Width {
						actual = img.Width - count
					}

					value := make([]byte, bytesPerSample)
					for i := 0; i < actual; i++ {
						if err := s.io.StrictRead(value); err != nil {
							return status.Wrap(status.ReadIO, "psd: read RLE literal value", err)
						}
						off := (count+i)*bpp + channel*bytesPerSample
						copy(scan[off:off+bytesPerSample], value)
					}

					if actual < run {
						if err := s.io.Seek(int64(run-actual)*int64(bytesPerSample), iostream.Cur); err != nil {
							return err
						}
					}
					count += run

					// c == 128 is a no-op.
				}
			}
		}
	}

	return nil
}

func (s *loadState) readRaw(img *rimage.Image, bpp int) error {
	for channel := 0; channel < int(s.channels); channel++ {
		for row := 0; row < img.Height; row++ {
			if err := s.io.StrictRead(s.scanBuffer); err != nil {
				return status.Wrap(status.ReadIO, "psd: read raw scanline", err)
			}

			scan := img.Row(row)

			switch s.depth {
			case 8:
				for pixel := 0; pixel < img.Width; pixel++ {
					scan[pixel*bpp+channel] = s.scanBuffer[pixel]
				}
			case 16:
				for pixel := 0; pixel < img.Width; pixel++ {
					off := pixel*bpp + channel*2
					scan[off] = s.scanBuffer[pixel*2]
					scan[off+1] = s.scanBuffer[pixel*2+1]
				}
			case 1:
				copy(scan, s.scanBuffer)
			}
		}
	}

	return nil
}

func (s *loadState) Finish() error { return nil }
