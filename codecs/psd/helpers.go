package psd

import (
	"encoding/binary"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/status"
)

func readUint16BE(s iostream.Io) (uint16, error) {
	var buf [2]byte
	if err := s.StrictRead(buf[:]); err != nil {
		return 0, status.Wrap(status.ReadIO, "psd: read uint16", err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func readUint32BE(s iostream.Io) (uint32, error) {
	var buf [4]byte
	if err := s.StrictRead(buf[:]); err != nil {
		return 0, status.Wrap(status.ReadIO, "psd: read uint32", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func checkMagic(s iostream.Io) error {
	magic, err := readUint32BE(s)
	if err != nil {
		return err
	}
	if magic != psdMagic {
		return status.Newf(status.InvalidImage, "psd: invalid magic 0x%X", magic)
	}

	version, err := readUint16BE(s)
	if err != nil {
		return err
	}
	if version != 1 {
		return status.Newf(status.InvalidImage, "psd: unsupported version %d", version)
	}

	return nil
}

// pixelFormat ports psd_private_sail_pixel_format: the fixed mode/channels/
// depth combinations the reference codec accepts.
func pixelFormat(mode psdMode, channels, depth uint16) (pixelformat.Format, error) {
	switch mode {
	case modeBitmap:
		if channels == 1 {
			return pixelformat.BPP1Indexed, nil
		}
	case modeIndexed:
		if channels == 1 {
			return pixelformat.BPP8Indexed, nil
		}
	case modeGrayscale:
		if channels == 1 {
			switch depth {
			case 8:
				return pixelformat.BPP8Gray, nil
			case 16:
				return pixelformat.BPP16Gray, nil
			}
		}
	case modeRGB:
		switch channels {
		case 3:
			switch depth {
			case 8:
				return pixelformat.BPP24RGB, nil
			case 16:
				return pixelformat.BPP48RGB, nil
			}
		case 4:
			switch depth {
			case 8:
				return pixelformat.BPP32RGBA, nil
			case 16:
				return pixelformat.BPP64RGBA, nil
			}
		}
	case modeCMYK:
		if channels == 4 {
			switch depth {
			case 8:
				return pixelformat.BPP32CMYK, nil
			case 16:
				return pixelformat.BPP64CMYK, nil
			}
		}
	}

	return pixelformat.Format(0), status.Newf(status.UnsupportedPixelFormat,
		"psd: unsupported combination of mode(%d) and channels(%d)", mode, channels)
}

func sailCompression(c psdCompression) string {
	switch c {
	case compressionNone:
		return "NONE"
	case compressionRLE:
		return "RLE"
	default:
		return "UNKNOWN"
	}
}
