// Package pnm implements the PNM/PAM (P1-P7) codec of spec section 4.6.3:
// the whitespace/comment-skipping ASCII header grammar, maxval scaling, the
// big-endian-on-disk 16-bit sample convention, and the PAM line-oriented
// header, ported from original_source/src/sail-codecs/pnm/{pnm.c,helpers.c}.
// No PNM/PAM library appears anywhere in the example corpus, so this is
// implemented directly against iostream and stdlib strconv/bufio-free
// manual parsing, documented here as the required stdlib-only
// justification (DESIGN.md).
package pnm

import (
	"strconv"
	"strings"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/status"
)

// version is one of P1-P7, ported from enum SailPnmVersion.
type version int

const (
	p1 version = iota
	p2
	p3
	p4
	p5
	p6
	p7
)

// tupltype is PAM's TUPLTYPE header field, ported from enum SailPamTuplType.
type tupltype int

const (
	tupltypeUnknown tupltype = iota
	tupltypeBlackAndWhite
	tupltypeGrayscale
	tupltypeGrayscaleAlpha
	tupltypeRGB
	tupltypeRGBAlpha
)

var monoPalette = []byte{255, 255, 255, 0, 0, 0}

// readByte reads a single byte through Io, the narrowest read primitive
// the header grammar needs (mirrors helpers.c's io->strict_read(..., 1)).
func readByte(s iostream.Io) (byte, error) {
	var b [1]byte
	if err := s.StrictRead(b[:]); err != nil {
		return 0, status.Wrap(status.ReadIO, "pnm: read byte", err)
	}
	return b[0], nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// skipWhitespaceAndComments advances past runs of whitespace and '#' to
// end-of-line comments, returning the first non-skipped byte (ported from
// pnm_private_skip_to_data).
func skipWhitespaceAndComments(s iostream.Io) (byte, error) {
	for {
		c, err := readByte(s)
		if err != nil {
			return 0, err
		}
		if c == '#' {
			for c != '\n' {
				c, err = readByte(s)
				if err != nil {
					return 0, err
				}
			}
			continue
		}
		if isSpace(c) {
			continue
		}
		return c, nil
	}
}

// readWord reads the next whitespace/comment-delimited token, mirroring
// pnm_private_read_word: the magic number and every P1-P6 header field.
func readWord(s iostream.Io) (string, error) {
	first, err := skipWhitespaceAndComments(s)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteByte(first)
	for {
		c, err := readByte(s)
		if err != nil {
			return b.String(), nil // EOF ends the last token in the stream
		}
		if isSpace(c) {
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}

func readUint(s iostream.Io) (int, error) {
	w, err := readWord(s)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(w)
	if err != nil {
		return 0, status.Newf(status.InvalidImage, "pnm: expected a number, got %q", w)
	}
	return v, nil
}

// readPAMHeader ports pnm_private_read_pam_header: a line-oriented header
// of WIDTH/HEIGHT/DEPTH/MAXVAL/TUPLTYPE lines terminated by ENDHDR.
func readPAMHeader(s iostream.Io) (width, height, depth, maxval int, tt tupltype, err error) {
	for {
		key, kerr := readWord(s)
		if kerr != nil {
			return 0, 0, 0, 0, tupltypeUnknown, kerr
		}
		switch key {
		case "WIDTH":
			if width, err = readUint(s); err != nil {
				return
			}
		case "HEIGHT":
			if height, err = readUint(s); err != nil {
				return
			}
		case "DEPTH":
			if depth, err = readUint(s); err != nil {
				return
			}
		case "MAXVAL":
			if maxval, err = readUint(s); err != nil {
				return
			}
		case "TUPLTYPE":
			var w string
			if w, err = readWord(s); err != nil {
				return
			}
			switch w {
			case "BLACKANDWHITE":
				tt = tupltypeBlackAndWhite
			case "GRAYSCALE":
				tt = tupltypeGrayscale
			case "GRAYSCALE_ALPHA":
				tt = tupltypeGrayscaleAlpha
			case "RGB":
				tt = tupltypeRGB
			case "RGB_ALPHA":
				tt = tupltypeRGBAlpha
			default:
				tt = tupltypeUnknown
			}
		case "ENDHDR":
			return width, height, depth, maxval, tt, nil
		default:
			return 0, 0, 0, 0, tupltypeUnknown, status.Newf(status.InvalidImage, "pnm: unexpected PAM header field %q", key)
		}
	}
}

// rgbPixelFormat ports pnm_private_rgb_sail_pixel_format for P1-P6.
func rgbPixelFormat(v version, bpc int) pixelformat.Format {
	switch v {
	case p1, p4:
		return pixelformat.BPP1Indexed
	case p2, p5:
		if bpc == 8 {
			return pixelformat.BPP8Gray
		}
		return pixelformat.BPP16Gray
	case p3, p6:
		if bpc == 8 {
			return pixelformat.BPP24RGB
		}
		return pixelformat.BPP48RGB
	default:
		return pixelformat.Format(0)
	}
}

// pamPixelFormat ports pnm_private_pam_sail_pixel_format.
func pamPixelFormat(tt tupltype, depth, bpc int) pixelformat.Format {
	switch tt {
	case tupltypeBlackAndWhite, tupltypeGrayscale:
		if bpc == 8 {
			return pixelformat.BPP8Gray
		}
		return pixelformat.BPP16Gray
	case tupltypeGrayscaleAlpha:
		if bpc == 8 {
			return pixelformat.BPP16GrayAlpha
		}
		return pixelformat.BPP32GrayAlpha
	case tupltypeRGB:
		if bpc == 8 {
			return pixelformat.BPP24RGB
		}
		return pixelformat.BPP48RGB
	case tupltypeRGBAlpha:
		if bpc == 8 {
			return pixelformat.BPP32RGBA
		}
		return pixelformat.BPP64RGBA
	default:
		switch depth {
		case 1:
			if bpc == 8 {
				return pixelformat.BPP8Gray
			}
			return pixelformat.BPP16Gray
		case 3:
			if bpc == 8 {
				return pixelformat.BPP24RGB
			}
			return pixelformat.BPP48RGB
		default:
			return pixelformat.Format(0)
		}
	}
}

// pixelFormatToPNMParams is the save-side inverse, ported from
// pnm_private_pixel_format_to_pnm_params: picks the version/bpc/depth/
// tupltype that can losslessly represent format.
func pixelFormatToPNMParams(format pixelformat.Format) (v version, bpc, depth int, tt tupltype, err error) {
	switch format {
	case pixelformat.BPP1Indexed:
		return p4, 1, 1, tupltypeBlackAndWhite, nil
	case pixelformat.BPP8Gray:
		return p5, 8, 1, tupltypeGrayscale, nil
	case pixelformat.BPP16Gray:
		return p5, 16, 1, tupltypeGrayscale, nil
	case pixelformat.BPP16GrayAlpha:
		return p7, 8, 2, tupltypeGrayscaleAlpha, nil
	case pixelformat.BPP32GrayAlpha:
		return p7, 16, 2, tupltypeGrayscaleAlpha, nil
	case pixelformat.BPP24RGB:
		return p6, 8, 3, tupltypeRGB, nil
	case pixelformat.BPP48RGB:
		return p6, 16, 3, tupltypeRGB, nil
	case pixelformat.BPP32RGBA:
		return p7, 8, 4, tupltypeRGBAlpha, nil
	case pixelformat.BPP64RGBA:
		return p7, 16, 4, tupltypeRGBAlpha, nil
	default:
		return 0, 0, 0, tupltypeUnknown, status.Newf(status.UnsupportedPixelFormat, "pnm: %s cannot be saved to PNM/PAM", format)
	}
}

func writeString(s iostream.Io, str string) error {
	if err := s.StrictWrite([]byte(str)); err != nil {
		return status.Wrap(status.WriteIO, "pnm: write header", err)
	}
	return nil
}

// writePNMHeader ports pnm_private_write_pnm_header.
func writePNMHeader(s iostream.Io, v version, width, height, maxval int) error {
	magic := [...]string{"P1", "P2", "P3", "P4", "P5", "P6"}[v]
	header := magic + "\n" + strconv.Itoa(width) + " " + strconv.Itoa(height) + "\n"
	if v != p1 && v != p4 {
		header += strconv.Itoa(maxval) + "\n"
	}
	return writeString(s, header)
}

// writePAMHeader ports pnm_private_write_pam_header.
func writePAMHeader(s iostream.Io, width, height, depth, maxval int, tt tupltype) error {
	name := [...]string{"", "BLACKANDWHITE", "GRAYSCALE", "GRAYSCALE_ALPHA", "RGB", "RGB_ALPHA"}[tt]
	header := "P7\n" +
		"WIDTH " + strconv.Itoa(width) + "\n" +
		"HEIGHT " + strconv.Itoa(height) + "\n" +
		"DEPTH " + strconv.Itoa(depth) + "\n" +
		"MAXVAL " + strconv.Itoa(maxval) + "\n" +
		"TUPLTYPE " + name + "\n" +
		"ENDHDR\n"
	return writeString(s, header)
}
