package hdr

import (
	"math"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/status"
)

// rgbeToFloat converts one packed RGBE sample to linear float32 RGB,
// ported from hdr_private_rgbe_to_float.
func rgbeToFloat(rgbe [4]byte, rgb []float32) {
	if rgbe[3] == 0 {
		rgb[0], rgb[1], rgb[2] = 0, 0, 0
		return
	}
	f := float32(math.Ldexp(1, int(rgbe[3])-(128+8)))
	rgb[0] = float32(rgbe[0]) * f
	rgb[1] = float32(rgbe[1]) * f
	rgb[2] = float32(rgbe[2]) * f
}

// floatToRGBE is the inverse, ported from hdr_private_float_to_rgbe.
func floatToRGBE(rgb []float32) (rgbe [4]byte) {
	maxVal := rgb[0]
	if rgb[1] > maxVal {
		maxVal = rgb[1]
	}
	if rgb[2] > maxVal {
		maxVal = rgb[2]
	}

	if maxVal < 1e-32 {
		return
	}

	mantissa, exponent := math.Frexp(float64(maxVal))
	scale := float32(mantissa) * 256 / maxVal

	rgbe[0] = byte(rgb[0] * scale)
	rgbe[1] = byte(rgb[1] * scale)
	rgbe[2] = byte(rgb[2] * scale)
	rgbe[3] = byte(exponent + 128)
	return
}

// readOldRLEScanline ports read_old_rle_scanline: runs are encoded as a
// literal RGBE{1,1,1,count<<shift} pixel whose predecessor repeats.
func readOldRLEScanline(io iostream.Io, width int, scanline []byte) error {
	var rgbe [4]byte
	rshift := 0
	pos := 0

	for pos < width {
		if _, err := io.TolerantRead(rgbe[:]); err != nil {
			return status.Wrap(status.ReadIO, "hdr: read old-rle pixel", err)
		}

		if rgbe[0] == 1 && rgbe[1] == 1 && rgbe[2] == 1 {
			count := int(rgbe[3]) << uint(rshift)
			if pos+count > width {
				return status.Newf(status.InvalidImage, "hdr: old-rle run overruns scanline")
			}
			for i := 0; i < count; i++ {
				copy(scanline[pos*4:pos*4+4], scanline[(pos-1)*4:pos*4])
				pos++
			}
			rshift += 8
		} else {
			copy(scanline[pos*4:pos*4+4], rgbe[:])
			pos++
			rshift = 0
		}
	}
	return nil
}

// readNewRLEScanline ports read_new_rle_scanline: a 4-byte header {2,2,hi,lo}
// followed by 4 independently RLE-coded channel planes.
func readNewRLEScanline(io iostream.Io, width int, scanline []byte) error {
	if width < 8 || width > 32767 {
		return readOldRLEScanline(io, width, scanline)
	}

	var hdr [4]byte
	if _, err := io.TolerantRead(hdr[:]); err != nil {
		return status.Wrap(status.ReadIO, "hdr: read rle header", err)
	}

	if hdr[0] != 2 || hdr[1] != 2 || hdr[2]&0x80 != 0 {
		if err := io.Seek(-4, iostream.Cur); err != nil {
			return err
		}
		return readOldRLEScanline(io, width, scanline)
	}

	scanlineWidth := int(hdr[2])<<8 | int(hdr[3])
	if scanlineWidth != width {
		return status.Newf(status.InvalidImage, "hdr: scanline width mismatch: header=%d image=%d", scanlineWidth, width)
	}

	var b [1]byte
	readByte := func() (byte, error) {
		if _, err := io.TolerantRead(b[:]); err != nil {
			return 0, status.Wrap(status.ReadIO, "hdr: read rle byte", err)
		}
		return b[0], nil
	}

	for channel := 0; channel < 4; channel++ {
		pos := 0
		for pos < width {
			code, err := readByte()
			if err != nil {
				return err
			}

			if code > 128 {
				count := int(code & 0x7F)
				value, err := readByte()
				if err != nil {
					return err
				}
				for i := 0; i < count; i++ {
					if pos >= width {
						return status.Newf(status.InvalidImage, "hdr: rle run overruns scanline")
					}
					scanline[pos*4+channel] = value
					pos++
				}
			} else {
				count := int(code)
				for i := 0; i < count; i++ {
					if pos >= width {
						return status.Newf(status.InvalidImage, "hdr: rle literal overruns scanline")
					}
					value, err := readByte()
					if err != nil {
						return err
					}
					scanline[pos*4+channel] = value
					pos++
				}
			}
		}
	}
	return nil
}

// readScanline decodes one RLE scanline into width*3 float32 samples.
func readScanline(io iostream.Io, width int, scanline []float32) error {
	rgbeScanline := make([]byte, width*4)
	if err := readNewRLEScanline(io, width, rgbeScanline); err != nil {
		return err
	}
	var rgbe [4]byte
	for x := 0; x < width; x++ {
		copy(rgbe[:], rgbeScanline[x*4:x*4+4])
		rgbeToFloat(rgbe, scanline[x*3:x*3+3])
	}
	return nil
}

// writeNewRLEScanline ports write_new_rle_scanline: per-channel RLE with a
// minimum run length of 4 before it pays to switch out of literal mode.
func writeNewRLEScanline(io iostream.Io, width int, scanline []byte) error {
	header := [4]byte{2, 2, byte(width >> 8), byte(width & 0xFF)}
	if err := io.StrictWrite(header[:]); err != nil {
		return err
	}

	for channel := 0; channel < 4; channel++ {
		pos := 0
		for pos < width {
			value := scanline[pos*4+channel]
			runLength := 1
			for pos+runLength < width && runLength < 127 {
				if scanline[(pos+runLength)*4+channel] != value {
					break
				}
				runLength++
			}

			if runLength >= 4 {
				code := byte(128 | runLength)
				if err := io.StrictWrite([]byte{code, value}); err != nil {
					return err
				}
				pos += runLength
				continue
			}

			literalStart := pos
			literalLength := 0
			for pos < width && literalLength < 128 {
				nextRun := 1
				if pos+1 < width {
					v := scanline[pos*4+channel]
					for pos+nextRun < width && nextRun < 4 {
						if scanline[(pos+nextRun)*4+channel] != v {
							break
						}
						nextRun++
					}
				}
				if nextRun >= 4 {
					break
				}
				literalLength++
				pos++
			}

			buf := make([]byte, 0, literalLength+1)
			buf = append(buf, byte(literalLength))
			for i := 0; i < literalLength; i++ {
				buf = append(buf, scanline[(literalStart+i)*4+channel])
			}
			if err := io.StrictWrite(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeScanline encodes width*3 float32 samples as one RLE (or raw) scanline.
func writeScanline(io iostream.Io, width int, scanline []float32, useRLE bool) error {
	rgbeScanline := make([]byte, width*4)
	for x := 0; x < width; x++ {
		rgbe := floatToRGBE(scanline[x*3 : x*3+3])
		copy(rgbeScanline[x*4:x*4+4], rgbe[:])
	}

	if useRLE && width >= 8 && width <= 32767 {
		return writeNewRLEScanline(io, width, rgbeScanline)
	}
	return io.StrictWrite(rgbeScanline)
}
