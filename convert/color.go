package convert

import (
	"math"

	"github.com/x448/float16"

	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

// decode64 decodes the pixel at x in row into the 64-bit-per-channel
// canonical intermediate, used when neither endpoint needs float precision
// (spec section 4.4).
func decode64(img *rimage.Image, row []byte, x int) rgba64 {
	f := img.PixelFormat
	switch {
	case f.IsIndexed():
		idx := indexAt(f, row, x)
		return paletteLookup64(img, idx)
	case f == pixelformat.BPP24RGB:
		o := x * 3
		return rgba64{hi(row[o]), hi(row[o+1]), hi(row[o+2]), 0xFFFF}
	case f == pixelformat.BPP24BGR:
		o := x * 3
		return rgba64{hi(row[o+2]), hi(row[o+1]), hi(row[o]), 0xFFFF}
	case f == pixelformat.BPP32RGBA:
		o := x * 4
		return rgba64{hi(row[o]), hi(row[o+1]), hi(row[o+2]), hi(row[o+3])}
	case f == pixelformat.BPP32BGRA:
		o := x * 4
		return rgba64{hi(row[o+2]), hi(row[o+1]), hi(row[o]), hi(row[o+3])}
	case f == pixelformat.BPP32ARGB:
		o := x * 4
		return rgba64{hi(row[o+1]), hi(row[o+2]), hi(row[o+3]), hi(row[o])}
	case f == pixelformat.BPP32ABGR:
		o := x * 4
		return rgba64{hi(row[o+3]), hi(row[o+2]), hi(row[o+1]), hi(row[o])}
	case f == pixelformat.BPP8Gray:
		v := hi(row[x])
		return rgba64{v, v, v, 0xFFFF}
	case f == pixelformat.BPP16Gray:
		v := be16(row, x*2)
		return rgba64{v, v, v, 0xFFFF}
	case f == pixelformat.BPP8GrayAlpha:
		v := hi(row[x*2])
		return rgba64{v, v, v, hi(row[x*2+1])}
	case f == pixelformat.BPP48RGB:
		o := x * 6
		return rgba64{be16(row, o), be16(row, o+2), be16(row, o+4), 0xFFFF}
	case f == pixelformat.BPP64RGBA:
		o := x * 8
		return rgba64{be16(row, o), be16(row, o+2), be16(row, o+4), be16(row, o+6)}
	case f == pixelformat.BPP32CMYK:
		o := x * 4
		return cmykToRGBA64(row[o], row[o+1], row[o+2], row[o+3], 0xFFFF)
	case f.IsCMYKFamily() && f == pixelformat.BPP40CMYKA:
		o := x * 5
		return cmykToRGBA64(row[o], row[o+1], row[o+2], row[o+3], hi(row[o+4]))
	case f == pixelformat.BPP24YCbCr:
		o := x * 3
		r, g, b := ycbcrToRGB(row[o], row[o+1], row[o+2])
		return rgba64{hi(r), hi(g), hi(b), 0xFFFF}
	case f == pixelformat.BPP24LAB:
		o := x * 3
		r, g, b := labBytesToRGB(row[o], row[o+1], row[o+2])
		return rgba64{hi(r), hi(g), hi(b), 0xFFFF}
	case f == pixelformat.BPP24HSV:
		o := x * 3
		r, g, b := hsvBytesToRGB(row[o], row[o+1], row[o+2])
		return rgba64{hi(r), hi(g), hi(b), 0xFFFF}
	case f == pixelformat.BPP24HSL:
		o := x * 3
		r, g, b := hslBytesToRGB(row[o], row[o+1], row[o+2])
		return rgba64{hi(r), hi(g), hi(b), 0xFFFF}
	default:
		// Fall back through the float canonical path for formats whose
		// native precision exceeds 8bpc (half/float), then down-convert.
		c := decodeF(img, row, x)
		return rgba64{f32to16(c.R), f32to16(c.G), f32to16(c.B), f32to16(c.A)}
	}
}

// decodeF decodes into the floating-point canonical intermediate
// (0.0-1.0 per channel), used for HALF/FLOAT endpoints (spec section 4.4).
func decodeF(img *rimage.Image, row []byte, x int) rgbaF {
	f := img.PixelFormat
	switch f {
	case pixelformat.BPP16GrayHalf:
		v := fromHalf(row, x*2)
		return rgbaF{v, v, v, 1}
	case pixelformat.BPP48RGBHalf:
		o := x * 6
		return rgbaF{fromHalf(row, o), fromHalf(row, o+2), fromHalf(row, o+4), 1}
	case pixelformat.BPP64RGBAHalf:
		o := x * 8
		return rgbaF{fromHalf(row, o), fromHalf(row, o+2), fromHalf(row, o+4), fromHalf(row, o+6)}
	case pixelformat.BPP96RGBFloat:
		o := x * 12
		return rgbaF{fromFloat32(row, o), fromFloat32(row, o+4), fromFloat32(row, o+8), 1}
	case pixelformat.BPP128RGBAFloat:
		o := x * 16
		return rgbaF{fromFloat32(row, o), fromFloat32(row, o+4), fromFloat32(row, o+8), fromFloat32(row, o+12)}
	case pixelformat.BPP32GrayFloat:
		o := x * 4
		v := fromFloat32(row, o)
		return rgbaF{v, v, v, 1}
	default:
		c := decode64(img, row, x)
		return rgbaF{f16tof32(c.R), f16tof32(c.G), f16tof32(c.B), f16tof32(c.A)}
	}
}

func encode64(target pixelformat.Format, row []byte, x int, c rgba64) {
	switch target {
	case pixelformat.BPP24RGB:
		o := x * 3
		row[o], row[o+1], row[o+2] = lo(c.R), lo(c.G), lo(c.B)
	case pixelformat.BPP24BGR:
		o := x * 3
		row[o], row[o+1], row[o+2] = lo(c.B), lo(c.G), lo(c.R)
	case pixelformat.BPP32RGBA:
		o := x * 4
		row[o], row[o+1], row[o+2], row[o+3] = lo(c.R), lo(c.G), lo(c.B), lo(c.A)
	case pixelformat.BPP32BGRA:
		o := x * 4
		row[o], row[o+1], row[o+2], row[o+3] = lo(c.B), lo(c.G), lo(c.R), lo(c.A)
	case pixelformat.BPP8Gray:
		row[x] = lo(luma64(c))
	case pixelformat.BPP8GrayAlpha:
		o := x * 2
		row[o], row[o+1] = lo(luma64(c)), lo(c.A)
	case pixelformat.BPP48RGB:
		o := x * 6
		putBE16(row, o, c.R)
		putBE16(row, o+2, c.G)
		putBE16(row, o+4, c.B)
	case pixelformat.BPP64RGBA:
		o := x * 8
		putBE16(row, o, c.R)
		putBE16(row, o+2, c.G)
		putBE16(row, o+4, c.B)
		putBE16(row, o+6, c.A)
	case pixelformat.BPP32CMYK:
		o := x * 4
		cC, m, y, k := rgbToCMYK(lo(c.R), lo(c.G), lo(c.B))
		row[o], row[o+1], row[o+2], row[o+3] = cC, m, y, k
	default:
		encodeF(target, row, x, rgbaF{f16tof32(c.R), f16tof32(c.G), f16tof32(c.B), f16tof32(c.A)})
	}
}

func encodeF(target pixelformat.Format, row []byte, x int, c rgbaF) {
	switch target {
	case pixelformat.BPP16GrayHalf:
		putHalf(row, x*2, lumaF(c))
	case pixelformat.BPP48RGBHalf:
		o := x * 6
		putHalf(row, o, c.R)
		putHalf(row, o+2, c.G)
		putHalf(row, o+4, c.B)
	case pixelformat.BPP64RGBAHalf:
		o := x * 8
		putHalf(row, o, c.R)
		putHalf(row, o+2, c.G)
		putHalf(row, o+4, c.B)
		putHalf(row, o+6, c.A)
	case pixelformat.BPP96RGBFloat:
		o := x * 12
		putFloat32(row, o, c.R)
		putFloat32(row, o+4, c.G)
		putFloat32(row, o+8, c.B)
	case pixelformat.BPP128RGBAFloat:
		o := x * 16
		putFloat32(row, o, c.R)
		putFloat32(row, o+4, c.G)
		putFloat32(row, o+8, c.B)
		putFloat32(row, o+12, c.A)
	case pixelformat.BPP32GrayFloat:
		putFloat32(row, x*4, lumaF(c))
	default:
		encode64(target, row, x, rgba64{f32to16(c.R), f32to16(c.G), f32to16(c.B), f32to16(c.A)})
	}
}

func indexAt(f pixelformat.Format, row []byte, x int) int {
	switch f {
	case pixelformat.BPP1Indexed:
		return int(row[x/8]>>(7-uint(x%8))) & 1
	case pixelformat.BPP2Indexed:
		shift := uint(6 - 2*(x%4))
		return int(row[x/4]>>shift) & 0x3
	case pixelformat.BPP4Indexed:
		if x%2 == 0 {
			return int(row[x/2] >> 4)
		}
		return int(row[x/2] & 0xF)
	case pixelformat.BPP8Indexed:
		return int(row[x])
	case pixelformat.BPP16Indexed:
		return int(be16(row, x*2))
	default:
		return 0
	}
}

func paletteLookup64(img *rimage.Image, idx int) rgba64 {
	if img.Palette == nil {
		return rgba64{}
	}
	p := img.Palette
	switch p.Format {
	case pixelformat.BPP32RGBA:
		o := idx * 4
		if o+4 > len(p.Data) {
			return rgba64{}
		}
		return rgba64{hi(p.Data[o]), hi(p.Data[o+1]), hi(p.Data[o+2]), hi(p.Data[o+3])}
	default: // BPP24_RGB and anything else packed as 3 bytes
		o := idx * 3
		if o+3 > len(p.Data) {
			return rgba64{}
		}
		return rgba64{hi(p.Data[o]), hi(p.Data[o+1]), hi(p.Data[o+2]), 0xFFFF}
	}
}

func hi(b byte) uint16 { return uint16(b) * 257 }
func lo(v uint16) byte { return byte(v / 257) }

func be16(row []byte, off int) uint16 { return uint16(row[off])<<8 | uint16(row[off+1]) }
func putBE16(row []byte, off int, v uint16) {
	row[off] = byte(v >> 8)
	row[off+1] = byte(v)
}

func fromHalf(row []byte, off int) float32 {
	bits := uint16(row[off])<<8 | uint16(row[off+1])
	return float16.Frombits(bits).Float32()
}
func putHalf(row []byte, off int, v float32) {
	bits := float16.Fromfloat32(v).Bits()
	row[off] = byte(bits >> 8)
	row[off+1] = byte(bits)
}

func fromFloat32(row []byte, off int) float32 {
	bits := uint32(row[off]) | uint32(row[off+1])<<8 | uint32(row[off+2])<<16 | uint32(row[off+3])<<24
	return math.Float32frombits(bits)
}
func putFloat32(row []byte, off int, v float32) {
	bits := math.Float32bits(v)
	row[off] = byte(bits)
	row[off+1] = byte(bits >> 8)
	row[off+2] = byte(bits >> 16)
	row[off+3] = byte(bits >> 24)
}

func f16tof32(v uint16) float32 { return float32(v) / 0xFFFF }
func f32to16(v float32) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint16(v * 0xFFFF)
}

func luma64(c rgba64) uint16 {
	return uint16((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
}
func lumaF(c rgbaF) float32 { return 0.299*c.R + 0.587*c.G + 0.114*c.B }

// rgbToCMYK/cmykToRGBA64 implement the standard subtractive conversion
// documented by spec section 4.4 ("documented matrices").
func rgbToCMYK(r, g, b byte) (c, m, y, k byte) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	kf := 1 - math.Max(rf, math.Max(gf, bf))
	if kf >= 1 {
		return 0, 0, 0, 255
	}
	cf := (1 - rf - kf) / (1 - kf)
	mf := (1 - gf - kf) / (1 - kf)
	yf := (1 - bf - kf) / (1 - kf)
	return byte(cf * 255), byte(mf * 255), byte(yf * 255), byte(kf * 255)
}

func cmykToRGBA64(c, m, y, k byte, a uint16) rgba64 {
	cf, mf, yf, kf := float64(c)/255, float64(m)/255, float64(y)/255, float64(k)/255
	r := (1 - cf) * (1 - kf)
	g := (1 - mf) * (1 - kf)
	b := (1 - yf) * (1 - kf)
	return rgba64{uint16(r * 0xFFFF), uint16(g * 0xFFFF), uint16(b * 0xFFFF), a}
}

// ycbcrToRGB is BT.601 full-range, the matrix JPEG/most stills use.
func ycbcrToRGB(y, cb, cr byte) (byte, byte, byte) {
	yy := float64(y)
	cbb := float64(cb) - 128
	crr := float64(cr) - 128
	r := yy + 1.402*crr
	g := yy - 0.344136*cbb - 0.714136*crr
	b := yy + 1.772*cbb
	return clamp8(r), clamp8(g), clamp8(b)
}

func clamp8(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func labBytesToRGB(l, a, b byte) (byte, byte, byte) {
	lf := float64(l) / 255 * 100
	af := float64(a) - 128
	bf := float64(b) - 128
	r, g, bb := rgbFromLab(lf, af, bf)
	return clampUnit(r), clampUnit(g), clampUnit(bb)
}

func clampUnit(v float64) byte { return clamp8(v * 255) }

func hsvBytesToRGB(h, s, v byte) (byte, byte, byte) {
	hh := float64(h) / 255 * 360
	ss := float64(s) / 255
	vv := float64(v) / 255
	c := colorfulHSV(hh, ss, vv)
	return clampUnit(c[0]), clampUnit(c[1]), clampUnit(c[2])
}

func hslBytesToRGB(h, s, l byte) (byte, byte, byte) {
	hh := float64(h) / 255 * 360
	ss := float64(s) / 255
	ll := float64(l) / 255
	c := colorfulHSL(hh, ss, ll)
	return clampUnit(c[0]), clampUnit(c[1]), clampUnit(c[2])
}

// DecodeRGB8 reads pixel (x, y) of img through the canonical-intermediate
// decoder and truncates it to 8 bits per channel, the common entry point
// package quantize uses to sample source pixels regardless of img's native
// pixel format (spec section 4.5).
func DecodeRGB8(img *rimage.Image, x, y int) (byte, byte, byte) {
	row := img.Row(y)
	c := decode64(img, row, x)
	return lo(c.R), lo(c.G), lo(c.B)
}

// DecodeRGBA8 is DecodeRGB8 plus the alpha channel, the entry point codecs
// that need per-pixel transparency (e.g. GIF's single transparent index)
// use to sample source pixels regardless of img's native pixel format.
func DecodeRGBA8(img *rimage.Image, x, y int) (byte, byte, byte, byte) {
	row := img.Row(y)
	c := decode64(img, row, x)
	return lo(c.R), lo(c.G), lo(c.B), lo(c.A)
}
