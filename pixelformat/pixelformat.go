// Package pixelformat implements the PixelFormat closed sum type of spec
// section 3, generalizing the teacher's photometric-interpretation enum
// (const.go's pWhiteIsZero/pRGB/pLogL/pLogLuv/...) to a closed enumeration
// of 79 formats plus Unknown (formats outside this list are not
// representable), plus bpp/channel-count tables and classification
// predicates.
package pixelformat

// Format is one member of the closed pixel-format enumeration.
type Format int

const (
	Unknown Format = iota

	// Anonymous bit-depths: raw container, no channel semantics.
	BPP1
	BPP2
	BPP4
	BPP8
	BPP16
	BPP24
	BPP32
	BPP48
	BPP64
	BPP72
	BPP96
	BPP128

	// Indexed.
	BPP1Indexed
	BPP2Indexed
	BPP4Indexed
	BPP8Indexed
	BPP16Indexed

	// Grayscale / grayscale-alpha.
	BPP1Gray
	BPP2Gray
	BPP4Gray
	BPP8Gray
	BPP16Gray
	BPP4GrayAlpha
	BPP8GrayAlpha
	BPP16GrayAlpha
	BPP32GrayAlpha

	// Packed RGB.
	BPP16RGB555
	BPP16BGR555
	BPP16RGB565
	BPP16BGR565
	BPP30RGB
	BPP32RGBA1010102

	// RGB family at multiple depths.
	BPP24RGB
	BPP24BGR
	BPP48RGB
	BPP48BGR
	BPP32RGBA
	BPP32BGRA
	BPP32ARGB
	BPP32ABGR
	BPP32RGBX
	BPP32XRGB
	BPP64RGBA
	BPP64BGRA
	BPP64ARGB
	BPP64ABGR

	// CMYK.
	BPP32CMYK
	BPP64CMYK
	BPP40CMYKA
	BPP72CMYKA

	// YCbCr / YCCK / YUV family.
	BPP24YCbCr
	BPP24YCCK
	BPP24YUV
	BPP32YUVA
	BPP32AYUV
	BPP48YUV
	BPP64YUVA

	// CIE.
	BPP24LAB
	BPP32LABA
	BPP48LAB
	BPP64LABA
	BPP24LUV
	BPP32LUVA
	BPP48LUV
	BPP64LUVA
	BPP24XYZ
	BPP32XYZA
	BPP48XYZ
	BPP64XYZA

	// HSV / HSL.
	BPP24HSV
	BPP24HSL

	// Float16 (HALF).
	BPP16GrayHalf
	BPP32GrayAlphaHalf
	BPP48RGBHalf
	BPP64RGBAHalf

	// Float32.
	BPP32GrayFloat
	BPP64GrayAlphaFloat
	BPP96RGBFloat
	BPP128RGBAFloat
)

type props struct {
	bpp      int
	channels int
	name     string
}

var table = map[Format]props{
	Unknown: {0, 0, "UNKNOWN"},

	BPP1: {1, 1, "BPP1"}, BPP2: {2, 1, "BPP2"}, BPP4: {4, 1, "BPP4"},
	BPP8: {8, 1, "BPP8"}, BPP16: {16, 1, "BPP16"}, BPP24: {24, 1, "BPP24"},
	BPP32: {32, 1, "BPP32"}, BPP48: {48, 1, "BPP48"}, BPP64: {64, 1, "BPP64"},
	BPP72: {72, 1, "BPP72"}, BPP96: {96, 1, "BPP96"}, BPP128: {128, 1, "BPP128"},

	BPP1Indexed:  {1, 1, "BPP1-INDEXED"},
	BPP2Indexed:  {2, 1, "BPP2-INDEXED"},
	BPP4Indexed:  {4, 1, "BPP4-INDEXED"},
	BPP8Indexed:  {8, 1, "BPP8-INDEXED"},
	BPP16Indexed: {16, 1, "BPP16-INDEXED"},

	BPP1Gray:       {1, 1, "BPP1-GRAYSCALE"},
	BPP2Gray:       {2, 1, "BPP2-GRAYSCALE"},
	BPP4Gray:       {4, 1, "BPP4-GRAYSCALE"},
	BPP8Gray:       {8, 1, "BPP8-GRAYSCALE"},
	BPP16Gray:      {16, 1, "BPP16-GRAYSCALE"},
	BPP4GrayAlpha:  {4, 2, "BPP4-GRAYSCALE-ALPHA"},
	BPP8GrayAlpha:  {8, 2, "BPP8-GRAYSCALE-ALPHA"},
	BPP16GrayAlpha: {16, 2, "BPP16-GRAYSCALE-ALPHA"},
	BPP32GrayAlpha: {32, 2, "BPP32-GRAYSCALE-ALPHA"},

	BPP16RGB555:       {16, 3, "BPP16-RGB555"},
	BPP16BGR555:       {16, 3, "BPP16-BGR555"},
	BPP16RGB565:       {16, 3, "BPP16-RGB565"},
	BPP16BGR565:       {16, 3, "BPP16-BGR565"},
	BPP30RGB:          {30, 3, "BPP30-RGB"},
	BPP32RGBA1010102:  {32, 4, "BPP32-RGBA-1010102"},

	BPP24RGB: {24, 3, "BPP24-RGB"}, BPP24BGR: {24, 3, "BPP24-BGR"},
	BPP48RGB: {48, 3, "BPP48-RGB"}, BPP48BGR: {48, 3, "BPP48-BGR"},
	BPP32RGBA: {32, 4, "BPP32-RGBA"}, BPP32BGRA: {32, 4, "BPP32-BGRA"},
	BPP32ARGB: {32, 4, "BPP32-ARGB"}, BPP32ABGR: {32, 4, "BPP32-ABGR"},
	BPP32RGBX: {32, 4, "BPP32-RGBX"}, BPP32XRGB: {32, 4, "BPP32-XRGB"},
	BPP64RGBA: {64, 4, "BPP64-RGBA"}, BPP64BGRA: {64, 4, "BPP64-BGRA"},
	BPP64ARGB: {64, 4, "BPP64-ARGB"}, BPP64ABGR: {64, 4, "BPP64-ABGR"},

	BPP32CMYK:  {32, 4, "BPP32-CMYK"},
	BPP64CMYK:  {64, 4, "BPP64-CMYK"},
	BPP40CMYKA: {40, 5, "BPP40-CMYKA"},
	BPP72CMYKA: {72, 5, "BPP72-CMYKA"},

	BPP24YCbCr: {24, 3, "BPP24-YCBCR"},
	BPP24YCCK:  {24, 4, "BPP24-YCCK"},
	BPP24YUV:   {24, 3, "BPP24-YUV"},
	BPP32YUVA:  {32, 4, "BPP32-YUVA"},
	BPP32AYUV:  {32, 4, "BPP32-AYUV"},
	BPP48YUV:   {48, 3, "BPP48-YUV"},
	BPP64YUVA:  {64, 4, "BPP64-YUVA"},

	BPP24LAB: {24, 3, "BPP24-LAB"}, BPP32LABA: {32, 4, "BPP32-LABA"},
	BPP48LAB: {48, 3, "BPP48-LAB"}, BPP64LABA: {64, 4, "BPP64-LABA"},
	BPP24LUV: {24, 3, "BPP24-LUV"}, BPP32LUVA: {32, 4, "BPP32-LUVA"},
	BPP48LUV: {48, 3, "BPP48-LUV"}, BPP64LUVA: {64, 4, "BPP64-LUVA"},
	BPP24XYZ: {24, 3, "BPP24-XYZ"}, BPP32XYZA: {32, 4, "BPP32-XYZA"},
	BPP48XYZ: {48, 3, "BPP48-XYZ"}, BPP64XYZA: {64, 4, "BPP64-XYZA"},

	BPP24HSV: {24, 3, "BPP24-HSV"},
	BPP24HSL: {24, 3, "BPP24-HSL"},

	BPP16GrayHalf:      {16, 1, "BPP16-GRAYSCALE-HALF"},
	BPP32GrayAlphaHalf: {32, 2, "BPP32-GRAYSCALE-ALPHA-HALF"},
	BPP48RGBHalf:       {48, 3, "BPP48-RGB-HALF"},
	BPP64RGBAHalf:      {64, 4, "BPP64-RGBA-HALF"},

	BPP32GrayFloat:      {32, 1, "BPP32-GRAYSCALE-FLOAT"},
	BPP64GrayAlphaFloat: {64, 2, "BPP64-GRAYSCALE-ALPHA-FLOAT"},
	BPP96RGBFloat:       {96, 3, "BPP96-RGB-FLOAT"},
	BPP128RGBAFloat:     {128, 4, "BPP128-RGBA-FLOAT"},
}

// BitsPerPixel returns the intrinsic bit depth of f.
func (f Format) BitsPerPixel() int { return table[f].bpp }

// Channels returns the channel count of f.
func (f Format) Channels() int { return table[f].channels }

func (f Format) String() string {
	if p, ok := table[f]; ok && p.name != "" {
		return p.name
	}
	return "UNKNOWN"
}

// BytesPerLine returns the minimum scanline stride for an image of the
// given width in this format: ceil(width * bpp / 8), per spec's
// bytes_per_line invariant (section 3).
func (f Format) BytesPerLine(width int) int {
	bits := width * f.BitsPerPixel()
	return (bits + 7) / 8
}

// IsIndexed reports whether f addresses a palette.
func (f Format) IsIndexed() bool {
	switch f {
	case BPP1Indexed, BPP2Indexed, BPP4Indexed, BPP8Indexed, BPP16Indexed:
		return true
	}
	return false
}

// IsGrayscale reports whether f is a grayscale (with or without alpha)
// format, integer or floating point.
func (f Format) IsGrayscale() bool {
	switch f {
	case BPP1Gray, BPP2Gray, BPP4Gray, BPP8Gray, BPP16Gray,
		BPP4GrayAlpha, BPP8GrayAlpha, BPP16GrayAlpha, BPP32GrayAlpha,
		BPP16GrayHalf, BPP32GrayAlphaHalf, BPP32GrayFloat, BPP64GrayAlphaFloat:
		return true
	}
	return false
}

// IsRGBFamily reports whether f is an RGB/BGR/ARGB/ABGR/RGBX/XRGB variant,
// including the packed and half/float forms.
func (f Format) IsRGBFamily() bool {
	switch f {
	case BPP16RGB555, BPP16BGR555, BPP16RGB565, BPP16BGR565, BPP30RGB, BPP32RGBA1010102,
		BPP24RGB, BPP24BGR, BPP48RGB, BPP48BGR,
		BPP32RGBA, BPP32BGRA, BPP32ARGB, BPP32ABGR, BPP32RGBX, BPP32XRGB,
		BPP64RGBA, BPP64BGRA, BPP64ARGB, BPP64ABGR,
		BPP48RGBHalf, BPP64RGBAHalf, BPP96RGBFloat, BPP128RGBAFloat:
		return true
	}
	return false
}

// HasAlpha reports whether f carries an alpha channel.
func (f Format) HasAlpha() bool {
	switch f {
	case BPP4GrayAlpha, BPP8GrayAlpha, BPP16GrayAlpha, BPP32GrayAlpha, BPP32GrayAlphaHalf, BPP64GrayAlphaFloat,
		BPP32RGBA1010102, BPP32RGBA, BPP32BGRA, BPP32ARGB, BPP32ABGR,
		BPP64RGBA, BPP64BGRA, BPP64ARGB, BPP64ABGR, BPP64RGBAHalf, BPP128RGBAFloat,
		BPP40CMYKA, BPP72CMYKA, BPP32YUVA, BPP32AYUV, BPP64YUVA,
		BPP32LABA, BPP64LABA, BPP32LUVA, BPP64LUVA, BPP32XYZA, BPP64XYZA:
		return true
	}
	return false
}

// IsFloatingPoint reports whether f stores samples as IEEE floats (half or
// single precision).
func (f Format) IsFloatingPoint() bool {
	switch f {
	case BPP16GrayHalf, BPP32GrayAlphaHalf, BPP48RGBHalf, BPP64RGBAHalf,
		BPP32GrayFloat, BPP64GrayAlphaFloat, BPP96RGBFloat, BPP128RGBAFloat:
		return true
	}
	return false
}

// Is16BitPerChannel reports whether each channel occupies 16 bits.
func (f Format) Is16BitPerChannel() bool {
	switch f {
	case BPP16Gray, BPP16GrayAlpha, BPP48RGB, BPP48BGR, BPP64RGBA, BPP64BGRA,
		BPP64ARGB, BPP64ABGR, BPP64CMYK, BPP48YUV, BPP64YUVA,
		BPP48LAB, BPP64LABA, BPP48LUV, BPP64LUVA, BPP48XYZ, BPP64XYZA,
		BPP16GrayHalf, BPP48RGBHalf, BPP64RGBAHalf, BPP16Indexed:
		return true
	}
	return false
}

// IsCMYKFamily reports whether f is CMYK or CMYKA.
func (f Format) IsCMYKFamily() bool {
	switch f {
	case BPP32CMYK, BPP64CMYK, BPP40CMYKA, BPP72CMYKA:
		return true
	}
	return false
}
