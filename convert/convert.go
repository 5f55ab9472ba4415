// Package convert implements the pixel-format conversion engine of spec
// section 4.4: a fast-path dispatch table for common pairs, a general
// canonical-RGBA path for everything else, mirror/rotate, and the
// closest-pixel-format search the driver uses to pick an encodable format.
// Decoding from CIE Lab and HSV/HSL reuses
// github.com/lucasb-eyer/go-colorful rather than hand-rolled matrices
// (spec section 4.4, "documented matrices"); Luv and XYZ have no
// conversion branch, and nothing encodes into Lab, HSV or HSL. The
// fast-path pair selection and packing are grounded on
// original_source/src/sail-manip/fast_conversions.c.
package convert

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

// Options configures conversion behavior (spec section 4.4).
type Options struct {
	BlendAlpha      bool
	PreserveICCP    bool
	Background      [3]uint8 // used when BlendAlpha && target has no alpha
	Parallel        bool
}

// DefaultOptions returns BlendAlpha=false, PreserveICCP=true, white bg.
func DefaultOptions() Options {
	return Options{PreserveICCP: true, Background: [3]uint8{0xFF, 0xFF, 0xFF}}
}

// rgba64 is the 64-bit canonical intermediate (16 bits/channel), used when
// neither endpoint is floating point and neither is >8bpc (spec 4.4).
type rgba64 struct{ R, G, B, A uint16 }

// rgbaF is the floating-point canonical intermediate, used when either
// endpoint is floating point or >8-bit.
type rgbaF struct{ R, G, B, A float32 }

// Convert converts src to the target pixel format, returning a new Image.
// src is left untouched.
func Convert(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
	if src.PixelFormat == target {
		return identity(src), nil
	}

	if fn, ok := fastPaths[pairKey{src.PixelFormat, target}]; ok {
		return fn(src, target, opts)
	}

	return generalConvert(src, target, opts)
}

func identity(src *rimage.Image) *rimage.Image {
	cp := *src
	cp.Pixels = append([]byte(nil), src.Pixels...)
	cp.PixelOwnership = rimage.Owned
	cp.MetaDataHead = cloneMetaData(src.MetaDataHead)
	return &cp
}

type pairKey struct {
	from, to pixelformat.Format
}

type fastPathFn func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error)

// fastPaths recognizes ~35 common pairs per spec section 4.4: straight
// channel reorderings (RGB<->BGR family), alpha add/drop, and the packed
// 16-bit variants. Each entry is a tight per-scanline loop with compile-time
// chosen byte offsets, matching fast_conversions.c's dispatch-by-pair style.
var fastPaths = map[pairKey]fastPathFn{}

func init() {
	reg := func(from, to pixelformat.Format, fn fastPathFn) { fastPaths[pairKey{from, to}] = fn }

	reg(pixelformat.BPP24RGB, pixelformat.BPP24BGR, swap3(0, 2))
	reg(pixelformat.BPP24BGR, pixelformat.BPP24RGB, swap3(0, 2))
	reg(pixelformat.BPP48RGB, pixelformat.BPP48BGR, swap3x2(0, 2))
	reg(pixelformat.BPP48BGR, pixelformat.BPP48RGB, swap3x2(0, 2))

	reg(pixelformat.BPP32RGBA, pixelformat.BPP32BGRA, permute4(2, 1, 0, 3))
	reg(pixelformat.BPP32BGRA, pixelformat.BPP32RGBA, permute4(2, 1, 0, 3))
	reg(pixelformat.BPP32RGBA, pixelformat.BPP32ARGB, permute4(3, 0, 1, 2))
	reg(pixelformat.BPP32ARGB, pixelformat.BPP32RGBA, permute4(1, 2, 3, 0))
	reg(pixelformat.BPP32RGBA, pixelformat.BPP32ABGR, permute4(3, 2, 1, 0))
	reg(pixelformat.BPP32ABGR, pixelformat.BPP32RGBA, permute4(3, 2, 1, 0))
	reg(pixelformat.BPP32BGRA, pixelformat.BPP32ARGB, permute4(3, 2, 1, 0))
	reg(pixelformat.BPP32ARGB, pixelformat.BPP32BGRA, permute4(3, 2, 1, 0))
	reg(pixelformat.BPP32BGRA, pixelformat.BPP32ABGR, permute4(3, 0, 1, 2))
	reg(pixelformat.BPP32ABGR, pixelformat.BPP32BGRA, permute4(1, 2, 3, 0))
	reg(pixelformat.BPP32ARGB, pixelformat.BPP32ABGR, permute4(0, 3, 2, 1))
	reg(pixelformat.BPP32ABGR, pixelformat.BPP32ARGB, permute4(0, 3, 2, 1))

	reg(pixelformat.BPP64RGBA, pixelformat.BPP64BGRA, permute4x2(2, 1, 0, 3))
	reg(pixelformat.BPP64BGRA, pixelformat.BPP64RGBA, permute4x2(2, 1, 0, 3))
	reg(pixelformat.BPP64RGBA, pixelformat.BPP64ARGB, permute4x2(3, 0, 1, 2))
	reg(pixelformat.BPP64ARGB, pixelformat.BPP64RGBA, permute4x2(1, 2, 3, 0))
	reg(pixelformat.BPP64RGBA, pixelformat.BPP64ABGR, permute4x2(3, 2, 1, 0))
	reg(pixelformat.BPP64ABGR, pixelformat.BPP64RGBA, permute4x2(3, 2, 1, 0))

	reg(pixelformat.BPP32RGBA, pixelformat.BPP24RGB, dropAlpha(0, 1, 2))
	reg(pixelformat.BPP32BGRA, pixelformat.BPP24BGR, dropAlpha(0, 1, 2))
	reg(pixelformat.BPP32ARGB, pixelformat.BPP24RGB, dropAlpha(1, 2, 3))
	reg(pixelformat.BPP32ABGR, pixelformat.BPP24BGR, dropAlpha(1, 2, 3))

	reg(pixelformat.BPP24RGB, pixelformat.BPP32RGBA, addOpaqueAlpha(0, 1, 2, 3))
	reg(pixelformat.BPP24BGR, pixelformat.BPP32BGRA, addOpaqueAlpha(0, 1, 2, 3))
	reg(pixelformat.BPP24RGB, pixelformat.BPP32ARGB, addOpaqueAlpha(1, 2, 3, 0))
	reg(pixelformat.BPP24BGR, pixelformat.BPP32ABGR, addOpaqueAlpha(1, 2, 3, 0))

	reg(pixelformat.BPP64RGBA, pixelformat.BPP48RGB, dropAlpha2(0, 1, 2))
	reg(pixelformat.BPP48RGB, pixelformat.BPP64RGBA, addOpaqueAlpha2(0, 1, 2, 3))

	reg(pixelformat.BPP16RGB555, pixelformat.BPP16BGR555, swap555565(true))
	reg(pixelformat.BPP16BGR555, pixelformat.BPP16RGB555, swap555565(true))
	reg(pixelformat.BPP16RGB565, pixelformat.BPP16BGR565, swap555565(false))
	reg(pixelformat.BPP16BGR565, pixelformat.BPP16RGB565, swap555565(false))
}

func allocTarget(src *rimage.Image, target pixelformat.Format, opts Options) *rimage.Image {
	out, _ := rimage.New(src.Width, src.Height, target)
	out.AllocatePixels()
	out.Gamma = src.Gamma
	out.DelayMilliseconds = src.DelayMilliseconds
	out.Orientation = src.Orientation
	out.Resolution = src.Resolution
	if opts.PreserveICCP {
		out.ICCProfile = src.ICCProfile
	}
	out.Source = src.Source
	out.MetaDataHead = cloneMetaData(src.MetaDataHead)
	return out
}

// cloneMetaData deep-copies the metadata list so the returned Image owns
// its own nodes and Variants (spec section 3's ownership rule), rather than
// aliasing src's list the way a shallow field copy would.
func cloneMetaData(head *rimage.MetaData) *rimage.MetaData {
	var out, tail *rimage.MetaData
	for n := head; n != nil; n = n.Next {
		cp := &rimage.MetaData{Key: n.Key, FreeKey: n.FreeKey, Value: n.Value.Copy()}
		if out == nil {
			out = cp
		} else {
			tail.Next = cp
		}
		tail = cp
	}
	return out
}

func forEachRow(src, dst *rimage.Image, fn func(sRow, dRow []byte)) {
	for y := 0; y < src.Height; y++ {
		fn(src.Row(y), dst.Row(y))
	}
}

// swap3 swaps byte i and j in every 3-byte pixel (RGB<->BGR).
func swap3(i, j int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for x := 0; x+3 <= len(s); x += 3 {
				d[x+i], d[x+j] = s[x+j], s[x+i]
				mid := 3 - i - j
				d[x+mid] = s[x+mid]
			}
		})
		return dst, nil
	}
}

func swap3x2(i, j int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for x := 0; x+6 <= len(s); x += 6 {
				copy(d[x+2*i:x+2*i+2], s[x+2*j:x+2*j+2])
				copy(d[x+2*j:x+2*j+2], s[x+2*i:x+2*i+2])
				mid := 3 - i - j
				copy(d[x+2*mid:x+2*mid+2], s[x+2*mid:x+2*mid+2])
			}
		})
		return dst, nil
	}
}

func permute4(i0, i1, i2, i3 int) fastPathFn {
	idx := [4]int{i0, i1, i2, i3}
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for x := 0; x+4 <= len(s); x += 4 {
				for k := 0; k < 4; k++ {
					d[x+k] = s[x+idx[k]]
				}
			}
		})
		return dst, nil
	}
}

func permute4x2(i0, i1, i2, i3 int) fastPathFn {
	idx := [4]int{i0, i1, i2, i3}
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for x := 0; x+8 <= len(s); x += 8 {
				for k := 0; k < 4; k++ {
					copy(d[x+2*k:x+2*k+2], s[x+2*idx[k]:x+2*idx[k]+2])
				}
			}
		})
		return dst, nil
	}
}

func dropAlpha(ri, gi, bi int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for sx, dx := 0, 0; sx+4 <= len(s); sx, dx = sx+4, dx+3 {
				d[dx], d[dx+1], d[dx+2] = s[sx+ri], s[sx+gi], s[sx+bi]
			}
		})
		return dst, nil
	}
}

func addOpaqueAlpha(ri, gi, bi, ai int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for sx, dx := 0, 0; sx+3 <= len(s); sx, dx = sx+3, dx+4 {
				d[dx+ri], d[dx+gi], d[dx+bi] = s[sx], s[sx+1], s[sx+2]
				d[dx+ai] = 0xFF
			}
		})
		return dst, nil
	}
}

func dropAlpha2(ri, gi, bi int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for sx, dx := 0, 0; sx+8 <= len(s); sx, dx = sx+8, dx+6 {
				copy(d[dx:dx+2], s[sx+2*ri:sx+2*ri+2])
				copy(d[dx+2:dx+4], s[sx+2*gi:sx+2*gi+2])
				copy(d[dx+4:dx+6], s[sx+2*bi:sx+2*bi+2])
			}
		})
		return dst, nil
	}
}

func addOpaqueAlpha2(ri, gi, bi, ai int) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for sx, dx := 0, 0; sx+6 <= len(s); sx, dx = sx+6, dx+8 {
				copy(d[dx+2*ri:dx+2*ri+2], s[sx:sx+2])
				copy(d[dx+2*gi:dx+2*gi+2], s[sx+2:sx+4])
				copy(d[dx+2*bi:dx+2*bi+2], s[sx+4:sx+6])
				d[dx+2*ai], d[dx+2*ai+1] = 0xFF, 0xFF
			}
		})
		return dst, nil
	}
}

// swap555565 swaps the R/B fields of a packed 16-bit pixel in place.
// RGB555<->BGR555 (5-5-5) or RGB565<->BGR565 (5-6-5).
func swap555565(five5 bool) fastPathFn {
	return func(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
		dst := allocTarget(src, target, opts)
		forEachRow(src, dst, func(s, d []byte) {
			for x := 0; x+2 <= len(s); x += 2 {
				v := uint16(s[x]) | uint16(s[x+1])<<8
				var r, g, b uint16
				if five5 {
					r = (v >> 10) & 0x1F
					g = (v >> 5) & 0x1F
					b = v & 0x1F
					v = b<<10 | g<<5 | r
				} else {
					r = (v >> 11) & 0x1F
					g = (v >> 5) & 0x3F
					b = v & 0x1F
					v = b<<11 | g<<5 | r
				}
				d[x] = byte(v)
				d[x+1] = byte(v >> 8)
			}
		})
		return dst, nil
	}
}

// generalConvert is the fallback path (spec section 4.4): decode every
// source pixel to a canonical intermediate, then encode to the target.
// Indexed targets invoke the quantizer via the Quantizer hook so this
// package stays independent of package quantize (avoiding an import
// cycle, since quantize depends on convert's color math).
var Quantizer func(src *rimage.Image, target pixelformat.Format) (*rimage.Image, error)

func generalConvert(src *rimage.Image, target pixelformat.Format, opts Options) (*rimage.Image, error) {
	if target.IsIndexed() {
		if Quantizer == nil {
			return nil, status.New(status.NotImplemented)
		}
		return Quantizer(src, target)
	}

	useFloat := src.PixelFormat.IsFloatingPoint() || target.IsFloatingPoint() ||
		src.PixelFormat.Is16BitPerChannel() || target.Is16BitPerChannel()

	dst := allocTarget(src, target, opts)

	for y := 0; y < src.Height; y++ {
		sRow := src.Row(y)
		dRow := dst.Row(y)
		for x := 0; x < src.Width; x++ {
			if useFloat {
				c := decodeF(src, sRow, x)
				if opts.BlendAlpha && !target.HasAlpha() && c.A < 1 {
					c = blendF(c, opts.Background)
				}
				encodeF(target, dRow, x, c)
			} else {
				c := decode64(src, sRow, x)
				if opts.BlendAlpha && !target.HasAlpha() && c.A < 0xFFFF {
					c = blend64(c, opts.Background)
				}
				encode64(target, dRow, x, c)
			}
		}
	}
	return dst, nil
}

func blendF(c rgbaF, bg [3]uint8) rgbaF {
	a := c.A
	return rgbaF{
		R: c.R*a + float32(bg[0])/255*(1-a),
		G: c.G*a + float32(bg[1])/255*(1-a),
		B: c.B*a + float32(bg[2])/255*(1-a),
		A: 1,
	}
}

func blend64(c rgba64, bg [3]uint8) rgba64 {
	a := uint32(c.A)
	inv := 0xFFFF - a
	return rgba64{
		R: uint16((uint32(c.R)*a + uint32(bg[0])*257*inv/0xFFFF) / 0xFFFF),
		G: uint16((uint32(c.G)*a + uint32(bg[1])*257*inv/0xFFFF) / 0xFFFF),
		B: uint16((uint32(c.B)*a + uint32(bg[2])*257*inv/0xFFFF) / 0xFFFF),
		A: 0xFFFF,
	}
}

// labFromRGB/rgbFromLab bridge go-colorful's CIE Lab <-> RGB; rgbFromLab
// backs decode64's LAB branch (color.go) and labFromRGB has no caller.
func labFromRGB(r, g, b float64) (float64, float64, float64) {
	return colorful.Color{R: r, G: g, B: b}.Lab()
}

func rgbFromLab(l, a, bb float64) (float64, float64, float64) {
	c := colorful.Lab(l, a, bb)
	return c.R, c.G, c.B
}
