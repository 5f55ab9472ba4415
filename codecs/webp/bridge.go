package webp

import (
	"image"
	"image/color"

	"github.com/mdouchement/rasterio/rimage"
)

// rgbaBridge adapts a BPP32_RGBA rimage.Image to image.Image, the shape
// github.com/HugoSmits86/nativewebp's Encode (mirroring image/png.Encode)
// expects.
type rgbaBridge struct {
	img *rimage.Image
}

func (b *rgbaBridge) ColorModel() color.Model { return color.RGBAModel }

func (b *rgbaBridge) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.img.Width, b.img.Height)
}

func (b *rgbaBridge) At(x, y int) color.Color {
	row := b.img.Row(y)
	o := x * 4
	return color.RGBA{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]}
}

// canvas is a plain RGBA8 (non-premultiplied) pixel buffer used while
// compositing animation frames, independent of rimage.Image so disposal
// and blending can run before a skeleton image exists.
type canvas struct {
	width, height int
	pix           []byte // 4 bytes/pixel, row-major, non-premultiplied RGBA
}

func newCanvas(width, height int) *canvas {
	return &canvas{width: width, height: height, pix: make([]byte, width*height*4)}
}

func (c *canvas) at(x, y int) []byte {
	o := (y*c.width + x) * 4
	return c.pix[o : o+4]
}

func (c *canvas) fillRect(x, y, w, h int, col [4]byte) {
	for yy := y; yy < y+h && yy < c.height; yy++ {
		for xx := x; xx < x+w && xx < c.width; xx++ {
			copy(c.at(xx, yy), col[:])
		}
	}
}

// drawImage copies or blends src (an already-decoded frame bitmap, also
// non-premultiplied RGBA8) onto the canvas at (x, y).
func (c *canvas) drawImage(x, y int, src image.Image, blend bool) {
	b := src.Bounds()
	for sy := b.Min.Y; sy < b.Max.Y; sy++ {
		dy := y + (sy - b.Min.Y)
		if dy < 0 || dy >= c.height {
			continue
		}
		for sx := b.Min.X; sx < b.Max.X; sx++ {
			dx := x + (sx - b.Min.X)
			if dx < 0 || dx >= c.width {
				continue
			}

			sr, sg, sb, sa := src.At(sx, sy).RGBA()
			srcPx := [4]byte{byte(sr >> 8), byte(sg >> 8), byte(sb >> 8), byte(sa >> 8)}

			dst := c.at(dx, dy)
			if !blend {
				copy(dst, srcPx[:])
				continue
			}

			dst[0], dst[1], dst[2], dst[3] = blendOver(srcPx, [4]byte{dst[0], dst[1], dst[2], dst[3]})
		}
	}
}

// blendOver implements the spec's non-premultiplied source-over formula:
// out.a = src.a + (1-src.a)*dst.a; out.rgb = (src.a*src.rgb + (1-src.a)*dst.a*dst.rgb) / out.a,
// so the result stays non-premultiplied.
func blendOver(src, dst [4]byte) (r, g, b, a byte) {
	sa := float64(src[3]) / 255
	da := float64(dst[3]) / 255
	oa := sa + (1-sa)*da
	if oa == 0 {
		return 0, 0, 0, 0
	}

	mix := func(sc, dc byte) byte {
		v := (sa*float64(sc) + (1-sa)*da*float64(dc)) / oa
		if v > 255 {
			v = 255
		}
		return byte(v + 0.5)
	}

	return mix(src[0], dst[0]), mix(src[1], dst[1]), mix(src[2], dst[2]), byte(oa*255 + 0.5)
}
