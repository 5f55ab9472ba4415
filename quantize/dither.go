package quantize

import "github.com/mdouchement/rasterio/pixelformat"

// lutSize is the 32^3 coarse lattice spec section 4.5 step 5 uses for O(1)
// nearest-palette-entry lookup: each channel is truncated to its top 5 bits.
const lutSize = 32

type nearestLUT struct {
	palette []rgbPixel
	cache   [lutSize][lutSize][lutSize]int16 // -1 == not yet computed
}

func newNearestLUT(palette []rgbPixel) *nearestLUT {
	lut := &nearestLUT{palette: palette}
	for i := range lut.cache {
		for j := range lut.cache[i] {
			for k := range lut.cache[i][j] {
				lut.cache[i][j][k] = -1
			}
		}
	}
	return lut
}

func (l *nearestLUT) nearest(r, g, b byte) int {
	ri, gi, bi := int(r>>3), int(g>>3), int(b>>3)
	if v := l.cache[ri][gi][bi]; v >= 0 {
		return int(v)
	}
	best := 0
	bestDist := int64(-1)
	for i, c := range l.palette {
		dr := int64(r) - int64(c.r)
		dg := int64(g) - int64(c.g)
		db := int64(b) - int64(c.b)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	l.cache[ri][gi][bi] = int16(best)
	return best
}

type rowWriter interface {
	Row(y int) []byte
}

// ditherFloydSteinberg quantizes src to the palette with Floyd-Steinberg
// error diffusion (spec section 4.5 step 5): the classic 7/16, 3/16, 5/16,
// 1/16 kernel, propagated with a pair of per-channel error rows so each
// scanline only needs the row below it in memory.
func ditherFloydSteinberg(out rowWriter, width, height int, target pixelformat.Format, palette []rgbPixel, decodeRGB func(x, y int) (byte, byte, byte)) {
	lut := newNearestLUT(palette)

	curErr := make([][3]float64, width)
	nextErr := make([][3]float64, width)

	for y := 0; y < height; y++ {
		row := out.Row(y)
		for i := range nextErr {
			nextErr[i] = [3]float64{}
		}
		for x := 0; x < width; x++ {
			r, g, b := decodeRGB(x, y)
			fr := clamp255(float64(r) + curErr[x][0])
			fg := clamp255(float64(g) + curErr[x][1])
			fb := clamp255(float64(b) + curErr[x][2])

			idx := lut.nearest(byte(fr), byte(fg), byte(fb))
			setIndex(row, x, target, idx)

			pc := palette[idx]
			er := fr - float64(pc.r)
			eg := fg - float64(pc.g)
			eb := fb - float64(pc.b)

			if x+1 < width {
				curErr[x+1][0] += er * 7.0 / 16
				curErr[x+1][1] += eg * 7.0 / 16
				curErr[x+1][2] += eb * 7.0 / 16
			}
			if x > 0 {
				nextErr[x-1][0] += er * 3.0 / 16
				nextErr[x-1][1] += eg * 3.0 / 16
				nextErr[x-1][2] += eb * 3.0 / 16
			}
			nextErr[x][0] += er * 5.0 / 16
			nextErr[x][1] += eg * 5.0 / 16
			nextErr[x][2] += eb * 5.0 / 16
			if x+1 < width {
				nextErr[x+1][0] += er * 1.0 / 16
				nextErr[x+1][1] += eg * 1.0 / 16
				nextErr[x+1][2] += eb * 1.0 / 16
			}
		}
		curErr, nextErr = nextErr, curErr
	}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
