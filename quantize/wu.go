// Package quantize implements the greedy-bipartition color quantizer of
// spec section 4.5: Xiaolin Wu's variance-minimizing algorithm (Graphics
// Gems II, 1992) plus Floyd-Steinberg dithering with an O(1) lookup table,
// ported directly from original_source/src/sail-manip/quantize.c.
package quantize

import (
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/status"
)

const cubeSize = 33 // 32 buckets + 1, indices offset by 1 (spec section 4.5 step 1)

type moments struct {
	count      int64
	r, g, b    int64
	rr, gg, bb int64 // sum of squares, for variance
}

type box struct {
	r0, r1, g0, g1, b0, b1 int // half-open (r0,r1] etc.
}

func (b box) volume() int64 { return int64(b.r1-b.r0) * int64(b.g1-b.g0) * int64(b.b1-b.b0) }

// histogram holds cumulative moments over the 33^3 lattice, so any
// axis-aligned box's statistics are an O(1) combination of 8 corners
// (spec section 4.5 step 2).
type histogram struct {
	count      [cubeSize][cubeSize][cubeSize]int64
	r, g, b    [cubeSize][cubeSize][cubeSize]int64
	rr, gg, bb [cubeSize][cubeSize][cubeSize]int64
}

// bucketIndex maps an 8-bit channel value to its top-5-bits-offset-by-1
// bucket (spec section 4.5 step 1).
func bucketIndex(v byte) int { return int(v>>3) + 1 }

func buildHistogram(colors []rgbPixel) *histogram {
	h := &histogram{}
	for _, c := range colors {
		ri, gi, bi := bucketIndex(c.r), bucketIndex(c.g), bucketIndex(c.b)
		h.count[ri][gi][bi]++
		h.r[ri][gi][bi] += int64(c.r)
		h.g[ri][gi][bi] += int64(c.g)
		h.b[ri][gi][bi] += int64(c.b)
		h.rr[ri][gi][bi] += int64(c.r) * int64(c.r)
		h.gg[ri][gi][bi] += int64(c.g) * int64(c.g)
		h.bb[ri][gi][bi] += int64(c.b) * int64(c.b)
	}
	// Inclusion-exclusion cumulative sums along each axis in turn.
	for r := 1; r < cubeSize; r++ {
		var areaC, areaR, areaG, areaB, areaRR, areaGG, areaBB [cubeSize][cubeSize]int64
		for g := 1; g < cubeSize; g++ {
			var lineC, lineR, lineG, lineB, lineRR, lineGG, lineBB int64
			for b := 1; b < cubeSize; b++ {
				lineC += h.count[r][g][b]
				lineR += h.r[r][g][b]
				lineG += h.g[r][g][b]
				lineB += h.b[r][g][b]
				lineRR += h.rr[r][g][b]
				lineGG += h.gg[r][g][b]
				lineBB += h.bb[r][g][b]

				areaC[g][b] = areaC[g-1][b] + lineC
				areaR[g][b] = areaR[g-1][b] + lineR
				areaG[g][b] = areaG[g-1][b] + lineG
				areaB[g][b] = areaB[g-1][b] + lineB
				areaRR[g][b] = areaRR[g-1][b] + lineRR
				areaGG[g][b] = areaGG[g-1][b] + lineGG
				areaBB[g][b] = areaBB[g-1][b] + lineBB

				h.count[r][g][b] = h.count[r-1][g][b] + areaC[g][b]
				h.r[r][g][b] = h.r[r-1][g][b] + areaR[g][b]
				h.g[r][g][b] = h.g[r-1][g][b] + areaG[g][b]
				h.b[r][g][b] = h.b[r-1][g][b] + areaB[g][b]
				h.rr[r][g][b] = h.rr[r-1][g][b] + areaRR[g][b]
				h.gg[r][g][b] = h.gg[r-1][g][b] + areaGG[g][b]
				h.bb[r][g][b] = h.bb[r-1][g][b] + areaBB[g][b]
			}
		}
	}
	return h
}

// corner evaluates one of the 8 inclusion-exclusion corner combinations of
// a cumulative-moment table for box b.
func corner(t *[cubeSize][cubeSize][cubeSize]int64, b box) int64 {
	return t[b.r1][b.g1][b.b1] - t[b.r1][b.g1][b.b0] - t[b.r1][b.g0][b.b1] + t[b.r1][b.g0][b.b0] -
		t[b.r0][b.g1][b.b1] + t[b.r0][b.g1][b.b0] + t[b.r0][b.g0][b.b1] - t[b.r0][b.g0][b.b0]
}

func (h *histogram) moments(b box) moments {
	return moments{
		count: corner(&h.count, b),
		r:     corner(&h.r, b),
		g:     corner(&h.g, b),
		b:     corner(&h.b, b),
		rr:    corner(&h.rr, b),
		gg:    corner(&h.gg, b),
		bb:    corner(&h.bb, b),
	}
}

// variance is the within-box second moment about the mean, the quantity
// Wu's algorithm minimizes by splitting (spec section 4.5 step 3).
func variance(m moments) float64 {
	if m.count == 0 {
		return 0
	}
	xx := float64(m.rr) + float64(m.gg) + float64(m.bb)
	mean := float64(m.r)*float64(m.r) + float64(m.g)*float64(m.g) + float64(m.b)*float64(m.b)
	return xx - mean/float64(m.count)
}

// bestSplit finds the axis and position maximizing between-box variance,
// equivalently minimizing the sum of the two child within-box variances.
func (h *histogram) bestSplit(b box) (axis int, pos int, ok bool) {
	bestScore := -1.0
	axis = -1

	tryAxis := func(a int, lo, hi int, cut func(p int) (box, box)) {
		for p := lo + 1; p < hi; p++ {
			b1, b2 := cut(p)
			m1, m2 := h.moments(b1), h.moments(b2)
			if m1.count == 0 || m2.count == 0 {
				continue
			}
			score := -(variance(m1) + variance(m2))
			if axis < 0 || score > bestScore {
				bestScore = score
				axis = a
				pos = p
			}
		}
	}

	tryAxis(0, b.r0, b.r1, func(p int) (box, box) {
		b1, b2 := b, b
		b1.r1, b2.r0 = p, p
		return b1, b2
	})
	tryAxis(1, b.g0, b.g1, func(p int) (box, box) {
		b1, b2 := b, b
		b1.g1, b2.g0 = p, p
		return b1, b2
	})
	tryAxis(2, b.b0, b.b1, func(p int) (box, box) {
		b1, b2 := b, b
		b1.b1, b2.b0 = p, p
		return b1, b2
	})

	return axis, pos, axis >= 0
}

func split(b box, axis, pos int) (box, box) {
	b1, b2 := b, b
	switch axis {
	case 0:
		b1.r1, b2.r0 = pos, pos
	case 1:
		b1.g1, b2.g0 = pos, pos
	case 2:
		b1.b1, b2.b0 = pos, pos
	}
	return b1, b2
}

type rgbPixel struct{ r, g, b byte }

// Result is a quantized palette plus the format it targets.
type Result struct {
	Colors []rgbPixel // centroid per box, index == palette entry
}

// wuQuantize runs steps 1-4 of spec section 4.5, returning at most
// maxColors centroid colors.
func wuQuantize(colors []rgbPixel, maxColors int) []rgbPixel {
	if len(colors) == 0 {
		return nil
	}
	h := buildHistogram(colors)

	boxes := []box{{0, cubeSize - 1, 0, cubeSize - 1, 0, cubeSize - 1}}

	for len(boxes) < maxColors {
		// Split the box with the highest variance.
		worst := -1
		worstVar := -1.0
		for i, b := range boxes {
			m := h.moments(b)
			if m.count <= 1 {
				continue
			}
			v := variance(m)
			if v > worstVar {
				worstVar = v
				worst = i
			}
		}
		if worst < 0 {
			break
		}
		axis, pos, ok := h.bestSplit(boxes[worst])
		if !ok {
			break
		}
		b1, b2 := split(boxes[worst], axis, pos)
		boxes[worst] = b1
		boxes = append(boxes, b2)
	}

	out := make([]rgbPixel, 0, len(boxes))
	for _, b := range boxes {
		m := h.moments(b)
		if m.count == 0 {
			continue
		}
		out = append(out, rgbPixel{
			r: byte(float64(m.r) / float64(m.count)),
			g: byte(float64(m.g) / float64(m.count)),
			b: byte(float64(m.b) / float64(m.count)),
		})
	}
	return out
}

// maxColorsFor returns K for a target indexed format, per spec section 4.5.
func maxColorsFor(target pixelformat.Format) (int, error) {
	switch target {
	case pixelformat.BPP1Indexed:
		return 2, nil
	case pixelformat.BPP2Indexed:
		return 4, nil
	case pixelformat.BPP4Indexed:
		return 16, nil
	case pixelformat.BPP8Indexed:
		return 256, nil
	default:
		return 0, status.New(status.UnsupportedPixelFormat)
	}
}

// Quantize converts src (any RGB-family or grayscale format whose pixels
// can be read as 24-bit RGB) to an indexed image in target format with an
// attached palette, optionally dithered with Floyd-Steinberg (spec section
// 4.5). decodeRGB must return the 8-bit RGB triple for pixel (x, y).
func Quantize(src *rimage.Image, target pixelformat.Format, dither bool, decodeRGB func(x, y int) (byte, byte, byte)) (*rimage.Image, error) {
	k, err := maxColorsFor(target)
	if err != nil {
		return nil, err
	}

	colors := make([]rgbPixel, 0, src.Width*src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			r, g, b := decodeRGB(x, y)
			colors = append(colors, rgbPixel{r, g, b})
		}
	}

	palette := wuQuantize(colors, k)
	if len(palette) == 0 {
		palette = []rgbPixel{{0, 0, 0}}
	}

	out, err := rimage.New(src.Width, src.Height, target)
	if err != nil {
		return nil, err
	}
	out.AllocatePixels()
	out.Palette = &rimage.Palette{
		Format: pixelformat.BPP24RGB,
		Count:  len(palette),
		Data:   packPalette(palette),
	}

	if dither {
		ditherFloydSteinberg(out, src.Width, src.Height, target, palette, decodeRGB)
	} else {
		lut := newNearestLUT(palette)
		for y := 0; y < src.Height; y++ {
			row := out.Row(y)
			for x := 0; x < src.Width; x++ {
				r, g, b := decodeRGB(x, y)
				idx := lut.nearest(r, g, b)
				setIndex(row, x, target, idx)
			}
		}
	}

	return out, nil
}

func packPalette(colors []rgbPixel) []byte {
	data := make([]byte, 0, len(colors)*3)
	for _, c := range colors {
		data = append(data, c.r, c.g, c.b)
	}
	return data
}

func setIndex(row []byte, x int, f pixelformat.Format, idx int) {
	switch f {
	case pixelformat.BPP1Indexed:
		shift := uint(7 - x%8)
		row[x/8] = row[x/8]&^(1<<shift) | byte(idx&1)<<shift
	case pixelformat.BPP2Indexed:
		shift := uint(6 - 2*(x%4))
		row[x/4] = row[x/4]&^(0x3<<shift) | byte(idx&0x3)<<shift
	case pixelformat.BPP4Indexed:
		if x%2 == 0 {
			row[x/2] = row[x/2]&0x0F | byte(idx&0xF)<<4
		} else {
			row[x/2] = row[x/2]&0xF0 | byte(idx&0xF)
		}
	case pixelformat.BPP8Indexed:
		row[x] = byte(idx)
	case pixelformat.BPP16Indexed:
		row[x*2] = byte(idx >> 8)
		row[x*2+1] = byte(idx)
	}
}
