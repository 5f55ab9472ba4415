package convert

import "github.com/mdouchement/rasterio/pixelformat"

// cost is the ordered tuple spec section 4.4 defines for closest-format
// search: (channel-family mismatch, bit-depth delta, alpha loss, indexedness
// change). Lower is better; compared lexicographically.
type cost struct {
	familyMismatch int
	depthDelta     int
	alphaLoss      int
	indexChange    int
}

func (c cost) less(o cost) bool {
	if c.familyMismatch != o.familyMismatch {
		return c.familyMismatch < o.familyMismatch
	}
	if c.depthDelta != o.depthDelta {
		return c.depthDelta < o.depthDelta
	}
	if c.alphaLoss != o.alphaLoss {
		return c.alphaLoss < o.alphaLoss
	}
	return c.indexChange < o.indexChange
}

func family(f pixelformat.Format) int {
	switch {
	case f.IsIndexed():
		return 0
	case f.IsGrayscale():
		return 1
	case f.IsRGBFamily():
		return 2
	case f.IsCMYKFamily():
		return 3
	default:
		return 4
	}
}

func costOf(from, to pixelformat.Format) cost {
	c := cost{}
	if family(from) != family(to) {
		c.familyMismatch = 1
	}
	d := from.BitsPerPixel() - to.BitsPerPixel()
	if d < 0 {
		d = -d
	}
	c.depthDelta = d
	if from.HasAlpha() && !to.HasAlpha() {
		c.alphaLoss = 1
	}
	if from.IsIndexed() != to.IsIndexed() {
		c.indexChange = 1
	}
	return c
}

// ClosestPixelFormat picks the candidate with the minimum cost tuple,
// implementing spec section 4.4's closest-pixel-format search the driver
// uses to pick an encoder-compatible format.
func ClosestPixelFormat(from pixelformat.Format, candidates []pixelformat.Format) pixelformat.Format {
	if len(candidates) == 0 {
		return pixelformat.Unknown
	}
	best := candidates[0]
	bestCost := costOf(from, best)
	for _, c := range candidates[1:] {
		cc := costOf(from, c)
		if cc.less(bestCost) {
			best = c
			bestCost = cc
		}
	}
	return best
}
