package convert

import "github.com/lucasb-eyer/go-colorful"

// colorfulHSV/colorfulHSL bridge the HSV/HSL pixel formats to
// go-colorful's colorimetry, per spec section 4.4's "documented matrices"
// requirement for color-space conversions.
func colorfulHSV(h, s, v float64) [3]float64 {
	c := colorful.Hsv(h, s, v)
	return [3]float64{c.R, c.G, c.B}
}

func colorfulHSL(h, s, l float64) [3]float64 {
	c := colorful.Hsl(h, s, l)
	return [3]float64{c.R, c.G, c.B}
}
