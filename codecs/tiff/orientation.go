package tiff

// orientationDims returns the oriented (width, height) for the given
// EXIF/TIFF Orientation tag value (1-8) and natural (unoriented) source
// dimensions. Orientations 5-8 swap width/height.
func orientationDims(o uint, sw, sh int) (dw, dh int) {
	switch o {
	case 5, 6, 7, 8:
		return sh, sw
	default:
		return sw, sh
	}
}

// orientationSource maps a destination pixel (x,y), in the oriented
// image's own (dw,dh) space, back to its natural-order source coordinate
// (sx,sy) in (sw,sh) space. Derived from the forward EXIF orientation
// transforms (TIFF 6.0 spec / Adobe's Orientation tag semantics); every
// codec that normalizes to top-left orientation on load needs exactly
// this inverse.
func orientationSource(o uint, x, y, sw, sh int) (sx, sy int) {
	switch o {
	case 2: // mirror horizontal
		return sw - 1 - x, y
	case 3: // rotate 180
		return sw - 1 - x, sh - 1 - y
	case 4: // mirror vertical
		return x, sh - 1 - y
	case 5: // transpose
		return y, x
	case 6: // rotate 90 CW
		return y, sh - 1 - x
	case 7: // transverse
		return sw - 1 - y, sh - 1 - x
	case 8: // rotate 270 CW (90 CCW)
		return sw - 1 - y, x
	default: // 1, or unset/unrecognized: normal
		return x, y
	}
}
