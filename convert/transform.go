package convert

import "github.com/mdouchement/rasterio/rimage"

// MirrorHorizontal reverses each scanline in place (spec section 4.4).
func MirrorHorizontal(img *rimage.Image) {
	bpp := img.PixelFormat.BitsPerPixel()
	if bpp%8 != 0 {
		mirrorHorizontalPacked(img)
		return
	}
	bytesPerPixel := bpp / 8
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		n := img.Width
		for i := 0; i < n/2; i++ {
			l := i * bytesPerPixel
			r := (n - 1 - i) * bytesPerPixel
			for k := 0; k < bytesPerPixel; k++ {
				row[l+k], row[r+k] = row[r+k], row[l+k]
			}
		}
	}
}

// mirrorHorizontalPacked handles sub-byte formats (1/2/4 bpp indexed or
// grayscale) by reversing through the bit-level accessor rather than
// swapping whole bytes.
func mirrorHorizontalPacked(img *rimage.Image) {
	bpp := img.PixelFormat.BitsPerPixel()
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		vals := make([]byte, img.Width)
		for x := 0; x < img.Width; x++ {
			vals[x] = getBits(row, x, bpp)
		}
		for x := 0; x < img.Width; x++ {
			setBits(row, x, bpp, vals[img.Width-1-x])
		}
	}
}

func getBits(row []byte, x, bpp int) byte {
	switch bpp {
	case 1:
		return (row[x/8] >> (7 - uint(x%8))) & 1
	case 2:
		shift := uint(6 - 2*(x%4))
		return (row[x/4] >> shift) & 0x3
	case 4:
		if x%2 == 0 {
			return row[x/2] >> 4
		}
		return row[x/2] & 0xF
	default:
		return 0
	}
}

func setBits(row []byte, x, bpp int, v byte) {
	switch bpp {
	case 1:
		shift := uint(7 - x%8)
		row[x/8] = row[x/8]&^(1<<shift) | (v&1)<<shift
	case 2:
		shift := uint(6 - 2*(x%4))
		row[x/4] = row[x/4]&^(0x3<<shift) | (v&0x3)<<shift
	case 4:
		if x%2 == 0 {
			row[x/2] = row[x/2]&0x0F | v<<4
		} else {
			row[x/2] = row[x/2]&0xF0 | v&0xF
		}
	}
}

// MirrorVertical reverses the scanline order in place.
func MirrorVertical(img *rimage.Image) {
	tmp := make([]byte, img.BytesPerLine)
	for y := 0; y < img.Height/2; y++ {
		a := img.Row(y)
		b := img.Row(img.Height - 1 - y)
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// Rotate90 and Rotate270 allocate a new buffer with swapped dimensions;
// Rotate180 can be done in place (spec section 4.4).
func Rotate90(img *rimage.Image) (*rimage.Image, error) {
	return rotate(img, true)
}

func Rotate270(img *rimage.Image) (*rimage.Image, error) {
	return rotate(img, false)
}

func rotate(img *rimage.Image, clockwise bool) (*rimage.Image, error) {
	bpp := img.PixelFormat.BitsPerPixel()
	if bpp%8 != 0 {
		return rotatePacked(img, clockwise)
	}
	bytesPerPixel := bpp / 8
	out, err := img.ResizedSkeleton(img.Height, img.Width)
	if err != nil {
		return nil, err
	}
	out.AllocatePixels()

	for y := 0; y < img.Height; y++ {
		sRow := img.Row(y)
		for x := 0; x < img.Width; x++ {
			var dx, dy int
			if clockwise {
				dx, dy = img.Height-1-y, x
			} else {
				dx, dy = y, img.Width-1-x
			}
			dRow := out.Row(dy)
			copy(dRow[dx*bytesPerPixel:dx*bytesPerPixel+bytesPerPixel], sRow[x*bytesPerPixel:x*bytesPerPixel+bytesPerPixel])
		}
	}
	return out, nil
}

func rotatePacked(img *rimage.Image, clockwise bool) (*rimage.Image, error) {
	bpp := img.PixelFormat.BitsPerPixel()
	out, err := img.ResizedSkeleton(img.Height, img.Width)
	if err != nil {
		return nil, err
	}
	out.AllocatePixels()
	for y := 0; y < img.Height; y++ {
		sRow := img.Row(y)
		for x := 0; x < img.Width; x++ {
			v := getBits(sRow, x, bpp)
			var dx, dy int
			if clockwise {
				dx, dy = img.Height-1-y, x
			} else {
				dx, dy = y, img.Width-1-x
			}
			setBits(out.Row(dy), dx, bpp, v)
		}
	}
	return out, nil
}

// Rotate180 reverses both axes in place.
func Rotate180(img *rimage.Image) {
	MirrorHorizontal(img)
	MirrorVertical(img)
}
