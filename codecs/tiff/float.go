package tiff

import "math"

// putFloat32 writes v little-endian at row[off:off+4], matching
// rimage.Image.Pixels' layout for pixelformat.BPP96RGBFloat (the same
// convention codecs/hdr and convert/color.go use, no unsafe pointer
// casts needed).
func putFloat32(row []byte, off int, v float32) {
	bits := math.Float32bits(v)
	row[off] = byte(bits)
	row[off+1] = byte(bits >> 8)
	row[off+2] = byte(bits >> 16)
	row[off+3] = byte(bits >> 24)
}

func fromFloat32(row []byte, off int) float32 {
	bits := uint32(row[off]) | uint32(row[off+1])<<8 | uint32(row[off+2])<<16 | uint32(row[off+3])<<24
	return math.Float32frombits(bits)
}
