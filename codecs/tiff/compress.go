package tiff

import (
	"bufio"
	"io"
)

// byteReader is the subset of bufio.Reader unpackBits/unRLE use. Generalizes
// the teacher's compress.go, kept near-verbatim: both algorithms are pure
// bit/byte shuffling with no codec-specific semantics to adapt.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// unpackBits decompresses a PackBits (TIFF 6.0 spec section 9) byte stream.
func unpackBits(r io.Reader) ([]byte, error) {
	buf := bufio.NewReader(r)
	var dst []byte
	for {
		b, err := buf.ReadByte()
		if err == io.EOF {
			return dst, nil
		}
		if err != nil {
			return nil, err
		}
		code := int(int8(b))
		switch {
		case code >= 0:
			n := code + 1
			lit := make([]byte, n)
			if _, err := io.ReadFull(buf, lit); err != nil {
				return nil, err
			}
			dst = append(dst, lit...)
		case code != -128:
			n := 1 - code
			rb, err := buf.ReadByte()
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				dst = append(dst, rb)
			}
		}
		// code == -128: no-op per spec.
	}
}

// unRLE decompresses an SGI LogL/LogLuv RLE block (TIFF Technical Note 1,
// "RLE Compression 34676"): one scanline's channels are individually
// RLE-encoded planar, and interleaved back here. blockWidth/blockHeight
// are the block's pixel dimensions; mode picks the per-pixel channel
// layout (mLogL: 1 channel of 2 bytes, mLogLuv: 3 channels, the first
// 2 bytes and the other two 1 byte each).
func unRLE(r io.Reader, mode imageMode, blockWidth, blockHeight int) ([]byte, error) {
	buf := bufio.NewReader(r)

	var channels int
	var channelWidth []int // bytes per sample, per channel
	switch mode {
	case mLogL:
		channels = 1
		channelWidth = []int{2}
	case mLogLuv:
		channels = 3
		channelWidth = []int{2, 1, 1}
	default:
		return nil, UnsupportedError("RLE mode")
	}

	bpp := 0
	for _, w := range channelWidth {
		bpp += w
	}
	dst := make([]byte, blockWidth*blockHeight*bpp)

	planar := make([][]byte, channels)
	for c := range planar {
		planar[c] = make([]byte, blockWidth*channelWidth[c])
	}

	for y := 0; y < blockHeight; y++ {
		for c := 0; c < channels; c++ {
			if err := unRLERow(buf, planar[c], channelWidth[c]); err != nil {
				return nil, err
			}
		}

		row := dst[y*blockWidth*bpp : (y+1)*blockWidth*bpp]
		for x := 0; x < blockWidth; x++ {
			off := x * bpp
			for c := 0; c < channels; c++ {
				copy(row[off:off+channelWidth[c]], planar[c][x*channelWidth[c]:(x+1)*channelWidth[c]])
				off += channelWidth[c]
			}
		}
	}

	return dst, nil
}

// unRLERow decodes one PackBits-like run-length encoded row into dst,
// sampleWidth bytes per sample (1 for 8-bit planes, 2 for the LogL
// 16-bit luminance plane).
func unRLERow(buf byteReader, dst []byte, sampleWidth int) error {
	samples := len(dst) / sampleWidth
	got := 0
	for got < samples {
		b, err := buf.ReadByte()
		if err != nil {
			return err
		}
		code := int(int8(b))
		switch {
		case code >= 0:
			n := code + 1
			lit := make([]byte, n*sampleWidth)
			if _, err := io.ReadFull(buf, lit); err != nil {
				return err
			}
			copy(dst[got*sampleWidth:], lit)
			got += n
		case code != -128:
			n := 1 - code
			sample := make([]byte, sampleWidth)
			if _, err := io.ReadFull(buf, sample); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				copy(dst[(got+i)*sampleWidth:], sample)
			}
			got += n
		}
	}
	return nil
}
