package tiff

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"

	"github.com/mdouchement/hdr/format"
)

// hdrDecoder drives the strip/tile walk for mRGB/mLogL/mLogLuv files,
// generalizing the teacher's decoder+reader.go Decode(): same
// blockOffsets/blockCounts/blockWidth/blockHeight bookkeeping, but writing
// into a flat BPP96RGBFloat buffer (12 bytes/pixel, float32 R,G,B in
// natural top-left order) instead of a *hdr.RGB/*hdr.XYZ, so the result
// slots directly into rimage.Image.Pixels without an intermediate
// image.Image allocation.
type hdrDecoder struct {
	r         io.ReaderAt
	byteOrder binary.ByteOrder
	mode      imageMode
	width     int
	height    int

	buf []byte // current strip/tile, post decompress
}

// decodeAll walks every strip/tile of d and returns width*height*12 bytes
// of natural-order (unoriented) float32 RGB/XYZ triples.
func (d *hdrDecoder) decodeAll(idf *idf) ([]byte, error) {
	blockPadding := false
	blockWidth := d.width
	blockHeight := d.height
	blocksAcross := 1
	blocksDown := 1
	if d.width == 0 {
		blocksAcross = 0
	}
	if d.height == 0 {
		blocksDown = 0
	}

	var blockOffsets, blockCounts []uint

	if tw := int(idf.firstVal(tTileWidth)); tw != 0 {
		blockPadding = true
		blockWidth = tw
		blockHeight = int(idf.firstVal(tTileLength))
		if blockWidth != 0 {
			blocksAcross = (d.width + blockWidth - 1) / blockWidth
		}
		if blockHeight != 0 {
			blocksDown = (d.height + blockHeight - 1) / blockHeight
		}
		blockOffsets = idf.features[tTileOffsets]
		blockCounts = idf.features[tTileByteCounts]
	} else {
		if rps := int(idf.firstVal(tRowsPerStrip)); rps != 0 {
			blockHeight = rps
		}
		if blockHeight != 0 {
			blocksDown = (d.height + blockHeight - 1) / blockHeight
		}
		blockOffsets = idf.features[tStripOffsets]
		blockCounts = idf.features[tStripByteCounts]
	}

	if n := blocksAcross * blocksDown; len(blockOffsets) < n || len(blockCounts) < n {
		return nil, FormatError("inconsistent strip/tile header")
	}

	if idf.firstVal(tPredictor) > prNone {
		return nil, UnsupportedError("predictor")
	}

	dst := make([]byte, d.width*d.height*12)
	stonits := idf.firstDouble(tStonits, 1)
	if stonits == 0 {
		stonits = 1
	}

	for i := 0; i < blocksAcross; i++ {
		blkW := blockWidth
		if !blockPadding && i == blocksAcross-1 && blockWidth != 0 && d.width%blockWidth != 0 {
			blkW = d.width % blockWidth
		}
		for j := 0; j < blocksDown; j++ {
			blkH := blockHeight
			if !blockPadding && j == blocksDown-1 && blockHeight != 0 && d.height%blockHeight != 0 {
				blkH = d.height % blockHeight
			}

			offset := int64(blockOffsets[j*blocksAcross+i])
			n := int64(blockCounts[j*blocksAcross+i])
			if err := d.decompress(idf, offset, n, blkW, blkH); err != nil {
				return nil, err
			}

			xmin := i * blockWidth
			ymin := j * blockHeight
			xmax := xmin + blkW
			ymax := ymin + blkH
			if xmax > d.width {
				xmax = d.width
			}
			if ymax > d.height {
				ymax = d.height
			}
			d.decodeInto(dst, xmin, ymin, xmax, ymax, stonits)
		}
	}

	return dst, nil
}

// decompress fills d.buf with the decompressed bytes of one strip/tile,
// kept from the teacher's decoder.decompress, adapted to the new
// idf/buffer types.
func (d *hdrDecoder) decompress(idf *idf, offset, n int64, blockWidth, blockHeight int) error {
	var err error
	switch idf.firstVal(tCompression) {
	case cNone, 0:
		if b, ok := d.r.(*buffer); ok {
			d.buf, err = b.Slice(offset, n)
		} else {
			d.buf = make([]byte, n)
			_, err = d.r.ReadAt(d.buf, offset)
		}
	case cLZW:
		r := lzw.NewReader(io.NewSectionReader(d.r, offset, n), lzw.MSB, 8)
		d.buf, err = io.ReadAll(r)
		r.Close()
	case cDeflate, cDeflateOld:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(io.NewSectionReader(d.r, offset, n))
		if err != nil {
			return err
		}
		d.buf, err = io.ReadAll(zr)
		zr.Close()
	case cPackBits:
		d.buf, err = unpackBits(io.NewSectionReader(d.r, offset, n))
	case cSGILogRLE:
		d.buf, err = unRLE(io.NewSectionReader(d.r, offset, n), d.mode, blockWidth, blockHeight)
	default:
		err = UnsupportedError("compression scheme")
	}
	return err
}

// decodeInto decodes d.buf (one strip/tile, already in d.mode's native
// byte layout) into dst's [xmin,xmax)x[ymin,ymax) window, merging the
// teacher's three separate decode_rgb.go/decode_logl.go/decode_logluv.go
// functions into one, using github.com/mdouchement/hdr/format's byte
// decoders directly instead of going through *hdr.RGB/*hdr.XYZ.
func (d *hdrDecoder) decodeInto(dst []byte, xmin, ymin, xmax, ymax int, stonits float64) {
	var offset int
	for y := ymin; y < ymax; y++ {
		row := dst[(y*d.width+xmin)*12 : (y*d.width+xmax)*12]
		for x := 0; x*12 < len(row); x++ {
			o := x * 12
			switch d.mode {
			case mRGB:
				r, g, b := format.FromBytes(d.byteOrder, d.buf[offset:offset+12])
				putFloat32(row, o, r)
				putFloat32(row, o+4, g)
				putFloat32(row, o+8, b)
				offset += 12
			case mLogL:
				sle := format.BytesToUint16(d.buf[offset], d.buf[offset+1])
				yy := format.SLeToY(sle) * float32(stonits)
				putFloat32(row, o, yy)
				putFloat32(row, o+4, yy)
				putFloat32(row, o+8, yy)
				offset += 2
			case mLogLuv:
				x2, y2, z2 := format.LogLuvToXYZ(d.buf[offset], d.buf[offset+1], d.buf[offset+2], d.buf[offset+3])
				putFloat32(row, o, x2*float32(stonits))
				putFloat32(row, o+4, y2*float32(stonits))
				putFloat32(row, o+8, z2*float32(stonits))
				offset += 4
			}
		}
	}
}
