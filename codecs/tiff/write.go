package tiff

import (
	"encoding/binary"

	"github.com/mdouchement/rasterio/rimage"
)

// writeMinimalTIFF writes a single-strip, uncompressed, 32-bit-float RGB
// TIFF: the write-side counterpart the teacher never implemented for its
// own HDR read path (its package is decode-only). Little-endian, one IFD,
// PlanarConfiguration=1 (chunky), RowsPerStrip=height (whole image as one
// strip) -- the simplest layout any TIFF reader, including this package's
// own loadHDR, round-trips correctly.
func writeMinimalTIFF(img *rimage.Image) []byte {
	pixelBytes := make([]byte, img.Width*img.Height*12)
	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		copy(pixelBytes[y*img.Width*12:(y+1)*img.Width*12], row[:img.Width*12])
	}

	meta := metadataEntries(img)

	var entries []entry
	entries = append(entries,
		shortEntry(tImageWidth, uint32(img.Width)),
		shortEntry(tImageLength, uint32(img.Height)),
		shortArrayEntry(tBitsPerSample, 32, 32, 32),
		shortEntry(tCompression, cNone),
		shortEntry(tPhotometricInterpretation, pRGB),
		shortEntry(tSamplesPerPixel, 3),
		longEntry(tRowsPerStrip, uint32(img.Height)),
		longEntry(tStripByteCounts, uint32(len(pixelBytes))),
		shortArrayEntry(tSampleFormat, 3, 3, 3), // 3 == IEEE float, one per sample
		shortEntry(tPlanarConfiguration, 1),
		shortEntry(tOrientation, 1),
	)

	for _, m := range meta {
		entries = append(entries, asciiEntry(m.tag, m.value))
	}

	if img.Resolution != nil {
		entries = append(entries,
			rationalEntry(tXResolution, img.Resolution.X),
			rationalEntry(tYResolution, img.Resolution.Y),
			shortEntry(tResolutionUnit, resolutionUnitTag(img.Resolution.Unit)),
		)
	}

	// Header(8) + entry count(2) + entries*12 + next-IFD offset(4), then
	// indirect blobs, then tStripOffsets (needs the pixel offset, computed
	// after indirect blobs are sized), then pixel data.
	ifdHeaderLen := 2 + len(entries)*ifdLen + 4 + ifdLen // +1 entry for tStripOffsets
	indirectOff := uint32(8 + ifdHeaderLen)

	var indirect []byte
	finalized := make([]entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.indirect {
			off := indirectOff + uint32(len(indirect))
			indirect = append(indirect, e.value...)
			var ob [4]byte
			binary.LittleEndian.PutUint32(ob[:], off)
			e.value = ob[:]
		}
		finalized = append(finalized, e)
	}

	stripOffset := indirectOff + uint32(len(indirect))
	finalized = append(finalized, longEntry(tStripOffsets, stripOffset))

	out := make([]byte, 0, int(stripOffset)+len(pixelBytes))
	out = append(out, leHeader...)
	out = append(out, le32(8)...)
	out = append(out, le16(uint32(len(finalized)))...)
	for _, e := range finalized {
		out = append(out, le16u(e.tag)...)
		out = append(out, le16u(e.datatype)...)
		out = append(out, le32(e.count)...)
		var v [4]byte
		copy(v[:], e.value)
		out = append(out, v[:]...)
	}
	out = append(out, le32(0)...) // no next IFD
	out = append(out, indirect...)
	out = append(out, pixelBytes...)

	return out
}

func shortEntry(tag uint16, v uint32) entry {
	return entry{tag: tag, datatype: dtShort, count: 1, value: le16(v)}
}

func longEntry(tag uint16, v uint32) entry {
	return entry{tag: tag, datatype: dtLong, count: 1, value: le32(v)}
}

// shortArrayEntry builds a dtShort entry of len(vs) values, always treated
// as indirect by writeMinimalTIFF's caller since even 3 shorts (6 bytes)
// exceed the 4-byte inline slot.
func shortArrayEntry(tag uint16, vs ...uint32) entry {
	b := make([]byte, len(vs)*2)
	for i, v := range vs {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return entry{tag: tag, datatype: dtShort, count: uint32(len(vs)), value: b, indirect: true}
}

func asciiEntry(tag uint16, s string) entry {
	b := append([]byte(s), 0)
	if len(b) <= 4 {
		var v [4]byte
		copy(v[:], b)
		return entry{tag: tag, datatype: dtASCII, count: uint32(len(b)), value: v[:]}
	}
	return entry{tag: tag, datatype: dtASCII, count: uint32(len(b)), value: b, indirect: true}
}

func rationalEntry(tag uint16, v float64) entry {
	const den = 1000000
	num := uint32(v * den)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], num)
	binary.LittleEndian.PutUint32(b[4:8], den)
	return entry{tag: tag, datatype: dtRational, count: 1, value: b, indirect: true}
}

func resolutionUnitTag(u rimage.ResolutionUnit) uint32 {
	if u == rimage.ResolutionUnitCentimeter {
		return resPerCM
	}
	return resPerInch
}

// entry is one not-yet-serialized IFD entry: value holds either the
// 4-byte inline value or (when indirect) the full indirect blob, resolved
// to an offset by writeMinimalTIFF's second pass.
type entry struct {
	tag      uint16
	datatype uint16
	count    uint32
	value    []byte
	indirect bool
}

func le16(v uint32) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func le16u(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
