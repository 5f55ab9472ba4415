package tiff

import (
	"encoding/binary"
	"io"
	"math"
)

// idf holds one parsed Image File Directory: the numeric tag values the
// decoder needs for dispatch (features) plus the ASCII tags metadata.go
// surfaces as rimage.MetaData (ascii). Generalizes the teacher's idf.go,
// dropping the tag/String() pretty-printer wrapper in favor of plain maps.
type idf struct {
	r         io.ReaderAt
	byteOrder binary.ByteOrder
	features  map[uint16][]uint
	ascii     map[uint16]string
}

// newIDF reads the TIFF header at the start of r and parses the first IFD.
// Generalizes the teacher's newIDF (idf.go), fixing the dtRational gap
// noted below in ifdUint.
func newIDF(r io.ReaderAt) (*idf, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, FormatError("short header")
	}

	var byteOrder binary.ByteOrder
	switch string(hdr[:4]) {
	case leHeader:
		byteOrder = binary.LittleEndian
	case beHeader:
		byteOrder = binary.BigEndian
	default:
		return nil, FormatError("malformed header")
	}

	ifdOffset := int64(byteOrder.Uint32(hdr[4:8]))

	d := &idf{
		r:         r,
		byteOrder: byteOrder,
		features:  make(map[uint16][]uint),
		ascii:     make(map[uint16]string),
	}

	var n [2]byte
	if _, err := r.ReadAt(n[:], ifdOffset); err != nil {
		return nil, FormatError("short IFD entry count")
	}
	numItems := int(byteOrder.Uint16(n[:]))

	p := make([]byte, ifdLen*numItems)
	if _, err := r.ReadAt(p, ifdOffset+2); err != nil {
		return nil, FormatError("short IFD")
	}

	for i := 0; i < numItems; i++ {
		if err := d.parseIFD(p[i*ifdLen : (i+1)*ifdLen]); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// firstVal returns the first value of tag t, or 0 when absent.
func (d *idf) firstVal(t uint16) uint {
	v, ok := d.features[t]
	if !ok || len(v) == 0 {
		return 0
	}
	return v[0]
}

// firstDouble returns the first value of tag t reinterpreted as a double
// (tStonits, the only non-standard dtDouble tag this decoder reads), or
// def when absent.
func (d *idf) firstDouble(t uint16, def float64) float64 {
	v, ok := d.features[t]
	if !ok || len(v) == 0 {
		return def
	}
	return math.Float64frombits(uint64(v[0]))
}

func (d *idf) parseIFD(p []byte) error {
	t := tagEntry{
		id:       d.byteOrder.Uint16(p[0:2]),
		datatype: d.byteOrder.Uint16(p[2:4]),
	}
	if int(t.datatype) >= len(lengths) {
		return UnsupportedError("unknown datatype")
	}
	count := d.byteOrder.Uint32(p[4:8])

	if t.datatype == dtASCII {
		s, err := d.ifdASCII(p[8:12], count)
		if err != nil {
			return err
		}
		d.ascii[t.id] = s
		return nil
	}

	raw, err := d.inlineOrFetch(p[8:12], t.datatype, count)
	if err != nil {
		return err
	}
	u, err := d.ifdUint(raw, t.datatype, count)
	if err != nil {
		return err
	}
	d.features[t.id] = u
	return nil
}

type tagEntry struct {
	id       uint16
	datatype uint16
}

// inlineOrFetch returns the raw value bytes of an IFD entry: either the
// 4-byte value field itself, or the indirect offset it points to when the
// value doesn't fit (TIFF 6.0 spec p. 15).
func (d *idf) inlineOrFetch(valueField []byte, datatype uint16, count uint32) ([]byte, error) {
	datalen := lengths[datatype] * count
	if datalen <= 4 {
		return valueField[:datalen], nil
	}
	offset := d.byteOrder.Uint32(valueField)
	raw := make([]byte, datalen)
	if _, err := d.r.ReadAt(raw, int64(offset)); err != nil {
		return nil, FormatError("short indirect value")
	}
	return raw, nil
}

// ifdASCII decodes a dtASCII entry to a Go string, trimming the mandatory
// NUL terminator TIFF counts as part of count.
func (d *idf) ifdASCII(valueField []byte, count uint32) (string, error) {
	raw, err := d.inlineOrFetch(valueField, dtASCII, count)
	if err != nil {
		return "", err
	}
	for i, b := range raw {
		if b == 0 {
			raw = raw[:i]
			break
		}
	}
	return string(raw), nil
}

// ifdUint decodes count values of the given datatype from raw into the
// []uint representation features stores: bytes/shorts/longs as-is,
// rationals packed as (numerator<<32 | denominator) so rationalOf can
// split them back out, and doubles bit-reinterpreted losslessly through
// a uint64. This adds the dtRational/dtSRational case missing from the
// teacher's own ifdUint, without which XResolution/YResolution (both
// dtRational) could never be read.
func (d *idf) ifdUint(raw []byte, datatype uint16, count uint32) ([]uint, error) {
	u := make([]uint, count)
	switch datatype {
	case dtByte, dtSByte, dtUndefined:
		for i := range u {
			u[i] = uint(raw[i])
		}
	case dtShort, dtSShort:
		for i := range u {
			u[i] = uint(d.byteOrder.Uint16(raw[2*i : 2*i+2]))
		}
	case dtLong, dtSLong:
		for i := range u {
			u[i] = uint(d.byteOrder.Uint32(raw[4*i : 4*i+4]))
		}
	case dtRational, dtSRational:
		for i := range u {
			num := uint64(d.byteOrder.Uint32(raw[8*i : 8*i+4]))
			den := uint64(d.byteOrder.Uint32(raw[8*i+4 : 8*i+8]))
			u[i] = uint(num<<32 | den)
		}
	case dtFloat:
		for i := range u {
			u[i] = uint(d.byteOrder.Uint32(raw[4*i : 4*i+4]))
		}
	case dtDouble:
		for i := range u {
			u[i] = uint(d.byteOrder.Uint64(raw[8*i : 8*i+8]))
		}
	default:
		return nil, UnsupportedError("datatype")
	}
	return u, nil
}

// rationalOf splits a dtRational/dtSRational value packed by ifdUint back
// into (numerator, denominator) and returns it as a float64, matching the
// teacher's tag.go rational() convention.
func rationalOf(v uint) float64 {
	num := uint32(v >> 32)
	den := uint32(v)
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
