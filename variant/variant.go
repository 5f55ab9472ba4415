// Package variant implements the dynamically typed Variant value described
// in spec section 3, grounded on original_source/src/sail-common/variant.c:
// a type tag plus an opaque byte-equal value, deep-copyable, with a
// formatted Print the way variant.c's sail_variant_to_string prints it
// (String() is the typed accessor for String values).
package variant

import (
	"bytes"
	"fmt"
	"math"

	"github.com/mdouchement/rasterio/status"
)

// Type tags the dynamic type carried by a Variant.
type Type int

const (
	Invalid Type = iota
	Bool
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Int64
	UInt64
	Float
	Double
	String
	Data
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong, Int64, UInt64:
		return "int"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Data:
		return "data"
	default:
		return "invalid"
	}
}

// Variant is a tagged, byte-comparable dynamic value. The zero value is
// Invalid and reading from it fails with status.InvalidVariant, matching
// variant.c's behavior when the type tag is unset.
type Variant struct {
	typ   Type
	value []byte
}

func invalid() error { return status.New(status.InvalidVariant) }

func newScalar(t Type, b []byte) *Variant { return &Variant{typ: t, value: b} }

func FromBool(v bool) *Variant {
	b := byte(0)
	if v {
		b = 1
	}
	return newScalar(Bool, []byte{b})
}

func FromInt(v int64) *Variant {
	b := make([]byte, 8)
	putInt64(b, v)
	return newScalar(Int64, b)
}

func FromUint(v uint64) *Variant {
	b := make([]byte, 8)
	putUint64(b, v)
	return newScalar(UInt64, b)
}

func FromFloat(v float32) *Variant {
	b := make([]byte, 4)
	putUint32(b, float32bits(v))
	return newScalar(Float, b)
}

func FromDouble(v float64) *Variant {
	b := make([]byte, 8)
	putUint64(b, float64bits(v))
	return newScalar(Double, b)
}

func FromString(v string) *Variant {
	return &Variant{typ: String, value: []byte(v)}
}

func FromData(v []byte) *Variant {
	cp := make([]byte, len(v))
	copy(cp, v)
	return &Variant{typ: Data, value: cp}
}

// Type reports the dynamic type, Invalid for the zero value.
func (v *Variant) Type() Type {
	if v == nil {
		return Invalid
	}
	return v.typ
}

// Bool returns the bool value or status.InvalidVariant if v is not a Bool.
func (v *Variant) Bool() (bool, error) {
	if v == nil || v.typ != Bool {
		return false, invalid()
	}
	return v.value[0] != 0, nil
}

// Int returns the value widened to int64, valid for any integer type.
func (v *Variant) Int() (int64, error) {
	if v == nil {
		return 0, invalid()
	}
	switch v.typ {
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong, Int64, UInt64:
		return int64(uint64FromBytes(v.value)), nil
	default:
		return 0, invalid()
	}
}

// Float returns the float32 value.
func (v *Variant) Float() (float32, error) {
	if v == nil || v.typ != Float {
		return 0, invalid()
	}
	return float32frombits(uint32FromBytes(v.value)), nil
}

// Double returns the float64 value.
func (v *Variant) Double() (float64, error) {
	if v == nil || v.typ != Double {
		return 0, invalid()
	}
	return float64frombits(uint64FromBytes(v.value)), nil
}

// String returns the string value.
func (v *Variant) String() (string, error) {
	if v == nil || v.typ != String {
		return "", invalid()
	}
	return string(v.value), nil
}

// Data returns the opaque byte value.
func (v *Variant) Data() ([]byte, error) {
	if v == nil || v.typ != Data {
		return nil, invalid()
	}
	cp := make([]byte, len(v.value))
	copy(cp, v.value)
	return cp, nil
}

// Copy returns a deep copy of v, matching variant.c's duplicate-on-insert
// semantics used by the hashmap's "deep-copy insert" variant.
func (v *Variant) Copy() *Variant {
	if v == nil {
		return nil
	}
	cp := make([]byte, len(v.value))
	copy(cp, v.value)
	return &Variant{typ: v.typ, value: cp}
}

// Equal reports type + byte-structural equality, per spec testable
// property 5: equal(v, w) <=> v.type == w.type && v.bytes == w.bytes.
func (v *Variant) Equal(w *Variant) bool {
	if v == nil || w == nil {
		return v == w
	}
	return v.typ == w.typ && bytes.Equal(v.value, w.value)
}

// Print writes a human-readable rendering of v to dst, grounded on
// variant.c's sail_variant_to_string used for log lines.
func (v *Variant) Print(dst *bytes.Buffer) error {
	if v == nil || v.typ == Invalid {
		return invalid()
	}
	switch v.typ {
	case Bool:
		b, _ := v.Bool()
		fmt.Fprintf(dst, "%t", b)
	case Char, UChar, Short, UShort, Int, UInt, Long, ULong, Int64, UInt64:
		i, _ := v.Int()
		fmt.Fprintf(dst, "%d", i)
	case Float:
		f, _ := v.Float()
		fmt.Fprintf(dst, "%g", f)
	case Double:
		d, _ := v.Double()
		fmt.Fprintf(dst, "%g", d)
	case String:
		s, _ := v.String()
		fmt.Fprint(dst, s)
	case Data:
		fmt.Fprintf(dst, "<%d bytes>", len(v.value))
	}
	return nil
}

func putInt64(b []byte, v int64)   { putUint64(b, uint64(v)) }
func putUint64(b []byte, v uint64) { for i := 0; i < 8; i++ { b[i] = byte(v >> (8 * i)) } }
func putUint32(b []byte, v uint32) { for i := 0; i < 4; i++ { b[i] = byte(v >> (8 * i)) } }

func uint64FromBytes(b []byte) uint64 {
	var v uint64
	for i := 0; i < len(b) && i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func uint32FromBytes(b []byte) uint32 {
	var v uint32
	for i := 0; i < len(b) && i < 4; i++ {
		v |= uint32(b[i]) << (8 * i)
	}
	return v
}

func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64bits(f float64) uint64     { return math.Float64bits(f) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
