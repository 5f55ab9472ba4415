package variant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/variant"
)

// TestEqualProperty checks spec property 5: equal(v, w) <=> v.type == w.type
// && v.bytes == w.bytes.
func TestEqualProperty(t *testing.T) {
	cases := []struct {
		name  string
		a, b  *variant.Variant
		equal bool
	}{
		{"same int", variant.FromInt(42), variant.FromInt(42), true},
		{"different int", variant.FromInt(42), variant.FromInt(43), false},
		{"same string", variant.FromString("x"), variant.FromString("x"), true},
		{"different type zero value", variant.FromInt(0), variant.FromBool(false), false},
		{"same float", variant.FromFloat(1.5), variant.FromFloat(1.5), true},
		{"nil vs value", nil, variant.FromInt(1), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.equal, c.a.Equal(c.b))
		})
	}

	var a, b *variant.Variant
	assert.True(t, a.Equal(b), "two nil variants are equal")
}

func TestCopyIsDeep(t *testing.T) {
	v := variant.FromData([]byte{1, 2, 3})
	cp := v.Copy()

	require.True(t, v.Equal(cp))

	orig, err := v.Data()
	require.NoError(t, err)
	orig[0] = 0xFF

	copied, err := cp.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(1), copied[0], "mutating a value read from v must not affect cp")
}

func TestScalarRoundTrip(t *testing.T) {
	i, err := variant.FromInt(-7).Int()
	require.NoError(t, err)
	assert.EqualValues(t, -7, i)

	s, err := variant.FromString("hello").String()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	d, err := variant.FromDouble(3.5).Double()
	require.NoError(t, err)
	assert.Equal(t, 3.5, d)

	_, err = variant.FromInt(1).String()
	assert.Error(t, err, "reading the wrong accessor must fail")
}

func TestHashMapInsertLookupErase(t *testing.T) {
	m := variant.NewHashMap()
	m.Insert("a", variant.FromInt(1))
	m.Insert("b", variant.FromString("two"))

	v, ok := m.Lookup("a")
	require.True(t, ok)
	n, err := v.Int()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, 2, m.Size())

	m.Erase("a")
	_, ok = m.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Size())
}
