package quantize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/quantize"
	"github.com/mdouchement/rasterio/rimage"
)

// index2 reads a 2-bit packed pixel index, the BPP2Indexed layout
// quantize.setIndex writes (MSB-first, 4 pixels/byte).
func index2(row []byte, x int) int {
	shift := uint(6 - 2*(x%4))
	return int(row[x/4]>>shift) & 0x3
}

// TestQuantizeThreeDistinctColors covers spec scenario S5: three distinct
// input colors quantized to BPP2Indexed (K=4) must come back as three
// distinct palette entries, one per input pixel, recoverable one-to-one.
func TestQuantizeThreeDistinctColors(t *testing.T) {
	colors := [][3]byte{{0xFF, 0x00, 0x00}, {0x00, 0xFF, 0x00}, {0x00, 0x00, 0xFF}}

	src, err := rimage.New(3, 1, pixelformat.BPP24RGB)
	require.NoError(t, err)
	src.AllocatePixels()
	for x, c := range colors {
		copy(src.Row(0)[x*3:x*3+3], c[:])
	}

	out, err := quantize.Quantize(src, pixelformat.BPP2Indexed, false, func(x, y int) (byte, byte, byte) {
		row := src.Row(y)
		return row[x*3], row[x*3+1], row[x*3+2]
	})
	require.NoError(t, err)
	require.NotNil(t, out.Palette)
	assert.LessOrEqual(t, out.Palette.Count, 4)
	assert.Equal(t, 3, out.Palette.Count)

	paletteColor := func(i int) [3]byte {
		d := out.Palette.Data
		return [3]byte{d[i*3], d[i*3+1], d[i*3+2]}
	}

	row := out.Row(0)
	seen := map[[3]byte]bool{}
	for x := 0; x < 3; x++ {
		idx := index2(row, x)
		require.Less(t, idx, out.Palette.Count)
		c := paletteColor(idx)
		assert.Equal(t, colors[x], c)
		seen[c] = true
	}
	assert.Len(t, seen, 3)
}

// TestQuantizeRejectsNonIndexedTarget checks maxColorsFor's error path for
// a target that isn't one of the four indexed formats.
func TestQuantizeRejectsNonIndexedTarget(t *testing.T) {
	src, err := rimage.New(1, 1, pixelformat.BPP24RGB)
	require.NoError(t, err)
	src.AllocatePixels()

	_, err = quantize.Quantize(src, pixelformat.BPP24RGB, false, func(x, y int) (byte, byte, byte) {
		return 0, 0, 0
	})
	assert.Error(t, err)
}
