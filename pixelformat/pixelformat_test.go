package pixelformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mdouchement/rasterio/pixelformat"
)

func TestBytesPerLine(t *testing.T) {
	assert.Equal(t, 3, pixelformat.BPP24RGB.BytesPerLine(1))
	assert.Equal(t, 6, pixelformat.BPP24RGB.BytesPerLine(2))
	assert.Equal(t, 4, pixelformat.BPP32RGBA.BytesPerLine(1))
	// BPP1Gray packs 8 pixels/byte, rounding up.
	assert.Equal(t, 2, pixelformat.BPP1Gray.BytesPerLine(9))
	assert.Equal(t, 1, pixelformat.BPP1Gray.BytesPerLine(8))
}

func TestIsIndexed(t *testing.T) {
	assert.True(t, pixelformat.BPP8Indexed.IsIndexed())
	assert.True(t, pixelformat.BPP1Indexed.IsIndexed())
	assert.False(t, pixelformat.BPP24RGB.IsIndexed())
}

func TestHasAlphaAndRGBFamily(t *testing.T) {
	assert.True(t, pixelformat.BPP32RGBA.HasAlpha())
	assert.False(t, pixelformat.BPP24RGB.HasAlpha())
	assert.True(t, pixelformat.BPP24RGB.IsRGBFamily())
	assert.False(t, pixelformat.BPP8Gray.IsRGBFamily())
}

func TestFloatingPointAndBitDepth(t *testing.T) {
	assert.True(t, pixelformat.BPP96RGBFloat.IsFloatingPoint())
	assert.False(t, pixelformat.BPP24RGB.IsFloatingPoint())
	assert.True(t, pixelformat.BPP48RGB.Is16BitPerChannel())
	assert.False(t, pixelformat.BPP24RGB.Is16BitPerChannel())
}

func TestCMYKFamily(t *testing.T) {
	assert.True(t, pixelformat.BPP32CMYK.IsCMYKFamily())
	assert.False(t, pixelformat.BPP24RGB.IsCMYKFamily())
}

func TestStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "BPP24-RGB", pixelformat.BPP24RGB.String())
	assert.Equal(t, "UNKNOWN", pixelformat.Format(-1).String())
}
