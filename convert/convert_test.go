package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/convert"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

func newRGB24(t *testing.T, width, height int, px ...byte) *rimage.Image {
	t.Helper()
	img, err := rimage.New(width, height, pixelformat.BPP24RGB)
	require.NoError(t, err)
	img.AllocatePixels()
	require.Equal(t, len(px), len(img.Pixels))
	copy(img.Pixels, px)
	return img
}

// TestConvertRGBToBGR covers spec scenario S1: a 2x2 BPP24RGB image
// converted to BPP24BGR swaps R and B per pixel and tags the result with
// the target format.
func TestConvertRGBToBGR(t *testing.T) {
	src := newRGB24(t, 2, 2,
		0xFF, 0x00, 0x00, 0x00, 0xFF, 0x00,
		0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF,
	)

	dst, err := convert.Convert(src, pixelformat.BPP24BGR, convert.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, pixelformat.BPP24BGR, dst.PixelFormat)
	assert.Equal(t, []byte{
		0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00,
		0xFF, 0x00, 0x00, 0xFF, 0xFF, 0xFF,
	}, dst.Pixels)
}

// TestConvertRGBAToRGBDropsAlpha covers spec scenario S2: a 1x1 BPP32RGBA
// pixel dropped to BPP24RGB (blend_alpha=false) keeps the RGB triple and
// discards alpha, with a buffer sized for the target format.
func TestConvertRGBAToRGBDropsAlpha(t *testing.T) {
	img, err := rimage.New(1, 1, pixelformat.BPP32RGBA)
	require.NoError(t, err)
	img.AllocatePixels()
	copy(img.Pixels, []byte{0x80, 0x40, 0x20, 0xFF})

	opts := convert.DefaultOptions()
	opts.BlendAlpha = false
	dst, err := convert.Convert(img, pixelformat.BPP24RGB, opts)
	require.NoError(t, err)

	assert.Equal(t, pixelformat.BPP24RGB, dst.PixelFormat)
	assert.Equal(t, 3, dst.BytesPerLine)
	assert.Equal(t, []byte{0x80, 0x40, 0x20}, dst.Pixels)
}

// TestConvertFastPathRoundTrip converts through five of the registered
// fast-path pairs, one direction each, asserting the returned image is
// tagged and sized for the requested target rather than the source format.
func TestConvertFastPathRoundTrip(t *testing.T) {
	pairs := []struct{ from, to pixelformat.Format }{
		{pixelformat.BPP24RGB, pixelformat.BPP24BGR},
		{pixelformat.BPP32RGBA, pixelformat.BPP32BGRA},
		{pixelformat.BPP32RGBA, pixelformat.BPP24RGB},
		{pixelformat.BPP24RGB, pixelformat.BPP32RGBA},
		{pixelformat.BPP16RGB565, pixelformat.BPP16BGR565},
	}

	for _, p := range pairs {
		src, err := rimage.New(2, 2, p.from)
		require.NoError(t, err)
		src.AllocatePixels()

		dst, err := convert.Convert(src, p.to, convert.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, p.to, dst.PixelFormat)
		assert.Equal(t, p.to.BytesPerLine(2)*2, len(dst.Pixels))
	}
}

// TestConvertPreserveICCP checks opts.PreserveICCP gates whether the ICC
// profile carries over to the converted image.
func TestConvertPreserveICCP(t *testing.T) {
	src := newRGB24(t, 1, 1, 1, 2, 3)
	src.ICCProfile = &rimage.ICC{Data: []byte{1, 2, 3}}

	opts := convert.DefaultOptions()
	opts.PreserveICCP = false
	dst, err := convert.Convert(src, pixelformat.BPP24BGR, opts)
	require.NoError(t, err)
	assert.Nil(t, dst.ICCProfile)

	opts.PreserveICCP = true
	dst, err = convert.Convert(src, pixelformat.BPP24BGR, opts)
	require.NoError(t, err)
	assert.Same(t, src.ICCProfile, dst.ICCProfile)
}
