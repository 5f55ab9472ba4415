package driver_test

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/png"
	"github.com/mdouchement/rasterio/driver"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	// One pixel carries a non-opaque alpha so the encoder keeps an alpha
	// channel (stdlib's png encoder drops it for fully-opaque images),
	// which is what makes the decoder hand back an *image.NRGBA.
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	src.Set(0, 1, color.NRGBA{R: 70, G: 80, B: 90, A: 255})
	src.Set(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 254})

	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, src))
	return buf.Bytes()
}

func TestLoadConvenience(t *testing.T) {
	data := encodeTestPNG(t)
	in := iostream.FromBytes(data)

	img, err := driver.Load(nil, in, png.Codec{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, pixelformat.BPP32RGBA, img.PixelFormat)
}

func TestNextFrameIdempotentAfterExhaustion(t *testing.T) {
	data := encodeTestPNG(t)
	in := iostream.FromBytes(data)

	sess, err := driver.StartLoading(nil, in, png.Codec{}, nil)
	require.NoError(t, err)

	_, err = sess.NextFrame()
	require.NoError(t, err)

	_, err1 := sess.NextFrame()
	assert.Error(t, err1)
	_, err2 := sess.NextFrame()
	assert.Error(t, err2)
	assert.Equal(t, err1, err2)

	require.NoError(t, sess.Finish())
	require.NoError(t, sess.Finish(), "Finish must be idempotent")
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	img, err := rimage.New(2, 1, pixelformat.BPP32RGBA)
	require.NoError(t, err)
	img.AllocatePixels()
	copy(img.Row(0), []byte{1, 2, 3, 255, 4, 5, 6, 255})

	out := iostream.NewExpandingBuffer()
	require.NoError(t, driver.Save(png.Codec{}, out, img, nil))

	in := iostream.FromBytes(out.Bytes())
	loaded, err := driver.Load(nil, in, png.Codec{}, codec.DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Width)
	assert.Equal(t, 1, loaded.Height)
}
