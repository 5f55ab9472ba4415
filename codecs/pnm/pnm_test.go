package pnm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/pnm"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

func rgbImage(t *testing.T, width, height int) *rimage.Image {
	t.Helper()
	img, err := rimage.New(width, height, pixelformat.BPP24RGB)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 3
			row[o], row[o+1], row[o+2] = byte(x*10), byte(y*10), byte((x+y)*5)
		}
	}
	return img
}

func TestRoundTripP6(t *testing.T) {
	const width, height = 5, 4
	src := rgbImage(t, width, height)

	buf := iostream.NewExpandingBuffer()
	c := pnm.Codec{}

	saveState, err := c.SaveInit(buf, codec.DefaultSaveOptions())
	require.NoError(t, err)
	require.NoError(t, saveState.SeekNextFrame(src))
	require.NoError(t, saveState.Frame(src))
	require.NoError(t, saveState.Finish())

	in := iostream.FromBytes(buf.Bytes())
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	skeleton, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	assert.Equal(t, width, skeleton.Width)
	assert.Equal(t, height, skeleton.Height)
	assert.Equal(t, pixelformat.BPP24RGB, skeleton.PixelFormat)

	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))
	require.NoError(t, loadState.Finish())

	assert.Equal(t, src.Pixels, skeleton.Pixels)
}

func TestLoadAsciiP3(t *testing.T) {
	data := "P3\n2 2\n255\n" +
		"255 0 0  0 255 0\n" +
		"0 0 255  10 20 30\n"

	c := pnm.Codec{}
	in := iostream.FromBytes([]byte(data))
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	skeleton, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	require.Equal(t, pixelformat.BPP24RGB, skeleton.PixelFormat)
	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))

	row0 := skeleton.Row(0)
	assert.Equal(t, []byte{255, 0, 0, 0, 255, 0}, row0)
	row1 := skeleton.Row(1)
	assert.Equal(t, []byte{0, 0, 255, 10, 20, 30}, row1)
}

func TestLoadAsciiP1Bitmap(t *testing.T) {
	data := "P1\n8 1\n1 0 1 0 1 0 1 0\n"

	c := pnm.Codec{}
	in := iostream.FromBytes([]byte(data))
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	skeleton, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	require.Equal(t, pixelformat.BPP1Indexed, skeleton.PixelFormat)
	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))

	assert.Equal(t, []byte{0b10101010}, skeleton.Row(0))
}
