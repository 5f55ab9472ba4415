package gif_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/gif"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

func solidFrame(t *testing.T, width, height int, r, g, b, a byte) *rimage.Image {
	t.Helper()
	img, err := rimage.New(width, height, pixelformat.BPP32RGBA)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = r, g, b, a
		}
	}
	img.DelayMilliseconds = 50
	return img
}

func TestRoundTripAnimated(t *testing.T) {
	const width, height = 8, 6

	frame1 := solidFrame(t, width, height, 200, 20, 20, 255)
	frame2 := solidFrame(t, width, height, 20, 200, 20, 255)

	buf := iostream.NewExpandingBuffer()
	c := gif.Codec{}

	saveState, err := c.SaveInit(buf, codec.DefaultSaveOptions())
	require.NoError(t, err)
	for _, f := range []*rimage.Image{frame1, frame2} {
		require.NoError(t, saveState.SeekNextFrame(f))
		require.NoError(t, saveState.Frame(f))
	}
	require.NoError(t, saveState.Finish())

	in := iostream.FromBytes(buf.Bytes())
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	var frames []*rimage.Image
	for {
		skeleton, err := loadState.SeekNextFrame()
		if err != nil {
			break
		}
		skeleton.AllocatePixels()
		require.NoError(t, loadState.Frame(skeleton))
		frames = append(frames, skeleton)
	}
	require.NoError(t, loadState.Finish())

	require.Len(t, frames, 2)
	for _, f := range frames {
		assert.Equal(t, width, f.Width)
		assert.Equal(t, height, f.Height)
		assert.Equal(t, pixelformat.BPP32RGBA, f.PixelFormat)
	}

	row := frames[0].Row(0)
	assert.Greater(t, int(row[0]), int(row[1]))
	row = frames[1].Row(0)
	assert.Greater(t, int(row[1]), int(row[0]))
}

func TestInvalidStream(t *testing.T) {
	c := gif.Codec{}
	in := iostream.FromBytes([]byte("not a gif file"))
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}
