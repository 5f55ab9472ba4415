package jpeg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/jpeg"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

func TestRoundTrip(t *testing.T) {
	const width, height = 16, 12

	img, err := rimage.New(width, height, pixelformat.BPP24RGB)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 3
			row[o], row[o+1], row[o+2] = byte(x*15), byte(y*15), 128
		}
	}
	rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaComment, Value: variant.FromString("hello")})

	buf := iostream.NewExpandingBuffer()
	c := jpeg.Codec{}

	saveState, err := c.SaveInit(buf, codec.DefaultSaveOptions())
	require.NoError(t, err)
	require.NoError(t, saveState.SeekNextFrame(img))
	require.NoError(t, saveState.Frame(img))
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

	var comment string
	for n := skeleton.MetaDataHead; n != nil; n = n.Next {
		if n.Key == rimage.MetaComment {
			comment, _ = n.Value.String()
		}
	}
	assert.Equal(t, "hello", comment)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}
