package png_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/png"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

func TestRoundTripRGBA(t *testing.T) {
	const width, height = 10, 8

	img, err := rimage.New(width, height, pixelformat.BPP32RGBA)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = byte(x*20), byte(y*20), 50, 200
		}
	}
	rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaTitle, Value: variant.FromString("test image")})
	img.ICCProfile = &rimage.ICC{Name: "sRGB", Data: []byte{1, 2, 3, 4, 5}}

	buf := iostream.NewExpandingBuffer()
	c := png.Codec{}

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

	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))
	require.NoError(t, loadState.Finish())

	require.NotNil(t, skeleton.ICCProfile)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, skeleton.ICCProfile.Data)

	var title string
	for n := skeleton.MetaDataHead; n != nil; n = n.Next {
		if n.Key == rimage.MetaTitle {
			title, _ = n.Value.String()
		}
	}
	assert.Equal(t, "test image", title)
}
