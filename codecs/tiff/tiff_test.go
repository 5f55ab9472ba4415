package tiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/tiff"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

func TestRoundTripHDRFloat(t *testing.T) {
	const width, height = 6, 4

	img, err := rimage.New(width, height, pixelformat.BPP96RGBFloat)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 12
			putTestFloat(row, o, float32(x)*1.5)
			putTestFloat(row, o+4, float32(y)*0.5)
			putTestFloat(row, o+8, float32(x+y))
		}
	}
	rimage.Append(&img.MetaDataHead, &rimage.MetaData{Key: rimage.MetaTitle, Value: variant.FromString("hdr test")})

	buf := iostream.NewExpandingBuffer()
	c := tiff.Codec{}

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
	assert.Equal(t, pixelformat.BPP96RGBFloat, skeleton.PixelFormat)

	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))
	require.NoError(t, loadState.Finish())

	for y := 0; y < height; y++ {
		row := skeleton.Row(y)
		for x := 0; x < width; x++ {
			o := x * 12
			assert.InDelta(t, float64(x)*1.5, float64(getTestFloat(row, o)), 1e-4)
			assert.InDelta(t, float64(y)*0.5, float64(getTestFloat(row, o+4)), 1e-4)
			assert.InDelta(t, float64(x+y), float64(getTestFloat(row, o+8)), 1e-4)
		}
	}

	var title string
	for n := skeleton.MetaDataHead; n != nil; n = n.Next {
		if n.Key == rimage.MetaTitle {
			title, _ = n.Value.String()
		}
	}
	assert.Equal(t, "hdr test", title)
}

func TestRoundTripBaselineRGBA(t *testing.T) {
	const width, height = 5, 3

	img, err := rimage.New(width, height, pixelformat.BPP32RGBA)
	require.NoError(t, err)
	img.AllocatePixels()
	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = byte(x*30), byte(y*30), 40, 255
		}
	}

	buf := iostream.NewExpandingBuffer()
	c := tiff.Codec{}

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
}

func putTestFloat(row []byte, off int, v float32) {
	bits := math.Float32bits(v)
	row[off] = byte(bits)
	row[off+1] = byte(bits >> 8)
	row[off+2] = byte(bits >> 16)
	row[off+3] = byte(bits >> 24)
}

func getTestFloat(row []byte, off int) float32 {
	bits := uint32(row[off]) | uint32(row[off+1])<<8 | uint32(row[off+2])<<16 | uint32(row[off+3])<<24
	return math.Float32frombits(bits)
}
