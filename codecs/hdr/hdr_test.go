package hdr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/hdr"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
)

func putFloat32(row []byte, i int, v float32) {
	bits := math.Float32bits(v)
	o := i * 4
	row[o] = byte(bits)
	row[o+1] = byte(bits >> 8)
	row[o+2] = byte(bits >> 16)
	row[o+3] = byte(bits >> 24)
}

func getFloat32(row []byte, i int) float32 {
	o := i * 4
	bits := uint32(row[o]) | uint32(row[o+1])<<8 | uint32(row[o+2])<<16 | uint32(row[o+3])<<24
	return math.Float32frombits(bits)
}

func gradientImage(t *testing.T, width, height int) *rimage.Image {
	t.Helper()

	img, err := rimage.New(width, height, pixelformat.BPP96RGBFloat)
	require.NoError(t, err)
	img.AllocatePixels()

	for y := 0; y < height; y++ {
		row := img.Row(y)
		for x := 0; x < width; x++ {
			r := float32(x+1) / float32(width)
			g := float32(y+1) / float32(height)
			b := float32(x+y+1) / float32(width+height)
			putFloat32(row, x*3+0, r)
			putFloat32(row, x*3+1, g)
			putFloat32(row, x*3+2, b)
		}
	}
	return img
}

func TestRoundTrip(t *testing.T) {
	const width, height = 12, 9

	src := gradientImage(t, width, height)

	buf := iostream.NewExpandingBuffer()
	c := hdr.Codec{}

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
	assert.Equal(t, pixelformat.BPP96RGBFloat, skeleton.PixelFormat)

	skeleton.AllocatePixels()
	require.NoError(t, loadState.Frame(skeleton))
	require.NoError(t, loadState.Finish())

	for y := 0; y < height; y++ {
		srcRow := src.Row(y)
		gotRow := skeleton.Row(y)
		for x := 0; x < width*3; x++ {
			want := getFloat32(srcRow, x)
			got := getFloat32(gotRow, x)
			assert.InDelta(t, want, got, 0.02*float64(want)+0.01, "sample %d of row %d", x, y)
		}
	}

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}

func TestInvalidSignature(t *testing.T) {
	c := hdr.Codec{}
	in := iostream.FromBytes([]byte("not an hdr file\n\n"))
	loadState, err := c.LoadInit(in, codec.DefaultLoadOptions())
	require.NoError(t, err)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}
