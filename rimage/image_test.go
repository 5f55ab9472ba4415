package rimage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/pixelformat"
	"github.com/mdouchement/rasterio/rimage"
	"github.com/mdouchement/rasterio/variant"
)

func TestNewRejectsBadDimensions(t *testing.T) {
	_, err := rimage.New(0, 1, pixelformat.BPP24RGB)
	assert.Error(t, err)
	_, err = rimage.New(1, -1, pixelformat.BPP24RGB)
	assert.Error(t, err)
}

func TestAllocatePixelsAndRow(t *testing.T) {
	img, err := rimage.New(4, 2, pixelformat.BPP24RGB)
	require.NoError(t, err)
	assert.Equal(t, 12, img.BytesPerLine)
	assert.Nil(t, img.Pixels)

	img.AllocatePixels()
	require.NoError(t, img.Validate())
	assert.Equal(t, rimage.Owned, img.PixelOwnership)
	assert.Len(t, img.Pixels, 24)

	row := img.Row(1)
	assert.Len(t, row, 12)
	row[0] = 0x42
	assert.Equal(t, byte(0x42), img.Pixels[12])
}

func TestValidateRequiresPaletteForIndexed(t *testing.T) {
	img, err := rimage.New(2, 2, pixelformat.BPP8Indexed)
	require.NoError(t, err)
	img.AllocatePixels()

	assert.Error(t, img.Validate())

	img.Palette = &rimage.Palette{Format: pixelformat.BPP24RGB, Count: 1, Data: []byte{0, 0, 0}}
	assert.NoError(t, img.Validate())
}

func TestAppendMetaData(t *testing.T) {
	var head *rimage.MetaData
	rimage.Append(&head, &rimage.MetaData{Key: rimage.MetaTitle, Value: variant.FromString("a")})
	rimage.Append(&head, &rimage.MetaData{Key: rimage.MetaArtist, Value: variant.FromString("b")})

	var keys []rimage.MetaKey
	for n := head; n != nil; n = n.Next {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []rimage.MetaKey{rimage.MetaTitle, rimage.MetaArtist}, keys)
}

func TestDestroyClearsOwnedBuffersOnly(t *testing.T) {
	img, err := rimage.New(1, 1, pixelformat.BPP24RGB)
	require.NoError(t, err)
	img.Pixels = []byte{1, 2, 3}
	img.PixelOwnership = rimage.Shallow
	img.ICCProfile = &rimage.ICC{Data: []byte{1}}

	img.Destroy()
	assert.NotNil(t, img.Pixels, "shallow-owned pixels must survive Destroy")
	assert.Nil(t, img.ICCProfile)
}

func TestCopySkeletonSharesNoPixels(t *testing.T) {
	img, err := rimage.New(2, 2, pixelformat.BPP24RGB)
	require.NoError(t, err)
	img.AllocatePixels()

	cp := img.CopySkeleton()
	assert.Nil(t, cp.Pixels)
	assert.Equal(t, img.Width, cp.Width)
	assert.Equal(t, img.PixelFormat, cp.PixelFormat)
}
