package psd_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/psd"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

func be16(v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return buf[:]
}

func be32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

// buildHeader assembles the fixed PSD preamble up to and including the
// compression field, leaving the planar raster to the caller.
func buildHeader(channels uint16, width, height uint32, depth uint16, mode uint16, compression uint16) *bytes.Buffer {
	var buf bytes.Buffer
	buf.WriteString("8BPS")
	buf.Write(be16(1))               // version
	buf.Write(make([]byte, 6))       // reserved
	buf.Write(be16(channels))
	buf.Write(be32(height))
	buf.Write(be32(width))
	buf.Write(be16(depth))
	buf.Write(be16(mode))
	buf.Write(be32(0)) // color mode data length
	buf.Write(be32(0)) // image resources length
	buf.Write(be32(0)) // layer/mask info length
	buf.Write(be16(compression))
	return &buf
}

func TestLoadUncompressedRGB(t *testing.T) {
	const width, height = 2, 2

	buf := buildHeader(3, width, height, 8, 3, 0)
	// Planar: R plane (4 bytes), G plane (4 bytes), B plane (4 bytes).
	buf.Write([]byte{10, 20, 30, 40})
	buf.Write([]byte{11, 21, 31, 41})
	buf.Write([]byte{12, 22, 32, 42})

	c := psd.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(buf.Bytes()), codec.DefaultLoadOptions())
	require.NoError(t, err)

	img, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	assert.Equal(t, width, img.Width)
	assert.Equal(t, height, img.Height)
	assert.Equal(t, pixelformat.BPP24RGB, img.PixelFormat)

	img.AllocatePixels()
	require.NoError(t, loadState.Frame(img))
	require.NoError(t, loadState.Finish())

	assert.Equal(t, []byte{10, 11, 12, 20, 21, 22}, img.Row(0))
	assert.Equal(t, []byte{30, 31, 32, 40, 41, 42}, img.Row(1))
}

func TestLoadRLEGray(t *testing.T) {
	const width, height = 4, 1

	buf := buildHeader(1, width, height, 8, 1, 1)
	// Byte-count table: height * channels * 2 bytes, value unused by the loader.
	buf.Write(make([]byte, height*1*2))
	// One RLE row: literal run of 2 (header 1), then repeat run of 2 (header 254 -> count 3... use 255 for 2).
	// Literal header: c = n-1 for n literals (c<128).
	buf.WriteByte(1) // 2 literal bytes follow
	buf.Write([]byte{100, 101})
	buf.WriteByte(255) // repeat: c=255 -> (255^0xFF)+2 = 2 repeats
	buf.WriteByte(200)

	c := psd.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(buf.Bytes()), codec.DefaultLoadOptions())
	require.NoError(t, err)

	img, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	assert.Equal(t, pixelformat.BPP8Gray, img.PixelFormat)

	img.AllocatePixels()
	require.NoError(t, loadState.Frame(img))

	assert.Equal(t, []byte{100, 101, 200, 200}, img.Row(0))
}

func TestInvalidMagic(t *testing.T) {
	c := psd.Codec{}
	_, err := c.LoadInit(iostream.FromBytes([]byte("GARBAGE!")), codec.DefaultLoadOptions())
	assert.Error(t, err)
}
