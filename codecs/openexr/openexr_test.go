package openexr_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/codec"
	"github.com/mdouchement/rasterio/codecs/openexr"
	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/pixelformat"
)

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func writeAttribute(buf *bytes.Buffer, name, typ string, value []byte) {
	writeCString(buf, name)
	writeCString(buf, typ)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(value)))
	buf.Write(size[:])
	buf.Write(value)
}

func channelEntry(name string, pixelType int32) []byte {
	var buf bytes.Buffer
	writeCString(&buf, name)
	var rest [16]byte
	binary.LittleEndian.PutUint32(rest[0:4], uint32(pixelType))
	buf.Write(rest[:])
	return buf.Bytes()
}

// buildHeader assembles a minimal OpenEXR scanline header: magic, version,
// channels/dataWindow/compression attributes, no pixel data.
func buildHeader(t *testing.T, width, height int, channels [][2]interface{}, compression byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0x01312f76))
	binary.Write(&buf, binary.LittleEndian, uint32(2))

	var chlist bytes.Buffer
	for _, c := range channels {
		chlist.Write(channelEntry(c[0].(string), int32(c[1].(int))))
	}
	chlist.WriteByte(0) // terminate channel list

	writeAttribute(&buf, "channels", "chlist", chlist.Bytes())

	var dw [16]byte
	binary.LittleEndian.PutUint32(dw[0:4], 0)
	binary.LittleEndian.PutUint32(dw[4:8], 0)
	binary.LittleEndian.PutUint32(dw[8:12], uint32(width-1))
	binary.LittleEndian.PutUint32(dw[12:16], uint32(height-1))
	writeAttribute(&buf, "dataWindow", "box2i", dw[:])

	writeAttribute(&buf, "compression", "compression", []byte{compression})

	buf.WriteByte(0) // terminate attribute list

	require.NotEmpty(t, buf.Bytes())
	return buf.Bytes()
}

func TestSeekNextFrameDerivesRGBAHalfFormat(t *testing.T) {
	data := buildHeader(t, 4, 3, [][2]interface{}{
		{"A", 1}, {"B", 1}, {"G", 1}, {"R", 1},
	}, 2) // ZIPS

	c := openexr.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(data), codec.DefaultLoadOptions())
	require.NoError(t, err)

	img, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, pixelformat.BPP64RGBAHalf, img.PixelFormat)
	require.NotNil(t, img.Source)
	assert.Equal(t, "ZIPS", img.Source.Compression)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err, "a second SeekNextFrame must report exhaustion")
}

func TestSeekNextFrameDerivesGrayFloatFormat(t *testing.T) {
	data := buildHeader(t, 2, 2, [][2]interface{}{{"Y", 2}}, 0)

	c := openexr.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(data), codec.DefaultLoadOptions())
	require.NoError(t, err)

	img, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	assert.Equal(t, pixelformat.BPP32GrayFloat, img.PixelFormat)
}

func TestSeekNextFrameRejectsUintChannels(t *testing.T) {
	data := buildHeader(t, 2, 2, [][2]interface{}{
		{"R", 0}, {"G", 0}, {"B", 0},
	}, 0)

	c := openexr.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(data), codec.DefaultLoadOptions())
	require.NoError(t, err)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}

func TestFrameReportsUnsupported(t *testing.T) {
	data := buildHeader(t, 1, 1, [][2]interface{}{{"R", 1}, {"G", 1}, {"B", 1}}, 0)

	c := openexr.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes(data), codec.DefaultLoadOptions())
	require.NoError(t, err)

	img, err := loadState.SeekNextFrame()
	require.NoError(t, err)
	img.AllocatePixels()

	err = loadState.Frame(img)
	assert.Error(t, err)
}

func TestInvalidMagicNumber(t *testing.T) {
	c := openexr.Codec{}
	loadState, err := c.LoadInit(iostream.FromBytes([]byte("not an exr file!!!!")), codec.DefaultLoadOptions())
	require.NoError(t, err)

	_, err = loadState.SeekNextFrame()
	assert.Error(t, err)
}
