package webp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vp8lChunk(width, height int) []byte {
	bits := uint32(width-1) | uint32(height-1)<<14
	var data [5]byte
	data[0] = 0x2F
	binary.LittleEndian.PutUint32(data[1:5], bits)
	return data[:]
}

func TestBitstreamDimensionsVP8L(t *testing.T) {
	w, h, err := bitstreamDimensions(fourCCVP8L, vp8lChunk(37, 19))
	require.NoError(t, err)
	assert.Equal(t, 37, w)
	assert.Equal(t, 19, h)
}

func TestParseSimpleFile(t *testing.T) {
	payload := vp8lChunk(4, 3)
	file := wrapSimpleWebP(fourCCVP8L, payload)

	c, err := parseFile(file)
	require.NoError(t, err)
	assert.False(t, c.animated)
	assert.Equal(t, 4, c.canvasWidth)
	assert.Equal(t, 3, c.canvasHeight)
	require.Len(t, c.frames, 1)
	assert.Equal(t, -1, c.frames[0].durationMS)
}

func TestParseANMFHeader(t *testing.T) {
	var header [anmfChunkSize]byte
	// offsetX = 4 (stored/2 = 2), offsetY = 6 (stored/2 = 3)
	header[0], header[1], header[2] = 2, 0, 0
	header[3], header[4], header[5] = 3, 0, 0
	// width = 10 (stored-1 = 9), height = 20 (stored-1 = 19)
	header[6], header[7], header[8] = 9, 0, 0
	header[9], header[10], header[11] = 19, 0, 0
	// duration = 300ms
	header[12], header[13], header[14] = 44, 1, 0
	header[15] = 0x01 // dispose-to-background, blend (bit 0x02 clear)

	image := writeChunk(nil, fourCCVP8L, vp8lChunk(10, 20))
	data := append(append([]byte(nil), header[:]...), image...)

	f, err := parseANMF(data)
	require.NoError(t, err)
	assert.Equal(t, 4, f.x)
	assert.Equal(t, 6, f.y)
	assert.Equal(t, 10, f.width)
	assert.Equal(t, 20, f.height)
	assert.Equal(t, 300, f.durationMS)
	assert.Equal(t, disposeBackground, f.dispose)
	assert.Equal(t, blendAlpha, f.blend)
}

func TestParseAnimatedContainer(t *testing.T) {
	var vp8x [vp8xChunkSize]byte
	vp8x[0] = 0x02 // animation flag
	vp8x[4], vp8x[5], vp8x[6] = 9, 0, 0   // width-1 = 9 -> width 10
	vp8x[7], vp8x[8], vp8x[9] = 4, 0, 0   // height-1 = 4 -> height 5

	var anim [animChunkSize]byte
	// background BGRA bytes on disk: B, G, R, A
	anim[0], anim[1], anim[2], anim[3] = 10, 20, 30, 255
	binary.LittleEndian.PutUint16(anim[4:6], 0) // infinite loop

	var anmfHeader [anmfChunkSize]byte
	anmfHeader[6], anmfHeader[7], anmfHeader[8] = 9, 0, 0
	anmfHeader[9], anmfHeader[10], anmfHeader[11] = 4, 0, 0
	image := writeChunk(nil, fourCCVP8L, vp8lChunk(10, 5))
	anmfPayload := append(append([]byte(nil), anmfHeader[:]...), image...)

	var riffPayload []byte
	riffPayload = writeChunk(riffPayload, fourCCVP8X, vp8x[:])
	riffPayload = writeChunk(riffPayload, fourCCANIM, anim[:])
	riffPayload = writeChunk(riffPayload, fourCCANMF, anmfPayload)

	file := make([]byte, 0, riffHeaderSize+len(riffPayload))
	file = append(file, fourCCRIFF...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+len(riffPayload)))
	file = append(file, size[:]...)
	file = append(file, fourCCWEBP...)
	file = append(file, riffPayload...)

	c, err := parseFile(file)
	require.NoError(t, err)
	assert.True(t, c.animated)
	assert.Equal(t, 10, c.canvasWidth)
	assert.Equal(t, 5, c.canvasHeight)
	assert.Equal(t, rgba{r: 30, g: 20, b: 10, a: 255}, c.background)
	require.Len(t, c.frames, 1)
}

func TestBlendOverOpaqueSourceWins(t *testing.T) {
	r, g, b, a := blendOver([4]byte{10, 20, 30, 255}, [4]byte{200, 200, 200, 255})
	assert.Equal(t, byte(10), r)
	assert.Equal(t, byte(20), g)
	assert.Equal(t, byte(30), b)
	assert.Equal(t, byte(255), a)
}

func TestBlendOverTransparentSourceKeepsDest(t *testing.T) {
	r, g, b, a := blendOver([4]byte{10, 20, 30, 0}, [4]byte{200, 150, 100, 255})
	assert.Equal(t, byte(200), r)
	assert.Equal(t, byte(150), g)
	assert.Equal(t, byte(100), b)
	assert.Equal(t, byte(255), a)
}

func TestCheckSignatureRejectsGarbage(t *testing.T) {
	assert.Error(t, checkSignature([]byte("not a webp file")))
}
