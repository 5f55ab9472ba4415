package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio"
	"github.com/mdouchement/rasterio/iostream"
)

// TestExtensionMIMEMagicAgreement covers spec scenario S6 and property 4:
// resolving the JPEG codec by extension (in either case), by MIME type,
// and by magic signature must all agree on the same underlying format.
func TestExtensionMIMEMagicAgreement(t *testing.T) {
	byExt, err := rasterio.CodecFor("JPG")
	require.NoError(t, err)

	byExt2, err := rasterio.DefaultRegistry.FromExtension("jpeg")
	require.NoError(t, err)
	assert.Equal(t, byExt.Info().Name, byExt2.Info().Name)

	byMIME, err := rasterio.DefaultRegistry.FromMIME("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, byExt.Info().Name, byMIME.Info().Name)

	jpegMagic := iostream.FromBytes([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10})
	byMagic, err := rasterio.DefaultRegistry.FromMagic(jpegMagic)
	require.NoError(t, err)
	assert.Equal(t, byExt.Info().Name, byMagic.Info().Name)
}

func TestFromExtensionUnknown(t *testing.T) {
	_, err := rasterio.DefaultRegistry.FromExtension("notareexistingformat")
	assert.Error(t, err)
}

func TestFromMagicRestoresPosition(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}
	io := iostream.FromBytes(data)

	err := io.Seek(5, iostream.Set)
	require.NoError(t, err)

	c, err := rasterio.DefaultRegistry.FromMagic(io)
	require.NoError(t, err)
	assert.Equal(t, "PNG", c.Info().Name)

	pos, err := io.Tell()
	require.NoError(t, err)
	assert.EqualValues(t, 5, pos, "FromMagic must restore the original stream position")
}
