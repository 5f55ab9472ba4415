package iostream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/iostream"
)

func TestFromBytesStrictReadAndSeek(t *testing.T) {
	io := iostream.FromBytes([]byte("hello world"))

	buf := make([]byte, 5)
	require.NoError(t, io.StrictRead(buf))
	assert.Equal(t, "hello", string(buf))

	pos, err := io.Tell()
	require.NoError(t, err)
	assert.EqualValues(t, 5, pos)

	require.NoError(t, io.Seek(0, iostream.Set))
	require.NoError(t, io.StrictRead(buf))
	assert.Equal(t, "hello", string(buf))

	// Reading past the end strictly fails.
	tail := make([]byte, 100)
	require.Error(t, io.StrictRead(tail))
}

func TestFromBytesWritesFail(t *testing.T) {
	io := iostream.FromBytes([]byte("abc"))
	assert.Error(t, io.StrictWrite([]byte("x")))
}

func TestExpandingBufferGrows(t *testing.T) {
	buf := iostream.NewExpandingBuffer()
	require.NoError(t, buf.StrictWrite([]byte("abc")))
	require.NoError(t, buf.StrictWrite([]byte("def")))
	assert.Equal(t, "abcdef", string(buf.Bytes()))

	size, err := buf.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 6, size)
}

func TestSeekWhences(t *testing.T) {
	io := iostream.FromBytes([]byte("0123456789"))

	require.NoError(t, io.Seek(3, iostream.Set))
	pos, _ := io.Tell()
	assert.EqualValues(t, 3, pos)

	require.NoError(t, io.Seek(2, iostream.Cur))
	pos, _ = io.Tell()
	assert.EqualValues(t, 5, pos)

	require.NoError(t, io.Seek(-1, iostream.End))
	pos, _ = io.Tell()
	assert.EqualValues(t, 9, pos)

	assert.Error(t, io.Seek(-1, iostream.Set))
}
