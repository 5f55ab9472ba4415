package status_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdouchement/rasterio/status"
)

func TestIsMatchesCode(t *testing.T) {
	err := status.New(status.InvalidArgument)
	assert.True(t, status.Is(err, status.InvalidArgument))
	assert.False(t, status.Is(err, status.OpenFile))
}

func TestOfExtractsCode(t *testing.T) {
	err := status.Newf(status.CodecNotFound, "extension %q", "zzz")
	code, ok := status.Of(err)
	require.True(t, ok)
	assert.Equal(t, status.CodecNotFound, code)

	_, ok = status.Of(errors.New("plain error"))
	assert.False(t, ok)
}

func TestWrapPreservesUnderlyingAndNilIsNil(t *testing.T) {
	assert.NoError(t, status.Wrap(status.UnderlyingCodec, "op", nil))

	underlying := errors.New("boom")
	wrapped := status.Wrap(status.UnderlyingCodec, "load_frame", underlying)
	require.Error(t, wrapped)
	assert.True(t, status.Is(wrapped, status.UnderlyingCodec))
	assert.ErrorIs(t, wrapped, underlying)
}
