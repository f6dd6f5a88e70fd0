package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("blob 5\x00hello")

	t.Run("zlib", func(t *testing.T) {
		t.Parallel()

		data, err := compress(payload, FormatZlib, 0)
		require.NoError(t, err)

		got, err := decompress(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("zstd", func(t *testing.T) {
		t.Parallel()

		data, err := compress(payload, FormatZstd, 3)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, zstdMagic))

		got, err := decompress(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})
}

func TestDecompressRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := decompress(bytes.NewReader([]byte("not a compressed frame")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestIsZlibHeader(t *testing.T) {
	t.Parallel()

	data, err := compress([]byte("x"), FormatZlib, 0)
	require.NoError(t, err)
	assert.True(t, isZlibHeader(data[0], data[1]))
	assert.False(t, isZlibHeader(0xFF, 0xFF))
}
