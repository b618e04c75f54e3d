package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressor_RoundTrip(t *testing.T) {
	compressor := NewCompressor()

	original := bytes.Repeat([]byte("<OrderData>repetitive xml content</OrderData>"), 50)

	compressed, err := compressor.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestCompressor_DecompressIgnoresTrailingPadding(t *testing.T) {
	compressor := NewCompressor()

	original := []byte("order data before cipher padding")
	compressed, err := compressor.Compress(original)
	require.NoError(t, err)

	// cipher block padding after the stream end must not break decoding
	padded := append(compressed, make([]byte, 16-len(compressed)%16)...)

	decompressed, err := compressor.Decompress(padded)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestCompressor_DecompressRejectsGarbage(t *testing.T) {
	_, err := NewCompressor().Decompress([]byte("not a zlib stream"))
	assert.Error(t, err)
}
