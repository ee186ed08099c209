package object_test

import (
	"bytes"
	"testing"

	"github.com/reflogged/reflog/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeflateInflate(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		src := []byte("blob 6\x00hello\n")
		compressed, err := object.Deflate(src)
		require.NoError(t, err)
		require.NotEmpty(t, compressed)
		assert.NotEqual(t, src, compressed)

		out, err := object.Inflate(bytes.NewReader(compressed))
		require.NoError(t, err)
		assert.Equal(t, src, out)
	})

	t.Run("empty input round trips", func(t *testing.T) {
		t.Parallel()

		compressed, err := object.Deflate(nil)
		require.NoError(t, err)

		out, err := object.Inflate(bytes.NewReader(compressed))
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("inflate rejects a non-zlib stream", func(t *testing.T) {
		t.Parallel()

		_, err := object.Inflate(bytes.NewReader([]byte("definitely not zlib")))
		require.Error(t, err)
	})
}
