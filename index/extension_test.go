package index

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/reflogged/reflog/ginternals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildExtension wraps a body in the 4-byte signature + 4-byte
// big-endian size framing used after the entry stream
func buildExtension(sig string, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(sig)
	binary.Write(&buf, binary.BigEndian, uint32(len(body))) //nolint:errcheck // bytes.Buffer never fails
	buf.Write(body)
	return buf.Bytes()
}

func TestDecodeExtensions(t *testing.T) {
	t.Parallel()

	treeSha, err := ginternals.NewOidFromStr("aa02bf2fc06c0e0f5f4a4cbb92c6f7d3baf66be6")
	require.NoError(t, err)

	t.Run("TREE extension with a valid and an invalidated entry", func(t *testing.T) {
		t.Parallel()

		var body bytes.Buffer
		// root entry: empty path, 2 entries, 1 subtree, cached sha
		body.WriteByte(0)
		body.WriteString("2 1\n")
		body.Write(treeSha.Bytes())
		// invalidated subtree: no object name follows a -1 count
		body.WriteString("sub")
		body.WriteByte(0)
		body.WriteString("-1 0\n")

		tree, err := decodeExtensions(buildExtension("TREE", body.Bytes()))
		require.NoError(t, err)
		require.Len(t, tree, 2)

		assert.Equal(t, "", tree[0].Path)
		assert.Equal(t, 2, tree[0].EntryCount)
		assert.Equal(t, 1, tree[0].SubtreeCount)
		assert.Equal(t, treeSha, tree[0].ID)

		assert.Equal(t, "sub", tree[1].Path)
		assert.Equal(t, -1, tree[1].EntryCount)
		assert.True(t, tree[1].ID.IsZero())
	})

	t.Run("unknown optional extension is skipped", func(t *testing.T) {
		t.Parallel()

		tree, err := decodeExtensions(buildExtension("junk", []byte("whatever")))
		require.NoError(t, err)
		assert.Empty(t, tree)
	})

	t.Run("unknown required extension is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := decodeExtensions(buildExtension("LINK", []byte("data")))
		require.ErrorIs(t, err, ErrUnknownExtension)
	})

	t.Run("garbage entry count is fatal", func(t *testing.T) {
		t.Parallel()

		var body bytes.Buffer
		body.WriteString("dir")
		body.WriteByte(0)
		body.WriteString("x 0\n")

		_, err := decodeExtensions(buildExtension("TREE", body.Bytes()))
		require.ErrorIs(t, err, ErrIndexCorrupt)
	})
}
