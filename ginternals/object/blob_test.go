package object_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reflogged/reflog/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlob(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		data := "this is a fake content"
		o := object.New(object.TypeBlob, []byte(data))
		blob := object.NewBlob(o)

		assert.Equal(t, 22, blob.Size())
		assert.Equal(t, []byte(data), blob.Bytes())
		assert.Equal(t, []byte(data), blob.BytesCopy())

		assert.Equal(t, o, blob.ToObject())
	})

	t.Run(".BytesCopy() should return immutable data", func(t *testing.T) {
		t.Parallel()

		data := "this is a fake content"
		o := object.New(object.TypeBlob, []byte(data))
		blob := object.NewBlob(o)

		assert.Equal(t, []byte(data), blob.BytesCopy())

		// We update the data, and make sure it hasn't actually
		// updates anything
		blob.BytesCopy()[0] = '0'
		assert.Equal(t, []byte(data), blob.BytesCopy())
	})

	t.Run(".Bytes() should return mutable data", func(t *testing.T) {
		t.Parallel()

		data := "this is a fake content"
		expected := "0his is a fake content"
		o := object.New(object.TypeBlob, []byte(data))
		blob := object.NewBlob(o)

		assert.Equal(t, []byte(data), blob.Bytes())

		// We update the data, and make sure it hasn't actually
		// updates anything
		blob.Bytes()[0] = '0'
		assert.NotEqual(t, []byte(data), blob.Bytes())
		assert.Equal(t, expected, string(blob.Bytes()))
	})
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	t.Run("regular file should get mode 100644", func(t *testing.T) {
		t.Parallel()

		p := filepath.Join(t.TempDir(), "README.md")
		require.NoError(t, os.WriteFile(p, []byte("hello"), 0o664))

		blob, err := object.FromFile(p)
		require.NoError(t, err)

		assert.Equal(t, object.ModeFile, blob.Mode(), "0o100664 should be normalized to 0o100644")
		assert.Equal(t, []byte("hello"), blob.Bytes())
	})

	t.Run("executable file should get mode 100755", func(t *testing.T) {
		t.Parallel()

		p := filepath.Join(t.TempDir(), "build.sh")
		require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755))

		blob, err := object.FromFile(p)
		require.NoError(t, err)

		assert.Equal(t, object.ModeExecutable, blob.Mode())
	})

	t.Run("missing file should fail", func(t *testing.T) {
		t.Parallel()

		_, err := object.FromFile(filepath.Join(t.TempDir(), "doesnt-exist"))
		require.Error(t, err)
	})
}
