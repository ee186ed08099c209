package fsbackend

import (
	"path/filepath"
	"testing"

	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestReference(t *testing.T) {
	t.Parallel()

	t.Run("should fail if reference doesn't exist", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		ref, err := b.Reference("refs/heads/doesnt_exist")
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ginternals.ErrRefNotFound), "unexpected error returned")
		assert.Nil(t, ref)
	})

	t.Run("should follow a symbolic ref", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)
		require.NoError(t, b.WriteReference(ginternals.NewReference(ginternals.LocalBranchFullName("master"), target)))
		require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName("master"))))

		ref, err := b.Reference(ginternals.Head)
		require.NoError(t, err)
		require.NotNil(t, ref)

		assert.Equal(t, ginternals.Head, ref.Name())
		assert.Equal(t, ginternals.LocalBranchFullName("master"), ref.SymbolicTarget())
		assert.Equal(t, target, ref.Target())
	})

	t.Run("should resolve an oid ref", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)
		refName := ginternals.LocalBranchFullName("master")
		require.NoError(t, b.WriteReference(ginternals.NewReference(refName, target)))

		ref, err := b.Reference(refName)
		require.NoError(t, err)
		require.NotNil(t, ref)

		assert.Equal(t, refName, ref.Name())
		assert.Empty(t, ref.SymbolicTarget())
		assert.Equal(t, target, ref.Target())
	})
}

func TestWriteReferenceSafe(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
	require.NoError(t, err)
	refName := ginternals.LocalBranchFullName("master")

	require.NoError(t, b.WriteReferenceSafe(ginternals.NewReference(refName, target)))

	err = b.WriteReferenceSafe(ginternals.NewReference(refName, target))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ginternals.ErrRefExists))
}

func TestWalkReferences(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
	require.NoError(t, err)

	require.NoError(t, b.WriteReference(ginternals.NewReference(ginternals.LocalBranchFullName("master"), target)))
	require.NoError(t, b.WriteReference(ginternals.NewReference(ginternals.LocalBranchFullName("dev"), target)))

	var names []string
	err = b.WalkReferences(func(ref *ginternals.Reference) error {
		names = append(names, ref.Name())
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		ginternals.LocalBranchFullName("master"),
		ginternals.LocalBranchFullName("dev"),
	}, names)
}

func TestSystemPath(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               afero.NewMemMapFs(),
		WorkingDirectory: "/repo",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)

	b := New(cfg)
	assert.Equal(t, filepath.Join("/repo/.re_flogged", "refs", "heads", "master"), b.systemPath("refs/heads/master"))
}
