package fsbackend_test

import (
	"path/filepath"
	"testing"

	"github.com/reflogged/reflog/backend/fsbackend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/config"
	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               afero.NewMemMapFs(),
		WorkingDirectory: "/repo",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

func TestInit(t *testing.T) {
	t.Parallel()

	t.Run("regular repo should work", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t)
		b := fsbackend.New(cfg)
		t.Cleanup(func() {
			require.NoError(t, b.Close())
		})

		require.NoError(t, b.Init())

		exists, err := afero.DirExists(cfg.FS, ginternals.ObjectsPath(cfg))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = afero.Exists(cfg.FS, filepath.Join(cfg.GitDirPath, gitpath.HEADPath))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = afero.Exists(cfg.FS, ginternals.ConfigPath(cfg))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("init is idempotent", func(t *testing.T) {
		t.Parallel()

		b := fsbackend.New(newTestConfig(t))
		t.Cleanup(func() {
			require.NoError(t, b.Close())
		})

		require.NoError(t, b.Init())
		require.NoError(t, b.Init())
	})
}
