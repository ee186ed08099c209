package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/reflogged/reflog/internal/env"
	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	testCases := []struct {
		desc           string
		cfg            LoadConfigOptions
		e              *env.Env
		expectedParams *Config
	}{
		{
			desc: "env should be used when available",
			cfg:  LoadConfigOptions{},
			e: env.NewFromKVList([]string{
				"RE_FLOGGED_DIR=" + filepath.Join(cwd, "flog"),
				"RE_FLOGGED_OBJECT_DIRECTORY=" + filepath.Join(cwd, "objects"),
				"RE_FLOGGED_CONFIG=" + filepath.Join(cwd, "flogconfig"),
			}),
			expectedParams: &Config{
				WorkTreePath:  cwd,
				GitDirPath:    filepath.Join(cwd, "flog"),
				LocalConfig:   filepath.Join(cwd, "flogconfig"),
				ObjectDirPath: filepath.Join(cwd, "objects"),
			},
		},
		{
			desc: "options should override env",
			cfg: LoadConfigOptions{
				GitDirPath: filepath.Join(cwd, "custom", "flog"),
			},
			e: env.NewFromKVList([]string{
				"RE_FLOGGED_DIR=" + filepath.Join(cwd, "flog"),
			}),
			expectedParams: &Config{
				WorkTreePath:  filepath.Join(cwd, "custom"),
				GitDirPath:    filepath.Join(cwd, "custom", "flog"),
				LocalConfig:   filepath.Join(cwd, "custom", "flog", gitpath.ConfigPath),
				ObjectDirPath: filepath.Join(cwd, "custom", "flog", gitpath.ObjectsPath),
			},
		},
		{
			desc: "relative paths should be made absolute based on the working directory",
			cfg:  LoadConfigOptions{},
			e: env.NewFromKVList([]string{
				"RE_FLOGGED_DIR=flog",
				"RE_FLOGGED_OBJECT_DIRECTORY=objects",
				"RE_FLOGGED_CONFIG=flogconfig",
			}),
			expectedParams: &Config{
				WorkTreePath:  cwd,
				GitDirPath:    filepath.Join(cwd, "flog"),
				LocalConfig:   filepath.Join(cwd, "flogconfig"),
				ObjectDirPath: filepath.Join(cwd, "objects"),
			},
		},
		{
			desc: "relative working directory should be made absolute based on the cwd",
			cfg: LoadConfigOptions{
				WorkingDirectory: "wd",
			},
			e: env.NewFromKVList([]string{
				"RE_FLOGGED_DIR=flog",
			}),
			expectedParams: &Config{
				WorkTreePath: filepath.Join(cwd, "wd"),
				GitDirPath:   filepath.Join(cwd, "wd", "flog"),
				LocalConfig:  filepath.Join(cwd, "wd", "flog", gitpath.ConfigPath),
				ObjectDirPath: filepath.Join(
					cwd, "wd", "flog", gitpath.ObjectsPath,
				),
			},
		},
	}
	for i, tc := range testCases {
		tc := tc
		i := i
		t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
			t.Parallel()

			out, err := LoadConfig(tc.e, tc.cfg)
			require.NoError(t, err)

			out.FS = nil
			assert.Equal(t, tc.expectedParams, out)
		})
	}
}

func TestLoadConfigDiscoversRootByWalkingUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, gitpath.DotGitPath), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	out, err := LoadConfig(env.NewFromKVList([]string{}), LoadConfigOptions{
		WorkingDirectory: nested,
	})
	require.NoError(t, err)
	assert.Equal(t, root, out.WorkTreePath)
	assert.Equal(t, filepath.Join(root, gitpath.DotGitPath), out.GitDirPath)
	assert.Equal(t, filepath.Join(root, gitpath.DotGitPath, gitpath.ObjectsPath), out.ObjectDirPath)
}

func TestLoadConfigOutsideARepoFails(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(env.NewFromKVList([]string{}), LoadConfigOptions{
		WorkingDirectory: t.TempDir(),
	})
	require.Error(t, err)
}

func TestLoadConfigWithUserFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	gitDir := filepath.Join("/repo", gitpath.DotGitPath)
	require.NoError(t, fs.MkdirAll(gitDir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(gitDir, gitpath.ConfigPath),
		[]byte("user.name=Jane Doe\nuser.email=jane@example.com\n"), 0o644))

	out, err := LoadConfig(env.NewFromKVList([]string{}), LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/repo",
		GitDirPath:       gitDir,
	})
	require.NoError(t, err)
	assert.Equal(t, User{Name: "Jane Doe", Email: "jane@example.com"}, out.User)
}

func TestLoadConfigSkipGitDirLookUp(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	out, err := LoadConfig(env.NewFromKVList([]string{}), LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: "/new-repo",
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/new-repo", out.WorkTreePath)
	assert.Equal(t, filepath.Join("/new-repo", gitpath.DotGitPath), out.GitDirPath)
}
