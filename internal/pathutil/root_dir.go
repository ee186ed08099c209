package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrNoRepo is an error returned when no repo is found
var ErrNoRepo = errors.New("not a flog repository (or any of the parent directories)")

// RepoRoot returns the absolute path to the root of the repo, found by
// walking up from the current working directory until a directory
// containing .re_flogged is found
func RepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return RepoRootFromPath(afero.NewOsFs(), wd)
}

// RepoRootFromPath returns the absolute path to the root of a repo
// containing the provided directory
func RepoRootFromPath(fs afero.Fs, p string) (string, error) {
	prev := ""
	for p != prev {
		info, err := fs.Stat(filepath.Join(p, gitpath.DotGitPath))
		if err == nil && info.IsDir() {
			return p, nil
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}
