// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"path/filepath"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/config"
	"github.com/reflogged/reflog/internal/cache"
	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/reflogged/reflog/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize is the number of parsed objects kept in the LRU
// object cache
const defaultCacheSize = 1024

// objectMutexesSize and refMutexesSize size the NamedMutex striping; both are
// primes to spread hash collisions more evenly
const (
	objectMutexesSize = 251
	refMutexesSize    = 127
)

// Backend is a Backend implementation that uses the filesystem to
// store data
type Backend struct {
	cfg *config.Config
	fs  afero.Fs

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex
	refMu    *syncutil.NamedMutex
}

// New returns a new Backend object that stores data under the layout
// described by cfg
func New(cfg *config.Config) *Backend {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Backend{
		cfg:      cfg,
		fs:       fs,
		cache:    cache.NewLRU(defaultCacheSize),
		objectMu: syncutil.NewNamedMutex(objectMutexesSize),
		refMu:    syncutil.NewNamedMutex(refMutexesSize),
	}
}

// Close free the resources
func (b *Backend) Close() error {
	return nil
}

// Init initializes a repository
func (b *Backend) Init() error {
	dirs := []string{
		ginternals.ObjectsInfoPath(b.cfg),
		ginternals.ObjectsPacksPath(b.cfg),
		ginternals.TagsPath(b.cfg),
		ginternals.LocalBranchesPath(b.cfg),
		filepath.Join(ginternals.DotGitPath(b.cfg), gitpath.HooksPath),
		filepath.Join(ginternals.DotGitPath(b.cfg), gitpath.InfoPath),
	}
	for _, d := range dirs {
		if err := b.fs.MkdirAll(d, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    ginternals.DescriptionFilePath(b.cfg),
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
		{
			path:    filepath.Join(ginternals.DotGitPath(b.cfg), gitpath.HEADPath),
			content: []byte("ref: refs/heads/master\n"),
		},
		{
			path:    ginternals.ConfigPath(b.cfg),
			content: []byte("# key=value pairs; user.name and user.email set the commit identity\n"),
		},
	}
	for _, f := range files {
		if err := afero.WriteFile(b.fs, f.path, f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f.path, err)
		}
	}

	return nil
}
