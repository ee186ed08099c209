// Package reflog ties together the object store, the index, and
// references into the operations the reflog CLI exposes: init,
// hash-object, cat-file, update-index, write-tree, commit-tree,
// commit, update-ref, and log.
package reflog

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/backend/fsbackend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/config"
	"github.com/reflogged/reflog/ginternals/object"
	"github.com/reflogged/reflog/index"
	"github.com/reflogged/reflog/internal/env"
	"github.com/reflogged/reflog/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by the Repository type
var (
	ErrRepositoryExists = errors.New("repository already exists")
	ErrNotARepository   = errors.New("not a flog repository")
	ErrNotACommit       = errors.New("trying to write non-commit object")
)

// Repository is a handle on a single .re_flogged repository, replacing
// the teacher's implicit cwd-relative global state with an explicit
// value every operation is called on.
type Repository struct {
	cfg     *config.Config
	backend backend.Backend
	index   *index.Index
}

// InitOptions customizes Init/Open
type InitOptions struct {
	// FS is the filesystem implementation to use. Defaults to the OS
	// filesystem.
	FS afero.Fs
	// WorkingDirectory is the directory Init/Open operate relative to.
	// Defaults to the process's current directory.
	WorkingDirectory string
	// Env is the environment Open reads $RE_FLOGGED_DIR-style overrides
	// from. Defaults to the process environment.
	Env *env.Env
}

// Init creates a new repository rooted at opts.WorkingDirectory (or
// the current directory), creating .re_flogged and its HEAD symbolic
// reference pointing at refs/heads/master.
func Init(opts InitOptions) (*Repository, error) {
	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               opts.FS,
		WorkingDirectory: opts.WorkingDirectory,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not load config: %w", err)
	}

	if _, err := cfg.FS.Stat(cfg.GitDirPath); err == nil {
		return nil, ErrRepositoryExists
	}

	be := fsbackend.New(cfg)
	if err := be.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize repository: %w", err)
	}

	head := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(ginternals.Master))
	if err := be.WriteReference(head); err != nil {
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	idx, err := index.New(cfg.FS, filepath.Join(cfg.GitDirPath, gitpath.IndexPath), cfg.WorkTreePath, be, 0)
	if err != nil {
		return nil, xerrors.Errorf("could not load index: %w", err)
	}

	return &Repository{cfg: cfg, backend: be, index: idx}, nil
}

// Open loads an existing repository, walking up from
// opts.WorkingDirectory to find .re_flogged the same way LoadConfig
// does.
func Open(opts InitOptions) (*Repository, error) {
	e := opts.Env
	if e == nil {
		e = env.NewFromOs()
	}
	cfg, err := config.LoadConfig(e, config.LoadConfigOptions{
		FS:               opts.FS,
		WorkingDirectory: opts.WorkingDirectory,
	})
	if err != nil {
		return nil, xerrors.Errorf("%w: %s", ErrNotARepository, err.Error())
	}

	be := fsbackend.New(cfg)
	idx, err := index.New(cfg.FS, filepath.Join(cfg.GitDirPath, gitpath.IndexPath), cfg.WorkTreePath, be, 0)
	if err != nil {
		return nil, xerrors.Errorf("could not load index: %w", err)
	}

	return &Repository{cfg: cfg, backend: be, index: idx}, nil
}

// Backend exposes the underlying object/ref store, for callers (like
// the log package) that operate directly on it.
func (r *Repository) Backend() backend.Backend {
	return r.backend
}

// Config returns the repository's configuration
func (r *Repository) Config() *config.Config {
	return r.cfg
}

// Index returns the repository's staging area
func (r *Repository) Index() *index.Index {
	return r.index
}

// HashObject builds the Blob for content/mode and, if write is true,
// persists it to the object store.
func (r *Repository) HashObject(content []byte, mode os.FileMode, write bool) (*object.Blob, error) {
	blob := object.FromBytes(content, mode)
	if write {
		if _, err := r.backend.WriteObject(blob.ToObject()); err != nil {
			return nil, xerrors.Errorf("could not write object: %w", err)
		}
	}
	return blob, nil
}

// ResolvePrefix disambiguates an abbreviated SHA against the object
// store's loose object buckets.
func (r *Repository) ResolvePrefix(prefix string) (ginternals.Oid, error) {
	return ginternals.ResolveOidPrefix(r.cfg.FS, r.cfg.ObjectDirPath, prefix)
}

// Object loads the object with the given id (or id prefix)
func (r *Repository) Object(idOrPrefix string) (*object.Object, error) {
	oid, err := r.ResolvePrefix(idOrPrefix)
	if err != nil {
		return nil, err
	}
	return r.backend.Object(oid)
}

// WriteTree builds a tree object from the current index and writes it
// (and every subtree it contains) to the object store, returning the
// root tree's id. missingOK controls whether a staged blob missing from
// the store is fatal or just a warning (see index.BuildTree).
func (r *Repository) WriteTree(missingOK bool) (ginternals.Oid, error) {
	return index.BuildTree(r.index.Entries(), r.backend, missingOK)
}

// CommitTreeOptions mirrors the commit-tree plumbing command's inputs
type CommitTreeOptions struct {
	Message   string
	ParentIDs []ginternals.Oid
}

// Default identity used to sign commits when .re_flogged/config
// doesn't provide user.name/user.email
const (
	defaultUserName  = "re_flogged"
	defaultUserEmail = "re_flogged@localhost"
)

// CommitTree creates a commit object pointing at treeID, with the
// given parents and message, and writes it to the object store.
func (r *Repository) CommitTree(treeID ginternals.Oid, opts CommitTreeOptions) (*object.Commit, error) {
	name, email := r.cfg.User.Name, r.cfg.User.Email
	if name == "" {
		name = defaultUserName
	}
	if email == "" {
		email = defaultUserEmail
	}
	author := object.NewSignature(name, email)
	c := object.NewCommit(treeID, author, &object.CommitOptions{
		Message:   opts.Message,
		ParentsID: opts.ParentIDs,
	})
	if _, err := r.backend.WriteObject(c.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not write commit object: %w", err)
	}
	return c, nil
}

// Commit builds a tree from the current index, commits it with the
// given message on top of HEAD's current commit (if any), updates HEAD
// (or the branch it points at) to the new commit, and clears the
// index's dependency on any particular working state.
//
// The new commit's parent is HEAD's own current commit, not some
// ancestor of it: a plain, unsurprising linear history.
func (r *Repository) Commit(message string) (*object.Commit, error) {
	treeID, err := r.WriteTree(false)
	if err != nil {
		return nil, xerrors.Errorf("could not write tree: %w", err)
	}

	var parents []ginternals.Oid
	headRef, err := r.backend.Reference(ginternals.Head)
	if err == nil && !headRef.Target().IsZero() {
		parents = []ginternals.Oid{headRef.Target()}
	} else if err != nil && !xerrors.Is(err, ginternals.ErrRefNotFound) {
		return nil, xerrors.Errorf("could not resolve HEAD: %w", err)
	}

	commit, err := r.CommitTree(treeID, CommitTreeOptions{Message: message, ParentIDs: parents})
	if err != nil {
		return nil, err
	}

	if err := r.updateHead(commit.ID()); err != nil {
		return nil, err
	}

	r.index.Clear()
	if err := r.index.Write(); err != nil {
		return nil, xerrors.Errorf("could not clear index: %w", err)
	}
	return commit, nil
}

// updateHead writes id as the target of the branch HEAD points at.
//
// The CLI never detaches or switches HEAD (there's no checkout/branch
// command in its surface), so HEAD always symbolically targets
// refs/heads/master once Init has run; we update that branch directly
// rather than trying to resolve HEAD's own symbolic target, which would
// fail on the very first commit (the target doesn't exist yet).
func (r *Repository) updateHead(id ginternals.Oid) error {
	return r.UpdateRef(ginternals.LocalBranchFullName(ginternals.Master), id)
}

// UpdateRef points the given ref name at id, a commit object. Writing a
// ref to anything other than a commit is fatal: re_flogged only models
// branches, never lightweight tags pointing at arbitrary objects.
func (r *Repository) UpdateRef(name string, id ginternals.Oid) error {
	o, err := r.backend.Object(id)
	if err != nil {
		return xerrors.Errorf("could not find object %s: %w", id, err)
	}
	if o.Type() != object.TypeCommit {
		return xerrors.Errorf("%s: %w", id, ErrNotACommit)
	}
	return r.backend.WriteReference(ginternals.NewReference(name, id))
}

// Head resolves HEAD to a commit id. ginternals.NullOid, nil is
// returned for a freshly initialized repository with no commits yet.
func (r *Repository) Head() (ginternals.Oid, error) {
	ref, err := r.backend.Reference(ginternals.Head)
	if err != nil {
		if xerrors.Is(err, ginternals.ErrRefNotFound) {
			return ginternals.NullOid, nil
		}
		return ginternals.NullOid, err
	}
	return ref.Target(), nil
}
