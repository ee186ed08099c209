package fsbackend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Reference returns a stored reference from its name
// ErrRefNotFound is returned if the reference doesn't exists
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	key := []byte(name)
	b.refMu.RLock(key)
	defer b.refMu.RUnlock(key)

	finder := func(name string) ([]byte, error) {
		data, err := afero.ReadFile(b.fs, b.systemPath(name))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
			}
			return nil, xerrors.Errorf("could not read reference content: %w", err)
		}
		return data, nil
	}
	return ginternals.ResolveReference(name, finder)
}

// systemPath returns the on-disk path of a ref name, under the
// repository directory and with system separators
// Ex.: refs/heads/master returns <repo dir>/refs/heads/master
func (b *Backend) systemPath(name string) string {
	return ginternals.RefPath(b.cfg, name)
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	key := []byte(ref.Name())
	b.refMu.Lock(key)
	defer b.refMu.Unlock(key)

	return b.writeReferenceUnsafe(ref)
}

func (b *Backend) writeReferenceUnsafe(ref *ginternals.Reference) error {
	target := ""
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrUnknownRefType)
	}

	p := b.systemPath(ref.Name())
	if err := b.fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return xerrors.Errorf("could not create directory for reference %s: %w", ref.Name(), err)
	}

	// write-to-temp then rename, so a reader never sees a truncated ref
	tmp := p + ".lock"
	if err := afero.WriteFile(b.fs, tmp, []byte(target), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	if err := b.fs.Rename(tmp, p); err != nil {
		return xerrors.Errorf("could not move reference %s into place: %w", ref.Name(), err)
	}
	return nil
}

// WriteReferenceSafe writes the given reference in the db
// ErrRefExists is returned if the reference already exists
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return ginternals.ErrRefNameInvalid
	}

	key := []byte(ref.Name())
	b.refMu.Lock(key)
	defer b.refMu.Unlock(key)

	p := b.systemPath(ref.Name())
	_, err := b.fs.Stat(p)
	if err == nil {
		return ginternals.ErrRefExists
	}
	if !os.IsNotExist(err) {
		return xerrors.Errorf("could not check if reference exists on disk: %w", err)
	}

	return b.writeReferenceUnsafe(ref)
}

// WalkReferences runs the provided method on all the references found
// under refs/heads and refs/tags
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	refsRoot := ginternals.RefsPath(b.cfg)
	err := afero.Walk(b.fs, refsRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// refs/ may not exist yet on a brand new repo
			return nil
		}
		if info.IsDir() {
			return nil
		}

		name := filepath.ToSlash(strings.TrimPrefix(path, ginternals.DotGitPath(b.cfg)+string(filepath.Separator)))
		ref, err := b.Reference(name)
		if err != nil {
			return xerrors.Errorf("could not resolve reference %s: %w", name, err)
		}
		return f(ref)
	})
	if err == backend.WalkStop { //nolint:errorlint,goerr113 // fake error, no need for Is()
		return nil
	}
	return err
}
