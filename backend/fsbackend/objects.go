package fsbackend

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/object"
	"github.com/reflogged/reflog/internal/errutil"
	"github.com/reflogged/reflog/internal/readutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Object returns the object that has given oid
// This method can be called concurrently
func (b *Backend) Object(oid ginternals.Oid) (*object.Object, error) {
	key := oid[:]
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	return b.objectUnsafe(oid)
}

func (b *Backend) objectUnsafe(oid ginternals.Oid) (*object.Object, error) {
	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObjectPath returns the absolute path of an object
// .re_flogged/objects/first_2_chars_of_sha/remaining_chars_of_sha
func (b *Backend) looseObjectPath(sha string) string {
	return ginternals.LooseObjectPath(b.cfg, sha)
}

// looseObject returns the object matching the given OID
// The format of an object is an ascii encoded type, an ascii encoded
// space, then an ascii encoded length of the object, then a null
// character, then the body of the object
func (b *Backend) looseObject(oid ginternals.Oid) (o *object.Object, err error) {
	strOid := oid.String()
	p := b.looseObjectPath(strOid)
	f, err := b.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("object %s: %w", strOid, ginternals.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not get object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	buff, err := object.Inflate(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at path %s: %w", strOid, p, err)
	}

	pointerPos := 0

	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find object type for %s at path %s", strOid, p)
	}

	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %s for object %s at path %s", string(typ), strOid, p)
	}
	pointerPos += len(typ)
	pointerPos++ // one more for the space

	// A NULL char is represented by 0 (dec), 000 (octal), or 0x00 (hex)
	size := readutil.ReadTo(buff[pointerPos:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find object size for %s at path %s", strOid, p)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil {
		return nil, xerrors.Errorf("invalid size %s for object %s at path %s: %w", size, strOid, p, err)
	}
	pointerPos += len(size)
	pointerPos++                  // one more for the NULL char
	oContent := buff[pointerPos:] // sugar

	if len(oContent) != oSize {
		return nil, xerrors.Errorf("object marked as size %d, but has %d at path %s", oSize, len(oContent), p)
	}

	return object.New(oType, oContent), nil
}

// HasObject returns whether an object exists in the odb
// This method can be called concurrently
func (b *Backend) HasObject(oid ginternals.Oid) (bool, error) {
	key := oid[:]
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	return b.hasObjectUnsafe(oid)
}

func (b *Backend) hasObjectUnsafe(oid ginternals.Oid) (bool, error) {
	_, err := b.objectUnsafe(oid)
	if err == nil {
		return true, nil
	}
	if xerrors.Is(err, ginternals.ErrObjectNotFound) {
		return false, nil
	}
	return false, xerrors.Errorf("could not get object: %w", err)
}

// WriteObject adds an object to the odb
// This method can be called concurrently
func (b *Backend) WriteObject(o *object.Object) (ginternals.Oid, error) {
	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	oid := o.ID()
	b.objectMu.Lock(oid[:])
	defer b.objectMu.Unlock(oid[:])

	found, err := b.hasObjectUnsafe(oid)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not check if object (%s) already exists: %w", oid.String(), err)
	}
	if found {
		return oid, nil
	}

	sha := oid.String()
	p := b.looseObjectPath(sha)

	dest := filepath.Dir(p)
	if err = b.fs.MkdirAll(dest, 0o755); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not create the destination directory %s: %w", dest, err)
	}

	// We use 444 because objects are read-only once written
	if err = afero.WriteFile(b.fs, p, data, 0o444); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s at path %s: %w", sha, p, err)
	}

	b.cache.Add(oid, o)
	return oid, nil
}

// isLooseObjectDir checks if a directory name is anything between 00 and ff
func isLooseObjectDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	dirNum, parseErr := strconv.ParseInt(name, 16, 64)
	if parseErr != nil || dirNum < 0x00 || dirNum > 0xff {
		return false
	}
	return true
}

// WalkLooseObjectIDs runs the provided method on all the oids stored
// as loose objects
func (b *Backend) WalkLooseObjectIDs(f func(oid ginternals.Oid) error) error {
	p := ginternals.ObjectsPath(b.cfg)
	err := afero.Walk(b.fs, p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// the ./objects folder may not exist on an empty repo
			return nil
		}
		if path == p {
			return nil
		}

		if info.IsDir() {
			if !isLooseObjectDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isLooseObjectDir(filepath.Base(filepath.Dir(path))) {
			return nil
		}

		oid, oidErr := ginternals.NewOidFromPath(path)
		if oidErr != nil {
			return xerrors.Errorf("could not get oid from %s: %w", path, oidErr)
		}
		return f(oid)
	})
	if err == backend.WalkStop { //nolint:errorlint,goerr113 // fake error, no need for Is()
		return nil
	}
	return err
}
