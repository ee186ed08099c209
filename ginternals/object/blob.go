package object

import (
	"os"

	"github.com/reflogged/reflog/ginternals"
	"golang.org/x/xerrors"
)

// Blob represents a blob object
type Blob struct {
	rawObject *Object
	mode      TreeObjectMode
}

// NewBlob returns a new Blob object from a git Object
func NewBlob(o *Object) *Blob {
	return &Blob{
		rawObject: o,
		mode:      ModeFile,
	}
}

// FromBytes builds a Blob out of raw content and a file mode.
// A mode of 0o100664 is normalized to 0o100644, matching the set of
// modes this implementation actually supports.
func FromBytes(content []byte, mode os.FileMode) *Blob {
	return &Blob{
		rawObject: New(TypeBlob, content),
		mode:      normalizeMode(mode),
	}
}

// FromFile reads a file from disk and builds the Blob that would
// represent its content in the object store
func FromFile(path string) (*Blob, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("could not read %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, xerrors.Errorf("could not stat %s: %w", path, err)
	}
	return FromBytes(content, info.Mode()), nil
}

// normalizeMode maps a POSIX file mode to the restricted set of tree
// entry modes this implementation understands, normalizing 0o100664
// (group-writable regular file) down to 0o100644.
func normalizeMode(mode os.FileMode) TreeObjectMode {
	if mode&0o111 != 0 {
		return ModeExecutable
	}
	return ModeFile
}

// Mode returns the tree entry mode to use when staging this blob
func (b *Blob) Mode() TreeObjectMode {
	return b.mode
}

// IsPersisted returns whether the object has been written to the odb
func (b *Blob) IsPersisted() bool {
	return b.rawObject.id != ginternals.NullOid
}

// ID returns the blob's ID
func (b *Blob) ID() ginternals.Oid {
	return b.rawObject.id
}

// Bytes returns the blob's contents
func (b *Blob) Bytes() []byte {
	return b.rawObject.content
}

// BytesCopy returns a copy of blob's contents
func (b *Blob) BytesCopy() []byte {
	out := make([]byte, len(b.rawObject.content))
	copy(out, b.rawObject.content)
	return out
}

// Size returns the size of the blob
func (b *Blob) Size() int {
	return len(b.rawObject.content)
}

// ToObject returns the Blob's underlying Object
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
