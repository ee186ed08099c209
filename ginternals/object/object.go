// Package object contains methods and objects to work with git objects
package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/reflogged/reflog/ginternals"
)

var (
	// ErrObjectUnknown represents an error thrown when encoutering an
	// unknown object
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")
)

// Type represents the type of an object as stored on disk
type Type int8

// List of all the possible object types
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid check id the object type is an existing type
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit,
		TypeTree,
		TypeBlob:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns an Type from its string
// representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a git object. An object can be of multiple types
// but they all share similarities (same storage system, same header,
// etc.).
// Objects are stored as loose zlib files in .re_flogged/objects;
// packfiles are not read or written.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	id      ginternals.Oid
	typ     Type
	content []byte

	idProcessing sync.Once
}

// New creates a new git object of the given type
func New(typ Type, content []byte) *Object {
	o := &Object{
		typ:     typ,
		content: content,
	}
	o.id, _ = o.build()
	return o
}

// ID returns the ID of the object.
func (o *Object) ID() ginternals.Oid {
	o.idProcessing.Do(func() {
		o.id, _ = o.build()
	})
	return o.id
}

// Size returns the size of the object
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's contents
func (o *Object) Bytes() []byte {
	return o.content
}

func (o *Object) build() (oid ginternals.Oid, data []byte) {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	w := new(bytes.Buffer)

	// Write the type
	w.WriteString(o.Type().String())
	// add the space
	w.WriteRune(' ')
	// write the size
	w.WriteString(strconv.Itoa(o.Size()))
	// Write the NULL char
	w.WriteByte(0)
	// Write the content
	w.Write(o.Bytes())

	// get the SHA of the file
	data = w.Bytes()
	oid = ginternals.NewOidFromContent(data)
	return oid, data
}

// Compress returns the object zlib compressed.
// The format of the compressed data is:
// [type] [size][NULL][content]
// The type in ascii, followed by a space, followed by the size in ascii,
// followed by a null character (0), followed by the object data
func (o *Object) Compress() ([]byte, error) {
	_, fileContent := o.build()
	return Deflate(fileContent)
}

// AsBlob parses the object as Blob
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree parses the object as Tree
//
// A tree has following format:
//
// {octal_mode} {path_name}\0{encoded_sha}
//
// Note:
// - a Tree may have multiple entries
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as Commit
//
// A commit has following format:
//
// tree {sha}
// parent {sha}
// author {author_name} <{author_email}> {author_date_seconds} {author_date_timezone}
// committer {committer_name} <{committer_email}> {committer_date_seconds} {committer_date_timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
// {gpg key over multiple lines}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {commit message}
//
// Note:
// - A commit can have 0, 1, or many parents lines
//   The very first commit of a repo has no parents
//   A regular commit as 1 parent
//   A merge commit has 2 or more parents
// - The gpgsig is optional
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}
