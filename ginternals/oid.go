package ginternals

import (
	"crypto/sha1" //nolint:gosec // this is the hash git uses for object ids
	"encoding/hex"
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
)

// OidSize is the length of an Oid, in bytes
const OidSize = 20

var (
	// NullOid is the value of an empty Oid, or one that's all 0s
	NullOid = Oid{}

	// ErrInvalidOid is returned when a given value isn't a valid Oid
	ErrInvalidOid = errors.New("invalid Oid")
)

// Oid represents an object id
type Oid [OidSize]byte

// Bytes returns a byte slice of the Oid
func (o Oid) Bytes() []byte {
	return o[:]
}

// String converts an oid to its hex representation
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// IsZero returns whether the oid has the zero value (NullOid)
func (o Oid) IsZero() bool {
	return o == NullOid
}

// NewOidFromContent returns the Oid of the given content.
// The oid is the SHA1 sum of the content
func NewOidFromContent(content []byte) Oid {
	return sha1.Sum(content) //nolint:gosec
}

// NewOidFromHex returns an Oid from the provided raw, byte-encoded oid
// (not hex characters, the 20 raw bytes as stored on disk)
func NewOidFromHex(id []byte) (Oid, error) {
	if len(id) < OidSize {
		return NullOid, ErrInvalidOid
	}

	var oid Oid
	copy(oid[:], id)
	return oid, nil
}

// NewOidFromChars creates an Oid from the given hex char bytes.
// For the SHA {'9', 'b', '9', '1', 'd', 'a', ...}
// the oid will be {0x9b, 0x91, 0xda, ...}
func NewOidFromChars(id []byte) (Oid, error) {
	return NewOidFromStr(string(id))
}

// NewOidFromStr creates an Oid from the given hex string.
// For the SHA 9b91da06e69613397b38e0808e0ba5ee6983251b
// the oid will be {0x9b, 0x91, 0xda, ...}
func NewOidFromStr(id string) (Oid, error) {
	b, err := hex.DecodeString(id)
	if err != nil {
		return NullOid, ErrInvalidOid
	}
	if len(b) != OidSize {
		return NullOid, ErrInvalidOid
	}

	var oid Oid
	copy(oid[:], b)
	return oid, nil
}

// NewOidFromPath returns the Oid encoded in a loose object's path,
// whose last two components are the 2-char bucket directory and the
// remaining 38 hex chars (e.g. objects/ce/013625030b...).
func NewOidFromPath(p string) (Oid, error) {
	dir, file := filepath.Split(filepath.Clean(p))
	bucket := filepath.Base(dir)
	if len(bucket) != 2 || len(file) != OidSize*2-2 {
		return NullOid, ErrInvalidOid
	}
	return NewOidFromStr(bucket + file)
}

// ResolveOidPrefix disambiguates an abbreviated hex oid prefix (as
// accepted on the command line) against the loose objects stored
// under the given object dir bucket. It returns ErrObjectNotFound if
// no object matches, and ErrOidPrefixAmbiguous if more than one does.
func ResolveOidPrefix(fs afero.Fs, objectsDir string, prefix string) (Oid, error) {
	if len(prefix) < 4 || len(prefix) > OidSize*2 {
		return NullOid, ErrInvalidOid
	}
	if len(prefix) == OidSize*2 {
		return NewOidFromStr(prefix)
	}

	bucket := prefix[:2]
	rest := prefix[2:]
	entries, err := afero.ReadDir(fs, objectsDir+"/"+bucket)
	if err != nil {
		return NullOid, ErrObjectNotFound
	}

	var match Oid
	found := 0
	for _, e := range entries {
		if len(e.Name()) != OidSize*2-2 {
			continue
		}
		if len(rest) > len(e.Name()) || e.Name()[:len(rest)] != rest {
			continue
		}
		oid, err := NewOidFromStr(bucket + e.Name())
		if err != nil {
			continue
		}
		match = oid
		found++
	}

	switch {
	case found == 0:
		return NullOid, ErrObjectNotFound
	case found > 1:
		return NullOid, ErrOidPrefixAmbiguous
	default:
		return match, nil
	}
}
