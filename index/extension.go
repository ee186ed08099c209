package index

import (
	"encoding/binary"
	"strconv"

	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/internal/readutil"
	"golang.org/x/xerrors"
)

// extension signatures recognized after the entry list
var (
	treeExtSig = [4]byte{'T', 'R', 'E', 'E'}
)

// TreeCacheEntry is one node of the TREE extension: a cached tree SHA
// for a path prefix of the index, along with the number of entries
// and subtrees it covers. This implementation reads it (so index files
// that carry it still load) but never trusts it: write-tree always
// rebuilds the tree from the live entry list, never from this cache.
// Index.Write does not write it back.
type TreeCacheEntry struct {
	Path         string
	EntryCount   int
	SubtreeCount int
	ID           ginternals.Oid
}

// decodeExtensions walks the optional extension blocks that follow the
// entry list. Each extension starts with a 4-byte signature and a
// 4-byte big-endian size. A signature whose first letter is uppercase
// is "required": an unrecognized one must abort loading. A lowercase
// first letter marks an optional extension that can be safely skipped.
func decodeExtensions(data []byte) ([]TreeCacheEntry, error) {
	var tree []TreeCacheEntry
	offset := 0
	for offset < len(data) {
		if offset+8 > len(data) {
			return nil, xerrors.Errorf("truncated extension header: %w", ErrIndexCorrupt)
		}
		var sig [4]byte
		copy(sig[:], data[offset:offset+4])
		size := binary.BigEndian.Uint32(data[offset+4 : offset+8])
		offset += 8
		if offset+int(size) > len(data) {
			return nil, xerrors.Errorf("truncated extension body: %w", ErrIndexCorrupt)
		}
		body := data[offset : offset+int(size)]
		offset += int(size)

		switch sig {
		case treeExtSig:
			t, err := decodeTreeExtension(body)
			if err != nil {
				return nil, err
			}
			tree = t
		default:
			if sig[0] >= 'A' && sig[0] <= 'Z' {
				return nil, xerrors.Errorf("extension %q: %w", string(sig[:]), ErrUnknownExtension)
			}
			// optional extension: ignore its contents
		}
	}
	return tree, nil
}

// decodeTreeExtension parses the TREE cache extension body: a sequence
// of NUL-terminated path / "entry-count subtree-count" / [sha] records.
// An entry-count of -1 means "invalidated", and carries no SHA.
func decodeTreeExtension(data []byte) ([]TreeCacheEntry, error) {
	var entries []TreeCacheEntry
	offset := 0
	for offset < len(data) {
		name := readutil.ReadTo(data[offset:], 0)
		if name == nil {
			return nil, xerrors.Errorf("tree extension: missing path terminator: %w", ErrIndexCorrupt)
		}
		path := string(name)
		offset += len(name) + 1

		field := readutil.ReadTo(data[offset:], ' ')
		if field == nil {
			return nil, xerrors.Errorf("tree extension: missing entry count: %w", ErrIndexCorrupt)
		}
		entryCount, err := strconv.Atoi(string(field))
		if err != nil {
			return nil, xerrors.Errorf("tree extension: invalid entry count %q: %w", field, ErrIndexCorrupt)
		}
		offset += len(field) + 1

		field = readutil.ReadTo(data[offset:], '\n')
		if field == nil {
			return nil, xerrors.Errorf("tree extension: missing subtree count: %w", ErrIndexCorrupt)
		}
		subtreeCount, err := strconv.Atoi(string(field))
		if err != nil {
			return nil, xerrors.Errorf("tree extension: invalid subtree count %q: %w", field, ErrIndexCorrupt)
		}
		offset += len(field) + 1

		entry := TreeCacheEntry{Path: path, EntryCount: entryCount, SubtreeCount: subtreeCount}
		if entryCount >= 0 {
			if offset+ginternals.OidSize > len(data) {
				return nil, xerrors.Errorf("tree extension: truncated sha: %w", ErrIndexCorrupt)
			}
			oid, err := ginternals.NewOidFromHex(data[offset : offset+ginternals.OidSize])
			if err != nil {
				return nil, xerrors.Errorf("tree extension: invalid sha: %w", err)
			}
			entry.ID = oid
			offset += ginternals.OidSize
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
