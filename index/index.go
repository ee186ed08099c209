// Package index implements the staging area: a binary file that records
// the set of blobs that will make up the next commit's tree.
//
// The on-disk format mirrors git's index version 2: a fixed header, a
// sorted list of entries, zero or more optional extensions, and a
// trailing SHA-1 checksum of everything that came before it.
package index

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/githash"
	"github.com/reflogged/reflog/ginternals/object"
	"github.com/reflogged/reflog/internal/errutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// signature is the 4-byte magic at the start of every index file
var signature = [4]byte{'D', 'I', 'R', 'C'}

// Version is the only index format version this implementation reads
// and writes
const Version = 2

// fixedEntrySize is the size, in bytes, of an IndexEntry before its
// variable-length name and padding
const fixedEntrySize = 62

// checksumSize is the size, in bytes, of the trailing SHA-1 footer
const checksumSize = ginternals.OidSize

// footerHash computes the index file's trailing checksum. Going
// through the githash.Hash seam keeps the footer in lockstep with the
// object store's hash if it ever changes.
var footerHash = githash.NewSHA1()

// Flags bits, as stored in the 2-byte flags field of an entry
const (
	flagAssumeValid uint16 = 1 << 15
	flagExtended    uint16 = 1 << 14
	flagStageMask   uint16 = 0x3000
	flagStageShift         = 12
	flagNameLenMask uint16 = 0x0FFF
)

// ErrIndexCorrupt is returned when the index file's header, footer,
// or entry stream doesn't match what's expected
var ErrIndexCorrupt = xerrors.New("index corrupt")

// ErrUnknownExtension is returned when a required (capital-letter-tagged)
// extension isn't recognized
var ErrUnknownExtension = xerrors.New("unknown required index extension")

// Entry represents a single staged file: the filesystem metadata
// collected when the file was staged, plus the SHA of the Blob object
// holding its content.
//
// Stage is always 0 in this implementation: multi-stage (conflict)
// entries are a documented Non-goal.
type Entry struct {
	CTimeSec  uint32
	CTimeNsec uint32
	MTimeSec  uint32
	MTimeNsec uint32
	Dev       uint32
	Ino       uint32
	Mode      object.TreeObjectMode
	UID       uint32
	GID       uint32
	Size      uint32
	ID        ginternals.Oid

	AssumeValid bool
	Stage       uint8

	// Name is the path of the file relative to the repository root,
	// using forward slashes regardless of the host OS
	Name string
}

// flags packs AssumeValid, Stage, and the (clamped) byte length of Name
// into the 2-byte flags field
func (e *Entry) flags() uint16 {
	var f uint16
	if e.AssumeValid {
		f |= flagAssumeValid
	}
	f |= (uint16(e.Stage) << flagStageShift) & flagStageMask

	nameLen := len(e.Name)
	if nameLen > int(flagNameLenMask) {
		nameLen = int(flagNameLenMask)
	}
	f |= uint16(nameLen) & flagNameLenMask
	return f
}

// paddingLen returns the number of NUL bytes that must follow an entry
// of the given total size (fixed prefix + name, no terminator) so the
// next entry starts on an 8-byte boundary. An entry that already lands
// on a boundary still gets a full 8 bytes of padding, so a NUL
// terminator is always present after the name.
func paddingLen(total int) int {
	r := total % 8
	if r == 0 {
		return 8
	}
	return 8 - r
}

func (e *Entry) encode(w io.Writer) error {
	fields := []uint32{
		e.CTimeSec, e.CTimeNsec,
		e.MTimeSec, e.MTimeNsec,
		e.Dev, e.Ino,
		uint32(e.Mode),
		e.UID, e.GID,
		e.Size,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	if _, err := w.Write(e.ID.Bytes()); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, e.flags()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Name); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, paddingLen(fixedEntrySize+len(e.Name))))
	return err
}

// decodeEntry reads one IndexEntry starting at data[0], returning the
// entry and the number of bytes consumed (fixed prefix + name + padding)
func decodeEntry(data []byte) (Entry, int, error) {
	if len(data) < fixedEntrySize {
		return Entry{}, 0, xerrors.Errorf("truncated entry: %w", ErrIndexCorrupt)
	}

	r := bytes.NewReader(data[:fixedEntrySize])
	var e Entry
	var mode uint32
	for _, dst := range []*uint32{
		&e.CTimeSec, &e.CTimeNsec,
		&e.MTimeSec, &e.MTimeNsec,
		&e.Dev, &e.Ino,
		&mode,
		&e.UID, &e.GID,
		&e.Size,
	} {
		if err := binary.Read(r, binary.BigEndian, dst); err != nil {
			return Entry{}, 0, xerrors.Errorf("could not read entry field: %w", err)
		}
	}
	e.Mode = object.TreeObjectMode(mode)

	shaBuf := make([]byte, ginternals.OidSize)
	if _, err := io.ReadFull(r, shaBuf); err != nil {
		return Entry{}, 0, xerrors.Errorf("could not read entry sha: %w", err)
	}
	oid, err := ginternals.NewOidFromHex(shaBuf)
	if err != nil {
		return Entry{}, 0, xerrors.Errorf("invalid entry sha: %w", err)
	}
	e.ID = oid

	var flags uint16
	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return Entry{}, 0, xerrors.Errorf("could not read entry flags: %w", err)
	}
	if flags&flagExtended != 0 {
		return Entry{}, 0, xerrors.Errorf("extended flag set: %w", ErrIndexCorrupt)
	}
	e.AssumeValid = flags&flagAssumeValid != 0
	e.Stage = uint8((flags & flagStageMask) >> flagStageShift)
	nameLen := int(flags & flagNameLenMask)

	offset := fixedEntrySize
	if offset+nameLen > len(data) {
		return Entry{}, 0, xerrors.Errorf("truncated entry name: %w", ErrIndexCorrupt)
	}
	e.Name = string(data[offset : offset+nameLen])
	offset += nameLen

	pad := paddingLen(fixedEntrySize + nameLen)
	if offset+pad > len(data) {
		return Entry{}, 0, xerrors.Errorf("truncated entry padding: %w", ErrIndexCorrupt)
	}
	return e, offset + pad, nil
}

// Index represents the staging area as loaded from, or to be written
// to, REPO_ROOT/index
type Index struct {
	fs      afero.Fs
	path    string
	root    string
	objects backend.Backend

	entries []Entry
	// treeExt holds the TREE cache extension read from disk, if any.
	// It's kept in memory after a load but never consulted by
	// write-tree, which always rebuilds the tree from scratch (see
	// index/treebuild.go); Write does not serialize it, so a written
	// index carries no extensions.
	treeExt []TreeCacheEntry
}

// New returns an Index bound to the given index file path. If the file
// exists it's loaded and validated (footer checksum included); if it
// doesn't, an empty Index is returned. expectedCount only hints at
// the entries slice's initial capacity.
func New(fs afero.Fs, indexPath, repoRoot string, objects backend.Backend, expectedCount int) (*Index, error) {
	idx := &Index{
		fs:      fs,
		path:    indexPath,
		root:    repoRoot,
		objects: objects,
		entries: make([]Entry, 0, expectedCount),
	}

	_, err := fs.Stat(indexPath)
	switch {
	case err == nil:
		if err := idx.load(); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// no index yet: start empty
	default:
		return nil, xerrors.Errorf("could not stat index file: %w", err)
	}
	return idx, nil
}

// Load reads and strictly validates an existing index file, failing if
// it doesn't exist or is corrupt
func Load(fs afero.Fs, indexPath, repoRoot string, objects backend.Backend) (*Index, error) {
	idx := &Index{fs: fs, path: indexPath, root: repoRoot, objects: objects}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) load() (err error) {
	f, err := idx.fs.Open(idx.path)
	if err != nil {
		return xerrors.Errorf("could not open index file: %w", err)
	}
	defer errutil.Close(f, &err)

	data, err := io.ReadAll(f)
	if err != nil {
		return xerrors.Errorf("could not read index file: %w", err)
	}

	if len(data) < 12+checksumSize {
		return xerrors.Errorf("index file too small: %w", ErrIndexCorrupt)
	}

	body, footer := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if !bytes.Equal(footerHash.Sum(body).Bytes(), footer) {
		return xerrors.Errorf("index footer checksum mismatch: %w", ErrIndexCorrupt)
	}

	if !bytes.Equal(body[:4], signature[:]) {
		return xerrors.Errorf("bad index signature: %w", ErrIndexCorrupt)
	}
	version := binary.BigEndian.Uint32(body[4:8])
	if version != Version {
		return xerrors.Errorf("unsupported index version %d: %w", version, ErrIndexCorrupt)
	}
	count := binary.BigEndian.Uint32(body[8:12])

	offset := 12
	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(body[offset:])
		if err != nil {
			return xerrors.Errorf("could not decode entry %d: %w", i, err)
		}
		entries = append(entries, e)
		offset += n
	}

	ext, err := decodeExtensions(body[offset:])
	if err != nil {
		return err
	}

	idx.entries = entries
	idx.treeExt = ext
	return nil
}

// Entries returns a copy of the staged entries, in on-disk (sorted) order
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Add stages the given working-tree paths: each is stat'd, hashed into
// a Blob written to the object store, and recorded as an entry keyed by
// its path relative to the repository root. A path that doesn't exist
// on disk is a fatal error.
func (idx *Index) Add(paths []string) error {
	for _, p := range paths {
		if err := idx.addOne(p); err != nil {
			return err
		}
	}
	idx.sortEntries()
	return nil
}

func (idx *Index) addOne(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return xerrors.Errorf("could not resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return xerrors.Errorf("pathspec %s did not match any files: %w", path, err)
	}

	blob, err := object.FromFile(abs)
	if err != nil {
		return xerrors.Errorf("could not read %s: %w", path, err)
	}
	if _, err := idx.objects.WriteObject(blob.ToObject()); err != nil {
		return xerrors.Errorf("could not write blob for %s: %w", path, err)
	}

	rel, err := filepath.Rel(idx.root, abs)
	if err != nil {
		return xerrors.Errorf("could not compute repo-relative path for %s: %w", path, err)
	}
	name := filepath.ToSlash(rel)

	sys := statSys(info)
	e := Entry{
		CTimeSec:  sys.ctimeSec,
		CTimeNsec: sys.ctimeNsec,
		MTimeSec:  uint32(info.ModTime().Unix()),
		MTimeNsec: uint32(info.ModTime().Nanosecond()),
		Dev:       sys.dev,
		Ino:       sys.ino,
		Mode:      blob.Mode(),
		UID:       sys.uid,
		GID:       sys.gid,
		Size:      uint32(blob.Size()),
		ID:        blob.ID(),
		Name:      name,
	}

	for i, existing := range idx.entries {
		if existing.Name == name {
			idx.entries[i] = e
			return nil
		}
	}
	idx.entries = append(idx.entries, e)
	return nil
}

// Remove drops the index entry for each path that no longer exists on
// the working tree. Paths that still exist are left untouched: this
// mirrors the reference tool's "only clean up what's actually gone"
// policy rather than treating update-index --remove as an error on a
// present file.
func (idx *Index) Remove(paths []string) error {
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return xerrors.Errorf("could not resolve path %s: %w", p, err)
		}

		if _, err := os.Stat(abs); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return xerrors.Errorf("could not stat %s: %w", p, err)
		}

		rel, err := filepath.Rel(idx.root, abs)
		if err != nil {
			return xerrors.Errorf("could not compute repo-relative path for %s: %w", p, err)
		}
		name := filepath.ToSlash(rel)

		for i, e := range idx.entries {
			if e.Name == name {
				idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Clear drops every staged entry
func (idx *Index) Clear() {
	idx.entries = idx.entries[:0]
	idx.treeExt = nil
}

func (idx *Index) sortEntries() {
	sort.Slice(idx.entries, func(i, j int) bool {
		return idx.entries[i].Name < idx.entries[j].Name
	})
}

// Write serializes the index (header, sorted entries, footer) to a
// temporary file and renames it into place, so a crash mid-write never
// leaves a truncated index behind.
func (idx *Index) Write() (err error) {
	idx.sortEntries()

	buf := new(bytes.Buffer)
	buf.Write(signature[:])
	if err := binary.Write(buf, binary.BigEndian, uint32(Version)); err != nil {
		return xerrors.Errorf("could not write index version: %w", err)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(idx.entries))); err != nil {
		return xerrors.Errorf("could not write index entry count: %w", err)
	}
	for i := range idx.entries {
		if err := idx.entries[i].encode(buf); err != nil {
			return xerrors.Errorf("could not encode entry %d: %w", i, err)
		}
	}

	checksum := footerHash.Sum(buf.Bytes())
	buf.Write(checksum.Bytes())

	tmpPath := idx.path + ".lock"
	if err := afero.WriteFile(idx.fs, tmpPath, buf.Bytes(), 0o644); err != nil {
		return xerrors.Errorf("could not write temporary index file: %w", err)
	}
	if err := idx.fs.Rename(tmpPath, idx.path); err != nil {
		return xerrors.Errorf("could not move index file into place: %w", err)
	}
	return nil
}
