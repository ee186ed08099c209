package index

import (
	"log"
	"sort"
	"strings"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/object"
	"golang.org/x/xerrors"
)

// treeNode is one node of the in-memory tree being assembled from the
// flat, sorted index before it's serialized and written out.
//
// A node with isTree == false is a leaf referencing a blob that was
// already written to the store at staging time. A node with isTree ==
// true owns a set of named children that get merged (rule 3 of the
// build-from-index algorithm) whenever two insertions land on the same
// name and kind.
type treeNode struct {
	name     string
	isTree   bool
	mode     object.TreeObjectMode
	id       ginternals.Oid
	children map[string]*treeNode
}

func newTreeDirNode(name string) *treeNode {
	return &treeNode{name: name, isTree: true, mode: object.ModeDirectory, children: map[string]*treeNode{}}
}

// insert walks path's components from root to leaf, creating or
// reusing subtree nodes along the way, and attaches a blob leaf at the
// end carrying mode/id.
func (n *treeNode) insert(path string, mode object.TreeObjectMode, id ginternals.Oid) {
	parts := strings.Split(path, "/")
	cur := n
	for _, dir := range parts[:len(parts)-1] {
		child, ok := cur.children[dir]
		if !ok || !child.isTree {
			// rule 3: a same-name, same-kind child merges; a brand new
			// name just gets created. A same-name different-kind
			// collision (blob where a dir is expected) is the
			// undefined case called out in the build algorithm: we
			// resolve it by letting the directory win.
			child = newTreeDirNode(dir)
			cur.children[dir] = child
		}
		cur = child
	}

	leafName := parts[len(parts)-1]
	cur.children[leafName] = &treeNode{name: leafName, isTree: false, mode: mode, id: id}
}

// BuildTree assembles the tree hierarchy implied by entries (as staged
// in the index) and writes every subtree object to objects, post-order,
// so each parent can reference its children's already-computed SHAs.
// It returns the SHA of the root tree.
//
// When missingOK is false, a blob SHA referenced by an entry that isn't
// actually present in the object store is a fatal error. When true, the
// build proceeds and logs a warning instead.
func BuildTree(entries []Entry, objects backend.Backend, missingOK bool) (ginternals.Oid, error) {
	root := newTreeDirNode("")
	for _, e := range entries {
		if err := checkBlobPresence(objects, e, missingOK); err != nil {
			return ginternals.NullOid, err
		}
		root.insert(e.Name, e.Mode, e.ID)
	}
	return writeTreeNode(root, objects)
}

func checkBlobPresence(objects backend.Backend, e Entry, missingOK bool) error {
	ok, err := objects.HasObject(e.ID)
	if err != nil {
		return xerrors.Errorf("could not check object %s: %w", e.ID, err)
	}
	if ok {
		return nil
	}
	if !missingOK {
		return xerrors.Errorf("entry %s: blob %s not found in the object store", e.Name, e.ID)
	}
	log.Printf("warning: %s: blob %s not found in the object store, staging anyway", e.Name, e.ID)
	return nil
}

// treeEntryLess orders two tree entry names the way git does: a
// directory name sorts as though it carried a trailing "/", so "abc"
// (a tree) sorts after "abc.txt" (a blob) even though "abc" < "abc.txt"
// under a plain byte-wise comparison.
func treeEntryLess(nameA string, isTreeA bool, nameB string, isTreeB bool) bool {
	n := len(nameA)
	if len(nameB) < n {
		n = len(nameB)
	}
	for i := 0; i < n; i++ {
		if nameA[i] != nameB[i] {
			return nameA[i] < nameB[i]
		}
	}
	if len(nameA) == len(nameB) {
		return false
	}
	var ca, cb byte
	if len(nameA) > n {
		ca = nameA[n]
	} else if isTreeA {
		ca = '/'
	}
	if len(nameB) > n {
		cb = nameB[n]
	} else if isTreeB {
		cb = '/'
	}
	return ca < cb
}

// writeTreeNode serializes n's children (sorted by name, as required
// for a well-formed tree object) and writes the resulting tree object,
// recursing into subtree children first so their SHAs are known by the
// time the parent is built.
func writeTreeNode(n *treeNode, objects backend.Backend) (ginternals.Oid, error) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return treeEntryLess(names[i], n.children[names[i]].isTree, names[j], n.children[names[j]].isTree)
	})

	entries := make([]object.TreeEntry, 0, len(names))
	for _, name := range names {
		child := n.children[name]
		if child.isTree {
			id, err := writeTreeNode(child, objects)
			if err != nil {
				return ginternals.NullOid, err
			}
			child.id = id
		}
		entries = append(entries, object.TreeEntry{
			Path: child.name,
			ID:   child.id,
			Mode: child.mode,
		})
	}

	tree := object.NewTree(entries)
	id, err := objects.WriteObject(tree.ToObject())
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write tree object: %w", err)
	}
	return id, nil
}
