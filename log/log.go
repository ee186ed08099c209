// Package log renders the ancestry of a commit to a writer, the way
// the reflog command's log subcommand does.
package log

import (
	"fmt"
	"io"

	"github.com/reflogged/reflog/backend"
	"github.com/reflogged/reflog/ginternals"
	"github.com/reflogged/reflog/ginternals/object"
	"golang.org/x/xerrors"
)

// Format selects how each commit gets rendered. Rather than the
// teacher's one-struct-per-format hierarchy, a single enum dispatched
// through one function covers the three formats: the formats don't
// carry any state of their own, so a type per format would just be
// indirection.
type Format int8

const (
	// Oneline renders "<sha> <first line of message>" per commit
	Oneline Format = iota
	// Short renders the sha, the author, and the message
	Short
	// Medium renders the sha, the author, the date, and the message
	Medium
)

// Print writes commit, formatted per f, to w
func Print(w io.Writer, commit *object.Commit, f Format) error {
	switch f {
	case Oneline:
		_, err := fmt.Fprintf(w, "%s %s\n", commit.ID(), firstLine(commit.Message()))
		return err
	case Short:
		_, err := fmt.Fprintf(w, "commit %s\nAuthor:\t%s\n\n    %s\n",
			commit.ID(), commit.Author().Name, firstLine(commit.Message()))
		return err
	case Medium:
		author := commit.Author()
		_, err := fmt.Fprintf(w, "commit %s\nAuthor:\t%s <%s>\nDate:\t%s\n\n    %s\n",
			commit.ID(), author.Name, author.Email, author.Time.Format("Mon Jan 2 15:04:05 2006 -0700"),
			firstLine(commit.Message()))
		return err
	default:
		return xerrors.Errorf("unknown log format %d", f)
	}
}

func firstLine(msg string) string {
	for i, r := range msg {
		if r == '\n' {
			return msg[:i]
		}
	}
	return msg
}

// ForEachAncestor loads the commit at id, invokes visit on it, then
// recurses into each parent in declaration order. Traversal is bounded
// by a seen-set so a corrupt or cyclic parent chain can't loop forever;
// the data model doesn't guarantee acyclicity, but nothing else in this
// implementation can construct a cycle either.
func ForEachAncestor(objects backend.Backend, id ginternals.Oid, visit func(*object.Commit) error) error {
	seen := map[ginternals.Oid]bool{}
	return forEachAncestor(objects, id, visit, seen)
}

func forEachAncestor(objects backend.Backend, id ginternals.Oid, visit func(*object.Commit) error, seen map[ginternals.Oid]bool) error {
	if id.IsZero() || seen[id] {
		return nil
	}
	seen[id] = true

	o, err := objects.Object(id)
	if err != nil {
		return xerrors.Errorf("could not load commit %s: %w", id, err)
	}
	commit, err := o.AsCommit()
	if err != nil {
		return xerrors.Errorf("could not parse commit %s: %w", id, err)
	}
	if err := visit(commit); err != nil {
		return err
	}
	for _, parent := range commit.ParentIDs() {
		if err := forEachAncestor(objects, parent, visit, seen); err != nil {
			return err
		}
	}
	return nil
}

// FormatLog combines ForEachAncestor with Print for the log command's
// common case of printing every ancestor starting at a ref.
func FormatLog(w io.Writer, objects backend.Backend, start ginternals.Oid, f Format) error {
	return ForEachAncestor(objects, start, func(c *object.Commit) error {
		return Print(w, c, f)
	})
}
