package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	reflog "github.com/reflogged/reflog"
	"github.com/reflogged/reflog/ginternals"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree TREE",
		Short: "create a commit object from a tree and a set of parents",
		Args:  cobra.ExactArgs(1),
	}

	messages := cmd.Flags().StringArrayP("message", "m", nil, "commit message (each -m becomes a paragraph)")
	parents := cmd.Flags().StringArrayP("parent", "p", nil, "id of a parent commit")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), cfg, args[0], *messages, *parents)
	}
	return cmd
}

// readMessage returns the commit message: the -m flags joined with
// blank lines if any were given, otherwise one line read from stdin.
func readMessage(stdin io.Reader, messages []string) (string, error) {
	if len(messages) > 0 {
		return strings.Join(messages, "\n\n"), nil
	}
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("could not read commit message: %w", err)
		}
		return "", nil
	}
	return scanner.Text(), nil
}

func commitTreeCmd(out io.Writer, cfg *globalFlags, treeIDStr string, messages, parentStrs []string) error {
	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	treeID, err := r.ResolvePrefix(treeIDStr)
	if err != nil {
		return err
	}

	parents := make([]ginternals.Oid, 0, len(parentStrs))
	for _, p := range parentStrs {
		id, err := r.ResolvePrefix(p)
		if err != nil {
			return err
		}
		parents = append(parents, id)
	}

	message, err := readMessage(cfg.stdin, messages)
	if err != nil {
		return err
	}

	c, err := r.CommitTree(treeID, reflog.CommitTreeOptions{Message: message, ParentIDs: parents})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, c.ID().String())
	return nil
}
