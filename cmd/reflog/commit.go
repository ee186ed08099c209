package main

import (
	"fmt"
	"io"

	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newCommitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "build a tree and a commit from the index, and update the current branch",
	}

	messages := cmd.Flags().StringArrayP("message", "m", nil, "commit message (each -m becomes a paragraph)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitCmd(cmd.OutOrStdout(), cfg, *messages)
	}
	return cmd
}

func commitCmd(out io.Writer, cfg *globalFlags, messages []string) error {
	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	message, err := readMessage(cfg.stdin, messages)
	if err != nil {
		return err
	}

	c, err := r.Commit(message)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, c.ID().String())
	return nil
}
