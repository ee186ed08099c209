package main

import (
	"fmt"
	"io"

	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newWriteTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		// <prefix> is accepted by git but explicitly unimplemented by
		// this core (spec §6); it isn't exposed as an argument here.
		Use:   "write-tree",
		Short: "write the staged index out as a tree object",
	}

	missingOK := cmd.Flags().Bool("missing-ok", false, "don't fail if a staged blob is missing from the object store")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout(), cfg, *missingOK)
	}
	return cmd
}

func writeTreeCmd(out io.Writer, cfg *globalFlags, missingOK bool) error {
	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	id, err := r.WriteTree(missingOK)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, id.String())
	return nil
}
