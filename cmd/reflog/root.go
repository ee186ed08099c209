package main

import (
	"io"
	"os"

	"github.com/reflogged/reflog/internal/env"
	"github.com/reflogged/reflog/internal/pathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags carries the state shared by every subcommand: the
// process environment (for $RE_FLOGGED_DIR-style overrides) and the reader
// used for "read a commit message from stdin when none was given on
// the command line" — injected rather than hardwired to os.Stdin so
// the commands stay testable without a TTY.
type globalFlags struct {
	env   *env.Env
	stdin io.Reader
	// dir holds the -C flag: run as if reflog had been started in
	// that directory instead of the process's working directory
	dir pflag.Value
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reflog",
		Short:         "a minimal, local, content-addressed version control tool",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cfg := &globalFlags{
		env:   env.NewFromOs(),
		stdin: os.Stdin,
		dir:   pathutil.NewDirPathFlagWithDefault(""),
	}
	cmd.PersistentFlags().VarP(cfg.dir, "directory", "C", "run as if reflog was started in the given directory")

	cmd.AddCommand(newInitCmd(cfg))
	cmd.AddCommand(newHashObjectCmd(cfg))
	cmd.AddCommand(newCatFileCmd(cfg))
	cmd.AddCommand(newUpdateIndexCmd(cfg))
	cmd.AddCommand(newLSFilesCmd(cfg))
	cmd.AddCommand(newWriteTreeCmd(cfg))
	cmd.AddCommand(newCommitTreeCmd(cfg))
	cmd.AddCommand(newCommitCmd(cfg))
	cmd.AddCommand(newUpdateRefCmd(cfg))
	cmd.AddCommand(newLogCmd(cfg))

	return cmd
}
