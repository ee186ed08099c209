package main

import (
	"fmt"
	"io"
	"os"

	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "create an empty repository",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return initCmd(cmd.OutOrStdout(), cfg, dir)
	}
	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags, dir string) error {
	if dir == "" {
		dir = cfg.dir.String()
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("could not create %s: %w", dir, err)
		}
	}

	r, err := reflog.Init(reflog.InitOptions{WorkingDirectory: dir})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized empty repository in %s\n", r.Config().GitDirPath)
	return nil
}
