package main

import (
	"fmt"
	"io"
	"os"

	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "compute the object id of a file, optionally writing it to the store",
		Args:  cobra.ExactArgs(1),
	}

	write := cmd.Flags().BoolP("write", "w", false, "write the object into the object store")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *write)
	}
	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, filePath string, write bool) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", filePath, err)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", filePath, err)
	}

	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	blob, err := r.HashObject(content, info.Mode(), write)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, blob.ID().String())
	return nil
}
