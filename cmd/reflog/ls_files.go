package main

import (
	"fmt"
	"io"

	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newLSFilesCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "list the files currently staged in the index",
	}

	cmd.Flags().Bool("stage", true, "show staged content's mode, object id, and stage number")
	cmd.Flags().Lookup("stage").NoOptDefVal = "true"

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesCmd(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

func lsFilesCmd(out io.Writer, cfg *globalFlags) error {
	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	for _, e := range r.Index().Entries() {
		fmt.Fprintf(out, "%06o %s %d\t%s\n", e.Mode, e.ID, e.Stage, e.Name)
	}
	return nil
}
