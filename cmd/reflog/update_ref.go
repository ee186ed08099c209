package main

import (
	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newUpdateRefCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-ref REF NEW-SHA",
		Short: "point a ref at a commit",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return updateRefCmd(cfg, args[0], args[1])
	}
	return cmd
}

func updateRefCmd(cfg *globalFlags, ref, shaOrPrefix string) error {
	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	id, err := r.ResolvePrefix(shaOrPrefix)
	if err != nil {
		return err
	}
	return r.UpdateRef(ref, id)
}
