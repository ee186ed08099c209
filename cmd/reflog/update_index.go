package main

import (
	"github.com/pkg/errors"
	reflog "github.com/reflogged/reflog"
	"github.com/spf13/cobra"
)

func newUpdateIndexCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-index (--add | --remove) PATHS...",
		Short: "stage or unstage paths in the index",
		Args:  cobra.MinimumNArgs(1),
	}

	add := cmd.Flags().Bool("add", false, "stage the given paths")
	remove := cmd.Flags().Bool("remove", false, "remove paths no longer present on disk")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return updateIndexCmd(cfg, *add, *remove, args)
	}
	return cmd
}

func updateIndexCmd(cfg *globalFlags, add, remove bool, paths []string) error {
	if add == remove {
		return errors.New("exactly one of --add or --remove is required")
	}

	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	idx := r.Index()
	if add {
		if err := idx.Add(paths); err != nil {
			return err
		}
	} else {
		if err := idx.Remove(paths); err != nil {
			return err
		}
	}
	return idx.Write()
}
