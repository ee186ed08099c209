package main

import (
	"io"

	reflog "github.com/reflogged/reflog"
	refloglog "github.com/reflogged/reflog/log"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLogCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "show the commit ancestry of the current branch",
	}

	pretty := cmd.Flags().String("pretty", "medium", "one of oneline, short, medium")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return logCmd(cmd.OutOrStdout(), cfg, *pretty)
	}
	return cmd
}

func parseFormat(pretty string) (refloglog.Format, error) {
	switch pretty {
	case "oneline":
		return refloglog.Oneline, nil
	case "short":
		return refloglog.Short, nil
	case "medium":
		return refloglog.Medium, nil
	default:
		return 0, xerrors.Errorf("unknown --pretty format %q", pretty)
	}
}

func logCmd(out io.Writer, cfg *globalFlags, pretty string) error {
	format, err := parseFormat(pretty)
	if err != nil {
		return err
	}

	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	head, err := r.Head()
	if err != nil {
		return err
	}
	if head.IsZero() {
		return nil
	}

	return refloglog.FormatLog(out, r.Backend(), head, format)
}
