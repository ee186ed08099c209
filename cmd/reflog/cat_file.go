package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	reflog "github.com/reflogged/reflog"
	"github.com/reflogged/reflog/ginternals/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file (-t | -p) OBJECT",
		Short: "print an object's type or content",
		Args:  cobra.ExactArgs(1),
	}

	typeOnly := cmd.Flags().BoolP("t", "t", false, "show the object's type")
	prettyPrint := cmd.Flags().BoolP("p", "p", false, "pretty-print the object's content")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return catFileCmd(cmd.OutOrStdout(), cfg, args[0], *typeOnly, *prettyPrint)
	}
	return cmd
}

func catFileCmd(out io.Writer, cfg *globalFlags, objectName string, typeOnly, prettyPrint bool) error {
	if typeOnly == prettyPrint {
		return errors.New("exactly one of -t or -p is required")
	}

	r, err := reflog.Open(reflog.InitOptions{Env: cfg.env, WorkingDirectory: cfg.dir.String()})
	if err != nil {
		return err
	}

	o, err := r.Object(objectName)
	if err != nil {
		return errors.Wrapf(err, "not a valid object name %s", objectName)
	}

	if typeOnly {
		fmt.Fprintln(out, o.Type().String())
		return nil
	}
	return prettyPrintObject(out, o)
}

func prettyPrintObject(out io.Writer, o *object.Object) error {
	switch o.Type() {
	case object.TypeBlob:
		_, err := out.Write(o.Bytes())
		return err
	case object.TypeTree:
		tree, err := o.AsTree()
		if err != nil {
			return err
		}
		for _, e := range tree.Entries() {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
		}
		return nil
	case object.TypeCommit:
		c, err := o.AsCommit()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tree %s\n", c.TreeID().String())
		for _, id := range c.ParentIDs() {
			fmt.Fprintf(out, "parent %s\n", id.String())
		}
		fmt.Fprintf(out, "author %s\n", c.Author().String())
		fmt.Fprintf(out, "committer %s\n", c.Committer().String())
		fmt.Fprintln(out)
		fmt.Fprint(out, c.Message())
		return nil
	default:
		return fmt.Errorf("unsupported object type %s", o.Type().String())
	}
}
