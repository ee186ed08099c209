// Command reflog is a minimal, local, content-addressed version
// control tool: a from-scratch reimplementation of the core of git's
// object model (blobs, trees, commits, the index, and refs) without
// networking, packfiles, or merge resolution.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
