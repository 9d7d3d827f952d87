package main

import (
	"os"

	"github.com/spf13/cobra"

	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/source"
)

// printStderrDiagnostics renders bag in the pretty form on stderr. It is
// what every command except `weave diag` uses.
func printStderrDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 && bag.Dropped() == 0 {
		return nil
	}
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
		Color:     color,
		Context:   2,
		ShowNotes: true,
	})
	return nil
}
