package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"weave/internal/driver"
	"weave/internal/fix"
	"weave/internal/sema"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.wv|directory]...",
	Short: "Apply suggested fixes to IDL files",
	Long:  "Run diagnostics, collect the fixes that carry text edits and apply them in place.",
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every non-overlapping fix (default: first one only)")
	fixCmd.Flags().Bool("dry-run", false, "print the rewritten files instead of saving them")
}

func runFix(cmd *cobra.Command, args []string) error {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	in, err := resolveInputs(args)
	if err != nil {
		return err
	}
	jobs, err := jobsFor(cmd, in)
	if err != nil {
		return err
	}
	policy := sema.AliasReject
	if in.manifest != nil {
		if policy, err = sema.ParseAliasPolicy(in.manifest.Config.Compose.AliasCollision); err != nil {
			return err
		}
	}

	res, err := driver.Analyze(cmd.Context(), in.files, driver.Options{
		BaseDir:        in.baseDir,
		Roots:          in.roots,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		AliasCollision: policy,
	})
	if err != nil {
		return fmt.Errorf("fix: analysis failed: %w", err)
	}
	res.Bag.Sort()

	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: dryRun}
	if applyAll {
		opts.Mode = fix.ApplyModeAll
	}
	applied, applyErr := fix.Apply(res.FileSet, res.Bag.Items(), opts)
	return printFixResult(cmd.OutOrStdout(), applied, applyErr, dryRun)
}

func printFixResult(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	if len(res.Applied) > 0 {
		fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(w, "  %s [%s] %s (%d edits)\n", item.Title, item.Code.ID(), location, item.EditCount)
		}
	}
	if len(res.FileChanges) > 0 {
		if dryRun {
			for _, change := range res.FileChanges {
				fmt.Fprintf(w, "--- %s (%d edits)\n", change.Path, change.EditCount)
				if _, err := w.Write(change.Content); err != nil {
					return err
				}
			}
		} else {
			fmt.Fprintln(w, "Updated files:")
			for _, change := range res.FileChanges {
				fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount)
			}
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			title := skip.Title
			if title == "" {
				title = "(unnamed)"
			}
			fmt.Fprintf(w, "  %s: %s\n", title, skip.Reason)
		}
	}
	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
