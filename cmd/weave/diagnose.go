package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/driver"
	"weave/internal/observ"
	"weave/internal/sema"
	"weave/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [file.wv|directory]...",
	Short: "Check IDL files and report diagnostics",
	Long: `Run the parser, the import graph and semantic analysis over IDL files and
print every diagnostic. Nothing is generated.`,
	RunE: runDiagnose,
}

// init registers the diag flags: output format, which extras to include
// and how to print paths.
func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings and infos in diagnostics")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "show how suggested fixes change the source")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().String("alias-collision", "reject", "duplicate composition alias policy (reject|permit)")
}

// runDiagnose prints diagnostics for the given paths and returns
// errDiagnostics when any of them is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := diagfmt.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	in, err := resolveInputs(args)
	if err != nil {
		return err
	}
	jobs, err := jobsFor(cmd, in)
	if err != nil {
		return err
	}
	mAlias := ""
	if in.manifest != nil {
		mAlias = in.manifest.Config.Compose.AliasCollision
	}
	aliasValue, err := stringOption(cmd, "alias-collision", mAlias)
	if err != nil {
		return err
	}
	policy, err := sema.ParseAliasPolicy(aliasValue)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	res, err := driver.Analyze(cmd.Context(), in.files, driver.Options{
		BaseDir:        in.baseDir,
		Roots:          in.roots,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		AliasCollision: policy,
		Observer: func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				timer.Add(ev.Name, ev.Elapsed)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	bag := res.Bag
	if noWarnings {
		bag = onlyErrors(bag, maxDiagnostics)
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := suggest || preview
	out := cmd.OutOrStdout()

	switch format {
	case diagfmt.FormatPretty:
		color, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       color,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		})
	case diagfmt.FormatShort:
		diagfmt.Short(out, bag, res.FileSet, pathMode)
	case diagfmt.FormatJSON:
		err = diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
		})
	case diagfmt.FormatSARIF:
		err = diagfmt.Sarif(out, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "weave",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	if err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}

	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func onlyErrors(bag *diag.Bag, maxDiagnostics int) *diag.Bag {
	out := diag.NewBag(maxDiagnostics)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			out.Add(d)
		}
	}
	return out
}
