package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weave/internal/ast"
	"weave/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.wv",
	Short: "Parse an IDL file and print its outline",
	Long:  `Parse an IDL file without resolving imports and print the declarations it contains`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Parse(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	if err := printStderrDiagnostics(cmd, result.Bag, result.FileSet); err != nil {
		return err
	}
	if result.AST != nil {
		if err := ast.Dump(cmd.OutOrStdout(), result.AST); err != nil {
			return err
		}
	}
	if result.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}
