package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weave/internal/buildpipeline"
	"weave/internal/jsonschema"
	"weave/internal/sema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [flags] [file.wv|directory]...",
	Short: "Export JSON schema documents for contracts",
	Long: `Export one JSON schema document per contract, with the instantiate, execute,
query, sudo and migrate messages and the query responses. With --out - the
documents are printed instead of written.`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().String("out", "schema", "output directory, or - for stdout (default [schema].out)")
	schemaCmd.Flags().String("format", "json", "document format (json|yaml)")
	schemaCmd.Flags().String("contract", "", "only export this contract, printed to stdout")
	schemaCmd.Flags().String("alias-collision", "reject", "duplicate composition alias policy (reject|permit)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(args)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := jobsFor(cmd, in)
	if err != nil {
		return err
	}
	contract, err := cmd.Flags().GetString("contract")
	if err != nil {
		return fmt.Errorf("failed to get contract flag: %w", err)
	}

	var mOut, mFormat, mAlias string
	if m := in.manifest; m != nil {
		mOut, mFormat, mAlias = m.SchemaDir(), m.Config.Schema.Format, m.Config.Compose.AliasCollision
	}
	out, err := stringOption(cmd, "out", mOut)
	if err != nil {
		return err
	}
	formatValue, err := stringOption(cmd, "format", mFormat)
	if err != nil {
		return err
	}
	format, err := jsonschema.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	aliasValue, err := stringOption(cmd, "alias-collision", mAlias)
	if err != nil {
		return err
	}
	policy, err := sema.ParseAliasPolicy(aliasValue)
	if err != nil {
		return err
	}

	req := &buildpipeline.GenerateRequest{
		Files:          in.files,
		Roots:          in.roots,
		BaseDir:        in.baseDir,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		AliasCollision: policy,
		EmitSchema:     true,
		SchemaFormat:   format,
	}
	toStdout := out == "-" || contract != ""
	if toStdout {
		res, err := buildpipeline.Generate(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := printStderrDiagnostics(cmd, res.Analysis.Bag, res.Analysis.FileSet); err != nil {
			return err
		}
		found := false
		for _, s := range res.Schemas {
			if contract != "" && s.Contract != contract {
				continue
			}
			found = true
			if _, err := cmd.OutOrStdout().Write(s.Content); err != nil {
				return err
			}
		}
		if contract != "" && !found && !res.Analysis.Bag.HasErrors() {
			return fmt.Errorf("contract %s not found", contract)
		}
		if res.Analysis.Bag.HasErrors() {
			return errDiagnostics
		}
		return nil
	}
	req.SchemaDir = out
	return runGenerate(cmd, in, req, "weave schema")
}
