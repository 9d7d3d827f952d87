package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"weave/internal/buildpipeline"
	"weave/internal/driver"
	"weave/internal/emit"
	"weave/internal/jsonschema"
	"weave/internal/observ"
	"weave/internal/project"
	"weave/internal/sema"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] [file.wv|directory]...",
	Short: "Generate Go code (and schemas) from IDL files",
	Long: `Generate Go message types, dispatchers, proxies and entry points for every
.wv file. Without arguments the source dirs of weave.toml are used. Imports are
followed and generated too.`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().String("out", "gen", "output directory for generated Go (default [project].out)")
	genCmd.Flags().String("module", "", "Go module path of the output tree (default [go].module)")
	genCmd.Flags().String("runtime", emit.DefaultRuntime, "import path of the runtime package (default [go].runtime)")
	genCmd.Flags().Bool("schema", false, "also write JSON schema documents")
	genCmd.Flags().String("schema-out", "schema", "output directory for schema documents (default [schema].out)")
	genCmd.Flags().String("format", "json", "schema format (json|yaml)")
	genCmd.Flags().String("alias-collision", "reject", "duplicate composition alias policy (reject|permit)")
	genCmd.Flags().Bool("no-cache", false, "disable the generation cache")
	genCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runGen(cmd *cobra.Command, args []string) error {
	in, err := resolveInputs(args)
	if err != nil {
		return err
	}
	req, err := generateRequest(cmd, in)
	if err != nil {
		return err
	}
	req.EmitGo = true

	withSchema, err := cmd.Flags().GetBool("schema")
	if err != nil {
		return fmt.Errorf("failed to get schema flag: %w", err)
	}
	req.EmitSchema = withSchema

	return runGenerate(cmd, in, req, "weave gen")
}

// generateRequest merges flags over manifest values.
func generateRequest(cmd *cobra.Command, in *inputs) (*buildpipeline.GenerateRequest, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := jobsFor(cmd, in)
	if err != nil {
		return nil, err
	}

	var mOut, mModule, mRuntime, mSchemaOut, mFormat, mAlias string
	cacheEnabled := true
	if m := in.manifest; m != nil {
		mOut, mSchemaOut = m.OutDir(), m.SchemaDir()
		mModule, mRuntime = m.Config.Go.Module, m.Config.Go.Runtime
		mFormat, mAlias = m.Config.Schema.Format, m.Config.Compose.AliasCollision
		cacheEnabled = m.Config.Build.CacheEnabled()
	}

	out, err := stringOption(cmd, "out", mOut)
	if err != nil {
		return nil, err
	}
	module, err := stringOption(cmd, "module", mModule)
	if err != nil {
		return nil, err
	}
	if module == "" {
		return nil, fmt.Errorf("--module is required without %s", project.ManifestName)
	}
	runtime, err := stringOption(cmd, "runtime", mRuntime)
	if err != nil {
		return nil, err
	}
	schemaOut, err := stringOption(cmd, "schema-out", mSchemaOut)
	if err != nil {
		return nil, err
	}
	formatValue, err := stringOption(cmd, "format", mFormat)
	if err != nil {
		return nil, err
	}
	format, err := jsonschema.ParseFormat(formatValue)
	if err != nil {
		return nil, err
	}
	aliasValue, err := stringOption(cmd, "alias-collision", mAlias)
	if err != nil {
		return nil, err
	}
	policy, err := sema.ParseAliasPolicy(aliasValue)
	if err != nil {
		return nil, err
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	var cache *driver.DiskCache
	if cacheEnabled && !noCache {
		cache, err = driver.OpenDiskCache("weave")
		if err != nil {
			// без кеша генерация всё равно корректна
			fmt.Fprintf(os.Stderr, "warning: generation cache disabled: %v\n", err)
			cache = nil
		}
	}

	return &buildpipeline.GenerateRequest{
		Files:          in.files,
		Roots:          in.roots,
		BaseDir:        in.baseDir,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		AliasCollision: policy,
		Module:         module,
		Runtime:        runtime,
		OutDir:         out,
		SchemaDir:      schemaOut,
		SchemaFormat:   format,
		Cache:          cache,
	}, nil
}

// runGenerate executes req with or without the progress UI, then prints
// diagnostics, the written files, timings and metrics.
func runGenerate(cmd *cobra.Command, in *inputs, req *buildpipeline.GenerateRequest, title string) error {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	metricsOut, err := cmd.Root().PersistentFlags().GetString("metrics-out")
	if err != nil {
		return fmt.Errorf("failed to get metrics-out flag: %w", err)
	}
	uiValue := "off"
	if cmd.Flags().Lookup("ui") != nil {
		if uiValue, err = cmd.Flags().GetString("ui"); err != nil {
			return fmt.Errorf("failed to get ui flag: %w", err)
		}
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	if metricsOut != "" {
		req.Metrics = observ.NewMetrics()
	}

	var result buildpipeline.GenerateResult
	if shouldUseTUI(mode, quiet) {
		result, err = runGenerateWithUI(cmd.Context(), title, in.files, req)
	} else {
		result, err = buildpipeline.Generate(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	analysis := result.Analysis
	if err := printStderrDiagnostics(cmd, analysis.Bag, analysis.FileSet); err != nil {
		return err
	}
	if !quiet {
		printWritten(cmd.OutOrStdout(), result.Written, in.baseDir)
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), result.Timings)
	}
	if metricsOut != "" {
		if err := req.Metrics.WriteTextfile(metricsOut); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if analysis.Bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func printWritten(out io.Writer, written []string, baseDir string) {
	if len(written) == 0 {
		fmt.Fprintln(out, "up to date")
		return
	}
	for _, p := range written {
		if rel, err := filepath.Rel(baseDir, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		fmt.Fprintf(out, "wrote %s\n", filepath.ToSlash(p))
	}
}
