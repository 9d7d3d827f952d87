package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"weave/internal/naming"
	"weave/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new weave project",
	Long: `Initialize a weave project by creating weave.toml and a sample contract in
idl/. If [path|name] is omitted, initializes the current directory. A missing
directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("module", "", "Go module path of the generated code (default example.com/<name>)")
}

// runInit creates weave.toml and idl/<name>.wv under the target directory.
// It refuses to overwrite an existing manifest; an existing sample file is
// kept.
func runInit(cmd *cobra.Command, args []string) error {
	module, err := cmd.Flags().GetString("module")
	if err != nil {
		return fmt.Errorf("failed to get module flag: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) == 1 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := projectName(filepath.Base(target))
	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	cfg := project.DefaultConfig(name)
	if module != "" {
		cfg.Go.Module = module
	}
	data, err := project.Encode(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	sampleRel := filepath.Join(project.DefaultSources, name+project.Ext)
	samplePath := filepath.Join(target, sampleRel)
	createdSample := false
	if _, err := os.Stat(samplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(samplePath), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(samplePath), err)
		}
		if err := os.WriteFile(samplePath, []byte(sampleContract(name)), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", sampleRel, err)
		}
		createdSample = true
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if quiet {
		return nil
	}
	rel := target
	if r, err := filepath.Rel(wd, target); err == nil {
		rel = r
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized weave project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdSample {
		fmt.Fprintf(out, "  - %s\n", filepath.ToSlash(sampleRel))
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", filepath.ToSlash(sampleRel))
	}
	return nil
}

// projectName turns a directory name into an IDL package name.
func projectName(dir string) string {
	name := naming.Snake(strings.TrimSpace(dir))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "contracts"
	}
	return name
}

func sampleContract(name string) string {
	return fmt.Sprintf(`package %s;

struct CountResponse { count: u64; admin: Addr; }

/// A counter that anyone may bump and the admin may reset.
contract %s {
	fn new();

	@instantiate fn instantiate(ctx: InstantiateCtx, admin: Addr);
	@exec fn increment(ctx: ExecCtx, by: u64);
	@exec fn reset(ctx: ExecCtx);
	@query fn count(ctx: QueryCtx) -> CountResponse;
}
`, name, naming.Pascal(name))
}
