package project

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded weave.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the weave.toml sections.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Go      GoConfig      `toml:"go"`
	Compose ComposeConfig `toml:"compose"`
	Schema  SchemaConfig  `toml:"schema"`
	Build   BuildConfig   `toml:"build"`
}

type ProjectConfig struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
	Out     string   `toml:"out"`
}

type GoConfig struct {
	Module  string `toml:"module"`
	Runtime string `toml:"runtime,omitempty"`
}

type ComposeConfig struct {
	// AliasCollision is "reject" or "permit".
	AliasCollision string `toml:"alias_collision"`
}

type SchemaConfig struct {
	Format string `toml:"format"`
	Out    string `toml:"out"`
}

type BuildConfig struct {
	Jobs  int   `toml:"jobs"`
	Cache *bool `toml:"cache,omitempty"`
}

// CacheEnabled defaults to true when [build].cache is absent.
func (b BuildConfig) CacheEnabled() bool {
	return b.Cache == nil || *b.Cache
}

// Defaults for a fresh project.
const (
	DefaultSources = "idl"
	DefaultOut     = "gen"
	DefaultSchema  = "schema"
)

// DefaultConfig is the manifest `weave init` writes.
func DefaultConfig(name string) Config {
	return Config{
		Project: ProjectConfig{Name: name, Sources: []string{DefaultSources}, Out: DefaultOut},
		Go:      GoConfig{Module: "example.com/" + name},
		Compose: ComposeConfig{AliasCollision: "reject"},
		Schema:  SchemaConfig{Format: "json", Out: DefaultSchema},
	}
}

// LoadManifest finds and parses weave.toml starting at startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if !meta.IsDefined("project", "sources") {
		cfg.Project.Sources = []string{DefaultSources}
	}
	if !meta.IsDefined("project", "out") {
		cfg.Project.Out = DefaultOut
	}
	if !meta.IsDefined("go", "module") || strings.TrimSpace(cfg.Go.Module) == "" {
		return Config{}, fmt.Errorf("%s: missing [go].module", path)
	}
	switch cfg.Compose.AliasCollision {
	case "":
		cfg.Compose.AliasCollision = "reject"
	case "reject", "permit":
	default:
		return Config{}, fmt.Errorf("%s: [compose].alias_collision must be reject or permit, got %q", path, cfg.Compose.AliasCollision)
	}
	switch cfg.Schema.Format {
	case "":
		cfg.Schema.Format = "json"
	case "json", "yaml":
	default:
		return Config{}, fmt.Errorf("%s: [schema].format must be json or yaml, got %q", path, cfg.Schema.Format)
	}
	if cfg.Schema.Out == "" {
		cfg.Schema.Out = DefaultSchema
	}
	if cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# weave project manifest\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SourceDirs resolves [project].sources against the project root.
func (m *Manifest) SourceDirs() []string {
	out := make([]string, 0, len(m.Config.Project.Sources))
	for _, s := range m.Config.Project.Sources {
		out = append(out, m.resolve(s))
	}
	return out
}

// OutDir resolves [project].out.
func (m *Manifest) OutDir() string { return m.resolve(m.Config.Project.Out) }

// SchemaDir resolves [schema].out.
func (m *Manifest) SchemaDir() string { return m.resolve(m.Config.Schema.Out) }

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
