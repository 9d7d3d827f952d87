package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weave/internal/model"
)

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitGenRouteEncode(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	if _, err := runCLI(t, "init", "demo", "--quiet"); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, p := range []string{"demo/weave.toml", "demo/idl/demo.wv"} {
		if _, err := os.Stat(filepath.Join(tmp, p)); err != nil {
			t.Fatalf("init did not create %s: %v", p, err)
		}
	}
	if _, err := runCLI(t, "init", "demo", "--quiet"); err == nil {
		t.Fatalf("second init must refuse an existing manifest")
	}

	t.Chdir(filepath.Join(tmp, "demo"))
	out, err := runCLI(t, "gen", "--ui", "off", "--no-cache", "--schema", "--quiet=false")
	if err != nil {
		t.Fatalf("gen: %v\n%s", err, out)
	}
	for _, p := range []string{"gen/demo/demo.gen.go", "schema/demo/Demo.json"} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("gen did not write %s: %v\n%s", p, err, out)
		}
	}
	if !strings.Contains(out, "wrote gen/demo/demo.gen.go") {
		t.Fatalf("gen output = %q", out)
	}

	out, err = runCLI(t, "gen", "--ui", "off", "--no-cache", "--schema")
	if err != nil || !strings.Contains(out, "up to date") {
		t.Fatalf("second gen = %q, %v", out, err)
	}

	out, err = runCLI(t, "route", "idl/demo.wv", "--kind", "exec", "--format", "pretty", `{"increment":{"by":3}}`)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if want := "Demo exec -> increment\n  by = 3\n"; out != want {
		t.Fatalf("route output = %q, want %q", out, want)
	}

	out, err = runCLI(t, "encode", "idl/demo.wv", "--kind", "exec", "increment", "by=3")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if want := "{\"increment\":{\"by\":3}}\n"; out != want {
		t.Fatalf("encode output = %q, want %q", out, want)
	}

	if _, err := runCLI(t, "encode", "idl/demo.wv", "--kind", "exec", "increment", "by=\"x\""); err == nil {
		t.Fatalf("encode must reject a mistyped field")
	}
}

func TestDiagReportsErrors(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	src := "package bad;\ncontract Bad {\n\t@exec fn run(ctx: ExecCtx, x: Nope);\n}\n"
	if err := os.WriteFile("bad.wv", []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "diag", "--format", "short", "bad.wv")
	if err != errDiagnostics {
		t.Fatalf("diag error = %v, want errDiagnostics", err)
	}
	if !strings.Contains(out, "bad.wv:") || !strings.Contains(out, "Nope") {
		t.Fatalf("diag output = %q", out)
	}
}

func TestFixInsertsSemicolon(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.WriteFile("s.wv", []byte("package s;\nstruct S { a: u8 }\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "fix", "--all", "s.wv")
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(out, "Applied 1 fix(es)") {
		t.Fatalf("fix output = %q", out)
	}
	got, err := os.ReadFile("s.wv")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "package s;\nstruct S { a: u8; }\n" {
		t.Fatalf("fixed source = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want model.Kind
		ok   bool
	}{
		{"exec", model.KindExec, true},
		{"execute", model.KindExec, true},
		{"query", model.KindQuery, true},
		{"reply", model.KindReply, true},
		{"call", 0, false},
	}
	for _, tt := range tests {
		got, err := parseKind(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("parseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"ON", uiModeOn, false},
		{" off ", uiModeOff, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeAuto, true) || !shouldUseTUI(uiModeOn, true) {
		t.Fatalf("shouldUseTUI ignores mode")
	}
}

func TestProjectName(t *testing.T) {
	tests := map[string]string{
		"demo":        "demo",
		"MyContracts": "my_contracts",
		" ":           "contracts",
	}
	for in, want := range tests {
		if got := projectName(in); got != want {
			t.Fatalf("projectName(%q) = %q, want %q", in, got, want)
		}
	}
}
