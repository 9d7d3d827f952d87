package diagfmt

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"

	"weave/internal/diag"
	"weave/internal/source"
	"weave/internal/token"
)

func decodeOutput(t *testing.T, data []byte) DiagnosticsOutput {
	t.Helper()
	var out DiagnosticsOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, data)
	}
	return out
}

func sampleBag() (*source.FileSet, *diag.Bag) {
	fs := source.NewFileSetWithBase("/p")
	content := []byte("package app;\ncontract C {\n  fn new()\n}\n")
	id := fs.AddVirtual("/p/idl/app.wv", content)
	end := uint32(strings.Index(string(content), "()") + 2)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynExpectSemicolon, source.Span{File: id, Start: end, End: end}, "expected ';'").
		WithNote(source.Span{File: id, Start: 13, End: 21}, "in contract C").
		WithFix("insert semicolon", diag.FixEdit{Span: source.Span{File: id, Start: end, End: end}, NewText: ";"}))
	bag.Add(diag.New(diag.SevWarning, diag.ConUnusedConstraint, source.Span{File: id, Start: 0, End: 7}, "unused bound"))
	return fs, bag
}

func TestJSONBasic(t *testing.T) {
	fs, bag := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := decodeOutput(t, buf.Bytes())
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2002" || d.Title != "Missing semicolon" || d.Message != "expected ';'" {
		t.Fatalf("diagnostic = %+v", d)
	}
	want := LocationJSON{File: "app.wv", StartByte: 36, EndByte: 36, StartLine: 3, StartCol: 11, EndLine: 3, EndCol: 11}
	if d.Location != want {
		t.Fatalf("location = %+v, want %+v", d.Location, want)
	}
	if d.Notes != nil || d.Fixes != nil {
		t.Fatalf("notes and fixes must be opt-in: %+v", d)
	}
	if out.Diagnostics[1].Severity != "WARNING" {
		t.Fatalf("second severity = %q", out.Diagnostics[1].Severity)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs, bag := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeRelative}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.Contains(buf.String(), "start_line") {
		t.Fatalf("positions must be omitted:\n%s", buf.String())
	}
	out := decodeOutput(t, buf.Bytes())
	if out.Diagnostics[0].Location.File != "idl/app.wv" {
		t.Fatalf("relative path = %q", out.Diagnostics[0].Location.File)
	}
}

func TestJSONWithNotesFixesAndPreview(t *testing.T) {
	fs, bag := sampleBag()
	var buf bytes.Buffer
	opts := JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, IncludeFixes: true, IncludePreviews: true}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	d := decodeOutput(t, buf.Bytes()).Diagnostics[0]
	if len(d.Notes) != 1 || d.Notes[0].Message != "in contract C" || d.Notes[0].Location.StartByte != 13 {
		t.Fatalf("notes = %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Title != "insert semicolon" || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != ";" || edit.OldText != "" {
		t.Fatalf("edit = %+v", edit)
	}
	if !slices.Equal(edit.BeforeLines, []string{"  fn new()"}) || !slices.Equal(edit.AfterLines, []string{"  fn new();"}) {
		t.Fatalf("preview = %q -> %q", edit.BeforeLines, edit.AfterLines)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs, bag := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	out := decodeOutput(t, buf.Bytes())
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count = %d dropped = %d", out.Count, out.Dropped)
	}
}

func TestSarif(t *testing.T) {
	fs, bag := sampleBag()
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolVersion: "0.1.0", InvocationArgs: []string{"diag", "idl"}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log SarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "weave" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
	r := run.Results[0]
	if r.RuleID != "SYN2002" || r.Level != "error" || run.Tool.Driver.Rules[r.RuleIndex].ID != r.RuleID {
		t.Fatalf("result = %+v", r)
	}
	region := r.Locations[0].PhysicalLocation.Region
	if region.StartLine != 3 || region.StartColumn != 11 || r.Locations[0].PhysicalLocation.ArtifactLocation.URI != "idl/app.wv" {
		t.Fatalf("location = %+v", r.Locations[0])
	}
	if len(r.RelatedLocations) != 1 || len(r.Fixes) != 1 {
		t.Fatalf("related = %+v fixes = %+v", r.RelatedLocations, r.Fixes)
	}
	repl := r.Fixes[0].ArtifactChanges[0].Replacements[0]
	if repl.InsertedContent == nil || repl.InsertedContent.Text != ";" {
		t.Fatalf("replacement = %+v", repl)
	}
	if run.Results[1].Level != "warning" {
		t.Fatalf("warning level = %q", run.Results[1].Level)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.wv", []byte("package a;"))
	toks := []token.Token{
		{Kind: token.KwPackage, Span: source.Span{File: id, Start: 0, End: 7}, Text: "package"},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 10, End: 10}},
		{Kind: token.Ident, Text: "after-eof"},
	}
	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"package" at 1:1-1:8`) || strings.Contains(buf.String(), "after-eof") {
		t.Fatalf("pretty tokens:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 || out[0].Text != "package" || out[1].Kind != "EOF" {
		t.Fatalf("json tokens = %+v", out)
	}
}
