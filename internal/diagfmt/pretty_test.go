package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"weave/internal/diag"
	"weave/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("package cw1;\nstruct Limit { name: \"unterminated }\n")
	fileID := fs.AddVirtual("/home/user/project/idl/cw1.wv", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 34, End: 49}, "Unterminated string literal"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/idl/cw1.wv:2:22"},
		{"relative", PathModeRelative, "idl/cw1.wv:2:22"},
		{"basename", PathModeBasename, "cw1.wv:2:22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "LEX1002", "Unterminated string literal"} {
				if !strings.Contains(out, want) {
					t.Fatalf("output lacks %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPrettyContextAndCaret(t *testing.T) {
	fs := source.NewFileSetWithBase("/p")
	content := []byte("package app;\nstruct S {\n\tx: Foo;\n}\n")
	id := fs.AddVirtual("/p/app.wv", content)
	start := uint32(strings.Index(string(content), "Foo"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemUnknownType, source.Span{File: id, Start: start, End: start + 3}, "unknown type Foo"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	out := buf.String()

	wantLines := []string{
		"app.wv:3:5: ERROR SEM3007: unknown type Foo",
		"2 | struct S {",
		"3 | \tx: Foo;",
		" | \t   ^~~",
		"4 | }",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "1 | package") {
		t.Fatalf("context must be limited to one line:\n%s", out)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	got := underline("/// 名前 x", 12, source.LineCol{Line: 1, Col: 13}, 1)
	// "/// " is four columns, each CJK rune two, then a space.
	if got != "         ^" {
		t.Fatalf("underline = %q", got)
	}
}

func TestPrettyNotesFixesPreview(t *testing.T) {
	fs := source.NewFileSetWithBase("/p")
	content := []byte("package app;\ncontract C {\n  fn new()\n}\n")
	id := fs.AddVirtual("/p/app.wv", content)
	end := uint32(strings.Index(string(content), "()") + 2)

	d := diag.NewError(diag.SynExpectSemicolon, source.Span{File: id, Start: end, End: end}, "expected ';'").
		WithNote(source.Span{File: id, Start: 13, End: 21}, "in contract C").
		WithFix("insert semicolon", diag.FixEdit{Span: source.Span{File: id, Start: end, End: end}, NewText: ";"})
	bag := diag.NewBag(10)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, want := range []string{
		"note: app.wv:2:1: in contract C",
		"fix #1: insert semicolon",
		`apply=";" at app.wv:3:11`,
		"preview:",
		"-   fn new()",
		"+   fn new();",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") || strings.Contains(buf.String(), "fix #1") {
		t.Fatalf("notes and fixes must be opt-in:\n%s", buf.String())
	}
}

func TestPrettyColorToggle(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.wv", []byte("package a;\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: id, Start: 0, End: 7}, "boom"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes: %q", colored.String())
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.wv", []byte("package a;\nx\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynUnexpectedTopLevel, source.Span{File: id, Start: 11, End: 12}, "unexpected x"))
	bag.Add(diag.New(diag.SevWarning, diag.ConUnusedConstraint, source.Span{File: id, Start: 0, End: 7}, "unused"))

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeBasename)
	want := "a.wv:2:1: ERROR SYN2006: unexpected x\na.wv:1:1: WARNING CON4001: unused\n"
	if buf.String() != want {
		t.Fatalf("Short = %q, want %q", buf.String(), want)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPretty, "short": FormatShort, "json": FormatJSON, "sarif": FormatSARIF} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}
