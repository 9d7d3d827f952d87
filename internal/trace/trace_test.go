package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeDecl, false},
		{LevelDebug, ScopeDecl, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "sema")
	_, file := Start(ctx, ScopeFile, "file:cw1.wv")
	file.WithExtra("decls", "2").End("ok")
	_, decl := Start(ctx, ScopeDecl, "decl:Cw1")
	decl.End("")
	pass.End("")

	out := buf.String()
	for _, want := range []string{"→ sema", "→ file:cw1.wv", "← file:cw1.wv (ok) {decls=2}", "← sema"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "decl:Cw1") {
		t.Fatalf("decl scope must be filtered at detail level:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDecl, 7, "route:execute", "increment")
	line := buf.String()
	for _, want := range []string{`"kind":"point"`, `"scope":"decl"`, `"parent_id":7`, `"detail":"increment"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("ndjson %q misses %s", line, want)
		}
	}
	if !strings.HasSuffix(line, "}\n") {
		t.Fatalf("ndjson line not terminated: %q", line)
	}
}

func TestRingWrapsAndDumps(t *testing.T) {
	ring := NewRingTracer(2, LevelError)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeDecl, 0, name, "")
	}
	snap := ring.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if Begin(tr, ScopeDriver, "x", 0).End("") != 0 {
		t.Fatalf("nop span reported a duration")
	}
	both, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if RingOf(both) == nil {
		t.Fatalf("both mode must carry a ring")
	}
}
