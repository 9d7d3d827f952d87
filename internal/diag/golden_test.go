package diag

import (
	"testing"

	"weave/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("idl/counter.wv", []byte("a\nb\n"))

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemQueryReturnMismatch,
			Message:  "another",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 2, End: 3}, Msg: "note line"},
			},
		},
	}

	want := "error SYN2001 idl/counter.wv:1:1 first line second\n" +
		"note SYN2001 idl/counter.wv:2:1 note line\n" +
		"warning SEM3101 idl/counter.wv:2:1 another"
	if got := FormatGoldenDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestCodeCategories(t *testing.T) {
	cases := []struct {
		code Code
		id   string
		cat  string
	}{
		{SynUnknownAttrArg, "SYN2011", "grammar"},
		{SemPatternParam, "SEM3003", "structural"},
		{SemMissingConstructor, "SEM3001", "structural"},
		{ConReplyFilterOverlap, "CON4002", "constraint"},
		{PrjImportCycle, "PRJ6001", "project"},
	}
	for _, tc := range cases {
		if tc.code.ID() != tc.id || tc.code.Category() != tc.cat {
			t.Errorf("%v: got %s/%s", tc.code, tc.code.ID(), tc.code.Category())
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatalf("unknown code must fall back to generic title")
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	sp := func(start uint32) source.Span { return source.Span{Start: start, End: start + 1} }

	ReportError(r, SemDuplicateVariant, sp(5), "dup").Emit()
	ReportWarning(r, SemQueryReturnMismatch, sp(1), "warn").Emit()
	ReportError(r, SemDuplicateVariant, sp(5), "dup").Emit()
	ReportError(r, SemPatternParam, sp(9), "over limit").Emit()

	if bag.Len() != 3 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	bag.Sort()
	bag.Dedup()
	codes := bag.Codes()
	if len(codes) != 2 || codes[0] != SemQueryReturnMismatch || codes[1] != SemDuplicateVariant {
		t.Fatalf("unexpected order: %v", codes)
	}
	if !bag.HasErrors() {
		t.Fatalf("bag must report errors")
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	counter := &ErrorCounter{Next: BagReporter{Bag: bag}}
	b := ReportError(counter, SemMissingConstructor, source.Span{}, "missing `fn new();`").
		WithNote(source.Span{}, "contract declared here").
		WithFix("add a constructor")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 || counter.Errors != 1 {
		t.Fatalf("builder emitted %d times", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("notes/fixes lost: %+v", d)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		r.Report(SemUnknownType, SevError, source.Span{Start: 1, End: 2}, "unknown type `Foo`", nil, nil)
	}
	r.Report(SemUnknownType, SevError, source.Span{Start: 1, End: 2}, "unknown type `Bar`", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}
