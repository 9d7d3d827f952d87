package parser_test

import (
	"strings"
	"testing"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/parser"
	"weave/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.wv", []byte(src))
	bag := diag.NewBag(0)
	res := parser.ParseSource(fs, id, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return res.File, bag
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, bag := parseSource(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diagnosticsSummary(bag))
	}
	return f
}

func diagnosticsSummary(bag *diag.Bag) string {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(d.Code.ID())
		sb.WriteString(": ")
		sb.WriteString(d.Message)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, c := range bag.Codes() {
		if c == code {
			return true
		}
	}
	return false
}
