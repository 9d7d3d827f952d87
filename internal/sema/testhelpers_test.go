package sema_test

import (
	"strings"
	"testing"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/parser"
	"weave/internal/sema"
	"weave/internal/source"
)

type srcFile struct {
	path string
	text string
}

// analyzeFiles analyses files in order; each may import the earlier ones
// by path.
func analyzeFiles(t *testing.T, policy sema.AliasPolicy, files ...srcFile) (sema.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	imports := map[string]*model.File{}
	var res sema.Result
	for _, f := range files {
		id := fs.AddVirtual(f.path, []byte(f.text))
		pr := parser.ParseSource(fs, id, parser.Options{Reporter: rep})
		if pr.Errors > 0 {
			t.Fatalf("%s: parse errors:\n%s", f.path, summary(bag))
		}
		res = sema.Analyze(pr.File, f.path, sema.Options{Reporter: rep, Imports: imports, AliasCollision: policy})
		imports[f.path] = res.File
	}
	return res, bag
}

func analyze(t *testing.T, src string) (sema.Result, *diag.Bag) {
	t.Helper()
	return analyzeFiles(t, sema.AliasReject, srcFile{"test.wv", src})
}

func mustAnalyze(t *testing.T, src string) *model.File {
	t.Helper()
	res, bag := analyze(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", summary(bag))
	}
	return res.File
}

func summary(bag *diag.Bag) string {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(d.Code.ID() + " " + d.Message + "\n")
	}
	return sb.String()
}

func codes(bag *diag.Bag) map[diag.Code]int {
	out := map[diag.Code]int{}
	for _, c := range bag.Codes() {
		out[c]++
	}
	return out
}

func expectCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("expected %s, got:\n%s", code.ID(), summary(bag))
	return diag.Diagnostic{}
}

func wires(u *model.Union) []string {
	out := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		out[i] = v.Wire
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

const cw1Src = `package cw1;

struct AdminListResponse { admins: string[]; mutable: bool; }
struct CanExecuteResponse { can_execute: bool; }

@custom(msg = ExecC, query = QueryC)
interface Cw1 {
	type Error = string;
	type ExecC;
	type QueryC;

	@exec fn execute(ctx: ExecCtx, msgs: CosmosMsg<ExecC>[]);
	@exec fn freeze(ctx: ExecCtx);
	@query fn admin_list(ctx: QueryCtx) -> AdminListResponse;
	@query(resp = CanExecuteResponse)
	fn can_execute(ctx: QueryCtx, sender: string, msg: CosmosMsg<ExecC>);
}
`
