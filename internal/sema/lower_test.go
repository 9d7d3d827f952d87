package sema_test

import (
	"strings"
	"testing"

	"weave/internal/diag"
	"weave/internal/model"
)

func TestInterfaceUnionsFollowDeclarationOrder(t *testing.T) {
	f := mustAnalyze(t, cw1Src+"\n")
	plan := f.Interface("Cw1")
	if plan == nil {
		t.Fatalf("Cw1 not analysed")
	}
	iface := plan.Interface
	if got := iface.Placeholder("ExecC"); got == nil || got.Role != model.RoleCustomMsg {
		t.Fatalf("ExecC = %+v", got)
	}
	if !model.IsBuiltin(iface.Error, "string") {
		t.Fatalf("error type = %v", iface.Error)
	}

	exec := plan.Unions[model.KindExec]
	if got := wires(exec); !equalStrings(got, []string{"execute", "freeze"}) {
		t.Fatalf("exec cases = %v", got)
	}
	if exec.Variants[1].Case != "Freeze" || len(exec.Variants[1].Fields) != 0 {
		t.Fatalf("freeze variant = %+v", exec.Variants[1])
	}
	if !equalStrings(exec.Used, []string{"ExecC"}) || !equalStrings(exec.Unused, []string{"QueryC"}) {
		t.Fatalf("exec usage = %v / %v", exec.Used, exec.Unused)
	}

	query := plan.Unions[model.KindQuery]
	if got := wires(query); !equalStrings(got, []string{"admin_list", "can_execute"}) {
		t.Fatalf("query cases = %v", got)
	}
	if query.Variants[0].Case != "AdminList" {
		t.Fatalf("case name = %s", query.Variants[0].Case)
	}
	if got := query.Variants[1].Method.Response.String(); got != "CanExecuteResponse" {
		t.Fatalf("explicit resp = %s", got)
	}
	if got := query.Variants[0].Method.Response.String(); got != "AdminListResponse" {
		t.Fatalf("inferred resp = %s", got)
	}
	if got := exec.Variants[0].Method.Return.String(); got != "Response<ExecC>" {
		t.Fatalf("default exec return = %s", got)
	}
	if !plan.Unions[model.KindSudo].Empty() {
		t.Fatalf("sudo union should be empty")
	}
}

func TestUntaggedMethodsAreSkipped(t *testing.T) {
	f := mustAnalyze(t, `interface I {
	fn helper(x: u8);
	@exec fn run(ctx: ExecCtx);
}`)
	if got := len(f.Interface("I").Interface.Methods); got != 1 {
		t.Fatalf("got %d handlers, want 1", got)
	}
}

func TestGenericUsageIsExact(t *testing.T) {
	f := mustAnalyze(t, `contract Store<A, B, C> {
	fn new();
	@exec fn put(ctx: ExecCtx, value: Map<string, C[]>, other: A?);
	@query fn get(ctx: QueryCtx, key: A) -> B;
}`)
	plan := f.Contract("Store")
	exec := plan.Unions[model.KindExec]
	if !equalStrings(exec.Used, []string{"C", "A"}) || !equalStrings(exec.Unused, []string{"B"}) {
		t.Fatalf("exec usage = %v / %v", exec.Used, exec.Unused)
	}
	if len(exec.Generics) != 2 || exec.Generics[0].Name != "C" {
		t.Fatalf("exec generics = %+v", exec.Generics)
	}
	query := plan.Unions[model.KindQuery]
	if !equalStrings(query.Used, []string{"A"}) || !equalStrings(query.Unused, []string{"B", "C"}) {
		t.Fatalf("query usage = %v / %v (responses must not count)", query.Used, query.Unused)
	}
	if !plan.Entry.Skipped {
		t.Fatalf("generic contract without @entry_points should skip entry points")
	}
}

func TestUnusedConstraint(t *testing.T) {
	res, bag := analyze(t, `contract C<T, U> where T: comparable, U: any {
	fn new();
	@exec fn a(ctx: ExecCtx, t: T);
}`)
	d := expectCode(t, bag, diag.ConUnusedConstraint)
	if !strings.Contains(d.Message, "U") {
		t.Fatalf("message = %q", d.Message)
	}
	if codes(bag)[diag.ConUnusedConstraint] != 1 {
		t.Fatalf("T is used and must not be reported:\n%s", summary(bag))
	}
	if res.File.Contract("C") != nil || len(res.Failed) != 1 {
		t.Fatalf("failing contract must produce no plan")
	}
}

func TestStructuralDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		body string
		code diag.Code
	}{
		{"missing constructor", "@exec fn a(ctx: ExecCtx);", diag.SemMissingConstructor},
		{"constructor params", "fn new(x: u8);", diag.SemConstructorParams},
		{"duplicate variant", "fn new(); @exec fn a(ctx: ExecCtx); @exec fn a(ctx: ExecCtx, x: u8);", diag.SemDuplicateVariant},
		{"name reused across kinds", "fn new(); @exec fn a(ctx: ExecCtx); @query fn a(ctx: QueryCtx) -> u8;", diag.SemDuplicateDecl},
		{"wrong context", "fn new(); @exec fn a(ctx: QueryCtx);", diag.SemContextParam},
		{"missing context", "fn new(); @exec fn a(x: u8);", diag.SemContextParam},
		{"context not first", "fn new(); @exec fn a(ctx: ExecCtx, q: QueryCtx);", diag.SemContextParam},
		{"query without response", "fn new(); @query fn a(ctx: QueryCtx);", diag.SemQueryResponse},
		{"query response mismatch", "fn new(); @query(resp = u8) fn a(ctx: QueryCtx) -> u16;", diag.SemQueryReturnMismatch},
		{"bad exec return", "fn new(); @exec fn a(ctx: ExecCtx) -> Response<u8>;", diag.SemBadReturnType},
		{"two kind tags", "fn new(); @exec @query fn a(ctx: ExecCtx);", diag.SynDuplicateKindTag},
		{"exec takes no args", "fn new(); @exec(x = 1) fn a(ctx: ExecCtx);", diag.SynUnknownAttrArg},
		{"unknown reply arg", "fn new(); @reply(handler = [a]) fn a(ctx: ReplyCtx);", diag.SynUnknownAttrArg},
		{"bad reply_on", "fn new(); @reply(reply_on = sometimes) fn a(ctx: ReplyCtx);", diag.SynUnknownAttrArg},
		{"unknown attribute", "fn new(); @frobnicate @exec fn a(ctx: ExecCtx);", diag.SynUnknownAttribute},
		{"misplaced attribute", "fn new(); @messages(x) @exec fn a(ctx: ExecCtx);", diag.SynAttrNotAllowed},
		{"unknown type", "fn new(); @exec fn a(ctx: ExecCtx, x: Nope);", diag.SemUnknownType},
		{"type arity", "fn new(); @exec fn a(ctx: ExecCtx, x: Vec<u8, u8>);", diag.SemTypeArity},
		{"duplicate param", "fn new(); @exec fn a(ctx: ExecCtx, x: u8, x: u16);", diag.SemDuplicateParam},
		{"reply param without role", "fn new(); @reply fn a(ctx: ReplyCtx, x: u8);", diag.SemReplyRole},
		{"role outside reply", "fn new(); @exec fn a(ctx: ExecCtx, @payload p: Binary);", diag.SemReplyRole},
		{"opt data not optional", "fn new(); @reply fn a(ctx: ReplyCtx, @data(opt) d: Binary);", diag.SemReplyRole},
		{"raw payload not binary", "fn new(); @reply fn a(ctx: ReplyCtx, @payload(raw) p: string);", diag.SemReplyRole},
		{"error on success handler", "fn new(); @reply(reply_on = success) fn a(ctx: ReplyCtx, @error e: string);", diag.SemReplyRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, bag := analyze(t, "contract C { "+tt.body+" }")
			expectCode(t, bag, tt.code)
			if res.File.Contract("C") != nil {
				t.Fatalf("contract with errors must not produce a plan")
			}
		})
	}
}

func TestPatternParamIsPinnedToPattern(t *testing.T) {
	src := "contract C { fn new(); @exec fn a(ctx: ExecCtx, (x, y): u8); }"
	_, bag := analyze(t, src)
	d := expectCode(t, bag, diag.SemPatternParam)
	start := uint32(strings.Index(src, "(x, y)"))
	if d.Primary.Start != start || d.Primary.End != start+uint32(len("(x, y)")) {
		t.Fatalf("span = %v, want [%d,%d)", d.Primary, start, start+6)
	}
}

func TestInterfaceKindRestriction(t *testing.T) {
	_, bag := analyze(t, "interface I { @instantiate fn i(ctx: InstantiateCtx); }")
	expectCode(t, bag, diag.SemKindNotAllowed)
}

func TestErrorsStayLocalToTheirDeclaration(t *testing.T) {
	res, bag := analyze(t, `
contract Broken { @exec fn a(ctx: ExecCtx); }
contract Fine { fn new(); @exec fn a(ctx: ExecCtx); }
struct Data { x: u8; }
`)
	expectCode(t, bag, diag.SemMissingConstructor)
	if res.File.Contract("Broken") != nil {
		t.Fatalf("Broken must be dropped")
	}
	if res.File.Contract("Fine") == nil || res.File.Struct("Data") == nil {
		t.Fatalf("unrelated declarations must survive")
	}
	if !equalStrings(res.Failed, []string{"Broken"}) {
		t.Fatalf("failed = %v", res.Failed)
	}
}

func TestDuplicateDeclarations(t *testing.T) {
	_, bag := analyze(t, "struct A { x: u8; } struct A { y: u8; } struct Vec { }")
	if codes(bag)[diag.SemDuplicateDecl] != 2 {
		t.Fatalf("want two SemDuplicateDecl:\n%s", summary(bag))
	}
}
