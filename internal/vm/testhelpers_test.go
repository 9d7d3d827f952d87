package vm_test

import (
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"

	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/parser"
	"weave/internal/sema"
	"weave/internal/source"
	"weave/internal/vm"
)

type srcFile struct {
	path string
	text string
}

func analyze(t *testing.T, policy sema.AliasPolicy, files ...srcFile) *model.File {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	imports := map[string]*model.File{}
	var last *model.File
	for _, f := range files {
		id := fs.AddVirtual(f.path, []byte(f.text))
		pr := parser.ParseSource(fs, id, parser.Options{Reporter: rep})
		if pr.Errors > 0 {
			t.Fatalf("%s: parse errors:\n%s", f.path, summary(bag))
		}
		res := sema.Analyze(pr.File, f.path, sema.Options{Reporter: rep, Imports: imports, AliasCollision: policy})
		imports[f.path] = res.File
		last = res.File
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", summary(bag))
	}
	return last
}

func summary(bag *diag.Bag) string {
	var sb strings.Builder
	for _, d := range bag.Items() {
		sb.WriteString(d.Code.ID() + " " + d.Message + "\n")
	}
	return sb.String()
}

// recorder registers a handler for every key and remembers the calls.
type recorder struct {
	calls []*vm.Call
}

func (r *recorder) handle(call *vm.Call) (jsontext.Value, error) {
	r.calls = append(r.calls, call)
	return jsontext.Value(`"` + call.Key() + `"`), nil
}

func (r *recorder) last(t *testing.T) *vm.Call {
	t.Helper()
	if len(r.calls) == 0 {
		t.Fatalf("no handler was called")
	}
	return r.calls[len(r.calls)-1]
}

func machine(t *testing.T, f *model.File, contract string) (*vm.Machine, *recorder) {
	t.Helper()
	m, err := vm.New(f, contract, vm.Options{})
	if err != nil {
		t.Fatalf("vm.New: %v", err)
	}
	rec := &recorder{}
	m.RegisterAll(rec.handle)
	return m, rec
}

func expectCode(t *testing.T, err error, code vm.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got success", code)
	}
	if got := vm.CodeOf(err); got != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

const cw1Src = `package cw1;

struct AdminListResponse { admins: string[]; mutable: bool; }

@custom(msg = ExecC, query = QueryC)
interface Cw1 {
	type ExecC;
	type QueryC;

	@exec fn execute(ctx: ExecCtx, msgs: CosmosMsg<ExecC>[]);
	@exec fn freeze(ctx: ExecCtx);
	@query fn admin_list(ctx: QueryCtx) -> AdminListResponse;
}
`

const whitelistSrc = `package whitelist;

@custom(msg = ExecC)
interface Whitelist {
	type ExecC;
	@exec fn freeze(ctx: ExecCtx);
	@exec fn update_admins(ctx: ExecCtx, add: string[], remove: string[]);
	@query fn admin_list(ctx: QueryCtx) -> bool;
}
`

func counterSrc(messages string) string {
	return `package counter;
import "cw1.wv";
import "whitelist.wv";

struct Limits { max: u8; note: string?; }
struct SudoMsg { height: u64; }

` + messages + `
@override_entry_point(sudo = custom_sudo(SudoMsg))
contract Counter {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx, count: u32, limits: Limits);
	@exec fn increment(ctx: ExecCtx, by: u32);
	@exec fn reset(ctx: ExecCtx, to: u128, owner: Addr?);
	@query fn count(ctx: QueryCtx) -> u32;
	@sudo fn tick(ctx: SudoCtx);
	@reply fn clean(ctx: ReplyCtx);
	@reply(handlers = [handler_one, handler_two])
	fn shared(ctx: ReplyCtx, @payload(raw) payload: Binary);
	@reply(reply_on = success)
	fn reply_on(ctx: ReplyCtx, @data(raw, opt) data: Binary?);
	@reply(reply_on = failure)
	fn reply_on_failed(ctx: ReplyCtx, @error err: string);
	@reply(reply_on = always)
	fn reply_on_always(ctx: ReplyCtx, @data(opt) data: Limits?);
}
`
}

func counter(t *testing.T, policy sema.AliasPolicy, messages string) *model.File {
	t.Helper()
	return analyze(t, policy,
		srcFile{"cw1.wv", cw1Src},
		srcFile{"whitelist.wv", whitelistSrc},
		srcFile{"counter.wv", counterSrc(messages)},
	)
}

const composeBoth = "@messages(cw1 as Cw1: custom(msg))\n@messages(whitelist: custom(msg))"
