package sema_test

import (
	"testing"

	"weave/internal/diag"
	"weave/internal/model"
)

func TestEntryPointWiring(t *testing.T) {
	f := mustAnalyze(t, `package vault;

struct SudoMsg { height: u64; }

@override_entry_point(sudo = custom_sudo(SudoMsg))
contract Vault {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx);
	@exec fn deposit(ctx: ExecCtx);
	@query fn balance(ctx: QueryCtx, addr: string) -> Uint128;
}
`)
	plan := f.Contract("Vault")
	want := map[model.Kind]model.Wiring{
		model.KindInstantiate: model.WireAuto,
		model.KindExec:        model.WireAuto,
		model.KindQuery:       model.WireAuto,
		model.KindSudo:        model.WireOverride,
		model.KindMigrate:     model.WireNone,
		model.KindReply:       model.WireNone,
	}
	for k, w := range want {
		if got := plan.Entry.Of(k); got != w {
			t.Fatalf("%s wiring = %s, want %s", k, got, w)
		}
	}
	ov := plan.Contract.Overrides[model.KindSudo]
	if ov == nil || ov.Handler != "custom_sudo" || ov.MsgType.String() != "SudoMsg" {
		t.Fatalf("sudo override = %+v", ov)
	}
	if plan.Entry.Skipped {
		t.Fatalf("non-generic contract must not be skipped")
	}
}

func TestOverrideWinsOverHandlers(t *testing.T) {
	f := mustAnalyze(t, `package vault;

@override_entry_point(exec = raw_exec(Binary))
contract Vault {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx);
	@exec fn deposit(ctx: ExecCtx);
}
`)
	if got := f.Contract("Vault").Entry.Of(model.KindExec); got != model.WireOverride {
		t.Fatalf("exec wiring = %s", got)
	}
}

func TestGenericEntryPoints(t *testing.T) {
	f := mustAnalyze(t, `package generic;

@entry_points(generics = [Empty, u64])
@custom(msg = M)
contract Store<M: custom_msg, T> {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx, seed: T);
	@exec fn put(ctx: ExecCtx, value: T);
}
`)
	plan := f.Contract("Store")
	if len(plan.Entry.Generics) != 2 || plan.Entry.Generics[1].String() != "u64" {
		t.Fatalf("entry generics = %v", plan.Entry.Generics)
	}
	if got := plan.Composites[model.KindExec].Used; !equalStrings(got, []string{"T"}) {
		t.Fatalf("exec used = %v", got)
	}
}

func TestGenericWithoutEntryPointsIsSkipped(t *testing.T) {
	res, bag := analyze(t, `package generic;

contract Store<T> {
	fn new();
	@exec fn put(ctx: ExecCtx, value: T);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", summary(bag))
	}
	expectCode(t, bag, diag.SemEntryPointsSkipped)
	if !res.File.Contract("Store").Entry.Skipped {
		t.Fatalf("Store must be marked skipped")
	}
}

func TestEntryPointDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		gens  string
		code  diag.Code
	}{
		{"unknown kind", "@override_entry_point(transfer = f(Binary))", "", diag.SemOverrideKind},
		{"overridden twice", "@override_entry_point(exec = f(Binary), exec = g(Binary))", "", diag.SynDuplicateAttrArg},
		{"not a call", "@override_entry_point(exec = Binary)", "", diag.SynBadAttrShape},
		{"unknown msg type", "@override_entry_point(exec = f(Nope))", "", diag.SemUnknownType},
		{"arity mismatch", "@entry_points(generics = [u8])", "<A, B>", diag.SemEntryGenerics},
		{"nothing to instantiate", "@entry_points(generics = [u8])", "", diag.SemEntryGenerics},
		{"generic argument", "@entry_points(generics = [T])", "<T>", diag.SemUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "package e;\n" + tt.attrs + "\ncontract C" + tt.gens + ` {
	fn new();
	@exec fn run(ctx: ExecCtx);
}
`
			res, bag := analyze(t, src)
			expectCode(t, bag, tt.code)
			if res.File.Contract("C") != nil {
				t.Fatalf("C must be dropped")
			}
		})
	}
}
