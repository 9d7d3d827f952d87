package model

import "testing"

func TestParamsOfFirstSeenOrder(t *testing.T) {
	ty := &Map{
		Key: &TypeParam{Name: "K"},
		Val: &Slice{Elem: &Builtin{Name: "Response", Args: []Type{&TypeParam{Name: "M"}}}},
	}
	got := ParamsOf(&Optional{Elem: ty}, nil)
	got = ParamsOf(&TypeParam{Name: "K"}, got)
	got = ParamsOf(&Named{Name: "Pair", Args: []Type{&TypeParam{Name: "T"}, &TypeParam{Name: "M"}}}, got)
	want := []string{"K", "M", "T"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSubstLeavesInputIntact(t *testing.T) {
	orig := &Builtin{Name: "CosmosMsg", Args: []Type{&TypeParam{Name: "ExecC"}}}
	out := Subst(orig, map[string]Type{"ExecC": Empty()})
	if out.String() != "CosmosMsg<Empty>" {
		t.Fatalf("subst = %s", out)
	}
	if orig.String() != "CosmosMsg<ExecC>" {
		t.Fatalf("input mutated: %s", orig)
	}
	if !References(orig, "ExecC") || References(out, "ExecC") {
		t.Fatalf("References mismatch")
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind  Kind
		tag   string
		wire  string
		entry string
		ctx   string
	}{
		{KindInstantiate, "instantiate", "instantiate", "Instantiate", "InstantiateCtx"},
		{KindExec, "exec", "execute", "Execute", "ExecCtx"},
		{KindQuery, "query", "query", "Query", "QueryCtx"},
		{KindReply, "reply", "reply", "Reply", "ReplyCtx"},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.tag || tt.kind.Wire() != tt.wire || tt.kind.EntryName() != tt.entry || tt.kind.ContextType() != tt.ctx {
			t.Errorf("%v: got %s/%s/%s/%s", tt.kind, tt.kind, tt.kind.Wire(), tt.kind.EntryName(), tt.kind.ContextType())
		}
		if k, ok := KindFromTag(tt.tag); !ok || k != tt.kind {
			t.Errorf("KindFromTag(%q) = %v, %v", tt.tag, k, ok)
		}
		if k, ok := KindFromContext(tt.ctx); !ok || k != tt.kind {
			t.Errorf("KindFromContext(%q) = %v, %v", tt.ctx, k, ok)
		}
	}
}

func TestReplyFilterOverlap(t *testing.T) {
	if ReplySuccess.Overlaps(ReplyFailure) {
		t.Fatalf("success and failure are disjoint")
	}
	for _, f := range []ReplyFilter{ReplyAlways, ReplySuccess, ReplyFailure} {
		if !ReplyAlways.Overlaps(f) || !f.Overlaps(f) {
			t.Fatalf("%v should overlap", f)
		}
	}
	if !ReplyFailure.Matches(false) || ReplyFailure.Matches(true) || !ReplyAlways.Matches(true) {
		t.Fatalf("Matches mismatch")
	}
}

func TestParamWireName(t *testing.T) {
	p := &Param{Name: "admin_list", JSON: "admins,omitempty"}
	if p.WireName() != "admins" || !p.OmitEmpty() {
		t.Fatalf("got %q omit=%v", p.WireName(), p.OmitEmpty())
	}
	p = &Param{Name: "x", JSON: ",string"}
	if p.WireName() != "x" || p.OmitEmpty() {
		t.Fatalf("got %q omit=%v", p.WireName(), p.OmitEmpty())
	}
}
