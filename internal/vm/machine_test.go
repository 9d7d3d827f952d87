package vm_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-json-experiment/json/jsontext"

	"weave/internal/model"
	"weave/internal/sema"
	"weave/internal/vm"
	"weave/runtime/wasmrt"
)

func TestKeysCoverEveryCase(t *testing.T) {
	m, _ := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	want := []string{
		"instantiate",
		"increment", "reset", "cw1.execute", "cw1.freeze", "whitelist.freeze", "whitelist.update_admins",
		"count", "cw1.admin_list", "whitelist.admin_list",
		"tick",
		"clean", "shared", "reply_on", "reply_on_failed", "reply_on_always",
	}
	if got := m.Keys(); !slices.Equal(got, want) {
		t.Fatalf("keys = %v\nwant  %v", got, want)
	}
}

func TestDispatchCompositionIsDisjoint(t *testing.T) {
	m, rec := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	tests := []struct {
		msg     string
		key     string
		wrapper string
	}{
		{`{"increment":{"by":3}}`, "increment", ""},
		{`{"cw1":{"freeze":{}}}`, "cw1.freeze", "Cw1"},
		{`{"whitelist":{"freeze":{}}}`, "whitelist.freeze", "Whitelist"},
		{`{"whitelist":{"update_admins":{"add":["a"],"remove":[]}}}`, "whitelist.update_admins", "Whitelist"},
	}
	for _, tt := range tests {
		res, err := m.Dispatch(model.KindExec, []byte(tt.msg))
		if err != nil {
			t.Fatalf("%s: %v", tt.msg, err)
		}
		call := rec.last(t)
		if res.Call != call || call.Key() != tt.key {
			t.Fatalf("%s routed to %s, want %s", tt.msg, call.Key(), tt.key)
		}
		got := ""
		if call.Wrapper != nil {
			got = call.Wrapper.Field
		}
		if got != tt.wrapper {
			t.Fatalf("%s wrapper = %q, want %q", tt.msg, got, tt.wrapper)
		}
	}
	if got := string(rec.calls[0].Field("by")); got != "3" {
		t.Fatalf("increment.by = %s", got)
	}
}

func TestDispatchForwardsFieldsInDeclarationOrder(t *testing.T) {
	m, rec := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	if _, err := m.Dispatch(model.KindExec, []byte(`{"reset":{"owner":"alice","to":"340282366920938463463374607431768211455"}}`)); err != nil {
		t.Fatal(err)
	}
	call := rec.last(t)
	if len(call.Fields) != 2 || call.Fields[0].Name != "to" || call.Fields[1].Name != "owner" {
		t.Fatalf("fields = %+v", call.Fields)
	}
	// An absent optional field is forwarded as null.
	if _, err := m.Dispatch(model.KindExec, []byte(`{"reset":{"to":"1"}}`)); err != nil {
		t.Fatal(err)
	}
	if got := string(rec.last(t).Field("owner")); got != "null" {
		t.Fatalf("owner = %s", got)
	}
}

func TestDecodeRejections(t *testing.T) {
	m, _ := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	tests := []struct {
		name string
		kind model.Kind
		msg  string
		code vm.ErrorCode
	}{
		{"unknown tag", model.KindExec, `{"decrement":{}}`, vm.ErrUnknownCase},
		{"unknown inner tag", model.KindExec, `{"cw1":{"thaw":{}}}`, vm.ErrUnknownCase},
		{"two members", model.KindExec, `{"increment":{"by":1},"reset":{"to":"1"}}`, vm.ErrMalformed},
		{"not an object", model.KindExec, `["increment"]`, vm.ErrMalformed},
		{"unknown member", model.KindExec, `{"increment":{"by":1,"times":2}}`, vm.ErrUnknownMember},
		{"missing field", model.KindExec, `{"increment":{}}`, vm.ErrMissingField},
		{"wrong type", model.KindExec, `{"increment":{"by":"1"}}`, vm.ErrTypeMismatch},
		{"negative unsigned", model.KindExec, `{"increment":{"by":-1}}`, vm.ErrTypeMismatch},
		{"u128 as number", model.KindExec, `{"reset":{"to":1}}`, vm.ErrTypeMismatch},
		{"nested struct overflow", model.KindInstantiate, `{"instantiate":{"count":1,"limits":{"max":300}}}`, vm.ErrTypeMismatch},
		{"nested unknown member", model.KindInstantiate, `{"instantiate":{"count":1,"limits":{"max":3,"min":1}}}`, vm.ErrUnknownMember},
		{"no migrate messages", model.KindMigrate, `{"migrate":{}}`, vm.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Dispatch(tt.kind, []byte(tt.msg))
			expectCode(t, err, tt.code)
		})
	}
	_, err := m.Decode(model.KindExec, []byte(`{"decrement":{}}`))
	if !vm.IsUnknownCase(err) || !errors.Is(err, wasmrt.ErrUnknownCase) {
		t.Fatalf("unknown tag error %v does not wrap the runtime error", err)
	}
}

func TestRoundTripEveryCase(t *testing.T) {
	m, rec := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	values := map[string]map[string]jsontext.Value{
		"instantiate":             {"count": jsontext.Value(`7`), "limits": jsontext.Value(`{"max":9}`)},
		"increment":               {"by": jsontext.Value(`1`)},
		"reset":                   {"owner": jsontext.Value(`"bob"`), "to": jsontext.Value(`"12"`)},
		"cw1.execute":             {"msgs": jsontext.Value(`[]`)},
		"whitelist.update_admins": {"remove": jsontext.Value(`["x"]`), "add": jsontext.Value(`[]`)},
	}
	for _, k := range model.MsgKinds {
		comp := m.Plan().Composites[k]
		if comp.Empty() {
			continue
		}
		for _, key := range m.Keys() {
			data, err := m.Encode(k, key, values[key])
			if vm.CodeOf(err) == vm.ErrUnknownHandler {
				continue // key belongs to another kind
			}
			if err != nil {
				t.Fatalf("encode %s %s: %v", k, key, err)
			}
			if _, err := m.Dispatch(k, data); err != nil {
				t.Fatalf("decode %s %s from %s: %v", k, key, data, err)
			}
			call := rec.last(t)
			if call.Key() != key || call.Kind != k {
				t.Fatalf("%s decoded as %s/%s", data, call.Kind, call.Key())
			}
			for name, v := range values[key] {
				if got := call.Field(name); string(got) != string(v) {
					t.Fatalf("%s.%s = %s, want %s", key, name, got, v)
				}
			}
		}
	}
}

func TestEncodeCanonicalForms(t *testing.T) {
	m, _ := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	tests := []struct {
		kind   model.Kind
		key    string
		values map[string]jsontext.Value
		want   string
	}{
		{model.KindExec, "cw1.freeze", nil, `{"cw1":{"freeze":{}}}`},
		{model.KindQuery, "cw1.admin_list", nil, `{"cw1":{"admin_list":{}}}`},
		{model.KindExec, "reset", map[string]jsontext.Value{"owner": jsontext.Value(`"a"`), "to": jsontext.Value(`"5"`)}, `{"reset":{"to":"5","owner":"a"}}`},
	}
	for _, tt := range tests {
		got, err := m.Encode(tt.kind, tt.key, tt.values)
		if err != nil {
			t.Fatalf("%s: %v", tt.key, err)
		}
		if string(got) != tt.want {
			t.Fatalf("%s = %s, want %s", tt.key, got, tt.want)
		}
	}
	_, err := m.Encode(model.KindExec, "increment", map[string]jsontext.Value{"by": jsontext.Value(`1`), "extra": jsontext.Value(`1`)})
	expectCode(t, err, vm.ErrUnknownMember)
	_, err = m.Encode(model.KindExec, "increment", nil)
	expectCode(t, err, vm.ErrMissingField)
}

func TestEntryOverrideSuppressesOnlySudo(t *testing.T) {
	m, rec := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	if err := m.Check(); err == nil {
		t.Fatalf("Check must report the missing override function")
	}
	var got jsontext.Value
	m.Override("custom_sudo", func(k model.Kind, msg jsontext.Value) (jsontext.Value, error) {
		got = msg
		return nil, nil
	})
	if err := m.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}

	res, err := m.Entry(model.KindSudo, []byte(`{"height":42}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Override != "custom_sudo" || string(got) != `{"height":42}` || len(rec.calls) != 0 {
		t.Fatalf("sudo entry = %+v, override got %s", res, got)
	}
	// The sudo union still exists and dispatches directly.
	if _, err := m.Dispatch(model.KindSudo, []byte(`{"tick":{}}`)); err != nil || rec.last(t).Key() != "tick" {
		t.Fatalf("direct sudo dispatch: %v", err)
	}
	// The override type is enforced.
	_, err = m.Entry(model.KindSudo, []byte(`{"tick":{}}`))
	expectCode(t, err, vm.ErrUnknownMember)

	// Exec entry reaches the same handler as direct dispatch.
	msg := []byte(`{"cw1":{"freeze":{}}}`)
	viaEntry, err := m.Entry(model.KindExec, msg)
	if err != nil {
		t.Fatal(err)
	}
	direct, err := m.Dispatch(model.KindExec, msg)
	if err != nil {
		t.Fatal(err)
	}
	if viaEntry.Call.Key() != direct.Call.Key() || viaEntry.Call.Method != direct.Call.Method {
		t.Fatalf("entry routed to %s, dispatch to %s", viaEntry.Call.Key(), direct.Call.Key())
	}
	_, err = m.Entry(model.KindMigrate, []byte(`{}`))
	expectCode(t, err, vm.ErrNoEntryPoint)
}

func TestReplyRouting(t *testing.T) {
	m, rec := machine(t, counter(t, sema.AliasReject, composeBoth), "Counter")
	failure := "out of gas"
	ok := func(id uint64, data string) wasmrt.Reply {
		r := wasmrt.Reply{ID: id, Result: wasmrt.SubMsgResult{Ok: &wasmrt.SubMsgResponse{}}}
		if data != "" {
			r.Result.Ok.Data = wasmrt.Binary(data)
		}
		return r
	}
	failed := func(id uint64) wasmrt.Reply {
		return wasmrt.Reply{ID: id, Result: wasmrt.SubMsgResult{Err: &failure}}
	}

	tests := []struct {
		name  string
		reply wasmrt.Reply
		key   string
		field string
		value string
	}{
		{"clean", ok(0, ""), "clean", "", ""},
		{"alias one", wasmrt.Reply{ID: 1, Payload: wasmrt.Binary("hi"), Result: wasmrt.SubMsgResult{Ok: &wasmrt.SubMsgResponse{}}}, "shared", "payload", `"aGk="`},
		{"alias two", failed(2), "shared", "payload", `""`},
		{"success without data", ok(3, ""), "reply_on", "data", "null"},
		{"success with data", ok(3, "xy"), "reply_on", "data", `"eHk="`},
		{"failure", failed(4), "reply_on_failed", "err", `"out of gas"`},
		{"always on failure", failed(5), "reply_on_always", "data", "null"},
		{"always decodes data", ok(5, `{"max":1}`), "reply_on_always", "data", `{"max":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Reply(tt.reply); err != nil {
				t.Fatal(err)
			}
			call := rec.last(t)
			if call.Key() != tt.key || call.Kind != model.KindReply {
				t.Fatalf("reply %d routed to %s", tt.reply.ID, call.Key())
			}
			if tt.field != "" && string(call.Field(tt.field)) != tt.value {
				t.Fatalf("%s = %s, want %s", tt.field, call.Field(tt.field), tt.value)
			}
		})
	}

	_, err := m.Reply(failed(3))
	expectCode(t, err, vm.ErrUnroutedReply)
	if !errors.Is(err, wasmrt.ErrUnhandledReply) {
		t.Fatalf("filter miss must wrap ErrUnhandledReply: %v", err)
	}
	_, err = m.Reply(ok(6, ""))
	if !errors.Is(err, wasmrt.ErrUnknownReply) {
		t.Fatalf("unknown id must wrap ErrUnknownReply: %v", err)
	}
	_, err = m.Reply(ok(5, `{"max":1000}`))
	expectCode(t, err, vm.ErrTypeMismatch)
}

func TestPermittedAliasTriesWrappersInOrder(t *testing.T) {
	f := counter(t, sema.AliasPermit, "@messages(cw1 as Admin: custom(msg))\n@messages(whitelist as Admin: custom(msg))")
	m, rec := machine(t, f, "Counter")

	// Both interfaces accept freeze; the first composed one wins.
	if _, err := m.Dispatch(model.KindExec, []byte(`{"admin":{"freeze":{}}}`)); err != nil {
		t.Fatal(err)
	}
	if got := rec.last(t).Key(); got != "admin_cw1.freeze" {
		t.Fatalf("freeze routed to %s", got)
	}
	// Only the whitelist has update_admins.
	if _, err := m.Dispatch(model.KindExec, []byte(`{"admin":{"update_admins":{"add":[],"remove":[]}}}`)); err != nil {
		t.Fatal(err)
	}
	if got := rec.last(t).Key(); got != "admin_whitelist.update_admins" {
		t.Fatalf("update_admins routed to %s", got)
	}
	_, err := m.Dispatch(model.KindExec, []byte(`{"admin":{"thaw":{}}}`))
	expectCode(t, err, vm.ErrUnknownCase)
}

func TestRegisterRejectsUnknownKey(t *testing.T) {
	m, err := vm.New(counter(t, sema.AliasReject, composeBoth), "Counter", vm.Options{})
	if err != nil {
		t.Fatal(err)
	}
	err = m.Register("cw2.freeze", func(*vm.Call) (jsontext.Value, error) { return nil, nil })
	expectCode(t, err, vm.ErrUnknownHandler)
	_, err = m.Dispatch(model.KindExec, []byte(`{"increment":{"by":1}}`))
	expectCode(t, err, vm.ErrNoHandler)
	if _, err := vm.New(counter(t, sema.AliasReject, composeBoth), "Missing", vm.Options{}); err == nil {
		t.Fatalf("expected an error for an unknown contract")
	}
}

func TestGenericContractWithoutEntryPoints(t *testing.T) {
	f := analyze(t, sema.AliasReject, srcFile{"store.wv", `package store;

contract Store<T> {
	fn new();
	@exec fn put(ctx: ExecCtx, value: T);
}
`})
	m, rec := machine(t, f, "Store")
	// Unbound generics accept any value.
	if _, err := m.Dispatch(model.KindExec, []byte(`{"put":{"value":{"any":[1,2]}}}`)); err != nil {
		t.Fatal(err)
	}
	if rec.last(t).Key() != "put" {
		t.Fatalf("put not routed")
	}
	_, err := m.Entry(model.KindExec, []byte(`{"put":{"value":1}}`))
	expectCode(t, err, vm.ErrNoEntryPoint)
}

func TestEntryGenericsAreEnforced(t *testing.T) {
	f := analyze(t, sema.AliasReject, srcFile{"store.wv", `package store;

@entry_points(generics = [u8])
contract Store<T> {
	fn new();
	@exec fn put(ctx: ExecCtx, value: T);
}
`})
	m, _ := machine(t, f, "Store")
	if _, err := m.Entry(model.KindExec, []byte(`{"put":{"value":200}}`)); err != nil {
		t.Fatal(err)
	}
	_, err := m.Entry(model.KindExec, []byte(`{"put":{"value":300}}`))
	expectCode(t, err, vm.ErrTypeMismatch)
}
