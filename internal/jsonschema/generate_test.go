package jsonschema_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"weave/internal/diag"
	"weave/internal/jsonschema"
	"weave/internal/model"
	"weave/internal/parser"
	"weave/internal/sema"
	"weave/internal/source"
)

type srcFile struct {
	path string
	text string
}

func analyze(t *testing.T, files ...srcFile) *model.File {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	imports := map[string]*model.File{}
	var last *model.File
	for _, f := range files {
		id := fs.AddVirtual(f.path, []byte(f.text))
		pr := parser.ParseSource(fs, id, parser.Options{Reporter: rep})
		res := sema.Analyze(pr.File, f.path, sema.Options{Reporter: rep, Imports: imports})
		imports[f.path] = res.File
		last = res.File
	}
	if bag.HasErrors() {
		var sb strings.Builder
		for _, d := range bag.Items() {
			sb.WriteString(d.Code.ID() + " " + d.Message + "\n")
		}
		t.Fatalf("unexpected diagnostics:\n%s", sb.String())
	}
	return last
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

const counterSrc = `package counter;
import "cw1.wv";

/// Spending limits.
struct Limits { max: u8; note: string?; }
struct SudoMsg { height: u64; }

@messages(cw1 as Cw1: custom(msg))
@override_entry_point(sudo = custom_sudo(SudoMsg))
contract Counter {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx, count: u32, limits: Limits);
	/// Adds to the counter.
	@exec fn increment(ctx: ExecCtx, by: u32);
	@exec fn reset(ctx: ExecCtx, to: u128, owner: Addr?);
	@query fn count(ctx: QueryCtx) -> u32;
	@sudo fn tick(ctx: SudoCtx);
}
`

func counterDoc(t *testing.T) *jsonschema.Document {
	t.Helper()
	f := analyze(t, srcFile{"cw1.wv", cw1Src}, srcFile{"counter.wv", counterSrc})
	doc, err := jsonschema.Generate(f, "Counter")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return doc
}

// caseOf finds the oneOf entry whose single required member is tag.
func caseOf(t *testing.T, s *jsonschema.Schema, tag string) *jsonschema.Schema {
	t.Helper()
	for _, c := range s.OneOf {
		if slices.Equal(c.Required, []string{tag}) {
			return c
		}
	}
	t.Fatalf("no case %q", tag)
	return nil
}

func closed(s *jsonschema.Schema) bool {
	return s.AdditionalProperties != nil && s.AdditionalProperties.Bool != nil && !*s.AdditionalProperties.Bool
}

func TestExecuteSchemaCases(t *testing.T) {
	doc := counterDoc(t)
	exec := doc.Execute
	if exec == nil {
		t.Fatalf("execute schema missing")
	}
	if exec.Schema != jsonschema.Draft || exec.Title != "ExecuteMsg" {
		t.Fatalf("root = %q %q", exec.Schema, exec.Title)
	}
	var tags []string
	for _, c := range exec.OneOf {
		if !closed(c) {
			t.Fatalf("case %v accepts extra members", c.Required)
		}
		tags = append(tags, c.Required...)
	}
	if want := []string{"increment", "reset", "cw1"}; !slices.Equal(tags, want) {
		t.Fatalf("execute cases = %v, want %v", tags, want)
	}

	inc := caseOf(t, exec, "increment")
	if inc.Description != "Adds to the counter." {
		t.Fatalf("increment description = %q", inc.Description)
	}
	body := inc.Properties["increment"]
	if !closed(body) || !slices.Equal(body.Required, []string{"by"}) {
		t.Fatalf("increment body = %+v", body)
	}
	by := body.Properties["by"]
	if by.Type != "integer" || by.Format != "uint32" || *by.Minimum != 0 || *by.Maximum != 4294967295 {
		t.Fatalf("by = %+v", by)
	}

	reset := caseOf(t, exec, "reset").Properties["reset"]
	if !slices.Equal(reset.Required, []string{"to"}) {
		t.Fatalf("optional owner must not be required: %v", reset.Required)
	}
	if reset.Properties["to"].Ref != "#/definitions/Uint128" {
		t.Fatalf("to = %+v", reset.Properties["to"])
	}
	if u := exec.Definitions["Uint128"]; u == nil || u.Pattern != "^[0-9]+$" {
		t.Fatalf("Uint128 definition = %+v", u)
	}
	owner := reset.Properties["owner"]
	if len(owner.AnyOf) != 2 || owner.AnyOf[0].Ref != "#/definitions/Addr" || owner.AnyOf[1].Type != "null" {
		t.Fatalf("owner = %+v", owner)
	}
}

func TestWrappedInterfaceDefinition(t *testing.T) {
	doc := counterDoc(t)
	ref := caseOf(t, doc.Execute, "cw1").Properties["cw1"].Ref
	name, ok := strings.CutPrefix(ref, "#/definitions/")
	if !ok || !strings.HasPrefix(name, "Cw1ExecMsg") {
		t.Fatalf("cw1 wrapper ref = %q", ref)
	}
	def := doc.Execute.Definitions[name]
	if def == nil {
		t.Fatalf("definition %s missing", name)
	}
	var tags []string
	for _, c := range def.OneOf {
		tags = append(tags, c.Required...)
	}
	if !slices.Equal(tags, []string{"execute", "freeze"}) {
		t.Fatalf("Cw1 cases = %v", tags)
	}
	freeze := caseOf(t, def, "freeze").Properties["freeze"]
	if len(freeze.Properties) != 0 || len(freeze.Required) != 0 || !closed(freeze) {
		t.Fatalf("freeze must be a closed empty object: %+v", freeze)
	}
	msgs := caseOf(t, def, "execute").Properties["execute"].Properties["msgs"]
	if msgs.Type != "array" || msgs.Items.Type != "object" {
		t.Fatalf("msgs = %+v", msgs)
	}
}

func TestInstantiateStructDefinition(t *testing.T) {
	doc := counterDoc(t)
	inst := caseOf(t, doc.Instantiate, "instantiate").Properties["instantiate"]
	if !slices.Equal(inst.Required, []string{"count", "limits"}) {
		t.Fatalf("instantiate required = %v", inst.Required)
	}
	if inst.Properties["limits"].Ref != "#/definitions/Limits" {
		t.Fatalf("limits = %+v", inst.Properties["limits"])
	}
	limits := doc.Instantiate.Definitions["Limits"]
	if limits.Description != "Spending limits." || !slices.Equal(limits.Required, []string{"max"}) {
		t.Fatalf("Limits = %+v", limits)
	}
	if max := limits.Properties["max"]; *max.Maximum != 255 {
		t.Fatalf("u8 maximum = %v", *max.Maximum)
	}
}

func TestOverriddenKindUsesOverrideType(t *testing.T) {
	doc := counterDoc(t)
	sudo := doc.Sudo
	if sudo == nil || len(sudo.OneOf) != 0 {
		t.Fatalf("sudo must describe SudoMsg, got %+v", sudo)
	}
	if sudo.Type != "object" || !slices.Equal(sudo.Required, []string{"height"}) {
		t.Fatalf("sudo = %+v", sudo)
	}
	if doc.Migrate != nil {
		t.Fatalf("contract without migrate handlers has a migrate schema")
	}
}

func TestQueryResponses(t *testing.T) {
	doc := counterDoc(t)
	keys := make([]string, 0, len(doc.Responses))
	for k := range doc.Responses {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if want := []string{"count", "cw1.admin_list"}; !slices.Equal(keys, want) {
		t.Fatalf("responses = %v, want %v", keys, want)
	}
	count := doc.Responses["count"]
	if count.Type != "integer" || count.Format != "uint32" || count.Schema != jsonschema.Draft {
		t.Fatalf("count response = %+v", count)
	}
	admins := doc.Responses["cw1.admin_list"]
	if admins.Title != "AdminListResponse" || !slices.Equal(admins.Required, []string{"admins", "mutable"}) {
		t.Fatalf("admin_list response = %+v", admins)
	}
}

func TestGenericContractUsesEntryGenerics(t *testing.T) {
	f := analyze(t, srcFile{"store.wv", `package store;

@entry_points(generics = [Empty, u64])
@custom(msg = M)
contract Store<M: custom_msg, T> {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx, seed: T);
	@exec fn put(ctx: ExecCtx, value: T);
}
`})
	doc, err := jsonschema.Generate(f, "Store")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	value := caseOf(t, doc.Execute, "put").Properties["put"].Properties["value"]
	if value.Type != "integer" || value.Format != "uint64" {
		t.Fatalf("T must be instantiated to u64, got %+v", value)
	}
}

func TestGenerateUnknownContract(t *testing.T) {
	f := analyze(t, srcFile{"cw1.wv", cw1Src})
	if _, err := jsonschema.Generate(f, "Missing"); err == nil {
		t.Fatalf("expected an error for an undeclared contract")
	}
	docs, err := jsonschema.GenerateAll(f)
	if err != nil || len(docs) != 0 {
		t.Fatalf("interface-only file: docs=%d err=%v", len(docs), err)
	}
}

func TestMarshalJSON(t *testing.T) {
	doc := counterDoc(t)
	a, err := jsonschema.Marshal(doc, jsonschema.FormatJSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, _ := jsonschema.Marshal(counterDoc(t), jsonschema.FormatJSON)
	if string(a) != string(b) {
		t.Fatalf("output is not deterministic")
	}
	if !strings.Contains(string(a), `"additionalProperties": false`) {
		t.Fatalf("closed objects missing:\n%s", a)
	}
	var back jsonschema.Document
	if err := json.Unmarshal(a, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ContractName != "Counter" || len(back.Execute.OneOf) != 3 || !closed(back.Execute.OneOf[0]) {
		t.Fatalf("decoded document differs: %+v", back)
	}
}

func TestMarshalYAML(t *testing.T) {
	out, err := jsonschema.Marshal(counterDoc(t), jsonschema.FormatYAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(out, &tree); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if tree["contract_name"] != "Counter" {
		t.Fatalf("contract_name = %v", tree["contract_name"])
	}
	exec, _ := tree["execute"].(map[string]any)
	cases, _ := exec["oneOf"].([]any)
	if len(cases) != 3 {
		t.Fatalf("yaml execute cases = %d", len(cases))
	}
	first, _ := cases[0].(map[string]any)
	if first["additionalProperties"] != false {
		t.Fatalf("additionalProperties = %v", first["additionalProperties"])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want jsonschema.Format
		ok   bool
	}{
		{"", jsonschema.FormatJSON, true},
		{"json", jsonschema.FormatJSON, true},
		{"yml", jsonschema.FormatYAML, true},
		{"yaml", jsonschema.FormatYAML, true},
		{"toml", 0, false},
	}
	for _, tt := range tests {
		got, err := jsonschema.ParseFormat(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Fatalf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	if jsonschema.FileName(&jsonschema.Document{ContractName: "Counter"}, jsonschema.FormatYAML) != "Counter.yaml" {
		t.Fatalf("FileName")
	}
}
