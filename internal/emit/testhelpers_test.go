package emit_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"weave/internal/diag"
	"weave/internal/emit"
	"weave/internal/model"
	wvparser "weave/internal/parser"
	"weave/internal/sema"
	"weave/internal/source"
)

type srcFile struct {
	path string
	text string
}

// analyze runs parser and sema over files in order; later files may import
// earlier ones. The last file is returned.
func analyze(t *testing.T, files ...srcFile) *model.File {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	imports := map[string]*model.File{}
	var last *model.File
	for _, f := range files {
		id := fs.AddVirtual(f.path, []byte(f.text))
		pr := wvparser.ParseSource(fs, id, wvparser.Options{Reporter: rep})
		if pr.Errors > 0 {
			t.Fatalf("%s: parse errors:\n%s", f.path, summary(bag))
		}
		res := sema.Analyze(pr.File, f.path, sema.Options{Reporter: rep, Imports: imports})
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

// generated is a parsed emitter output.
type generated struct {
	src     string
	file    *ast.File
	types   map[string]*ast.TypeSpec
	funcs   map[string]*ast.FuncDecl
	methods map[string]*ast.FuncDecl // "Recv.Name"
	consts  map[string]bool
}

func emitAndParse(t *testing.T, f *model.File) *generated {
	t.Helper()
	out, err := emit.EmitFile(f, emit.Options{Module: "example.com/app", Source: f.Path})
	if err != nil {
		t.Fatalf("EmitFile: %v", err)
	}
	af, err := parser.ParseFile(token.NewFileSet(), emit.OutputName(f), out, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, out)
	}
	g := &generated{
		src:     string(out),
		file:    af,
		types:   map[string]*ast.TypeSpec{},
		funcs:   map[string]*ast.FuncDecl{},
		methods: map[string]*ast.FuncDecl{},
		consts:  map[string]bool{},
	}
	for _, d := range af.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					g.types[s.Name.Name] = s
				case *ast.ValueSpec:
					if d.Tok == token.CONST {
						for _, n := range s.Names {
							g.consts[n.Name] = true
						}
					}
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil {
				g.funcs[d.Name.Name] = d
				continue
			}
			g.methods[recvName(d.Recv.List[0].Type)+"."+d.Name.Name] = d
		}
	}
	return g
}

func recvName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return recvName(x.X)
	case *ast.IndexExpr:
		return recvName(x.X)
	case *ast.IndexListExpr:
		return recvName(x.X)
	case *ast.Ident:
		return x.Name
	}
	return ""
}

func (g *generated) mustType(t *testing.T, name string) *ast.TypeSpec {
	t.Helper()
	ts := g.types[name]
	if ts == nil {
		t.Fatalf("type %s not generated\n%s", name, g.src)
	}
	return ts
}

// typeParams lists the type parameter names of a generated type.
func (g *generated) typeParams(t *testing.T, name string) []string {
	t.Helper()
	ts := g.mustType(t, name)
	var out []string
	if ts.TypeParams == nil {
		return out
	}
	for _, f := range ts.TypeParams.List {
		for _, n := range f.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

// fieldNames lists the fields of a generated struct.
func (g *generated) fieldNames(t *testing.T, name string) []string {
	t.Helper()
	st, ok := g.mustType(t, name).Type.(*ast.StructType)
	if !ok {
		t.Fatalf("%s is not a struct", name)
	}
	var out []string
	for _, f := range st.Fields.List {
		for _, n := range f.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

// interfaceMethods lists the methods of a generated interface.
func (g *generated) interfaceMethods(t *testing.T, name string) []string {
	t.Helper()
	it, ok := g.mustType(t, name).Type.(*ast.InterfaceType)
	if !ok {
		t.Fatalf("%s is not an interface", name)
	}
	var out []string
	for _, f := range it.Methods.List {
		for _, n := range f.Names {
			out = append(out, n.Name)
		}
	}
	return out
}

// calls reports whether the body of fn calls an identifier named callee.
func calls(fn *ast.FuncDecl, callee string) bool {
	found := false
	ast.Inspect(fn, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return !found
		}
		fun := call.Fun
		for {
			switch x := fun.(type) {
			case *ast.IndexExpr:
				fun = x.X
				continue
			case *ast.IndexListExpr:
				fun = x.X
				continue
			}
			break
		}
		switch x := fun.(type) {
		case *ast.Ident:
			found = found || x.Name == callee
		case *ast.SelectorExpr:
			found = found || x.Sel.Name == callee
		}
		return !found
	})
	return found
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

@custom(msg = ExecC, query = QueryC)
interface Cw1 {
	type Error = string;
	type ExecC;
	type QueryC;

	@exec fn execute(ctx: ExecCtx, msgs: CosmosMsg<ExecC>[]);
	@exec fn freeze(ctx: ExecCtx);
	@query fn admin_list(ctx: QueryCtx) -> AdminListResponse;
}
`

const counterSrc = `package counter;
import "cw1.wv";

@messages(cw1 as Cw1: custom(msg))
@custom(msg = M)
contract Counter<M: custom_msg> {
	fn new();
	@instantiate fn instantiate(ctx: InstantiateCtx, count: u32);
	@exec fn increment(ctx: ExecCtx, by: u32);
	@query fn count(ctx: QueryCtx) -> u32;
}
`
