package sema

import (
	"strings"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
)

// scope is what a type expression can see besides file-level names.
type scope struct {
	params map[string]bool       // generics / placeholders
	fixed  map[string]model.Type // interface associated types with a value
}

func newScope() *scope {
	return &scope{params: map[string]bool{}, fixed: map[string]model.Type{}}
}

func isContainer(name string) bool {
	return name == "Vec" || name == "Option" || name == "Map"
}

func isContext(name string) bool {
	_, ok := model.KindFromContext(name)
	return ok
}

// resolveType turns a written type into a model type. It reports and
// returns false on the first problem.
func (a *analyzer) resolveType(r *declReporter, te *ast.TypeExpr, sc *scope) (model.Type, bool) {
	switch te.Kind {
	case ast.TypeSlice:
		elem, ok := a.resolveType(r, te.Elem, sc)
		if !ok {
			return nil, false
		}
		return &model.Slice{Elem: elem}, true
	case ast.TypeOptional:
		elem, ok := a.resolveType(r, te.Elem, sc)
		if !ok {
			return nil, false
		}
		return &model.Optional{Elem: elem}, true
	}

	args := make([]model.Type, 0, len(te.Args))
	for _, arg := range te.Args {
		t, ok := a.resolveType(r, arg, sc)
		if !ok {
			return nil, false
		}
		args = append(args, t)
	}

	if len(te.Path) == 2 {
		return a.resolveQualified(r, te, args)
	}
	if len(te.Path) != 1 {
		r.errorf(diag.SemUnknownType, te.Span, "unknown type %s", te.Name())
		return nil, false
	}

	name := te.Path[0].Name
	arity := func(want int) bool {
		if len(args) != want {
			r.errorf(diag.SemTypeArity, te.Span, "%s takes %d type argument(s), got %d", name, want, len(args))
			return false
		}
		return true
	}

	switch {
	case sc != nil && sc.params[name]:
		if !arity(0) {
			return nil, false
		}
		return &model.TypeParam{Name: name}, true
	case sc != nil && sc.fixed[name] != nil:
		if !arity(0) {
			return nil, false
		}
		return sc.fixed[name], true
	case name == "Vec":
		if !arity(1) {
			return nil, false
		}
		return &model.Slice{Elem: args[0]}, true
	case name == "Option":
		if !arity(1) {
			return nil, false
		}
		return &model.Optional{Elem: args[0]}, true
	case name == "Map":
		if !arity(2) {
			return nil, false
		}
		return &model.Map{Key: args[0], Val: args[1]}, true
	case isContext(name):
		r.errorf(diag.SemContextParam, te.Span, "%s can only be the first parameter of a %s handler", name, strings.TrimSuffix(strings.ToLower(name), "ctx"))
		return nil, false
	}
	if n, ok := model.Builtins[name]; ok {
		if !arity(n) {
			return nil, false
		}
		if name == "Uint128" {
			name = "u128"
		}
		return &model.Builtin{Name: name, Args: args}, true
	}

	switch d := a.decls[name].(type) {
	case *ast.StructDecl:
		if !arity(len(d.Generics)) {
			return nil, false
		}
		return &model.Named{Name: name, Args: args}, true
	case *ast.ExternDecl:
		if !arity(0) {
			return nil, false
		}
		return &model.Named{Name: name, Extern: &model.ExternRef{GoPath: d.GoPath, GoName: d.GoName.Name}}, true
	case *ast.InterfaceDecl, *ast.ContractDecl:
		r.errorf(diag.SemUnknownType, te.Span, "%s is a handler declaration, not a data type", name)
		return nil, false
	}
	diag.ReportError(r, diag.SemUnknownType, te.Span, "unknown type "+name).
		WithFix("declare it: `struct " + name + " { ... }` or `extern type " + name + ` = "import/path".Name;` + "`").
		Emit()
	return nil, false
}

// resolveQualified handles `imp.Name`.
func (a *analyzer) resolveQualified(r *declReporter, te *ast.TypeExpr, args []model.Type) (model.Type, bool) {
	imp := a.out.Import(te.Path[0].Name)
	if imp == nil {
		r.errorf(diag.SemUnknownType, te.Path[0].Span, "unknown import %s in type %s", te.Path[0].Name, te.Name())
		return nil, false
	}
	name := te.Path[1].Name
	if st := imp.File.Struct(name); st != nil {
		if len(args) != len(st.Generics) {
			r.errorf(diag.SemTypeArity, te.Span, "%s takes %d type argument(s), got %d", te.Name(), len(st.Generics), len(args))
			return nil, false
		}
		return &model.Named{Name: name, Pkg: a.qualifier(imp.File), Args: args}, true
	}
	if ext := imp.File.Extern(name); ext != nil {
		if len(args) != 0 {
			r.errorf(diag.SemTypeArity, te.Span, "%s takes no type arguments", te.Name())
			return nil, false
		}
		ref := ext.Ref
		return &model.Named{Name: name, Pkg: a.qualifier(imp.File), Extern: &ref}, true
	}
	r.errorf(diag.SemUnknownType, te.Span, "%s has no data type %s", imp.Path, name)
	return nil, false
}
