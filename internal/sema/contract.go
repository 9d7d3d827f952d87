package sema

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
)

func (a *analyzer) analyzeContract(r *declReporter, d *ast.ContractDecl) bool {
	c, sc, ok := a.lowerContract(r, d)
	if !ok || r.failed() {
		return false
	}
	plan := &model.ContractPlan{
		Contract: c,
		Unions:   buildUnions(c.Name, c.Generics, c.Methods),
	}
	a.compose(r, d, c, sc, plan)
	plan.Replies = buildReplyTable(r, c.Methods)
	plan.Entry = a.planEntryPoints(r, d, c, sc, plan)
	checkConstraints(r, c, plan)
	if r.failed() {
		return false
	}
	a.out.Contracts = append(a.out.Contracts, plan)
	return true
}

func (a *analyzer) lowerContract(r *declReporter, d *ast.ContractDecl) (*model.Contract, *scope, bool) {
	checkAttrs(r, d.Attrs, siteContract)
	c := &model.Contract{
		Name:        d.Name.Name,
		Pkg:         a.out.Package,
		Doc:         d.Doc,
		CustomMsg:   model.Empty(),
		CustomQuery: model.Empty(),
		Span:        d.Span,
	}
	sc := newScope()

	// 1. Generics and where clause.
	gens, ok := a.lowerGenerics(r, d.Generics, sc)
	if !ok {
		return nil, nil, false
	}
	c.Generics = gens
	for _, w := range d.Where {
		g := c.Generic(w.Name.Name)
		if g == nil {
			r.errorf(diag.SemUnknownGeneric, w.Name.Span, "%s in where clause is not a generic parameter of %s", w.Name.Name, c.Name)
			continue
		}
		if !knownBounds[w.Bound.Name] {
			r.errorf(diag.ConUnknownBound, w.Bound.Span, "unknown bound %s; expected custom_msg, custom_query, comparable or any", w.Bound.Name)
			continue
		}
		if g.Bound != "" && g.Bound != w.Bound.Name {
			diag.ReportError(r, diag.ConUnknownBound, w.Span,
				fmt.Sprintf("%s is already bounded by %s", g.Name, g.Bound)).
				WithNote(g.Span, "bound declared here").
				Emit()
			continue
		}
		g.Bound = w.Bound.Name
		c.Where = append(c.Where, model.Constraint{Name: w.Name.Name, Bound: w.Bound.Name, Span: w.Span})
	}

	// 2. Custom types and error type.
	if attr := ast.FindAttr(d.Attrs, "custom"); attr != nil {
		args, _ := keyedArgs(r, attr, formCustom, "msg", "query")
		if arg := args["msg"]; arg != nil {
			c.CustomMsg = a.attrType(r, arg.Value, sc, formCustom)
		}
		if arg := args["query"]; arg != nil {
			c.CustomQuery = a.attrType(r, arg.Value, sc, formCustom)
		}
	}
	if attr := ast.FindAttr(d.Attrs, "error"); attr != nil {
		if len(attr.Args) != 1 || attr.Args[0].Key != nil {
			r.errorf(diag.SynBadAttrShape, attr.Span, "expected %s", formError)
		} else {
			c.Error = a.attrType(r, attr.Args[0].Value, sc, formError)
		}
	}
	if r.failed() {
		return nil, nil, false
	}

	// 3. Constructor: an untagged `fn new();`.
	var handlers []*ast.FnDecl
	found := false
	for _, fn := range d.Methods {
		if fn.Name.Name != "new" || hasKindTag(fn) {
			handlers = append(handlers, fn)
			continue
		}
		found = true
		c.Constructor = fn.Span
		if len(fn.Params) > 0 || fn.Result != nil {
			diag.ReportError(r, diag.SemConstructorParams, fn.Span, "the constructor of "+c.Name+" must take no parameters and return nothing").
				WithFix("declare it as `fn new();`").
				Emit()
		}
	}
	if !found {
		diag.ReportError(r, diag.SemMissingConstructor, d.Name.Span, "contract "+c.Name+" has no constructor").
			WithFix("add `fn new();` to the contract body").
			Emit()
	}

	// 4. Handlers.
	c.Methods = a.lowerMethods(r, handlers, sc, c.CustomMsg)
	return c, sc, !r.failed()
}

func hasKindTag(fn *ast.FnDecl) bool {
	for _, attr := range fn.Attrs {
		if _, ok := model.KindFromTag(attr.Name.Name); ok {
			return true
		}
	}
	return false
}

// attrType resolves an attribute argument that must be a type.
func (a *analyzer) attrType(r *declReporter, v ast.AttrValue, sc *scope, form string) model.Type {
	te, ok := typeValue(v)
	if !ok {
		r.errorf(diag.SynBadAttrShape, v.ValueSpan(), "expected a type; form is %s", form)
		return nil
	}
	t, ok := a.resolveType(r, te, sc)
	if !ok {
		return nil
	}
	return t
}
