package sema

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/naming"
)

// ownField is the composite field holding the contract's own cases.
const ownField = "Own"

// remoteMembers are the fields and methods of a generated remote; alias
// accessors share their namespace.
var remoteMembers = []string{"Addr", "Wrap", "Executor", "Querier", "Migrator", "Sudo"}

type composed struct {
	impl     *model.Implements
	plan     *model.InterfacePlan
	args     []model.Type
	wire     string
	field    string
	accessor string
}

// compose resolves every @messages entry and builds one composite per kind.
func (a *analyzer) compose(r *declReporter, d *ast.ContractDecl, c *model.Contract, sc *scope, plan *model.ContractPlan) {
	// 1. Lower the composition entries.
	var parts []*composed
	for _, attr := range d.Attrs {
		if attr.Name.Name != "messages" {
			continue
		}
		if attr.Messages == nil {
			r.errorf(diag.SynBadAttrShape, attr.Span, "expected %s", "@messages(path [as Alias] [: custom(msg, query)])")
			continue
		}
		if part, ok := a.lowerImplements(r, attr.Messages, c, sc); ok {
			parts = append(parts, part)
		}
	}

	// 2. Wire tags and Go names, alias collisions.
	parts = a.assignNames(r, c, parts)
	for _, part := range parts {
		part.impl.Wire, part.impl.Field, part.impl.Args = part.wire, part.field, part.args
		c.Implements = append(c.Implements, part.impl)
	}

	// 3. One composite per kind.
	plan.Composites = make(map[model.Kind]*model.Composite, len(model.MsgKinds))
	for _, k := range model.MsgKinds {
		own := plan.Unions[k]
		comp := &model.Composite{Owner: c.Name, Kind: k, Own: own}
		used := append([]string(nil), own.Used...)
		for _, part := range parts {
			u := part.plan.Unions[k]
			if u.Empty() {
				continue
			}
			if v := own.Variant(part.wire); v != nil {
				diag.ReportError(r, diag.SemCompositionCollision, v.Method.Span,
					fmt.Sprintf("%s variant %s collides with the wrapper of interface %s (alias %s)", k, v.Wire, part.plan.Interface.Name, part.impl.Alias)).
					WithNote(part.impl.Span, "interface composed here").
					Emit()
				continue
			}
			w := &model.Wrapped{
				Implements: part.impl,
				Alias:      part.impl.Alias,
				Field:      part.field,
				Accessor:   part.accessor,
				Wire:       part.wire,
				Union:      u,
				Args:       part.args,
			}
			for _, arg := range w.UnionArgs() {
				used = model.ParamsOf(arg, used)
			}
			comp.Wrapped = append(comp.Wrapped, w)
		}
		comp.Used, _, comp.Generics = partition(used, c.Generics)
		plan.Composites[k] = comp
	}
}

func (a *analyzer) lowerImplements(r *declReporter, spec *ast.MessagesSpec, c *model.Contract, sc *scope) (*composed, bool) {
	// 1. Find the interface.
	iplan, importName, ok := a.findInterface(r, spec)
	if !ok {
		return nil, false
	}
	iface := iplan.Interface
	impl := &model.Implements{Interface: iface, Import: importName, Alias: iface.Name, Span: spec.Span}
	if spec.Alias != nil {
		impl.Alias = spec.Alias.Name
	}

	// 2. custom(msg, query) forwards; custom(msg = T) binds.
	bound := map[string]*ast.AttrArg{}
	bind := func(arg *ast.AttrArg, ph *model.Placeholder, te *ast.TypeExpr) bool {
		if prev := bound[ph.Name]; prev != nil {
			diag.ReportError(r, diag.SynDuplicateAttrArg, arg.Span, "placeholder "+ph.Name+" is bound twice").
				WithNote(prev.Span, "first binding").
				Emit()
			return false
		}
		bound[ph.Name] = arg
		t, ok := a.resolveType(r, te, sc)
		if !ok {
			return false
		}
		impl.Bindings = append(impl.Bindings, model.Binding{Placeholder: ph.Name, Type: t, Span: arg.Span})
		return true
	}
	ok = true
	if spec.Custom != nil {
		for _, arg := range spec.Custom.Args {
			key, value := "", ast.AttrValue(nil)
			if arg.Key != nil {
				key, value = arg.Key.Name, arg.Value
			} else {
				key, _ = identValue(arg.Value)
			}
			var role model.PlaceholderRole
			switch key {
			case "msg":
				role = model.RoleCustomMsg
			case "query":
				role = model.RoleCustomQuery
			default:
				r.errorf(diag.SynUnknownAttrArg, arg.Span, "expected custom(msg, query), custom(msg = Type) or custom(query = Type)")
				ok = false
				continue
			}
			ph := iface.PlaceholderFor(role)
			if ph == nil {
				r.errorf(diag.SemUnknownPlaceholder, arg.Span, "interface %s has no %s placeholder", iface.Name, role)
				ok = false
				continue
			}
			if value == nil {
				if role == model.RoleCustomMsg {
					impl.ForwardMsg = true
				} else {
					impl.ForwardQuery = true
				}
				bound[ph.Name] = arg
				continue
			}
			te, isType := typeValue(value)
			if !isType {
				r.errorf(diag.SynBadAttrShape, value.ValueSpan(), "expected a type in custom(%s = Type)", key)
				ok = false
				continue
			}
			ok = bind(arg, ph, te) && ok
		}
	}
	// 3. bind(P = T) for the remaining placeholders.
	for _, arg := range spec.Binds {
		ph := iface.Placeholder(arg.Key.Name)
		if ph == nil {
			r.errorf(diag.SemUnknownPlaceholder, arg.Key.Span, "interface %s has no placeholder %s", iface.Name, arg.Key.Name)
			ok = false
			continue
		}
		te, isType := typeValue(arg.Value)
		if !isType {
			r.errorf(diag.SynBadAttrShape, arg.Value.ValueSpan(), "expected bind(%s = Type)", arg.Key.Name)
			ok = false
			continue
		}
		ok = bind(arg, ph, te) && ok
	}
	if !ok {
		return nil, false
	}

	// 4. Instantiate every placeholder.
	args := make([]model.Type, len(iface.Placeholders))
	for i, ph := range iface.Placeholders {
		args[i] = model.Empty()
		switch {
		case impl.ForwardMsg && ph.Role == model.RoleCustomMsg:
			args[i] = c.CustomMsg
			continue
		case impl.ForwardQuery && ph.Role == model.RoleCustomQuery:
			args[i] = c.CustomQuery
			continue
		}
		if b := findBinding(impl.Bindings, ph.Name); b != nil {
			args[i] = b.Type
			continue
		}
		if interfaceReferences(iface, ph.Name) {
			fix := "bind it with `bind(" + ph.Name + " = Type)`"
			switch ph.Role {
			case model.RoleCustomMsg:
				fix = "forward the contract's custom message with `: custom(msg)` or bind it with `custom(msg = Type)`"
			case model.RoleCustomQuery:
				fix = "forward the contract's custom query with `: custom(query)` or bind it with `custom(query = Type)`"
			}
			diag.ReportError(r, diag.ConAmbiguousCustom, spec.Span,
				fmt.Sprintf("placeholder %s of %s is used by its handlers but neither bound nor forwarded", ph.Name, iface.Name)).
				WithNote(ph.Span, "placeholder declared here").
				WithFix(fix).
				Emit()
			ok = false
		}
	}
	if !ok {
		return nil, false
	}
	return &composed{impl: impl, plan: iplan, args: args}, true
}

func findBinding(bs []model.Binding, name string) *model.Binding {
	for i := range bs {
		if bs[i].Placeholder == name {
			return &bs[i]
		}
	}
	return nil
}

// interfaceReferences reports whether any handler signature of iface
// mentions the placeholder.
func interfaceReferences(iface *model.Interface, name string) bool {
	for _, m := range iface.Methods {
		for _, p := range m.Params {
			if model.References(p.Type, name) {
				return true
			}
		}
		if model.References(m.Return, name) || model.References(m.Response, name) {
			return true
		}
	}
	return false
}

// findInterface resolves `Name`, `import` (single interface) or `import.Name`.
func (a *analyzer) findInterface(r *declReporter, spec *ast.MessagesSpec) (*model.InterfacePlan, string, bool) {
	path := spec.Path
	switch len(path) {
	case 1:
		name := path[0].Name
		if _, local := a.decls[name].(*ast.InterfaceDecl); local {
			if p := a.out.Interface(name); p != nil {
				return p, "", true
			}
			r.errorf(diag.SemUnknownInterface, path[0].Span, "interface %s has errors and cannot be composed", name)
			return nil, "", false
		}
		if imp := a.out.Import(name); imp != nil {
			switch len(imp.File.Interfaces) {
			case 1:
				return imp.File.Interfaces[0], imp.Name, true
			case 0:
				r.errorf(diag.SemUnknownInterface, path[0].Span, "%s declares no usable interface", imp.Path)
			default:
				r.errorf(diag.SemUnknownInterface, path[0].Span, "%s declares several interfaces; name one as %s.Interface", imp.Path, name)
			}
			return nil, "", false
		}
	case 2:
		if imp := a.out.Import(path[0].Name); imp != nil {
			if p := imp.File.Interface(path[1].Name); p != nil {
				return p, imp.Name, true
			}
			r.errorf(diag.SemUnknownInterface, path[1].Span, "%s has no interface %s", imp.Path, path[1].Name)
			return nil, "", false
		}
	}
	r.errorf(diag.SemUnknownInterface, spec.Span, "unknown interface %s", spec.PathString())
	return nil, "", false
}

// assignNames gives each composed interface its wire tag, Go field and
// accessor. Shared aliases follow the alias collision policy.
func (a *analyzer) assignNames(r *declReporter, c *model.Contract, parts []*composed) []*composed {
	byWire := map[string][]*composed{}
	var order []string
	for _, p := range parts {
		p.wire = naming.Snake(p.impl.Alias)
		p.field = naming.Pascal(p.impl.Alias)
		if _, seen := byWire[p.wire]; !seen {
			order = append(order, p.wire)
		}
		byWire[p.wire] = append(byWire[p.wire], p)
	}

	var out []*composed
	for _, wire := range order {
		group := byWire[wire]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		if a.opts.AliasCollision == AliasReject {
			for _, p := range group[1:] {
				diag.ReportError(r, diag.ConAliasCollision, p.impl.Span,
					fmt.Sprintf("interfaces %s and %s share the alias %q", group[0].plan.Interface.Name, p.plan.Interface.Name, wire)).
					WithNote(group[0].impl.Span, "first use of the alias").
					WithFix("give one of them a distinct alias with `as`").
					Emit()
			}
			out = append(out, group[0])
			continue
		}
		for _, p := range group {
			p.field = naming.Pascal(p.impl.Alias) + p.plan.Interface.Name
		}
		out = append(out, group...)
	}

	// Go-level names must be unique among accessors and own handler methods.
	taken := map[string]string{ownField: "the composite's own cases"}
	for _, name := range remoteMembers {
		taken[name] = "the generated remote"
	}
	for _, m := range c.Methods {
		taken[naming.Pascal(m.Name)] = "handler " + m.Name
	}
	kept := out[:0]
	for _, p := range out {
		p.accessor = p.field
		if what, clash := taken[p.field]; clash {
			r.errorf(diag.SemCompositionCollision, p.impl.Span, "interface alias %s produces Go name %s, already used by %s", p.impl.Alias, p.field, what)
			continue
		}
		taken[p.field] = "interface " + p.plan.Interface.Name
		kept = append(kept, p)
	}
	return kept
}
