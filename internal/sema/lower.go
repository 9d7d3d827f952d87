package sema

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/naming"
)

func (a *analyzer) lowerExtern(d *ast.ExternDecl) {
	a.guard(d.Name.Name, func(r *declReporter) bool {
		if !checkAttrs(r, d.Attrs, siteStruct) {
			return false
		}
		a.out.Externs = append(a.out.Externs, &model.Extern{
			Name: d.Name.Name,
			Ref:  model.ExternRef{GoPath: d.GoPath, GoName: d.GoName.Name},
			Doc:  d.Doc,
			Span: d.Span,
		})
		return true
	})
}

func (a *analyzer) lowerStruct(r *declReporter, d *ast.StructDecl) bool {
	checkAttrs(r, d.Attrs, siteStruct)
	st := &model.Struct{Name: d.Name.Name, Pkg: a.out.Package, Doc: d.Doc, Span: d.Span}
	sc := newScope()
	gens, ok := a.lowerGenerics(r, d.Generics, sc)
	if !ok {
		return false
	}
	st.Generics = gens
	seen := map[string]*ast.Field{}
	for _, f := range d.Fields {
		if prev := seen[f.Name.Name]; prev != nil {
			diag.ReportError(r, diag.SemDuplicateField, f.Name.Span, "duplicate field "+f.Name.Name).
				WithNote(prev.Name.Span, "previous field").
				Emit()
			continue
		}
		seen[f.Name.Name] = f
		if !checkAttrs(r, f.Attrs, siteField) {
			continue
		}
		jsonTag, tags, ok := forwardAttrs(r, f.Attrs)
		ty, tyOK := a.resolveType(r, f.Type, sc)
		if !ok || !tyOK {
			continue
		}
		st.Fields = append(st.Fields, newParam(f.Name, ty, f.Doc, jsonTag, tags))
	}
	if r.failed() {
		return false
	}
	a.out.Structs = append(a.out.Structs, st)
	return true
}

func newParam(name *ast.Ident, ty model.Type, doc []string, jsonTag string, tags [][2]string) *model.Param {
	p := &model.Param{Name: name.Name, Type: ty, Doc: doc, JSON: jsonTag, Span: name.Span}
	for _, t := range tags {
		p.Tags = append(p.Tags, model.Tag{Key: t[0], Value: t[1]})
	}
	return p
}

var knownBounds = map[string]bool{"custom_msg": true, "custom_query": true, "comparable": true, "any": true}

func (a *analyzer) lowerGenerics(r *declReporter, params []*ast.GenericParam, sc *scope) ([]*model.Generic, bool) {
	out := make([]*model.Generic, 0, len(params))
	ok := true
	for _, gp := range params {
		if sc.params[gp.Name.Name] {
			r.errorf(diag.SemDuplicateDecl, gp.Name.Span, "generic parameter %s declared twice", gp.Name.Name)
			ok = false
			continue
		}
		g := &model.Generic{Name: gp.Name.Name, Span: gp.Span}
		if gp.Bound != nil {
			if !knownBounds[gp.Bound.Name] {
				r.errorf(diag.ConUnknownBound, gp.Bound.Span, "unknown bound %s; expected custom_msg, custom_query, comparable or any", gp.Bound.Name)
				ok = false
			}
			g.Bound = gp.Bound.Name
		}
		sc.params[g.Name] = true
		out = append(out, g)
	}
	return out, ok
}

// ---------------------------------------------------------------------------
// Interfaces

func (a *analyzer) analyzeInterface(r *declReporter, d *ast.InterfaceDecl) bool {
	iface, ok := a.lowerInterface(r, d)
	if !ok || r.failed() {
		return false
	}
	plan := &model.InterfacePlan{
		Interface: iface,
		Unions:    buildUnions(iface.Name, iface.Generics(), iface.Methods),
	}
	a.out.Interfaces = append(a.out.Interfaces, plan)
	return true
}

func (a *analyzer) lowerInterface(r *declReporter, d *ast.InterfaceDecl) (*model.Interface, bool) {
	checkAttrs(r, d.Attrs, siteInterface)
	iface := &model.Interface{Name: d.Name.Name, Pkg: a.out.Package, Doc: d.Doc, Span: d.Span}
	sc := newScope()

	// 1. Placeholders are visible to every associated default and method.
	seen := map[string]*ast.AssocType{}
	for _, at := range d.Assocs {
		if prev := seen[at.Name.Name]; prev != nil {
			diag.ReportError(r, diag.SemDuplicateDecl, at.Name.Span, "associated type "+at.Name.Name+" declared twice").
				WithNote(prev.Span, "previous declaration").
				Emit()
			continue
		}
		seen[at.Name.Name] = at
		if at.Default == nil {
			iface.Placeholders = append(iface.Placeholders, &model.Placeholder{Name: at.Name.Name, Span: at.Span})
			sc.params[at.Name.Name] = true
		}
	}
	// 2. Fixed associated types; `Error` names the error type.
	for _, at := range d.Assocs {
		if at.Default == nil || seen[at.Name.Name] != at {
			continue
		}
		ty, ok := a.resolveType(r, at.Default, sc)
		if !ok {
			continue
		}
		if at.Name.Name == "Error" {
			iface.Error = ty
			continue
		}
		sc.fixed[at.Name.Name] = ty
	}
	// 3. @custom assigns roles to placeholders.
	if attr := ast.FindAttr(d.Attrs, "custom"); attr != nil {
		args, _ := keyedArgs(r, attr, formCustom, "msg", "query")
		for _, kr := range []struct {
			key  string
			role model.PlaceholderRole
		}{{"msg", model.RoleCustomMsg}, {"query", model.RoleCustomQuery}} {
			key, role := kr.key, kr.role
			arg := args[key]
			if arg == nil {
				continue
			}
			name, isIdent := identValue(arg.Value)
			ph := iface.Placeholder(name)
			if !isIdent || ph == nil {
				diag.ReportError(r, diag.SemUnknownPlaceholder, arg.Value.ValueSpan(),
					fmt.Sprintf("@custom(%s = ...) must name a placeholder of %s", key, iface.Name)).
					WithFix("declare it: `type " + naming.Pascal(key) + "C;`").
					Emit()
				continue
			}
			ph.Role = role
		}
	}
	// 4. Handlers.
	var customMsg model.Type = model.Empty()
	if ph := iface.PlaceholderFor(model.RoleCustomMsg); ph != nil {
		customMsg = &model.TypeParam{Name: ph.Name}
	}
	for _, m := range a.lowerMethods(r, d.Methods, sc, customMsg) {
		switch m.Kind {
		case model.KindExec, model.KindQuery, model.KindSudo:
			iface.Methods = append(iface.Methods, m)
		default:
			r.errorf(diag.SemKindNotAllowed, m.Span, "interface %s cannot declare %s handler %s; interfaces carry exec, query and sudo handlers only", iface.Name, m.Kind, m.Name)
		}
	}
	return iface, !r.failed()
}

// ---------------------------------------------------------------------------
// Methods

// lowerMethods lowers every tagged method; untagged ones are not handlers
// and are skipped. Errors stay local to the method.
func (a *analyzer) lowerMethods(r *declReporter, fns []*ast.FnDecl, sc *scope, customMsg model.Type) []*model.Method {
	var out []*model.Method
	byGoName := map[string]*model.Method{}
	for _, fn := range fns {
		m, handler, ok := a.lowerMethod(r, fn, sc, customMsg)
		if !handler || !ok {
			continue
		}
		key := naming.Pascal(m.Name)
		if prev := byGoName[key]; prev != nil {
			code, msg := diag.SemDuplicateDecl, fmt.Sprintf("method %s clashes with %s (%s vs %s handler)", m.Name, prev.Name, m.Kind, prev.Kind)
			if prev.Kind == m.Kind {
				code, msg = diag.SemDuplicateVariant, fmt.Sprintf("duplicate %s variant %s", m.Kind, key)
			}
			diag.ReportError(r, code, fn.Name.Span, msg).
				WithNote(prev.Span, "previous method").
				Emit()
			continue
		}
		byGoName[key] = m
		out = append(out, m)
	}
	return out
}

func (a *analyzer) lowerMethod(r *declReporter, fn *ast.FnDecl, sc *scope, customMsg model.Type) (*model.Method, bool, bool) {
	ok := checkAttrs(r, fn.Attrs, siteMethod)

	// 1. Exactly one kind tag.
	var tag *ast.Attr
	for _, attr := range fn.Attrs {
		if _, isKind := model.KindFromTag(attr.Name.Name); !isKind {
			continue
		}
		if tag != nil {
			diag.ReportError(r, diag.SynDuplicateKindTag, attr.Span,
				fmt.Sprintf("method %s already has kind tag @%s", fn.Name.Name, tag.Name.Name)).
				WithNote(tag.Span, "first tag").
				Emit()
			ok = false
			continue
		}
		tag = attr
	}
	if tag == nil {
		return nil, false, ok
	}
	kind, _ := model.KindFromTag(tag.Name.Name)
	m := &model.Method{Name: fn.Name.Name, Kind: kind, Doc: fn.Doc, Span: fn.Span}

	// 2. Tag arguments.
	var respExpr *ast.TypeExpr
	switch kind {
	case model.KindQuery:
		args, argsOK := keyedArgs(r, tag, formQuery, "resp")
		ok = ok && argsOK
		if arg := args["resp"]; arg != nil {
			te, isType := typeValue(arg.Value)
			if !isType {
				r.errorf(diag.SynBadAttrShape, arg.Value.ValueSpan(), "resp must be a type; form is %s", formQuery)
				ok = false
			}
			respExpr = te
		}
	case model.KindReply:
		ok = a.lowerReplyTag(r, tag, m) && ok
	default:
		ok = noArgs(r, tag) && ok
	}

	// 3. Context parameter, then message fields.
	ctxOK := len(fn.Params) > 0 && fn.Params[0].Pattern == nil &&
		fn.Params[0].Type.Kind == ast.TypePath && fn.Params[0].Type.Name() == kind.ContextType()
	if !ctxOK {
		sp := fn.Name.Span
		if len(fn.Params) > 0 {
			sp = fn.Params[0].Span
		}
		diag.ReportError(r, diag.SemContextParam, sp,
			fmt.Sprintf("the first parameter of %s handler %s must be the call context", kind, fn.Name.Name)).
			WithFix(fmt.Sprintf("start the parameter list with `ctx: %s`", kind.ContextType())).
			Emit()
		return nil, true, false
	}
	seen := map[string]*ast.Param{fn.Params[0].Name.Name: fn.Params[0]}
	for _, p := range fn.Params[1:] {
		param, pOK := a.lowerParam(r, p, sc, kind)
		if !pOK {
			ok = false
			continue
		}
		if prev := seen[param.Name]; prev != nil {
			diag.ReportError(r, diag.SemDuplicateParam, p.Span, "duplicate parameter "+param.Name).
				WithNote(prev.Span, "previous parameter").
				Emit()
			ok = false
			continue
		}
		seen[param.Name] = p
		m.Params = append(m.Params, param)
	}
	if kind == model.KindReply && ok {
		ok = checkReplyRoles(r, m)
	}

	// 4. Return type.
	if !a.lowerReturn(r, fn, m, respExpr, sc, customMsg) {
		ok = false
	}
	return m, true, ok
}

func (a *analyzer) lowerReplyTag(r *declReporter, tag *ast.Attr, m *model.Method) bool {
	args, ok := keyedArgs(r, tag, formReply, "handlers", "reply_on")
	if arg := args["handlers"]; arg != nil {
		list, isList := arg.Value.(*ast.ListValue)
		if !isList || len(list.Items) == 0 {
			r.errorf(diag.SynBadAttrShape, arg.Value.ValueSpan(), "handlers must be a non-empty list; form is %s", formReply)
			ok = false
		} else {
			for _, item := range list.Items {
				name, isIdent := identValue(item)
				if !isIdent {
					r.errorf(diag.SynBadAttrShape, item.ValueSpan(), "handler aliases are plain names; form is %s", formReply)
					ok = false
					continue
				}
				if contains(m.Handlers, name) {
					r.errorf(diag.SynDuplicateAttrArg, item.ValueSpan(), "handler %s listed twice", name)
					ok = false
					continue
				}
				m.Handlers = append(m.Handlers, name)
			}
		}
	}
	if arg := args["reply_on"]; arg != nil {
		word, _ := identValue(arg.Value)
		filter, known := model.ParseReplyFilter(word)
		if !known {
			r.errorf(diag.SynUnknownAttrArg, arg.Value.ValueSpan(), "reply_on must be success, failure or always")
			ok = false
		}
		m.ReplyOn = filter
	}
	return ok
}

func (a *analyzer) lowerParam(r *declReporter, p *ast.Param, sc *scope, kind model.Kind) (*model.Param, bool) {
	if p.Pattern != nil {
		diag.ReportError(r, diag.SemPatternParam, p.Pattern.Span,
			"handler parameters must bind a single name; destructuring patterns are not supported").
			WithFix("bind the value to a name, e.g. `value: "+p.Type.String()+"`").
			Emit()
		return nil, false
	}
	ok := checkAttrs(r, p.Attrs, siteParam)
	jsonTag, tags, fwdOK := forwardAttrs(r, p.Attrs)
	ok = ok && fwdOK
	ty, tyOK := a.resolveType(r, p.Type, sc)
	if !tyOK {
		return nil, false
	}
	param := newParam(p.Name, ty, nil, jsonTag, tags)
	param.Span = p.Span

	// Reply roles.
	var roleAttr *ast.Attr
	for _, attr := range p.Attrs {
		var role model.ParamRole
		switch attr.Name.Name {
		case "payload":
			role = model.RolePayload
		case "data":
			role = model.RoleData
		case "error":
			role = model.RoleError
		default:
			continue
		}
		if kind != model.KindReply {
			r.errorf(diag.SemReplyRole, attr.Span, "@%s is only valid on reply handler parameters", attr.Name.Name)
			ok = false
			continue
		}
		if roleAttr != nil {
			r.errorf(diag.SemReplyRole, attr.Span, "parameter %s already has role @%s", param.Name, roleAttr.Name.Name)
			ok = false
			continue
		}
		roleAttr = attr
		param.Role = role
		switch role {
		case model.RolePayload:
			flags, fOK := flagArgs(r, attr, formPayload, "raw")
			ok = ok && fOK
			param.Raw = flags["raw"]
		case model.RoleData:
			flags, fOK := flagArgs(r, attr, formData, "raw", "opt")
			ok = ok && fOK
			param.Raw, param.Opt = flags["raw"], flags["opt"]
		case model.RoleError:
			ok = noArgs(r, attr) && ok
		}
	}
	if kind == model.KindReply && roleAttr == nil {
		diag.ReportError(r, diag.SemReplyRole, p.Span, "reply handler parameter "+param.Name+" needs a role").
			WithFix("annotate it with @payload, @data or @error").
			Emit()
		return nil, false
	}
	if ok && kind == model.KindReply {
		ok = checkRoleType(r, param)
	}
	return param, ok
}

// checkRoleType validates the declared type against the role flags.
func checkRoleType(r *declReporter, p *model.Param) bool {
	inner := p.Type
	if p.Opt {
		opt, isOpt := p.Type.(*model.Optional)
		if !isOpt {
			r.errorf(diag.SemReplyRole, p.Span, "@data(opt) parameter %s must have an optional type (T?)", p.Name)
			return false
		}
		inner = opt.Elem
	}
	switch {
	case p.Raw && !model.IsBuiltin(inner, "Binary"):
		r.errorf(diag.SemReplyRole, p.Span, "raw %s parameter %s must be Binary", p.Role, p.Name)
		return false
	case p.Role == model.RoleError && !model.IsBuiltin(inner, "string"):
		r.errorf(diag.SemReplyRole, p.Span, "@error parameter %s must be string", p.Name)
		return false
	}
	return true
}

// checkReplyRoles: at most one parameter per role, and @error needs a
// filter that can observe failures.
func checkReplyRoles(r *declReporter, m *model.Method) bool {
	ok := true
	seen := map[model.ParamRole]*model.Param{}
	for _, p := range m.Params {
		if prev := seen[p.Role]; prev != nil {
			diag.ReportError(r, diag.SemReplyRole, p.Span, fmt.Sprintf("%s role is already taken by %s", p.Role, prev.Name)).
				WithNote(prev.Span, "first "+p.Role.String()+" parameter").
				Emit()
			ok = false
			continue
		}
		seen[p.Role] = p
		if p.Role == model.RoleError && m.ReplyOn == model.ReplySuccess {
			r.errorf(diag.SemReplyRole, p.Span, "@error parameter on a reply_on = success handler never receives a value")
			ok = false
		}
	}
	return ok
}

func (a *analyzer) lowerReturn(r *declReporter, fn *ast.FnDecl, m *model.Method, respExpr *ast.TypeExpr, sc *scope, customMsg model.Type) bool {
	var result model.Type
	if fn.Result != nil {
		t, ok := a.resolveType(r, fn.Result, sc)
		if !ok {
			return false
		}
		result = t
	}
	if m.Kind == model.KindQuery {
		var resp model.Type
		if respExpr != nil {
			t, ok := a.resolveType(r, respExpr, sc)
			if !ok {
				return false
			}
			resp = t
		}
		switch {
		case resp == nil && result == nil:
			diag.ReportError(r, diag.SemQueryResponse, fn.Name.Span, "query "+fn.Name.Name+" declares no response type").
				WithFix("add `-> ResponseType` or use @query(resp = ResponseType)").
				Emit()
			return false
		case resp != nil && result != nil && !model.Equal(resp, result):
			diag.ReportError(r, diag.SemQueryReturnMismatch, fn.Result.Span,
				fmt.Sprintf("query %s returns %s but @query declares resp = %s", fn.Name.Name, result, resp)).
				WithNote(respExpr.Span, "declared here").
				Emit()
			return false
		case resp == nil:
			resp = result
		}
		m.Response = resp
		m.Return = resp
		return true
	}
	want := model.ResponseOf(customMsg)
	if result != nil && !model.Equal(result, want) {
		r.errorf(diag.SemBadReturnType, fn.Result.Span, "%s handler %s must return %s, got %s", m.Kind, fn.Name.Name, want, result)
		return false
	}
	m.Return = want
	return true
}
