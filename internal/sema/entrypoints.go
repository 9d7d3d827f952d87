package sema

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/model"
)

// planEntryPoints decides, per kind, whether the host entry point is
// auto-wired to the generated dispatcher, replaced by an override or absent.
func (a *analyzer) planEntryPoints(r *declReporter, d *ast.ContractDecl, c *model.Contract, sc *scope, plan *model.ContractPlan) *model.EntryPlan {
	c.Overrides = a.lowerOverrides(r, d, sc)
	ep := &model.EntryPlan{}

	attr := ast.FindAttr(d.Attrs, "entry_points")
	switch {
	case attr != nil:
		ep.Generics = a.lowerEntryGenerics(r, attr, c)
		c.EntryGenerics = ep.Generics
	case len(c.Generics) > 0:
		ep.Skipped = true
		diag.ReportInfo(r, diag.SemEntryPointsSkipped, d.Name.Span,
			"generic contract "+c.Name+" gets no entry points").
			WithFix("instantiate it with @entry_points(generics = [...])").
			Emit()
	}

	for _, k := range model.Kinds {
		switch {
		case c.Overrides[k] != nil:
			ep.Wiring[k] = model.WireOverride
		case k == model.KindReply:
			if len(plan.Replies.Entries) > 0 {
				ep.Wiring[k] = model.WireAuto
			}
		case !plan.Composites[k].Empty():
			ep.Wiring[k] = model.WireAuto
		}
	}
	return ep
}

func (a *analyzer) lowerOverrides(r *declReporter, d *ast.ContractDecl, sc *scope) map[model.Kind]*model.Override {
	out := map[model.Kind]*model.Override{}
	for _, attr := range d.Attrs {
		if attr.Name.Name != "override_entry_point" {
			continue
		}
		if len(attr.Args) == 0 {
			r.errorf(diag.SynBadAttrShape, attr.Span, "expected %s", formOverride)
			continue
		}
		for _, arg := range attr.Args {
			if arg.Key == nil {
				r.errorf(diag.SynBadAttrShape, arg.Span, "expected %s", formOverride)
				continue
			}
			kind, ok := model.KindFromTag(arg.Key.Name)
			if !ok {
				r.errorf(diag.SemOverrideKind, arg.Key.Span, "unknown message kind %q; expected instantiate, exec, query, sudo, migrate or reply", arg.Key.Name)
				continue
			}
			if prev := out[kind]; prev != nil {
				diag.ReportError(r, diag.SynDuplicateAttrArg, arg.Span, "entry point "+kind.String()+" is overridden twice").
					WithNote(prev.Span, "first override").
					Emit()
				continue
			}
			call, ok := arg.Value.(*ast.CallValue)
			if !ok || len(call.Callee.Path) != 1 || len(call.Callee.Args) != 0 || len(call.Args) != 1 || call.Args[0].Key != nil {
				r.errorf(diag.SynBadAttrShape, arg.Value.ValueSpan(), "expected %s", formOverride)
				continue
			}
			msgType := a.attrType(r, call.Args[0].Value, sc, formOverride)
			if msgType == nil {
				continue
			}
			out[kind] = &model.Override{
				Kind:    kind,
				Handler: call.Callee.Path[0].Name,
				MsgType: msgType,
				Span:    arg.Span,
			}
		}
	}
	return out
}

func (a *analyzer) lowerEntryGenerics(r *declReporter, attr *ast.Attr, c *model.Contract) []model.Type {
	args, _ := keyedArgs(r, attr, formEntry, "generics")
	arg := args["generics"]
	if arg == nil {
		r.errorf(diag.SynBadAttrShape, attr.Span, "expected %s", formEntry)
		return nil
	}
	list, ok := arg.Value.(*ast.ListValue)
	if !ok {
		r.errorf(diag.SynBadAttrShape, arg.Value.ValueSpan(), "expected %s", formEntry)
		return nil
	}
	if len(c.Generics) == 0 {
		r.errorf(diag.SemEntryGenerics, attr.Span, "%s has no generic parameters to instantiate", c.Name)
		return nil
	}
	if len(list.Items) != len(c.Generics) {
		r.errorf(diag.SemEntryGenerics, list.Span, "%s has %d generic parameter(s), @entry_points gives %d", c.Name, len(c.Generics), len(list.Items))
		return nil
	}
	out := make([]model.Type, 0, len(list.Items))
	for _, item := range list.Items {
		// Concrete types only: resolve without the contract's generics in scope.
		t := a.attrType(r, item, nil, formEntry)
		if t == nil {
			return nil
		}
		out = append(out, t)
	}
	return out
}
