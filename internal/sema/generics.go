package sema

import (
	"weave/internal/diag"
	"weave/internal/model"
	"weave/internal/naming"
)

// buildUnions derives one union per message kind, cases in declaration order.
func buildUnions(owner string, generics []*model.Generic, methods []*model.Method) map[model.Kind]*model.Union {
	out := make(map[model.Kind]*model.Union, len(model.MsgKinds))
	for _, k := range model.MsgKinds {
		u := &model.Union{Owner: owner, Kind: k}
		for _, m := range methods {
			if m.Kind == k {
				u.Variants = append(u.Variants, variantOf(m))
			}
		}
		resolveUsage(u, generics)
		out[k] = u
	}
	return out
}

func variantOf(m *model.Method) *model.Variant {
	v := &model.Variant{
		Case:   naming.Pascal(m.Name),
		Wire:   naming.Snake(m.Name),
		Fields: m.Params,
		Method: m,
	}
	for _, f := range m.Params {
		v.Generics = model.ParamsOf(f.Type, v.Generics)
	}
	return v
}

// resolveUsage partitions the declaration generics into the set reachable
// from the union's fields (first-seen order) and the rest.
func resolveUsage(u *model.Union, generics []*model.Generic) {
	var seen []string
	for _, v := range u.Variants {
		for _, g := range v.Generics {
			seen = appendUnique(seen, g)
		}
	}
	u.Used, u.Unused, u.Generics = partition(seen, generics)
}

// partition keeps only declared names from seen and returns the used
// names, the unused names and the used generics with their bounds.
func partition(seen []string, generics []*model.Generic) (used, unused []string, withBounds []*model.Generic) {
	byName := make(map[string]*model.Generic, len(generics))
	for _, g := range generics {
		byName[g.Name] = g
	}
	for _, name := range seen {
		if g := byName[name]; g != nil {
			used = append(used, name)
			withBounds = append(withBounds, g)
		}
	}
	for _, g := range generics {
		if !contains(used, g.Name) {
			unused = append(unused, g.Name)
		}
	}
	return used, unused, withBounds
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

// checkConstraints reports where-clause generics that nothing structural
// references: no variant field in any kind, no reply parameter, no
// composition binding and no custom type.
func checkConstraints(r *declReporter, c *model.Contract, plan *model.ContractPlan) {
	if len(c.Where) == 0 {
		return
	}
	var used []string
	for _, k := range model.MsgKinds {
		if comp := plan.Composites[k]; comp != nil {
			used = append(used, comp.Used...)
		}
		used = append(used, plan.Unions[k].Used...)
	}
	for _, m := range c.Methods {
		if m.Kind != model.KindReply {
			continue
		}
		for _, p := range m.Params {
			used = model.ParamsOf(p.Type, used)
		}
	}
	for _, impl := range c.Implements {
		for _, b := range impl.Bindings {
			used = model.ParamsOf(b.Type, used)
		}
	}
	used = model.ParamsOf(c.CustomMsg, used)
	used = model.ParamsOf(c.CustomQuery, used)

	for _, w := range c.Where {
		if contains(used, w.Name) {
			continue
		}
		diag.ReportError(r, diag.ConUnusedConstraint, w.Span,
			"generic "+w.Name+" is constrained but no message field references it").
			WithFix("use " + w.Name + " in a handler parameter or drop the constraint").
			Emit()
	}
}
