package emit

import (
	"github.com/dave/jennifer/jen"

	"weave/internal/model"
	"weave/internal/naming"
)

// handlersName is the Go interface a contract implementation satisfies.
func handlersName(contract string) string { return contract + "Handlers" }

func dispatchName(owner string, k model.Kind) string { return "Dispatch" + owner + k.Title() }

func compositeDispatchName(owner string, k model.Kind) string {
	return "Dispatch" + owner + "Contract" + k.Title()
}

// resultType is what a handler of kind k returns besides error.
func (e *Emitter) resultType(k model.Kind, customMsg model.Type) *jen.Statement {
	if k == model.KindQuery {
		return e.rtType("Binary")
	}
	return e.rtType("Response").Types(e.goType(customMsg))
}

func (e *Emitter) zeroResult(k model.Kind, customMsg model.Type) *jen.Statement {
	if k == model.KindQuery {
		return jen.Nil()
	}
	return e.rtType("Response").Types(e.goType(customMsg)).Values()
}

// methodSig renders Name(ctx <Kind>Ctx, fields...) (Return, error).
func (e *Emitter) methodSig(m *model.Method) *jen.Statement {
	params := []jen.Code{jen.Id("ctx").Add(e.rtType(m.Kind.ContextType()))}
	for _, p := range m.Params {
		params = append(params, jen.Id(argName(p)).Add(e.goType(p.Type)))
	}
	return jen.Id(naming.Pascal(m.Name)).Params(params...).Params(e.goType(m.Return), jen.Error())
}

// emitHandlerInterface writes the Go interface of an IDL interface.
func (e *Emitter) emitHandlerInterface(ip *model.InterfacePlan) {
	iface := ip.Interface
	e.out.Line()
	if len(iface.Doc) > 0 {
		comment(e.out.Group, iface.Doc)
	} else {
		e.out.Commentf("%s is implemented by contracts that compose it.", iface.Name)
	}
	if iface.Error != nil {
		e.out.Commentf("Handler errors are reported as %s.", iface.Error)
	}
	e.out.Type().Id(iface.Name).Add(e.typeParams(iface.Generics())).InterfaceFunc(func(g *jen.Group) {
		for _, m := range iface.Methods {
			comment(g, m.Doc)
			g.Add(e.methodSig(m))
		}
	})
}

// emitHandlersInterface writes <Contract>Handlers: own handlers plus one
// accessor per composed interface.
func (e *Emitter) emitHandlersInterface(cp *model.ContractPlan) {
	c := cp.Contract
	e.out.Line()
	comment(e.out.Group, c.Doc)
	e.out.Commentf("%s is implemented by the %s contract.", handlersName(c.Name), c.Name)
	if c.Error != nil {
		e.out.Commentf("Handler errors are reported as %s.", c.Error)
	}
	e.out.Type().Id(handlersName(c.Name)).Add(e.typeParams(c.Generics)).InterfaceFunc(func(g *jen.Group) {
		for _, m := range c.Methods {
			comment(g, m.Doc)
			g.Add(e.methodSig(m))
		}
		for _, impl := range c.Implements {
			g.Id(impl.Field).Params().Add(e.interfaceRef(impl))
		}
	})
}

// interfaceRef is the instantiated Go interface of a composed interface.
func (e *Emitter) interfaceRef(impl *model.Implements) *jen.Statement {
	return e.declRef(impl.Interface.Pkg, impl.Interface.Name).Add(e.typeArgs(impl.Args))
}

// emitDispatcher writes Dispatch<Owner><Kind>: one switch arm per case,
// calling the handler with the case fields in declaration order.
func (e *Emitter) emitDispatcher(u *model.Union, gens []*model.Generic, handlers *jen.Statement, customMsg model.Type) {
	k := u.Kind
	name := unionName(u.Owner, k)
	e.out.Line()
	e.out.Commentf("%s routes a %s to its handler.", dispatchName(u.Owner, k), name)
	e.out.Func().Id(dispatchName(u.Owner, k)).Add(e.typeParams(gens)).Params(
		jen.Id("c").Add(handlers),
		jen.Id("msg").Id(name).Add(paramArgs(u.Used)),
		jen.Id("ctx").Add(e.rtType(k.ContextType())),
	).Params(e.resultType(k, customMsg), jen.Error()).Block(
		jen.Switch().BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				args := []jen.Code{jen.Id("ctx")}
				for _, f := range v.Fields {
					args = append(args, jen.Id("msg").Dot(v.Case).Dot(fieldName(f)))
				}
				call := jen.Id("c").Dot(naming.Pascal(v.Method.Name)).Call(args...)
				if k == model.KindQuery {
					call = e.rtType("ToBinary").Types(e.goType(v.Method.Response)).Call(call)
				}
				g.Case(jen.Id("msg").Dot(v.Case).Op("!=").Nil()).Block(jen.Return(call))
			}
		}),
		jen.Return(e.zeroResult(k, customMsg), e.rtType("EmptyUnion").Call(jen.Lit(name))),
	)
}

func (e *Emitter) emitInterfaceDispatchers(ip *model.InterfacePlan) {
	iface := ip.Interface
	gens := iface.Generics()
	handlers := jen.Id(iface.Name).Add(paramArgs(genericNames(gens)))
	for _, k := range model.MsgKinds {
		if u := ip.Unions[k]; !u.Empty() {
			e.emitDispatcher(u, gens, handlers.Clone(), interfaceCustomMsg(iface))
		}
	}
}

// interfaceCustomMsg is the custom message type of interface responses:
// its msg placeholder, or Empty.
func interfaceCustomMsg(iface *model.Interface) model.Type {
	if ph := iface.PlaceholderFor(model.RoleCustomMsg); ph != nil {
		return &model.TypeParam{Name: ph.Name}
	}
	return model.Empty()
}

func (e *Emitter) emitContractDispatchers(cp *model.ContractPlan) {
	c := cp.Contract
	handlers := jen.Id(handlersName(c.Name)).Add(paramArgs(genericNames(c.Generics)))
	for _, k := range model.MsgKinds {
		if u := cp.Unions[k]; !u.Empty() {
			e.emitDispatcher(u, c.Generics, handlers.Clone(), c.CustomMsg)
		}
		if comp := cp.Composites[k]; wrapped(comp) {
			e.emitCompositeDispatcher(cp, comp, handlers.Clone())
		}
	}
}

// emitCompositeDispatcher routes own cases to the own dispatcher and each
// wrapped case to the interface dispatcher through the alias accessor.
func (e *Emitter) emitCompositeDispatcher(cp *model.ContractPlan, comp *model.Composite, handlers *jen.Statement) {
	c := cp.Contract
	k := comp.Kind
	name := compositeName(c.Name, k)
	allArgs := paramArgs(genericNames(c.Generics))
	e.out.Line()
	e.out.Commentf("%s routes a %s to the contract or to a composed interface.", compositeDispatchName(c.Name, k), name)
	e.out.Func().Id(compositeDispatchName(c.Name, k)).Add(e.typeParams(c.Generics)).Params(
		jen.Id("c").Add(handlers),
		jen.Id("msg").Id(name).Add(paramArgs(comp.Used)),
		jen.Id("ctx").Add(e.rtType(k.ContextType())),
	).Params(e.resultType(k, c.CustomMsg), jen.Error()).Block(
		jen.Switch().BlockFunc(func(g *jen.Group) {
			if !comp.Own.Empty() {
				g.Case(jen.Id("msg").Dot("Own").Op("!=").Nil()).Block(
					jen.Return(jen.Id(dispatchName(c.Name, k)).Add(allArgs.Clone()).Call(jen.Id("c"), jen.Op("*").Id("msg").Dot("Own"), jen.Id("ctx"))),
				)
			}
			for _, w := range comp.Wrapped {
				iface := w.Implements.Interface
				call := e.declRef(iface.Pkg, dispatchName(iface.Name, k)).Add(e.typeArgs(w.Args)).Call(
					jen.Id("c").Dot(w.Accessor).Call(),
					jen.Op("*").Id("msg").Dot(w.Field),
					jen.Id("ctx"),
				)
				if k != model.KindQuery {
					from := model.Subst(interfaceCustomMsg(iface), bindArgs(iface, w.Args))
					call = e.rtType("ConvertResponse").Types(e.goType(c.CustomMsg), e.goType(from)).Call(call)
				}
				g.Case(jen.Id("msg").Dot(w.Field).Op("!=").Nil()).Block(jen.Return(call))
			}
		}),
		jen.Return(e.zeroResult(k, c.CustomMsg), e.rtType("EmptyUnion").Call(jen.Lit(name))),
	)
}

// bindArgs maps interface placeholders onto their instantiation.
func bindArgs(iface *model.Interface, args []model.Type) map[string]model.Type {
	out := make(map[string]model.Type, len(args))
	for i, ph := range iface.Placeholders {
		if i < len(args) {
			out[ph.Name] = args[i]
		}
	}
	return out
}

// topDispatch returns the dispatcher name and message type entry points
// and proxies use for kind k of a contract.
func topDispatch(cp *model.ContractPlan, k model.Kind) (dispatcher, msgType string, used []string) {
	c := cp.Contract
	if comp := cp.Composites[k]; wrapped(comp) {
		return compositeDispatchName(c.Name, k), compositeName(c.Name, k), comp.Used
	}
	u := cp.Unions[k]
	return dispatchName(c.Name, k), unionName(c.Name, k), u.Used
}
