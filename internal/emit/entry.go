package emit

import (
	"github.com/dave/jennifer/jen"

	"weave/internal/model"
)

func entryPointsName(contract string) string { return contract + "EntryPoints" }

// emitEntryPoints writes <Contract>EntryPoints. Each kind with handlers
// gets a method that decodes the host payload and dispatches it, unless the
// kind is overridden, in which case the payload is decoded into the
// override type and passed to the named function.
func (e *Emitter) emitEntryPoints(cp *model.ContractPlan) {
	c := cp.Contract
	ep := cp.Entry
	if ep == nil || ep.Skipped {
		return
	}
	bind := map[string]model.Type{}
	for i, g := range c.Generics {
		if i < len(ep.Generics) {
			bind[g.Name] = ep.Generics[i]
		}
	}
	inst := func(names []string) *jen.Statement {
		args := make([]model.Type, len(names))
		for i, n := range names {
			args[i] = model.Subst(&model.TypeParam{Name: n}, bind)
		}
		return e.typeArgs(args)
	}
	customMsg := model.Subst(c.CustomMsg, bind)
	handlers := jen.Id(handlersName(c.Name)).Add(inst(genericNames(c.Generics)))

	name := entryPointsName(c.Name)
	e.out.Line()
	e.out.Commentf("%s wires the host entry points of %s.", name, c.Name)
	e.out.Type().Id(name).Struct(
		jen.Comment("New returns the contract implementation serving one call."),
		jen.Id("New").Func().Params().Add(handlers),
	)

	for _, k := range model.Kinds {
		wiring := ep.Of(k)
		if wiring == model.WireNone {
			continue
		}
		params := []jen.Code{jen.Id("deps").Add(e.rtType("Deps")), jen.Id("env").Add(e.rtType("Env"))}
		ctxFields := jen.Dict{jen.Id("Deps"): jen.Id("deps"), jen.Id("Env"): jen.Id("env")}
		if k == model.KindInstantiate || k == model.KindExec {
			params = append(params, jen.Id("info").Add(e.rtType("MessageInfo")))
			ctxFields[jen.Id("Info")] = jen.Id("info")
		}
		if k == model.KindReply {
			params = append(params, jen.Id("reply").Add(e.rtType("Reply")))
		} else {
			params = append(params, jen.Id("msg").Index().Byte())
		}
		ctx := e.rtType(k.ContextType()).Values(ctxFields)
		zero := e.zeroResult(k, customMsg)

		var body []jen.Code
		switch {
		case wiring == model.WireOverride && k == model.KindReply:
			ov := c.Overrides[k]
			body = append(body, jen.Return(jen.Id(ov.Handler).Call(ctx, jen.Id("reply"))))
		case wiring == model.WireOverride:
			ov := c.Overrides[k]
			body = append(body,
				jen.Var().Id("m").Add(e.goType(model.Subst(ov.MsgType, bind))),
				jen.If(jen.Err().Op(":=").Add(e.rtType("DecodeStrict")).Call(jen.Id("msg"), jen.Op("&").Id("m")), jen.Err().Op("!=").Nil()).Block(
					jen.Return(zero.Clone(), jen.Err()),
				),
				jen.Return(jen.Id(ov.Handler).Call(ctx, jen.Id("m"))),
			)
		case k == model.KindReply:
			body = append(body, jen.Return(
				jen.Id(dispatchName(c.Name, k)).Add(inst(genericNames(c.Generics))).Call(jen.Id("e").Dot("New").Call(), jen.Id("reply"), ctx),
			))
		default:
			dispatcher, msgType, used := topDispatch(cp, k)
			body = append(body,
				jen.Var().Id("m").Id(msgType).Add(inst(used)),
				jen.If(jen.Err().Op(":=").Add(e.rtType("DecodeStrict")).Call(jen.Id("msg"), jen.Op("&").Id("m")), jen.Err().Op("!=").Nil()).Block(
					jen.Return(zero.Clone(), jen.Err()),
				),
				jen.Return(jen.Id(dispatcher).Add(inst(genericNames(c.Generics))).Call(jen.Id("e").Dot("New").Call(), jen.Id("m"), ctx)),
			)
		}

		e.out.Line()
		if wiring == model.WireOverride {
			e.out.Commentf("%s is served by %s.", k.EntryName(), c.Overrides[k].Handler)
		}
		e.out.Func().Params(jen.Id("e").Id(name)).Id(k.EntryName()).Params(params...).Params(e.resultType(k, customMsg), jen.Error()).Block(body...)
	}
}
