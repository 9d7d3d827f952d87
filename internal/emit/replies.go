package emit

import (
	"strconv"

	"github.com/dave/jennifer/jen"

	"weave/internal/model"
	"weave/internal/naming"
)

// emitReplies writes the reply ID constants and Dispatch<Contract>Reply.
func (e *Emitter) emitReplies(cp *model.ContractPlan) {
	if cp.Replies == nil || len(cp.Replies.Entries) == 0 {
		return
	}
	c := cp.Contract
	e.out.Line()
	e.out.Commentf("Reply IDs of %s. Attach them to sub-messages whose result should come back.", c.Name)
	e.out.Const().DefsFunc(func(g *jen.Group) {
		for _, entry := range cp.Replies.Entries {
			g.Id(entry.Const).Uint64().Op("=").Id(strconv.FormatUint(entry.ID, 10))
		}
	})

	name := dispatchName(c.Name, model.KindReply)
	zero := e.zeroResult(model.KindReply, c.CustomMsg)
	e.out.Line()
	e.out.Commentf("%s routes a sub-message reply by ID and outcome.", name)
	e.out.Func().Id(name).Add(e.typeParams(c.Generics)).Params(
		jen.Id("c").Id(handlersName(c.Name)).Add(paramArgs(genericNames(c.Generics))),
		jen.Id("reply").Add(e.rtType("Reply")),
		jen.Id("ctx").Add(e.rtType("ReplyCtx")),
	).Params(e.resultType(model.KindReply, c.CustomMsg), jen.Error()).Block(
		jen.Switch(jen.Id("reply").Dot("ID")).BlockFunc(func(g *jen.Group) {
			for _, entry := range cp.Replies.Entries {
				g.Case(jen.Id(entry.Const)).BlockFunc(func(arm *jen.Group) {
					e.replyArm(arm, entry, zero)
				})
			}
		}),
		jen.Return(zero.Clone(), e.rtType("UnknownReply").Call(jen.Lit(c.Name), jen.Id("reply").Dot("ID"))),
	)
}

// replyArm calls the group member whose filter accepts the outcome.
func (e *Emitter) replyArm(g *jen.Group, entry *model.ReplyEntry, zero *jen.Statement) {
	for _, m := range entry.Methods {
		body := e.replyCall(m, zero)
		switch m.ReplyOn {
		case model.ReplyAlways:
			// always is exclusive within its group
			for _, st := range body {
				g.Add(st)
			}
			return
		case model.ReplySuccess:
			g.If(jen.Id("reply").Dot("Succeeded").Call()).Block(body...)
		case model.ReplyFailure:
			g.If(jen.Op("!").Id("reply").Dot("Succeeded").Call()).Block(body...)
		}
	}
	g.Return(zero.Clone(), e.rtType("UnhandledReply").Call(jen.Lit(entry.Handler), jen.Id("reply")))
}

// replyCall extracts parameters by role and calls the handler.
func (e *Emitter) replyCall(m *model.Method, zero *jen.Statement) []jen.Code {
	var stmts []jen.Code
	args := []jen.Code{jen.Id("ctx")}
	for _, p := range m.Params {
		local := replyLocal(p)
		var value *jen.Statement
		fallible := true
		switch p.Role {
		case model.RolePayload:
			if p.Raw {
				value, fallible = jen.Id("reply").Dot("Payload"), false
			} else {
				value = e.rtType("DecodePayload").Types(e.goType(p.Type)).Call(jen.Id("reply").Dot("Payload"))
			}
		case model.RoleData:
			switch {
			case p.Raw && p.Opt:
				value, fallible = e.rtType("OptData").Call(jen.Id("reply")), false
			case p.Raw:
				value = e.rtType("RawData").Call(jen.Id("reply"))
			case p.Opt:
				value = e.rtType("DecodeOptData").Types(e.goType(optElem(p.Type))).Call(jen.Id("reply"))
			default:
				value = e.rtType("DecodeData").Types(e.goType(p.Type)).Call(jen.Id("reply"))
			}
		case model.RoleError:
			value, fallible = jen.Id("reply").Dot("Failure").Call(), false
		}
		if value == nil {
			continue
		}
		if fallible {
			stmts = append(stmts,
				jen.List(jen.Id(local), jen.Err()).Op(":=").Add(value),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero.Clone(), jen.Err())),
			)
			args = append(args, jen.Id(local))
			continue
		}
		args = append(args, value)
	}
	stmts = append(stmts, jen.Return(jen.Id("c").Dot(naming.Pascal(m.Name)).Call(args...)))
	return stmts
}

func optElem(t model.Type) model.Type {
	if o, ok := t.(*model.Optional); ok {
		return o.Elem
	}
	return t
}

// replyLocal avoids the names the reply dispatcher already binds.
func replyLocal(p *model.Param) string {
	name := argName(p)
	switch name {
	case "c", "ctx", "reply", "err":
		return name + "Arg"
	}
	return name
}
