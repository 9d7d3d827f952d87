package emit

import (
	"github.com/dave/jennifer/jen"

	"weave/internal/model"
	"weave/internal/naming"
)

func remoteName(decl string) string { return decl + "Remote" }

// proxyDecl is what the proxy emitter needs from an interface or contract.
type proxyDecl struct {
	name     string
	generics []*model.Generic
	unions   map[model.Kind]*model.Union
	doc      string
}

func (d proxyDecl) args() *jen.Statement { return paramArgs(genericNames(d.generics)) }

func (e *Emitter) emitInterfaceProxy(ip *model.InterfacePlan) {
	iface := ip.Interface
	d := proxyDecl{
		name:     iface.Name,
		generics: iface.Generics(),
		unions:   ip.Unions,
		doc:      "addresses a contract implementing " + iface.Name + ". Wrap is the alias the contract composes it under; empty when the contract is addressed directly.",
	}
	e.emitRemote(d)
}

func (e *Emitter) emitContractProxy(cp *model.ContractPlan) {
	c := cp.Contract
	d := proxyDecl{
		name:     c.Name,
		generics: c.Generics,
		unions:   cp.Unions,
		doc:      "addresses a deployed " + c.Name + " contract.",
	}
	e.emitRemote(d)
	remote := jen.Id(remoteName(c.Name)).Add(d.args())
	for _, impl := range c.Implements {
		iface := impl.Interface
		target := e.declRef(iface.Pkg, remoteName(iface.Name)).Add(e.typeArgs(impl.Args))
		e.out.Line()
		e.out.Commentf("%s addresses the %s interface of the contract.", impl.Field, iface.Name)
		e.out.Func().Params(jen.Id("r").Add(remote.Clone())).Id(impl.Field).Params().Add(target).Block(
			jen.Return(target.Clone().Values(jen.Dict{
				jen.Id("Addr"): jen.Id("r").Dot("Addr"),
				jen.Id("Wrap"): jen.Lit(impl.Wire),
			})),
		)
	}
	if u := cp.Unions[model.KindInstantiate]; !u.Empty() {
		e.emitInstantiator(d, u)
	}
}

// emitRemote writes <Decl>Remote with its executor, querier, migrator and
// sudo builder.
func (e *Emitter) emitRemote(d proxyDecl) {
	name := remoteName(d.name)
	remote := jen.Id(name).Add(d.args())
	e.out.Line()
	e.out.Commentf("%s %s", name, d.doc)
	e.out.Type().Id(name).Add(e.typeParams(d.generics)).Struct(
		jen.Id("Addr").Add(e.rtType("Addr")),
		jen.Id("Wrap").String(),
	)

	if u := d.unions[model.KindExec]; !u.Empty() {
		exec := d.name + "Executor"
		e.out.Line()
		e.out.Commentf("%s builds exec messages; every call carries the executor's funds.", exec)
		e.out.Type().Id(exec).Add(e.typeParams(d.generics)).Struct(
			jen.Id("remote").Add(remote.Clone()),
			jen.Id("funds").Index().Add(e.rtType("Coin")),
		)
		e.out.Line()
		e.out.Func().Params(jen.Id("r").Add(remote.Clone())).Id("Executor").Params(jen.Id("funds").Op("...").Add(e.rtType("Coin"))).Id(exec).Add(d.args()).Block(
			jen.Return(jen.Id(exec).Add(d.args()).Values(jen.Dict{
				jen.Id("remote"): jen.Id("r"),
				jen.Id("funds"):  jen.Id("funds"),
			})),
		)
		e.emitBuilders(u, jen.Id(exec).Add(d.args()), "e", e.wasmResult(), func(msg jen.Code) jen.Code {
			return e.rtType("ExecuteMsg").Call(jen.Id("e").Dot("remote").Dot("Addr"), jen.Id("e").Dot("remote").Dot("Wrap"), msg, jen.Id("e").Dot("funds"))
		})
	}

	if u := d.unions[model.KindQuery]; !u.Empty() {
		q := d.name + "Querier"
		e.out.Line()
		e.out.Commentf("%s runs typed queries through a host querier.", q)
		e.out.Type().Id(q).Add(e.typeParams(d.generics)).Struct(
			jen.Id("remote").Add(remote.Clone()),
			jen.Id("querier").Add(e.rtType("Querier")),
		)
		e.out.Line()
		e.out.Func().Params(jen.Id("r").Add(remote.Clone())).Id("Querier").Params(jen.Id("q").Add(e.rtType("Querier"))).Id(q).Add(d.args()).Block(
			jen.Return(jen.Id(q).Add(d.args()).Values(jen.Dict{
				jen.Id("remote"):  jen.Id("r"),
				jen.Id("querier"): jen.Id("q"),
			})),
		)
		for _, v := range u.Variants {
			resp := v.Method.Response
			e.emitBuilder(u, v, jen.Id(q).Add(d.args()), "q", jen.Params(e.goType(resp), jen.Error()), func(msg jen.Code) jen.Code {
				return e.rtType("QuerySmart").Types(e.goType(resp)).Call(jen.Id("q").Dot("querier"), jen.Id("q").Dot("remote").Dot("Addr"), jen.Id("q").Dot("remote").Dot("Wrap"), msg)
			})
		}
	}

	if u := d.unions[model.KindMigrate]; !u.Empty() {
		mig := d.name + "Migrator"
		e.out.Line()
		e.out.Commentf("%s builds migrations of the contract to a new code id.", mig)
		e.out.Type().Id(mig).Add(e.typeParams(d.generics)).Struct(
			jen.Id("remote").Add(remote.Clone()),
			jen.Id("newCodeID").Uint64(),
		)
		e.out.Line()
		e.out.Func().Params(jen.Id("r").Add(remote.Clone())).Id("Migrator").Params(jen.Id("newCodeID").Uint64()).Id(mig).Add(d.args()).Block(
			jen.Return(jen.Id(mig).Add(d.args()).Values(jen.Dict{
				jen.Id("remote"):    jen.Id("r"),
				jen.Id("newCodeID"): jen.Id("newCodeID"),
			})),
		)
		e.emitBuilders(u, jen.Id(mig).Add(d.args()), "m", e.wasmResult(), func(msg jen.Code) jen.Code {
			return e.rtType("MigrateMsg").Call(jen.Id("m").Dot("remote").Dot("Addr"), jen.Id("m").Dot("newCodeID"), msg)
		})
	}

	if u := d.unions[model.KindSudo]; !u.Empty() {
		sb := d.name + "SudoBuilder"
		e.out.Line()
		e.out.Commentf("%s encodes sudo messages; the chain delivers them, contracts cannot send them.", sb)
		e.out.Type().Id(sb).Add(e.typeParams(d.generics)).Struct(
			jen.Id("wrap").String(),
		)
		e.out.Line()
		e.out.Func().Params(jen.Id("r").Add(remote.Clone())).Id("Sudo").Params().Id(sb).Add(d.args()).Block(
			jen.Return(jen.Id(sb).Add(d.args()).Values(jen.Dict{
				jen.Id("wrap"): jen.Id("r").Dot("Wrap"),
			})),
		)
		e.emitBuilders(u, jen.Id(sb).Add(d.args()), "s", jen.Params(e.rtType("Binary"), jen.Error()), func(msg jen.Code) jen.Code {
			return e.rtType("SudoMsg").Call(jen.Id("s").Dot("wrap"), msg)
		})
	}
}

// emitInstantiator writes <Contract>Instantiator.
func (e *Emitter) emitInstantiator(d proxyDecl, u *model.Union) {
	inst := d.name + "Instantiator"
	e.out.Line()
	e.out.Commentf("%s builds instantiations of code CodeID.", inst)
	e.out.Type().Id(inst).Add(e.typeParams(d.generics)).Struct(
		jen.Id("CodeID").Uint64(),
		jen.Id("Label").String(),
		jen.Id("Admin").Op("*").Add(e.rtType("Addr")),
		jen.Id("Funds").Index().Add(e.rtType("Coin")),
	)
	e.emitBuilders(u, jen.Id(inst).Add(d.args()), "i", e.wasmResult(), func(msg jen.Code) jen.Code {
		return e.rtType("InstantiateMsg").Call(jen.Id("i").Dot("CodeID"), jen.Id("i").Dot("Label"), jen.Id("i").Dot("Admin"), msg, jen.Id("i").Dot("Funds"))
	})
}

func (e *Emitter) wasmResult() *jen.Statement {
	return jen.Params(e.rtType("WasmMsg"), jen.Error())
}

func (e *Emitter) emitBuilders(u *model.Union, recv *jen.Statement, r string, result *jen.Statement, send func(msg jen.Code) jen.Code) {
	for _, v := range u.Variants {
		e.emitBuilder(u, v, recv.Clone(), r, result.Clone(), send)
	}
}

// emitBuilder writes one proxy method: it takes the case fields, builds the
// own union value and hands it to send.
func (e *Emitter) emitBuilder(u *model.Union, v *model.Variant, recv *jen.Statement, r string, result *jen.Statement, send func(msg jen.Code) jen.Code) {
	params := make([]jen.Code, 0, len(v.Fields))
	fields := jen.Dict{}
	for _, f := range v.Fields {
		arg := builderArg(f, r)
		params = append(params, jen.Id(arg).Add(e.goType(f.Type)))
		fields[jen.Id(fieldName(f))] = jen.Id(arg)
	}
	msg := jen.Id(unionName(u.Owner, u.Kind)).Add(paramArgs(u.Used)).Values(jen.Dict{
		jen.Id(v.Case): jen.Op("&").Id(caseName(u, v)).Add(paramArgs(v.Generics)).Values(fields),
	})
	e.out.Line()
	if v.Method != nil {
		comment(e.out.Group, v.Method.Doc)
	}
	e.out.Func().Params(jen.Id(r).Add(recv)).Id(naming.Pascal(v.Method.Name)).Params(params...).Add(result).Block(
		jen.Return(send(msg)),
	)
}

// builderArg keeps field arguments clear of the receiver name.
func builderArg(p *model.Param, recv string) string {
	name := argName(p)
	if name == recv {
		return name + "Arg"
	}
	return name
}
