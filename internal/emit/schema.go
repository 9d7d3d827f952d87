package emit

import (
	"github.com/dave/jennifer/jen"

	"weave/internal/model"
)

// unionName is the Go type of a declaration's own union for kind k.
func unionName(owner string, k model.Kind) string { return owner + k.Title() + "Msg" }

// compositeName is the Go type of a contract's top-level union.
func compositeName(owner string, k model.Kind) string { return owner + "Contract" + k.Title() + "Msg" }

func caseName(u *model.Union, v *model.Variant) string { return unionName(u.Owner, u.Kind) + v.Case }

// wrapped reports whether a composite carries interface cases and so needs
// its own Go type; otherwise the own union is the top-level type.
func wrapped(c *model.Composite) bool { return c != nil && len(c.Wrapped) > 0 }

func (e *Emitter) emitUnions(owner string, unions map[model.Kind]*model.Union) {
	for _, k := range model.MsgKinds {
		if u := unions[k]; !u.Empty() {
			e.emitUnion(u)
		}
	}
}

// emitUnion writes the union struct, one struct per case and the
// externally tagged codec.
func (e *Emitter) emitUnion(u *model.Union) {
	name := unionName(u.Owner, u.Kind)
	e.out.Line()
	e.out.Commentf("%s is the %s message of %s. Exactly one field is set.", name, u.Kind, u.Owner)
	e.out.Type().Id(name).Add(e.typeParams(u.Generics)).StructFunc(func(g *jen.Group) {
		for _, v := range u.Variants {
			g.Id(v.Case).Op("*").Id(caseName(u, v)).Add(paramArgs(v.Generics))
		}
	})

	for _, v := range u.Variants {
		e.out.Line()
		if v.Method != nil {
			comment(e.out.Group, v.Method.Doc)
		}
		e.out.Type().Id(caseName(u, v)).Add(e.typeParams(pick(u.Generics, v.Generics))).Struct(e.fields(v.Fields)...)
	}

	recv := jen.Id(name).Add(paramArgs(u.Used))
	wires := make([]jen.Code, len(u.Variants))
	set := make([]jen.Code, 0, len(u.Variants)+1)
	set = append(set, jen.Lit(name))
	for i, v := range u.Variants {
		wires[i] = jen.Lit(v.Wire)
		set = append(set, jen.Id("m").Dot(v.Case).Op("!=").Nil())
	}

	e.out.Line()
	e.out.Func().Params(jen.Id("m").Add(recv)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.If(jen.Err().Op(":=").Add(e.rtType("ExactlyOne")).Call(set...), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Switch().BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				g.Case(jen.Id("m").Dot(v.Case).Op("!=").Nil()).Block(
					jen.Return(e.rtType("EncodeCase").Call(jen.Lit(v.Wire), jen.Id("m").Dot(v.Case))),
				)
			}
		}),
		jen.Return(jen.Nil(), e.rtType("EmptyUnion").Call(jen.Lit(name))),
	)

	e.out.Line()
	e.out.Func().Params(jen.Id("m").Op("*").Add(recv)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.List(jen.Id("tag"), jen.Id("body"), jen.Err()).Op(":=").Add(e.rtType("DecodeCase")).Call(jen.Id("data")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Op("*").Id("m").Op("=").Add(recv.Clone()).Values(),
		jen.Switch(jen.Id("tag")).BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				g.Case(jen.Lit(v.Wire)).Block(
					jen.Id("m").Dot(v.Case).Op("=").New(jen.Id(caseName(u, v)).Add(paramArgs(v.Generics))),
					jen.Return(e.decodeBody(jen.Id("m").Dot(v.Case), v.Fields)),
				)
			}
		}),
		jen.Return(e.rtType("UnknownCase").Call(append([]jen.Code{jen.Lit(name), jen.Id("tag")}, wires...)...)),
	)
}

// emitComposite writes a contract's top-level union: own cases unwrapped,
// each composed interface under its alias tag.
func (e *Emitter) emitComposite(c *model.Composite) {
	name := compositeName(c.Owner, c.Kind)
	hasOwn := !c.Own.Empty()
	e.out.Line()
	e.out.Commentf("%s is everything %s accepts as its %s message.", name, c.Owner, c.Kind)
	e.out.Commentf("Own cases are encoded unwrapped, interface cases under their alias.")
	e.out.Type().Id(name).Add(e.typeParams(c.Generics)).StructFunc(func(g *jen.Group) {
		if hasOwn {
			g.Id("Own").Op("*").Id(unionName(c.Own.Owner, c.Kind)).Add(paramArgs(c.Own.Used))
		}
		for _, w := range c.Wrapped {
			g.Id(w.Field).Op("*").Add(e.wrappedUnion(w))
		}
	})

	recv := jen.Id(name).Add(paramArgs(c.Used))
	set := []jen.Code{jen.Lit(name)}
	if hasOwn {
		set = append(set, jen.Id("m").Dot("Own").Op("!=").Nil())
	}
	for _, w := range c.Wrapped {
		set = append(set, jen.Id("m").Dot(w.Field).Op("!=").Nil())
	}

	e.out.Line()
	e.out.Func().Params(jen.Id("m").Add(recv)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.If(jen.Err().Op(":=").Add(e.rtType("ExactlyOne")).Call(set...), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Switch().BlockFunc(func(g *jen.Group) {
			if hasOwn {
				g.Case(jen.Id("m").Dot("Own").Op("!=").Nil()).Block(
					jen.Return(e.rtType("Encode").Call(jen.Id("m").Dot("Own"))),
				)
			}
			for _, w := range c.Wrapped {
				g.Case(jen.Id("m").Dot(w.Field).Op("!=").Nil()).Block(
					jen.Return(e.rtType("EncodeCase").Call(jen.Lit(w.Wire), jen.Id("m").Dot(w.Field))),
				)
			}
		}),
		jen.Return(jen.Nil(), e.rtType("EmptyUnion").Call(jen.Lit(name))),
	)

	// Wrappers sharing one tag (alias collision permitted) are tried in
	// declaration order.
	var tags []string
	byTag := map[string][]*model.Wrapped{}
	for _, w := range c.Wrapped {
		if _, ok := byTag[w.Wire]; !ok {
			tags = append(tags, w.Wire)
		}
		byTag[w.Wire] = append(byTag[w.Wire], w)
	}

	e.out.Line()
	e.out.Func().Params(jen.Id("m").Op("*").Add(recv)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		g.List(jen.Id("tag"), jen.Id("body"), jen.Err()).Op(":=").Add(e.rtType("DecodeCase")).Call(jen.Id("data"))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		g.Op("*").Id("m").Op("=").Add(recv.Clone()).Values()
		var ownWires []jen.Code
		if hasOwn {
			for _, v := range c.Own.Variants {
				ownWires = append(ownWires, jen.Lit(v.Wire))
			}
		}
		g.Switch(jen.Id("tag")).BlockFunc(func(sw *jen.Group) {
			if len(ownWires) > 0 {
				own := jen.Id(unionName(c.Own.Owner, c.Kind)).Add(paramArgs(c.Own.Used))
				sw.Case(ownWires...).Block(
					jen.Id("m").Dot("Own").Op("=").New(own),
					jen.Return(e.rtType("DecodeStrict").Call(jen.Id("data"), jen.Id("m").Dot("Own"))),
				)
			}
			for _, t := range tags {
				group := byTag[t]
				if len(group) == 1 {
					w := group[0]
					sw.Case(jen.Lit(t)).Block(
						jen.Id("m").Dot(w.Field).Op("=").New(e.wrappedUnion(w)),
						jen.Return(e.rtType("DecodeStrict").Call(jen.Id("body"), jen.Id("m").Dot(w.Field))),
					)
					continue
				}
				tries := make([]jen.Code, len(group))
				for i, w := range group {
					tries[i] = e.rtType("TryDecode").Call(jen.Id("body"), jen.Op("&").Id("m").Dot(w.Field))
				}
				sw.Case(jen.Lit(t)).Block(
					jen.Switch().Block(jen.Case(tries...).Block(jen.Return(jen.Nil()))),
					// none matched: report the first wrapper's error
					jen.Return(e.rtType("DecodeStrict").Call(jen.Id("body"), jen.New(e.wrappedUnion(group[0])))),
				)
			}
		})
		// неизвестный тег: перечисляем и собственные, и интерфейсные теги
		wires := append([]jen.Code{jen.Lit(name), jen.Id("tag")}, ownWires...)
		for _, t := range tags {
			wires = append(wires, jen.Lit(t))
		}
		g.Return(e.rtType("UnknownCase").Call(wires...))
	})
}

// decodeBody decodes a case body into dst, checking that every required
// field is present.
func (e *Emitter) decodeBody(dst jen.Code, fields []*model.Param) *jen.Statement {
	var required []jen.Code
	for _, f := range fields {
		if f.Required() {
			required = append(required, jen.Lit(f.WireName()))
		}
	}
	if len(required) == 0 {
		return e.rtType("DecodeStrict").Call(jen.Id("body"), dst)
	}
	return e.rtType("DecodeRequired").Call(append([]jen.Code{jen.Id("body"), dst}, required...)...)
}

// wrappedUnion is the Go type of an interface union inside a composite.
func (e *Emitter) wrappedUnion(w *model.Wrapped) *jen.Statement {
	iface := w.Implements.Interface
	return e.declRef(iface.Pkg, unionName(iface.Name, w.Union.Kind)).Add(e.typeArgs(w.UnionArgs()))
}

// declRef names a generated identifier of the IDL package pkg.
func (e *Emitter) declRef(pkg, name string) *jen.Statement {
	if pkg == "" || pkg == e.file.Package {
		return jen.Id(name)
	}
	return jen.Qual(e.pkgPath(pkg), name)
}
