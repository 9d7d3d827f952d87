package emit

import (
	"github.com/dave/jennifer/jen"

	"weave/internal/model"
	"weave/internal/naming"
)

var scalars = map[string]string{
	"bool": "bool", "string": "string",
	"u8": "uint8", "u16": "uint16", "u32": "uint32", "u64": "uint64",
	"i8": "int8", "i16": "int16", "i32": "int32", "i64": "int64",
	"f32": "float32", "f64": "float64",
}

// runtimeTypes are builtins provided by the runtime package.
var runtimeTypes = map[string]string{
	"u128": "Uint128", "Uint128": "Uint128",
	"Addr": "Addr", "Binary": "Binary", "Coin": "Coin", "Empty": "Empty",
	"Response": "Response", "CosmosMsg": "CosmosMsg",
}

// goType renders a resolved IDL type.
func (e *Emitter) goType(t model.Type) *jen.Statement {
	switch t := t.(type) {
	case *model.Builtin:
		if name, ok := scalars[t.Name]; ok {
			return jen.Id(name)
		}
		return jen.Qual(e.rt, runtimeTypes[t.Name]).Add(e.typeArgs(t.Args))
	case *model.Named:
		if t.Extern != nil {
			return jen.Qual(t.Extern.GoPath, t.Extern.GoName)
		}
		if t.Pkg != "" {
			return jen.Qual(e.pkgPath(t.Pkg), t.Name).Add(e.typeArgs(t.Args))
		}
		return jen.Id(t.Name).Add(e.typeArgs(t.Args))
	case *model.Slice:
		return jen.Index().Add(e.goType(t.Elem))
	case *model.Optional:
		return jen.Op("*").Add(e.goType(t.Elem))
	case *model.Map:
		return jen.Map(e.goType(t.Key)).Add(e.goType(t.Val))
	case *model.TypeParam:
		return jen.Id(t.Name)
	}
	return jen.Any()
}

// typeArgs renders [A, B]; nothing for an empty list.
func (e *Emitter) typeArgs(args []model.Type) *jen.Statement {
	if len(args) == 0 {
		return jen.Null()
	}
	codes := make([]jen.Code, len(args))
	for i, a := range args {
		codes[i] = e.goType(a)
	}
	return jen.Types(codes...)
}

// paramArgs renders [T, U] from generic names.
func paramArgs(names []string) *jen.Statement {
	if len(names) == 0 {
		return jen.Null()
	}
	codes := make([]jen.Code, len(names))
	for i, n := range names {
		codes[i] = jen.Id(n)
	}
	return jen.Types(codes...)
}

func genericNames(gens []*model.Generic) []string {
	out := make([]string, len(gens))
	for i, g := range gens {
		out[i] = g.Name
	}
	return out
}

// typeParams renders a type parameter list with constraints.
func (e *Emitter) typeParams(gens []*model.Generic) *jen.Statement {
	if len(gens) == 0 {
		return jen.Null()
	}
	codes := make([]jen.Code, len(gens))
	for i, g := range gens {
		codes[i] = jen.Id(g.Name).Add(e.constraint(g.Bound))
	}
	return jen.Types(codes...)
}

func (e *Emitter) constraint(bound string) *jen.Statement {
	switch bound {
	case "custom_msg":
		return jen.Qual(e.rt, "CustomMsg")
	case "custom_query":
		return jen.Qual(e.rt, "CustomQuery")
	case "comparable":
		return jen.Comparable()
	}
	return jen.Any()
}

// pick returns the generics named in names, keeping their bounds.
func pick(all []*model.Generic, names []string) []*model.Generic {
	out := make([]*model.Generic, 0, len(names))
	for _, n := range names {
		for _, g := range all {
			if g.Name == n {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

func (e *Emitter) rtType(name string) *jen.Statement { return jen.Qual(e.rt, name) }

// fieldName is the exported Go name of a message field.
func fieldName(p *model.Param) string { return naming.Pascal(p.Name) }

// fieldTag builds the struct tag of a message field.
func fieldTag(p *model.Param) map[string]string {
	tags := map[string]string{}
	if p.JSON != "" {
		tags["json"] = p.JSON
	} else {
		tags["json"] = p.Name
	}
	for _, t := range p.Tags {
		tags[t.Key] = t.Value
	}
	return tags
}

// argName is the Go parameter name of a field in builder methods.
func argName(p *model.Param) string { return naming.Camel(p.Name) }

func (e *Emitter) emitExterns() {
	for _, x := range e.file.Externs {
		e.out.Line()
		comment(e.out.Group, x.Doc)
		e.out.Type().Id(x.Name).Op("=").Qual(x.Ref.GoPath, x.Ref.GoName)
	}
}

func (e *Emitter) emitStructs() {
	for _, st := range e.file.Structs {
		e.out.Line()
		comment(e.out.Group, st.Doc)
		e.out.Type().Id(st.Name).Add(e.typeParams(st.Generics)).Struct(e.fields(st.Fields)...)
	}
}

func (e *Emitter) fields(params []*model.Param) []jen.Code {
	out := make([]jen.Code, 0, len(params))
	for _, p := range params {
		for _, l := range p.Doc {
			out = append(out, jen.Comment(l))
		}
		out = append(out, jen.Id(fieldName(p)).Add(e.goType(p.Type)).Tag(fieldTag(p)))
	}
	return out
}
