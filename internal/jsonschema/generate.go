package jsonschema

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"weave/internal/model"
	"weave/internal/naming"
)

var intRange = map[string][2]float64{
	"u8":  {0, math.MaxUint8},
	"u16": {0, math.MaxUint16},
	"u32": {0, math.MaxUint32},
	"i8":  {math.MinInt8, math.MaxInt8},
	"i16": {math.MinInt16, math.MaxInt16},
	"i32": {math.MinInt32, math.MaxInt32},
}

var intFormat = map[string]string{
	"u8": "uint8", "u16": "uint16", "u32": "uint32", "u64": "uint64",
	"i8": "int8", "i16": "int16", "i32": "int32", "i64": "int64",
}

// Generate builds the document for the named contract of f.
func Generate(f *model.File, contract string) (*Document, error) {
	cp := f.Contract(contract)
	if cp == nil {
		return nil, fmt.Errorf("contract %s is not declared in %s", contract, f.Path)
	}
	c := cp.Contract
	doc := &Document{ContractName: c.Name, Package: f.Package}
	bind := entryBind(cp)

	for _, k := range model.MsgKinds {
		var root *Schema
		g := newGenerator(f)
		if ov := c.Overrides[k]; ov != nil && ov.MsgType != nil {
			// The override handler decodes its own message type.
			root = g.inline(g.typeSchema(model.Subst(ov.MsgType, bind), f))
		} else {
			comp := cp.Composites[k]
			if comp.Empty() {
				continue
			}
			root = g.composite(comp, bind)
		}
		root.Schema = Draft
		root.Title = kindTitle(k)
		if len(g.defs) > 0 {
			root.Definitions = g.defs
		}
		switch k {
		case model.KindInstantiate:
			doc.Instantiate = root
		case model.KindExec:
			doc.Execute = root
		case model.KindQuery:
			doc.Query = root
		case model.KindSudo:
			doc.Sudo = root
		case model.KindMigrate:
			doc.Migrate = root
		}
	}

	if comp := cp.Composites[model.KindQuery]; !comp.Empty() {
		doc.Responses = map[string]*Schema{}
		g := newGenerator(f)
		for _, v := range variants(comp.Own) {
			doc.Responses[v.Wire] = g.response(v, bind, f)
		}
		for _, w := range comp.Wrapped {
			wb := wrappedBind(w, bind)
			for _, v := range w.Union.Variants {
				// Wrapped cases are listed under their wrapper tag.
				doc.Responses[w.Wire+"."+v.Wire] = g.response(v, wb, g.interfaceFile(w.Implements))
			}
		}
	}
	return doc, nil
}

// GenerateAll exports every contract of f, in declaration order.
func GenerateAll(f *model.File) ([]*Document, error) {
	out := make([]*Document, 0, len(f.Contracts))
	for _, cp := range f.Contracts {
		doc, err := Generate(f, cp.Contract.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func kindTitle(k model.Kind) string {
	return naming.Pascal(k.Wire()) + "Msg"
}

// entryBind instantiates the contract generics when @entry_points fixed
// them. Otherwise generic fields stay unconstrained.
func entryBind(cp *model.ContractPlan) map[string]model.Type {
	if cp.Entry == nil || cp.Entry.Skipped || len(cp.Entry.Generics) == 0 {
		return nil
	}
	bind := map[string]model.Type{}
	for i, g := range cp.Contract.Generics {
		if i < len(cp.Entry.Generics) {
			bind[g.Name] = cp.Entry.Generics[i]
		}
	}
	return bind
}

func wrappedBind(w *model.Wrapped, outer map[string]model.Type) map[string]model.Type {
	bind := map[string]model.Type{}
	for i, ph := range w.Implements.Interface.Placeholders {
		if i < len(w.Args) {
			bind[ph.Name] = model.Subst(w.Args[i], outer)
		}
	}
	return bind
}

func variants(u *model.Union) []*model.Variant {
	if u == nil {
		return nil
	}
	return u.Variants
}

// generator accumulates the definitions of one root schema.
type generator struct {
	root *model.File
	defs map[string]*Schema
}

func newGenerator(root *model.File) *generator {
	return &generator{root: root, defs: map[string]*Schema{}}
}

func (g *generator) interfaceFile(impl *model.Implements) *model.File {
	if impl.Import == "" {
		return g.root
	}
	if im := g.root.Import(impl.Import); im != nil && im.File != nil {
		return im.File
	}
	return g.root
}

// composite is the top-level union: own cases unwrapped, then one case per
// wrapper tag referencing the interface union's definition. Wrappers that
// share a tag under the permit alias policy accept any of their unions.
func (g *generator) composite(comp *model.Composite, bind map[string]model.Type) *Schema {
	s := &Schema{}
	for _, v := range variants(comp.Own) {
		s.OneOf = append(s.OneOf, g.variant(v, bind, g.root))
	}
	var tags []string
	byTag := map[string][]*Schema{}
	for _, w := range comp.Wrapped {
		name := g.wrappedDef(w, bind)
		if _, ok := byTag[w.Wire]; !ok {
			tags = append(tags, w.Wire)
		}
		byTag[w.Wire] = append(byTag[w.Wire], RefTo(name))
	}
	for _, tag := range tags {
		refs := byTag[tag]
		inner := refs[0]
		if len(refs) > 1 {
			inner = &Schema{AnyOf: refs}
		}
		s.OneOf = append(s.OneOf, tagged(tag, inner, ""))
	}
	return s
}

// wrappedDef registers the definition of an interface union as composed.
func (g *generator) wrappedDef(w *model.Wrapped, outer map[string]model.Type) string {
	bind := wrappedBind(w, outer)
	file := g.interfaceFile(w.Implements)
	name := instanceName(w.Union.Owner+w.Union.Kind.Title()+"Msg", w.UnionArgs(), outer)
	if _, ok := g.defs[name]; ok {
		return name
	}
	g.defs[name] = &Schema{}
	s := &Schema{}
	for _, v := range w.Union.Variants {
		s.OneOf = append(s.OneOf, g.variant(v, bind, file))
	}
	g.defs[name] = s
	return name
}

// variant is `{"<wire>": {<fields>}}` with both levels closed.
func (g *generator) variant(v *model.Variant, bind map[string]model.Type, file *model.File) *Schema {
	var doc string
	if v.Method != nil {
		doc = strings.Join(v.Method.Doc, "\n")
	}
	return tagged(v.Wire, g.object(v.Fields, bind, file), doc)
}

func tagged(tag string, body *Schema, doc string) *Schema {
	return &Schema{
		Description:          doc,
		Type:                 "object",
		Required:             []string{tag},
		Properties:           map[string]*Schema{tag: body},
		AdditionalProperties: Closed(),
	}
}

func (g *generator) object(fields []*model.Param, bind map[string]model.Type, file *model.File) *Schema {
	s := &Schema{Type: "object", Properties: map[string]*Schema{}, AdditionalProperties: Closed()}
	for _, f := range fields {
		fs := g.typeSchema(model.Subst(f.Type, bind), file)
		if len(f.Doc) > 0 && fs.Ref == "" {
			fs.Description = strings.Join(f.Doc, "\n")
		}
		s.Properties[f.WireName()] = fs
		if f.Required() {
			s.Required = append(s.Required, f.WireName())
		}
	}
	return s
}

// response is a root schema of its own for one query case.
func (g *generator) response(v *model.Variant, bind map[string]model.Type, file *model.File) *Schema {
	rg := newGenerator(g.root)
	var s *Schema
	if v.Method == nil || v.Method.Response == nil {
		s = &Schema{}
	} else {
		s = rg.typeSchema(model.Subst(v.Method.Response, bind), file)
	}
	s = rg.inline(s)
	s.Schema = Draft
	if v.Method != nil && v.Method.Response != nil {
		s.Title = typeTitle(model.Subst(v.Method.Response, bind))
	}
	if len(rg.defs) > 0 {
		s.Definitions = rg.defs
	}
	return s
}

// inline replaces a top-level reference by a copy of its definition; the
// definition stays for recursive references.
func (g *generator) inline(s *Schema) *Schema {
	name, ok := strings.CutPrefix(s.Ref, "#/definitions/")
	if !ok {
		return s
	}
	top := *g.defs[name]
	return &top
}

func typeTitle(t model.Type) string {
	if n, ok := t.(*model.Named); ok {
		return instanceName(n.Name, n.Args, nil)
	}
	return strings.NewReplacer("<", "_for_", ">", "", ", ", "_and_", "[]", "_array", "?", "_nullable").Replace(t.String())
}

// typeSchema maps a resolved type. Struct references become definitions
// keyed by their instantiated name.
func (g *generator) typeSchema(t model.Type, file *model.File) *Schema {
	switch t := t.(type) {
	case *model.TypeParam:
		return &Schema{}
	case *model.Optional:
		return &Schema{AnyOf: []*Schema{g.typeSchema(t.Elem, file), {Type: "null"}}}
	case *model.Slice:
		return &Schema{Type: "array", Items: g.typeSchema(t.Elem, file)}
	case *model.Map:
		return &Schema{Type: "object", AdditionalProperties: Values(g.typeSchema(t.Val, file))}
	case *model.Named:
		if t.Extern != nil {
			return &Schema{Description: "extern " + t.Extern.GoPath + "." + t.Extern.GoName}
		}
		return g.structRef(t, file)
	case *model.Builtin:
		return g.builtin(t, file)
	}
	return &Schema{}
}

func (g *generator) builtin(t *model.Builtin, file *model.File) *Schema {
	if f, ok := intFormat[t.Name]; ok {
		s := &Schema{Type: "integer", Format: f}
		if r, ok := intRange[t.Name]; ok {
			s.Minimum, s.Maximum = bound(r[0]), bound(r[1])
		} else if t.Name[0] == 'u' {
			s.Minimum = bound(0)
		}
		return s
	}
	switch t.Name {
	case "bool":
		return &Schema{Type: "boolean"}
	case "string":
		return &Schema{Type: "string"}
	case "f32":
		return &Schema{Type: "number", Format: "float"}
	case "f64":
		return &Schema{Type: "number", Format: "double"}
	case "Addr":
		return g.define("Addr", &Schema{Type: "string", Description: "A human readable address."})
	case "u128", "Uint128":
		return g.define("Uint128", &Schema{Type: "string", Pattern: "^[0-9]+$", Description: "A 128-bit unsigned integer encoded as a decimal string."})
	case "Binary":
		return g.define("Binary", &Schema{Type: "string", ContentEncoding: "base64", Description: "Binary data encoded as standard base64."})
	case "Coin":
		g.builtin(&model.Builtin{Name: "Uint128"}, file)
		return g.define("Coin", &Schema{
			Type:                 "object",
			Required:             []string{"amount", "denom"},
			Properties:           map[string]*Schema{"amount": RefTo("Uint128"), "denom": {Type: "string"}},
			AdditionalProperties: Closed(),
		})
	case "Empty":
		return g.define("Empty", &Schema{Type: "object", AdditionalProperties: Closed()})
	case "Response", "CosmosMsg":
		return &Schema{Type: "object", Description: t.String()}
	}
	return &Schema{}
}

func (g *generator) define(name string, s *Schema) *Schema {
	if _, ok := g.defs[name]; !ok {
		g.defs[name] = s
	}
	return RefTo(name)
}

func (g *generator) structRef(n *model.Named, file *model.File) *Schema {
	st, sf := lookup(file, g.root, n)
	if st == nil {
		return &Schema{Description: "undeclared " + n.String()}
	}
	name := instanceName(st.Name, n.Args, nil)
	if _, ok := g.defs[name]; ok {
		return RefTo(name)
	}
	// Placeholder first so recursive structs terminate.
	g.defs[name] = &Schema{}
	bind := map[string]model.Type{}
	for i, gen := range st.Generics {
		if i < len(n.Args) {
			bind[gen.Name] = n.Args[i]
		}
	}
	s := g.object(st.Fields, bind, sf)
	s.Description = strings.Join(st.Doc, "\n")
	g.defs[name] = s
	return RefTo(name)
}

// instanceName names a generic instantiation `Name_for_A_and_B`.
func instanceName(base string, args []model.Type, bind map[string]model.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = typeTitle(model.Subst(a, bind))
	}
	return base + "_for_" + strings.Join(parts, "_and_")
}

// lookup resolves a struct reference written in file. Unqualified names
// not found there fall back to root, where composition arguments were
// written.
func lookup(file, root *model.File, n *model.Named) (*model.Struct, *model.File) {
	if n.Pkg == "" || n.Pkg == file.Package {
		if st := file.Struct(n.Name); st != nil {
			return st, file
		}
		if n.Pkg == "" && root != nil {
			return root.Struct(n.Name), root
		}
		return nil, nil
	}
	seen := []*model.File{file}
	queue := []*model.File{file}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, im := range f.Imports {
			if im.File == nil || slices.Contains(seen, im.File) {
				continue
			}
			seen = append(seen, im.File)
			if im.File.Package == n.Pkg {
				if st := im.File.Struct(n.Name); st != nil {
					return st, im.File
				}
			}
			queue = append(queue, im.File)
		}
	}
	return nil, nil
}
