package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of f. Used by `weave parse`.
func Dump(w io.Writer, f *File) error {
	d := dumper{w: w}
	if f.Package != nil {
		d.line(0, "package %s", f.Package.Name)
	}
	for _, im := range f.Imports {
		if im.Alias != nil {
			d.line(0, "import %q as %s", im.Path, im.Alias.Name)
		} else {
			d.line(0, "import %q", im.Path)
		}
	}
	for _, decl := range f.Decls {
		switch n := decl.(type) {
		case *InterfaceDecl:
			d.attrs(0, n.Attrs)
			d.line(0, "interface %s", n.Name.Name)
			for _, a := range n.Assocs {
				if a.Default != nil {
					d.line(1, "type %s = %s", a.Name.Name, a.Default)
				} else {
					d.line(1, "type %s", a.Name.Name)
				}
			}
			d.methods(n.Methods)
		case *ContractDecl:
			d.attrs(0, n.Attrs)
			d.line(0, "contract %s%s", n.Name.Name, genericsString(n.Generics))
			for _, wp := range n.Where {
				d.line(1, "where %s: %s", wp.Name.Name, wp.Bound.Name)
			}
			d.methods(n.Methods)
		case *StructDecl:
			d.line(0, "struct %s%s", n.Name.Name, genericsString(n.Generics))
			for _, f := range n.Fields {
				d.attrs(1, f.Attrs)
				d.line(1, "%s: %s", f.Name.Name, f.Type)
			}
		case *ExternDecl:
			d.line(0, "extern %s = %q.%s", n.Name.Name, n.GoPath, n.GoName.Name)
		}
	}
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) attrs(depth int, attrs []*Attr) {
	for _, a := range attrs {
		d.line(depth, "@%s%s", a.Name.Name, attrArgsString(a))
	}
}

func (d *dumper) methods(methods []*FnDecl) {
	for _, m := range methods {
		d.attrs(1, m.Attrs)
		params := make([]string, 0, len(m.Params))
		for _, p := range m.Params {
			name := "<pattern>"
			if p.Name != nil {
				name = p.Name.Name
			}
			params = append(params, name+": "+p.Type.String())
		}
		res := ""
		if m.Result != nil {
			res = " -> " + m.Result.String()
		}
		d.line(1, "fn %s(%s)%s", m.Name.Name, strings.Join(params, ", "), res)
	}
}

func genericsString(gs []*GenericParam) string {
	if len(gs) == 0 {
		return ""
	}
	parts := make([]string, len(gs))
	for i, g := range gs {
		parts[i] = g.Name.Name
		if g.Bound != nil {
			parts[i] += ": " + g.Bound.Name
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func attrArgsString(a *Attr) string {
	if a.Messages != nil {
		m := a.Messages
		s := "(" + m.PathString()
		if m.Alias != nil {
			s += " as " + m.Alias.Name
		}
		if m.Custom != nil {
			s += ": " + valueString(m.Custom)
		}
		for _, b := range m.Binds {
			s += ", " + b.Key.Name + " = " + valueString(b.Value)
		}
		return s + ")"
	}
	if !a.HasParens {
		return ""
	}
	return "(" + argsString(a.Args) + ")"
}

func argsString(args []*AttrArg) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg.Key != nil {
			parts[i] = arg.Key.Name + " = " + valueString(arg.Value)
		} else {
			parts[i] = valueString(arg.Value)
		}
	}
	return strings.Join(parts, ", ")
}

func valueString(v AttrValue) string {
	switch v := v.(type) {
	case *StringValue:
		return fmt.Sprintf("%q", v.Value)
	case *IntValue:
		return v.Text
	case *BoolValue:
		return fmt.Sprint(v.Value)
	case *ListValue:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = valueString(it)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *TypeValue:
		return v.Type.String()
	case *CallValue:
		return v.Callee.String() + "(" + argsString(v.Args) + ")"
	}
	return "?"
}
