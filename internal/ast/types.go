package ast

import (
	"strings"

	"weave/internal/source"
)

type TypeKind uint8

const (
	TypePath     TypeKind = iota + 1 // a.B<Args...>
	TypeSlice                        // Elem[]
	TypeOptional                     // Elem?
)

// TypeExpr is a type as written in the source.
type TypeExpr struct {
	Kind TypeKind
	Path []*Ident
	Args []*TypeExpr
	Elem *TypeExpr
	Span source.Span
}

// Name returns the dotted path.
func (t *TypeExpr) Name() string {
	if t == nil {
		return ""
	}
	parts := make([]string, len(t.Path))
	for i, p := range t.Path {
		parts[i] = p.Name
	}
	return strings.Join(parts, ".")
}

// String renders the type back in source form.
func (t *TypeExpr) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeSlice:
		return t.Elem.String() + "[]"
	case TypeOptional:
		return t.Elem.String() + "?"
	}
	if len(t.Args) == 0 {
		return t.Name()
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name() + "<" + strings.Join(args, ", ") + ">"
}
