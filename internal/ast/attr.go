package ast

import "weave/internal/source"

// Attr описывает атрибут вида `@name(args...)`.
// Messages is set only for `@messages(...)`, whose argument grammar is special.
type Attr struct {
	Name      *Ident
	Args      []*AttrArg
	HasParens bool
	Messages  *MessagesSpec
	Span      source.Span
}

// AttrArg is `value` or `key = value`.
type AttrArg struct {
	Key   *Ident
	Value AttrValue
	Span  source.Span
}

// AttrValue is one of the value nodes below.
type AttrValue interface {
	ValueSpan() source.Span
	attrValue()
}

type StringValue struct {
	Value string
	Span  source.Span
}

type IntValue struct {
	Text string
	Span source.Span
}

type BoolValue struct {
	Value bool
	Span  source.Span
}

// ListValue is `[a, b, ...]`.
type ListValue struct {
	Items []AttrValue
	Span  source.Span
}

// TypeValue covers bare identifiers (`success`, `raw`) and full types (`Vec<Addr>`).
type TypeValue struct {
	Type *TypeExpr
}

// CallValue is `Callee(args...)`, e.g. `CustomSudo(SudoMsg)` or `custom(msg, query)`.
type CallValue struct {
	Callee *TypeExpr
	Args   []*AttrArg
	Span   source.Span
}

func (v *StringValue) ValueSpan() source.Span { return v.Span }
func (v *IntValue) ValueSpan() source.Span    { return v.Span }
func (v *BoolValue) ValueSpan() source.Span   { return v.Span }
func (v *ListValue) ValueSpan() source.Span   { return v.Span }
func (v *TypeValue) ValueSpan() source.Span   { return v.Type.Span }
func (v *CallValue) ValueSpan() source.Span   { return v.Span }
func (*StringValue) attrValue()               {}
func (*IntValue) attrValue()                  {}
func (*BoolValue) attrValue()                 {}
func (*ListValue) attrValue()                 {}
func (*TypeValue) attrValue()                 {}
func (*CallValue) attrValue()                 {}

// Ident returns the single identifier when the value is a bare name.
func (v *TypeValue) Ident() (*Ident, bool) {
	if v.Type.Kind != TypePath || len(v.Type.Path) != 1 || len(v.Type.Args) != 0 {
		return nil, false
	}
	return v.Type.Path[0], true
}

// MessagesSpec is the argument of
// `@messages(path [as Alias] [: custom(msg [= T], query [= T])] [, bind(P = T, ...)])`.
type MessagesSpec struct {
	Path   []*Ident
	Alias  *Ident
	Custom *CallValue
	Binds  []*AttrArg
	Span   source.Span
}

// PathString returns the dotted interface path.
func (m *MessagesSpec) PathString() string {
	s := ""
	for i, p := range m.Path {
		if i > 0 {
			s += "."
		}
		s += p.Name
	}
	return s
}

// FindAttr returns the first attribute named name.
func FindAttr(attrs []*Attr, name string) *Attr {
	for _, a := range attrs {
		if a.Name.Name == name {
			return a
		}
	}
	return nil
}
