package ast

import "weave/internal/source"

// InterfaceDecl is `interface Name { type ...; fn ...; }`.
type InterfaceDecl struct {
	Doc     []string
	Attrs   []*Attr
	Name    *Ident
	Assocs  []*AssocType
	Methods []*FnDecl
	Span    source.Span
}

// AssocType is an associated type: `type ExecC;` declares a placeholder,
// `type Error = StdError;` fixes it.
type AssocType struct {
	Name    *Ident
	Default *TypeExpr
	Span    source.Span
}

// ContractDecl is `contract Name<T, ...> where T: bound { fn ...; }`.
type ContractDecl struct {
	Doc      []string
	Attrs    []*Attr
	Name     *Ident
	Generics []*GenericParam
	Where    []*WherePred
	Methods  []*FnDecl
	Span     source.Span
}

// GenericParam is `T` or `T: bound`.
type GenericParam struct {
	Name  *Ident
	Bound *Ident
	Span  source.Span
}

// WherePred is one `T: bound` entry of a where clause.
type WherePred struct {
	Name  *Ident
	Bound *Ident
	Span  source.Span
}

// StructDecl is a plain data type used by message fields and responses.
type StructDecl struct {
	Doc      []string
	Attrs    []*Attr
	Name     *Ident
	Generics []*GenericParam
	Fields   []*Field
	Span     source.Span
}

// Field is a struct member.
type Field struct {
	Doc   []string
	Attrs []*Attr
	Name  *Ident
	Type  *TypeExpr
	Span  source.Span
}

// ExternDecl maps an IDL name onto an existing Go type:
// `extern type Decimal = "github.com/x/dec".Decimal;`.
type ExternDecl struct {
	Doc      []string
	Attrs    []*Attr
	Name     *Ident
	GoPath   string
	GoName   *Ident
	PathSpan source.Span
	Span     source.Span
}

// FnDecl is a method signature inside an interface or contract body.
type FnDecl struct {
	Doc    []string
	Attrs  []*Attr
	Name   *Ident
	Params []*Param
	Result *TypeExpr
	Span   source.Span
}

// Param binds either a single Name or, erroneously, a destructuring Pattern.
type Param struct {
	Attrs   []*Attr
	Name    *Ident
	Pattern *Pattern
	Type    *TypeExpr
	Span    source.Span
}

type PatternKind uint8

const (
	PatternTuple PatternKind = iota + 1
	PatternStruct
	PatternWildcard
)

// Pattern is kept only so sema can reject it at the right place.
type Pattern struct {
	Kind  PatternKind
	Names []*Ident
	Span  source.Span
}

func (d *InterfaceDecl) DeclName() *Ident      { return d.Name }
func (d *InterfaceDecl) DeclSpan() source.Span { return d.Span }
func (*InterfaceDecl) declNode()               {}
func (d *ContractDecl) DeclName() *Ident       { return d.Name }
func (d *ContractDecl) DeclSpan() source.Span  { return d.Span }
func (*ContractDecl) declNode()                {}
func (d *StructDecl) DeclName() *Ident         { return d.Name }
func (d *StructDecl) DeclSpan() source.Span    { return d.Span }
func (*StructDecl) declNode()                  {}
func (d *ExternDecl) DeclName() *Ident         { return d.Name }
func (d *ExternDecl) DeclSpan() source.Span    { return d.Span }
func (*ExternDecl) declNode()                  {}
