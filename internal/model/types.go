package model

import "strings"

// Type is a resolved type expression.
type Type interface {
	String() string
	isType()
}

// Builtin is a scalar or one of the generic host types (Response<C>, CosmosMsg<C>).
type Builtin struct {
	Name string
	Args []Type
}

// Named refers to a struct or extern declaration.
type Named struct {
	Name   string
	Pkg    string // declaring IDL package; empty for the current file
	Extern *ExternRef
	Args   []Type
}

// ExternRef is the Go identity of an extern type.
type ExternRef struct {
	GoPath string
	GoName string
}

// Slice is T[] / Vec<T>.
type Slice struct{ Elem Type }

// Optional is T? / Option<T>.
type Optional struct{ Elem Type }

// Map is Map<K, V>.
type Map struct{ Key, Val Type }

// TypeParam references a generic parameter or interface placeholder by name.
type TypeParam struct{ Name string }

func (*Builtin) isType()  {}
func (*Named) isType()    {}
func (*Slice) isType()    {}
func (*Optional) isType() {}
func (*Map) isType()      {}
func (*TypeParam) isType() {}

func (t *Builtin) String() string { return withArgs(t.Name, t.Args) }
func (t *Named) String() string {
	if t.Pkg != "" {
		return withArgs(t.Pkg+"."+t.Name, t.Args)
	}
	return withArgs(t.Name, t.Args)
}
func (t *Slice) String() string    { return t.Elem.String() + "[]" }
func (t *Optional) String() string { return t.Elem.String() + "?" }
func (t *Map) String() string      { return "Map<" + t.Key.String() + ", " + t.Val.String() + ">" }
func (t *TypeParam) String() string { return t.Name }

func withArgs(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}

// Builtin names with their generic arity.
var Builtins = map[string]int{
	"bool": 0, "string": 0,
	"u8": 0, "u16": 0, "u32": 0, "u64": 0, "u128": 0, "Uint128": 0,
	"i8": 0, "i16": 0, "i32": 0, "i64": 0,
	"f32": 0, "f64": 0,
	"Addr": 0, "Binary": 0, "Coin": 0, "Empty": 0,
	"Response": 1, "CosmosMsg": 1,
}

// Empty is the unit custom type.
func Empty() Type { return &Builtin{Name: "Empty"} }

// ResponseOf builds Response<C>.
func ResponseOf(custom Type) Type { return &Builtin{Name: "Response", Args: []Type{custom}} }

// IsBuiltin reports whether t is the builtin called name.
func IsBuiltin(t Type, name string) bool {
	b, ok := t.(*Builtin)
	return ok && b.Name == name
}

// Walk visits t depth first. Returning false from fn stops descent into
// the current node's children.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t := t.(type) {
	case *Builtin:
		for _, a := range t.Args {
			Walk(a, fn)
		}
	case *Named:
		for _, a := range t.Args {
			Walk(a, fn)
		}
	case *Slice:
		Walk(t.Elem, fn)
	case *Optional:
		Walk(t.Elem, fn)
	case *Map:
		Walk(t.Key, fn)
		Walk(t.Val, fn)
	}
}

// ParamsOf appends the generic parameters referenced by t to seen, in
// first-seen order, skipping names already present.
func ParamsOf(t Type, seen []string) []string {
	Walk(t, func(n Type) bool {
		if p, ok := n.(*TypeParam); ok {
			for _, s := range seen {
				if s == p.Name {
					return true
				}
			}
			seen = append(seen, p.Name)
		}
		return true
	})
	return seen
}

// References reports whether name occurs anywhere in t.
func References(t Type, name string) bool {
	found := false
	Walk(t, func(n Type) bool {
		if p, ok := n.(*TypeParam); ok && p.Name == name {
			found = true
		}
		return !found
	})
	return found
}

// Subst replaces generic parameters according to bind. Unbound parameters
// are kept as they are. The input is never mutated.
func Subst(t Type, bind map[string]Type) Type {
	if len(bind) == 0 || t == nil {
		return t
	}
	switch t := t.(type) {
	case *TypeParam:
		if r, ok := bind[t.Name]; ok {
			return r
		}
		return t
	case *Builtin:
		return &Builtin{Name: t.Name, Args: substAll(t.Args, bind)}
	case *Named:
		return &Named{Name: t.Name, Pkg: t.Pkg, Extern: t.Extern, Args: substAll(t.Args, bind)}
	case *Slice:
		return &Slice{Elem: Subst(t.Elem, bind)}
	case *Optional:
		return &Optional{Elem: Subst(t.Elem, bind)}
	case *Map:
		return &Map{Key: Subst(t.Key, bind), Val: Subst(t.Val, bind)}
	}
	return t
}

func substAll(ts []Type, bind map[string]Type) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, a := range ts {
		out[i] = Subst(a, bind)
	}
	return out
}

// Equal compares two types structurally.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
