package model

import (
	"strings"

	"weave/internal/source"
)

// PlaceholderRole says what an interface placeholder stands for.
type PlaceholderRole uint8

const (
	RoleGeneric PlaceholderRole = iota
	RoleCustomMsg
	RoleCustomQuery
)

func (r PlaceholderRole) String() string {
	switch r {
	case RoleCustomMsg:
		return "custom msg"
	case RoleCustomQuery:
		return "custom query"
	default:
		return "generic"
	}
}

// Placeholder is an interface associated type without a fixed value.
type Placeholder struct {
	Name string
	Role PlaceholderRole
	Span source.Span
}

// Generic is a declaration type parameter as seen by the emitters.
// Bound is the IDL bound name ("custom_msg", "comparable", ...) or empty.
type Generic struct {
	Name  string
	Bound string
	Span  source.Span
}

// Constraint is one where-clause entry.
type Constraint struct {
	Name  string
	Bound string
	Span  source.Span
}

// Interface is a reusable capability set.
type Interface struct {
	Name         string
	Pkg          string
	Doc          []string
	Error        Type // nil means the runtime's standard error
	Placeholders []*Placeholder
	Methods      []*Method
	Span         source.Span
}

// Generics returns the placeholders as type parameters, in declaration order.
func (i *Interface) Generics() []*Generic {
	out := make([]*Generic, len(i.Placeholders))
	for n, p := range i.Placeholders {
		g := &Generic{Name: p.Name, Span: p.Span}
		switch p.Role {
		case RoleCustomMsg:
			g.Bound = "custom_msg"
		case RoleCustomQuery:
			g.Bound = "custom_query"
		}
		out[n] = g
	}
	return out
}

// Placeholder looks up a placeholder by name.
func (i *Interface) Placeholder(name string) *Placeholder {
	for _, p := range i.Placeholders {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PlaceholderFor returns the placeholder with the given role, if any.
func (i *Interface) PlaceholderFor(role PlaceholderRole) *Placeholder {
	for _, p := range i.Placeholders {
		if p.Role == role {
			return p
		}
	}
	return nil
}

// Contract is an implementer: its own handlers plus composed interfaces.
type Contract struct {
	Name          string
	Pkg           string
	Doc           []string
	Generics      []*Generic
	Where         []Constraint
	CustomMsg     Type
	CustomQuery   Type
	Error         Type
	Implements    []*Implements
	Methods       []*Method
	Constructor   source.Span
	Overrides     map[Kind]*Override
	EntryGenerics []Type
	Span          source.Span
}

// Generic looks up a contract type parameter.
func (c *Contract) Generic(name string) *Generic {
	for _, g := range c.Generics {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Implements is one `@messages(...)` composition entry. Args instantiate
// every placeholder of Interface, in declaration order.
type Implements struct {
	Interface    *Interface
	Import       string // IDL import name the interface came from; empty when local
	Alias        string
	Wire         string // snake_case wrapper tag
	Field        string // Go field and accessor name
	ForwardMsg   bool
	ForwardQuery bool
	Bindings     []Binding
	Args         []Type
	Span         source.Span
}

// Binding fixes an interface placeholder to a concrete type.
type Binding struct {
	Placeholder string
	Type        Type
	Span        source.Span
}

// Override replaces the generated entry point for one kind.
type Override struct {
	Kind    Kind
	Handler string
	MsgType Type
	Span    source.Span
}

// Method is a lowered handler signature (a method descriptor).
type Method struct {
	Name     string
	Kind     Kind
	Doc      []string
	Params   []*Param // context parameter excluded
	Return   Type     // full handler return type (Response<C> or the query response)
	Response Type     // query response type; nil for other kinds
	Handlers []string // reply aliases; empty means the method name
	ReplyOn  ReplyFilter
	Span     source.Span
}

// ReplyIdentities returns the handler identities this reply method serves.
func (m *Method) ReplyIdentities() []string {
	if len(m.Handlers) > 0 {
		return m.Handlers
	}
	return []string{m.Name}
}

// ParamRole marks how a reply parameter is filled.
type ParamRole uint8

const (
	RoleNone ParamRole = iota
	RolePayload
	RoleData
	RoleError
)

func (r ParamRole) String() string {
	switch r {
	case RolePayload:
		return "payload"
	case RoleData:
		return "data"
	case RoleError:
		return "error"
	default:
		return "none"
	}
}

// Param is a handler parameter, and therefore a message field.
type Param struct {
	Name string
	Type Type
	Doc  []string
	// JSON is the forwarded `@json("...")` tag body; empty means the default.
	JSON string
	Tags []Tag
	Role ParamRole
	Raw  bool
	Opt  bool
	Span source.Span
}

// Tag is a forwarded `@tag(key = "value")` struct tag.
type Tag struct {
	Key   string
	Value string
}

// WireName is the JSON member name of the field.
func (p *Param) WireName() string {
	name, _, _ := strings.Cut(p.JSON, ",")
	if name == "" {
		return p.Name
	}
	return name
}

// OmitEmpty reports whether the forwarded json tag carries omitempty.
func (p *Param) OmitEmpty() bool {
	_, opts, _ := strings.Cut(p.JSON, ",")
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" || o == "omitzero" {
			return true
		}
	}
	return false
}

// Required reports whether the member must be present on the wire:
// neither T? nor tagged omitempty/omitzero.
func (p *Param) Required() bool {
	if _, ok := p.Type.(*Optional); ok {
		return false
	}
	return !p.OmitEmpty()
}

// Struct is a plain data declaration.
type Struct struct {
	Name     string
	Pkg      string
	Doc      []string
	Generics []*Generic
	Fields   []*Param
	Span     source.Span
}

// Extern maps an IDL name onto a Go type.
type Extern struct {
	Name string
	Ref  ExternRef
	Doc  []string
	Span source.Span
}
