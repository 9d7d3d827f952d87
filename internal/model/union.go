package model

// Variant is one case of a kind union, derived 1:1 from a method.
type Variant struct {
	Case     string // PascalCase Go name
	Wire     string // snake_case tag
	Fields   []*Param
	Generics []string // referenced parameters, first-seen order
	Method   *Method
}

// Union is the tagged union of one kind for one declaration.
type Union struct {
	Owner    string
	Kind     Kind
	Variants []*Variant
	// Used is the exact set of declaration generics the variants reference,
	// in first-seen order; Unused is the rest, in declaration order.
	Used   []string
	Unused []string
	// Generics are the Used parameters with their bounds, for emission.
	Generics []*Generic
}

// Empty reports whether the union has no cases.
func (u *Union) Empty() bool { return u == nil || len(u.Variants) == 0 }

// Variant finds a case by wire tag.
func (u *Union) Variant(wire string) *Variant {
	if u == nil {
		return nil
	}
	for _, v := range u.Variants {
		if v.Wire == wire {
			return v
		}
	}
	return nil
}

// Composite is a contract's top-level union for one kind: its own cases
// unwrapped plus each composed interface's union under a wrapper case.
type Composite struct {
	Owner    string
	Kind     Kind
	Own      *Union
	Wrapped  []*Wrapped
	Used     []string
	Generics []*Generic
}

// Empty reports whether nothing routes through the composite.
func (c *Composite) Empty() bool {
	return c == nil || (c.Own.Empty() && len(c.Wrapped) == 0)
}

// Wrapped is one interface union inside a composite.
type Wrapped struct {
	Implements *Implements
	Alias      string
	Field      string // Go field / accessor name
	Accessor   string // handler accessor method name
	Wire       string
	Union      *Union
	// Args instantiate the interface's placeholders (all of them, in
	// declaration order) after binding and forwarding.
	Args []Type
}

// UnionArgs returns the type arguments for the wrapped interface union,
// restricted to the placeholders that union uses.
func (w *Wrapped) UnionArgs() []Type {
	gens := w.Implements.Interface.Placeholders
	out := make([]Type, 0, len(w.Union.Used))
	for _, used := range w.Union.Used {
		for i, p := range gens {
			if p.Name == used {
				out = append(out, w.Args[i])
			}
		}
	}
	return out
}

// ReplyEntry is one handler identity with its dense ID.
type ReplyEntry struct {
	Handler string
	Const   string
	ID      uint64
	Methods []*Method
}

// ReplyTable maps handler identities to IDs in declaration order.
type ReplyTable struct {
	Entries []*ReplyEntry
}

// Lookup returns the entry for a handler identity.
func (t *ReplyTable) Lookup(handler string) *ReplyEntry {
	if t == nil {
		return nil
	}
	for _, e := range t.Entries {
		if e.Handler == handler {
			return e
		}
	}
	return nil
}

// ByID returns the entry with the given ID.
func (t *ReplyTable) ByID(id uint64) *ReplyEntry {
	if t == nil || id >= uint64(len(t.Entries)) {
		return nil
	}
	return t.Entries[id]
}

// Wiring says how an entry point of one kind is produced.
type Wiring uint8

const (
	WireNone Wiring = iota // no handlers, no entry point
	WireAuto
	WireOverride
)

func (w Wiring) String() string {
	switch w {
	case WireAuto:
		return "auto"
	case WireOverride:
		return "override"
	default:
		return "none"
	}
}

// EntryPlan is the per-kind wiring decision.
type EntryPlan struct {
	Wiring [kindCount]Wiring
	// Generics instantiate a generic contract; nil for non-generic ones.
	Generics []Type
	// Skipped is set for generic contracts without @entry_points.
	Skipped bool
}

// Of returns the wiring for kind.
func (p *EntryPlan) Of(k Kind) Wiring { return p.Wiring[k] }
