// Package vm is a reference machine over the resolved model. It decodes
// wire messages against a contract's combined unions and routes them to
// registered handlers the way generated dispatchers and entry points do,
// without compiling any Go.
package vm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"weave/internal/model"
	"weave/internal/naming"
	"weave/internal/trace"
	"weave/runtime/wasmrt"
)

// Field is one decoded case field, in declaration order.
type Field struct {
	Name  string // wire name
	Value jsontext.Value
}

// Call is a routed message.
type Call struct {
	Kind model.Kind
	// Wrapper is the composed interface the case came through; nil for
	// the contract's own cases and replies.
	Wrapper *model.Wrapped
	Variant *model.Variant // nil for replies
	Method  *model.Method
	Fields  []Field
	key     string
}

// Key is the handler key: "increment", or "cw1.freeze" for a wrapped case.
// When wrappers share a tag the prefix is the snake_case field name
// instead ("admin_cw1.freeze").
func (c *Call) Key() string { return c.key }

// Field returns the value of a named field, or nil.
func (c *Call) Field(name string) jsontext.Value {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// keyPrefix assigns each wrapper its handler key prefix.
func keyPrefix(plan *model.ContractPlan) map[*model.Wrapped]string {
	out := map[*model.Wrapped]string{}
	for _, comp := range plan.Composites {
		if comp == nil {
			continue
		}
		shared := map[string]int{}
		for _, w := range comp.Wrapped {
			shared[w.Wire]++
		}
		for _, w := range comp.Wrapped {
			if shared[w.Wire] > 1 {
				out[w] = naming.Snake(w.Field)
			} else {
				out[w] = w.Wire
			}
		}
	}
	return out
}

func (m *Machine) handlerKey(w *model.Wrapped, method string) string {
	if w == nil {
		return method
	}
	return m.prefix[w] + "." + method
}

// Handler serves one case. Query handlers return the encoded response;
// others return whatever the test or tool wants recorded.
type Handler func(call *Call) (jsontext.Value, error)

// OverrideHandler serves an overridden entry point with the raw message.
type OverrideHandler func(k model.Kind, msg jsontext.Value) (jsontext.Value, error)

// Result is what an entry point or dispatch produced.
type Result struct {
	Call     *Call  // nil when an override served the message
	Override string // override handler name, if one served it
	Output   jsontext.Value
}

// Options configure a Machine.
type Options struct {
	Tracer trace.Tracer
	// Parent is the span routing events attach to.
	Parent uint64
}

// Machine routes messages for one contract.
type Machine struct {
	plan      *model.ContractPlan
	scope     scope
	bind      map[string]model.Type
	handlers  map[string]Handler
	overrides map[string]OverrideHandler
	prefix    map[*model.Wrapped]string
	tracer    trace.Tracer
	parent    uint64
}

// New builds a machine for the named contract of f.
func New(f *model.File, contract string, opts Options) (*Machine, error) {
	plan := f.Contract(contract)
	if plan == nil {
		return nil, fmt.Errorf("contract %s not found in %s", contract, f.Path)
	}
	m := &Machine{
		plan:      plan,
		scope:     scope{file: f, root: f},
		bind:      map[string]model.Type{},
		handlers:  map[string]Handler{},
		overrides: map[string]OverrideHandler{},
		prefix:    keyPrefix(plan),
		tracer:    opts.Tracer,
		parent:    opts.Parent,
	}
	if m.tracer == nil {
		m.tracer = trace.Nop
	}
	if plan.Entry != nil {
		for i, g := range plan.Contract.Generics {
			if i < len(plan.Entry.Generics) {
				m.bind[g.Name] = plan.Entry.Generics[i]
			}
		}
	}
	return m, nil
}

// Plan returns the contract plan the machine routes for.
func (m *Machine) Plan() *model.ContractPlan { return m.plan }

// Register installs the handler for a key reported by Keys.
func (m *Machine) Register(key string, h Handler) error {
	if !slices.Contains(m.Keys(), key) {
		return newError(ErrUnknownHandler, nil, "%s has no case %q", m.plan.Contract.Name, key)
	}
	m.handlers[key] = h
	return nil
}

// RegisterAll installs h for every key.
func (m *Machine) RegisterAll(h Handler) {
	for _, k := range m.Keys() {
		m.handlers[k] = h
	}
}

// Override installs the function an @override_entry_point names.
func (m *Machine) Override(name string, h OverrideHandler) {
	m.overrides[name] = h
}

// Keys lists every handler key: own cases by kind, wrapped cases, then
// reply methods.
func (m *Machine) Keys() []string {
	var keys []string
	for _, k := range model.MsgKinds {
		comp := m.plan.Composites[k]
		if comp == nil {
			continue
		}
		if !comp.Own.Empty() {
			for _, v := range comp.Own.Variants {
				keys = append(keys, m.handlerKey(nil, v.Method.Name))
			}
		}
		for _, w := range comp.Wrapped {
			for _, v := range w.Union.Variants {
				keys = append(keys, m.handlerKey(w, v.Method.Name))
			}
		}
	}
	for _, meth := range m.plan.Contract.Methods {
		if meth.Kind == model.KindReply {
			keys = append(keys, meth.Name)
		}
	}
	return keys
}

// Check reports keys without handlers and overrides without functions.
func (m *Machine) Check() error {
	var missing []string
	for _, k := range m.Keys() {
		if m.handlers[k] == nil {
			missing = append(missing, k)
		}
	}
	for _, k := range model.Kinds {
		if ov := m.plan.Contract.Overrides[k]; ov != nil && m.overrides[ov.Handler] == nil {
			missing = append(missing, ov.Handler+" (override "+k.String()+")")
		}
	}
	if len(missing) > 0 {
		return newError(ErrNoHandler, nil, "%s: no handler for %s", m.plan.Contract.Name, strings.Join(missing, ", "))
	}
	return nil
}

// Dispatch decodes data as the kind's top-level message and calls the
// handler of the case it selects.
func (m *Machine) Dispatch(k model.Kind, data []byte) (*Result, error) {
	call, err := m.Decode(k, data)
	if err != nil {
		return nil, err
	}
	return m.invoke(call)
}

// Entry runs a host entry point: an overridden kind goes to its override
// function, others are dispatched.
func (m *Machine) Entry(k model.Kind, data []byte) (*Result, error) {
	if err := m.entryWired(k); err != nil {
		return nil, err
	}
	ov := m.plan.Contract.Overrides[k]
	if ov == nil {
		return m.Dispatch(k, data)
	}
	msg := jsontext.Value(data)
	if !msg.IsValid() {
		return nil, newError(ErrMalformed, nil, "%s payload is not valid JSON", k)
	}
	if err := m.scope.check(model.Subst(ov.MsgType, m.bind), msg, nil); err != nil {
		return nil, err
	}
	h := m.overrides[ov.Handler]
	if h == nil {
		return nil, newError(ErrNoHandler, nil, "override %s is not installed", ov.Handler)
	}
	trace.Point(m.tracer, trace.ScopeDecl, m.parent, "entry:"+k.Wire(), ov.Handler)
	out, err := h(k, msg)
	if err != nil {
		return nil, err
	}
	return &Result{Override: ov.Handler, Output: out}, nil
}

func (m *Machine) entryWired(k model.Kind) error {
	ep := m.plan.Entry
	switch {
	case ep == nil || ep.Skipped:
		return newError(ErrNoEntryPoint, nil, "%s is generic and has no @entry_points", m.plan.Contract.Name)
	case ep.Of(k) == model.WireNone:
		return newError(ErrNoEntryPoint, nil, "%s has no %s entry point", m.plan.Contract.Name, k.Wire())
	}
	return nil
}

func (m *Machine) invoke(call *Call) (*Result, error) {
	key := call.Key()
	h := m.handlers[key]
	if h == nil {
		return nil, newError(ErrNoHandler, nil, "no handler registered for %s", key)
	}
	trace.Point(m.tracer, trace.ScopeDecl, m.parent, "route:"+call.Kind.Wire(), key)
	out, err := h(call)
	if err != nil {
		return nil, err
	}
	return &Result{Call: call, Output: out}, nil
}

// Reply routes a sub-message reply by ID and outcome, filling reply
// parameters by role.
func (m *Machine) Reply(r wasmrt.Reply) (*Result, error) {
	if ov := m.plan.Contract.Overrides[model.KindReply]; ov != nil {
		raw, err := wasmrt.Encode(r)
		if err != nil {
			return nil, err
		}
		h := m.overrides[ov.Handler]
		if h == nil {
			return nil, newError(ErrNoHandler, nil, "override %s is not installed", ov.Handler)
		}
		out, err := h(model.KindReply, raw)
		if err != nil {
			return nil, err
		}
		return &Result{Override: ov.Handler, Output: out}, nil
	}
	call, err := m.RouteReply(r)
	if err != nil {
		return nil, err
	}
	return m.invoke(call)
}

// RouteReply selects the reply method for r without calling it.
func (m *Machine) RouteReply(r wasmrt.Reply) (*Call, error) {
	entry := m.plan.Replies.ByID(r.ID)
	if entry == nil {
		return nil, wrapError(ErrUnroutedReply, nil, wasmrt.UnknownReply(m.plan.Contract.Name, r.ID))
	}
	for _, meth := range entry.Methods {
		if !meth.ReplyOn.Matches(r.Succeeded()) {
			continue
		}
		fields, err := m.replyFields(meth, r)
		if err != nil {
			return nil, err
		}
		return &Call{Kind: model.KindReply, Method: meth, Fields: fields, key: meth.Name}, nil
	}
	return nil, wrapError(ErrUnroutedReply, nil, wasmrt.UnhandledReply(entry.Handler, r))
}

func (m *Machine) replyFields(meth *model.Method, r wasmrt.Reply) ([]Field, error) {
	fields := make([]Field, 0, len(meth.Params))
	for _, p := range meth.Params {
		path := []string{p.Name}
		var val jsontext.Value
		switch p.Role {
		case model.RolePayload:
			if p.Raw {
				enc, err := wasmrt.Encode(r.Payload)
				if err != nil {
					return nil, err
				}
				val = enc
				break
			}
			val = jsontext.Value(r.Payload)
			if err := m.scope.check(model.Subst(p.Type, m.bind), val, path); err != nil {
				return nil, err
			}
		case model.RoleData:
			data, ok := r.Data()
			switch {
			case !ok && p.Opt:
				val = jsontext.Value("null")
			case !ok:
				return nil, newError(ErrMissingField, path, "reply %d carries no data", r.ID)
			case p.Raw:
				enc, err := wasmrt.Encode(data)
				if err != nil {
					return nil, err
				}
				val = enc
			default:
				val = jsontext.Value(data)
				if err := m.scope.check(model.Subst(p.Type, m.bind), val, path); err != nil {
					return nil, err
				}
			}
		case model.RoleError:
			val = jsonString(r.Failure())
		}
		fields = append(fields, Field{Name: p.Name, Value: val})
	}
	return fields, nil
}
