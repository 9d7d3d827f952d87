package vm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-json-experiment/json/jsontext"

	"weave/internal/model"
	"weave/runtime/wasmrt"
)

func (m *Machine) composite(k model.Kind) (*model.Composite, error) {
	comp := m.plan.Composites[k]
	if comp.Empty() {
		return nil, newError(ErrUnknownKind, nil, "%s has no %s messages", m.plan.Contract.Name, k.Wire())
	}
	return comp, nil
}

// Decode selects the case data encodes: an own case by its tag, otherwise
// a composed interface by its wrapper tag and then the inner case. Under
// the permit alias policy several wrappers share a tag; they are tried in
// declaration order and the first that accepts the body wins.
func (m *Machine) Decode(k model.Kind, data []byte) (*Call, error) {
	comp, err := m.composite(k)
	if err != nil {
		return nil, err
	}
	tag, body, err := wasmrt.DecodeCase(data)
	if err != nil {
		return nil, wrapError(ErrMalformed, nil, err)
	}
	if v := comp.Own.Variant(tag); v != nil {
		fields, err := m.decodeFields(v, m.bind, body, []string{tag})
		if err != nil {
			return nil, err
		}
		return &Call{Kind: k, Variant: v, Method: v.Method, Fields: fields, key: v.Method.Name}, nil
	}

	var first error
	for _, w := range comp.Wrapped {
		if w.Wire != tag {
			continue
		}
		call, err := m.decodeWrapped(k, w, body)
		if err == nil {
			return call, nil
		}
		if first == nil {
			first = err
		}
	}
	if first != nil {
		return nil, first
	}
	return nil, wrapError(ErrUnknownCase, nil, wasmrt.UnknownCase(compositeLabel(comp), tag, caseTags(comp)...))
}

func (m *Machine) decodeWrapped(k model.Kind, w *model.Wrapped, body jsontext.Value) (*Call, error) {
	tag, inner, err := wasmrt.DecodeCase(body)
	if err != nil {
		return nil, wrapError(ErrMalformed, []string{w.Wire}, err)
	}
	v := w.Union.Variant(tag)
	if v == nil {
		return nil, wrapError(ErrUnknownCase, []string{w.Wire}, wasmrt.UnknownCase(w.Union.Owner, tag, variantTags(w.Union)...))
	}
	bind := wrappedBind(w)
	fields, err := m.decodeFields(v, bind, inner, []string{w.Wire, tag})
	if err != nil {
		return nil, err
	}
	return &Call{Kind: k, Wrapper: w, Variant: v, Method: v.Method, Fields: fields, key: m.handlerKey(w, v.Method.Name)}, nil
}

// wrappedBind maps interface placeholders onto the composition's arguments.
func wrappedBind(w *model.Wrapped) map[string]model.Type {
	bind := map[string]model.Type{}
	for i, ph := range w.Implements.Interface.Placeholders {
		if i < len(w.Args) {
			bind[ph.Name] = w.Args[i]
		}
	}
	return bind
}

func (m *Machine) decodeFields(v *model.Variant, bind map[string]model.Type, body jsontext.Value, path []string) ([]Field, error) {
	sc := m.scopeOf(v)
	if err := sc.checkFields(v.Fields, bind, body, path); err != nil {
		return nil, err
	}
	members, err := objectMembers(body)
	if err != nil {
		return nil, wrapError(ErrMalformed, path, err)
	}
	byName := make(map[string]jsontext.Value, len(members))
	for _, mem := range members {
		byName[mem.name] = mem.value
	}
	fields := make([]Field, 0, len(v.Fields))
	for _, f := range v.Fields {
		val, ok := byName[f.WireName()]
		if !ok {
			val = jsontext.Value("null")
		}
		fields = append(fields, Field{Name: f.WireName(), Value: val})
	}
	return fields, nil
}

// scopeOf is the file a variant's field types were declared in.
func (m *Machine) scopeOf(v *model.Variant) scope {
	if v.Method == nil {
		return m.scope
	}
	for _, comp := range m.plan.Composites {
		if comp == nil {
			continue
		}
		for _, w := range comp.Wrapped {
			if slices.Contains(w.Union.Variants, v) {
				return m.interfaceScope(w.Implements)
			}
		}
	}
	return m.scope
}

// interfaceScope finds the analysed file an imported interface came from.
func (m *Machine) interfaceScope(impl *model.Implements) scope {
	if impl.Import == "" {
		return m.scope
	}
	if im := m.scope.file.Import(impl.Import); im != nil && im.File != nil {
		return scope{file: im.File, root: m.scope.root}
	}
	return m.scope
}

// Encode builds the wire form of the case key selects. Values are checked
// against the field types; fields may be given in any order and are
// written in declaration order.
func (m *Machine) Encode(k model.Kind, key string, values map[string]jsontext.Value) ([]byte, error) {
	comp, err := m.composite(k)
	if err != nil {
		return nil, err
	}
	w, v := m.findCase(comp, key)
	if v == nil {
		return nil, newError(ErrUnknownHandler, nil, "%s has no %s case %q", m.plan.Contract.Name, k.Wire(), key)
	}
	bind := m.bind
	path := []string{v.Wire}
	if w != nil {
		bind = wrappedBind(w)
		path = []string{w.Wire, v.Wire}
	}
	members := make([]member, 0, len(v.Fields))
	for _, f := range v.Fields {
		if val, ok := values[f.WireName()]; ok {
			members = append(members, member{name: f.WireName(), value: val})
		}
	}
	for name := range values {
		if !slices.ContainsFunc(v.Fields, func(f *model.Param) bool { return f.WireName() == name }) {
			return nil, newError(ErrUnknownMember, path, "unknown field %q", name)
		}
	}
	body, err := object(members)
	if err != nil {
		return nil, err
	}
	if err := m.scopeOf(v).checkFields(v.Fields, bind, body, path); err != nil {
		return nil, err
	}
	out, err := tagged(v.Wire, body)
	if err != nil {
		return nil, err
	}
	if w != nil {
		out, err = tagged(w.Wire, out)
	}
	return out, err
}

// findCase resolves a handler key to its case. Own cases win over a
// wrapper whose wire tag happens to prefix the key.
func (m *Machine) findCase(comp *model.Composite, key string) (*model.Wrapped, *model.Variant) {
	for _, v := range variantsOf(comp.Own) {
		if v.Method.Name == key {
			return nil, v
		}
	}
	for _, w := range comp.Wrapped {
		for _, v := range w.Union.Variants {
			if m.handlerKey(w, v.Method.Name) == key {
				return w, v
			}
		}
	}
	return nil, nil
}

func variantsOf(u *model.Union) []*model.Variant {
	if u == nil {
		return nil
	}
	return u.Variants
}

func variantTags(u *model.Union) []string {
	var out []string
	for _, v := range variantsOf(u) {
		out = append(out, v.Wire)
	}
	return out
}

// caseTags lists own tags then wrapper tags, without duplicates.
func caseTags(comp *model.Composite) []string {
	out := variantTags(comp.Own)
	for _, w := range comp.Wrapped {
		if !slices.Contains(out, w.Wire) {
			out = append(out, w.Wire)
		}
	}
	return out
}

func compositeLabel(comp *model.Composite) string {
	return fmt.Sprintf("%s %s", comp.Owner, comp.Kind.Wire())
}

// IsUnknownCase reports whether err is a tag that matched nothing.
func IsUnknownCase(err error) bool {
	return CodeOf(err) == ErrUnknownCase || errors.Is(err, wasmrt.ErrUnknownCase)
}
