package vm

import (
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"weave/internal/model"
	"weave/runtime/wasmrt"
)

var intBits = map[string]int{
	"u8": 8, "u16": 16, "u32": 32, "u64": 64,
	"i8": 8, "i16": 16, "i32": 32, "i64": 64,
}

// scope is the file a type was written in; struct names resolve there.
// root is the contract's file: composition arguments substituted into an
// imported interface's fields were written in it.
type scope struct {
	file *model.File
	root *model.File
}

// lookup finds the struct a named type refers to, following imports.
func (s scope) lookup(n *model.Named) (*model.Struct, scope) {
	if n.Pkg == "" || n.Pkg == s.file.Package {
		if st := s.file.Struct(n.Name); st != nil {
			return st, s
		}
		if s.root != nil && n.Pkg == "" {
			return s.root.Struct(n.Name), scope{file: s.root, root: s.root}
		}
		return nil, s
	}
	seen := map[*model.File]bool{s.file: true}
	var walk func(f *model.File) (*model.Struct, scope)
	walk = func(f *model.File) (*model.Struct, scope) {
		for _, im := range f.Imports {
			if im.File == nil || seen[im.File] {
				continue
			}
			seen[im.File] = true
			if im.File.Package == n.Pkg {
				if st := im.File.Struct(n.Name); st != nil {
					return st, scope{file: im.File, root: s.root}
				}
			}
			if st, sc := walk(im.File); st != nil {
				return st, sc
			}
		}
		return nil, scope{}
	}
	return walk(s.file)
}

// check validates v against t. Generic parameters left unbound accept any
// value; extern types are opaque.
func (s scope) check(t model.Type, v jsontext.Value, path []string) error {
	kind := v.Kind()
	mismatch := func(want string) error {
		return newError(ErrTypeMismatch, path, "expected %s (%s), found %s", want, t, describe(kind))
	}
	switch t := t.(type) {
	case *model.TypeParam:
		return nil
	case *model.Optional:
		if kind == 'n' {
			return nil
		}
		return s.check(t.Elem, v, path)
	case *model.Slice:
		if kind != '[' {
			return mismatch("array")
		}
		elems, err := arrayElems(v)
		if err != nil {
			return wrapError(ErrTypeMismatch, path, err)
		}
		for i, el := range elems {
			if err := s.check(t.Elem, el, append(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		return nil
	case *model.Map:
		if kind != '{' {
			return mismatch("object")
		}
		members, err := objectMembers(v)
		if err != nil {
			return wrapError(ErrTypeMismatch, path, err)
		}
		for _, m := range members {
			if err := s.check(t.Val, m.value, append(path, m.name)); err != nil {
				return err
			}
		}
		return nil
	case *model.Named:
		if t.Extern != nil {
			return nil
		}
		st, sc := s.lookup(t)
		if st == nil {
			return newError(ErrTypeMismatch, path, "type %s is not declared", t)
		}
		bind := map[string]model.Type{}
		for i, g := range st.Generics {
			if i < len(t.Args) {
				bind[g.Name] = t.Args[i]
			}
		}
		return sc.checkFields(st.Fields, bind, v, path)
	case *model.Builtin:
		return s.checkBuiltin(t, v, path, mismatch)
	}
	return nil
}

func (s scope) checkBuiltin(t *model.Builtin, v jsontext.Value, path []string, mismatch func(string) error) error {
	kind := v.Kind()
	if bits, ok := intBits[t.Name]; ok {
		if kind != '0' {
			return mismatch("integer")
		}
		var err error
		if t.Name[0] == 'u' {
			_, err = strconv.ParseUint(string(v), 10, bits)
		} else {
			_, err = strconv.ParseInt(string(v), 10, bits)
		}
		if err != nil {
			return newError(ErrTypeMismatch, path, "%s does not fit %s", v, t.Name)
		}
		return nil
	}
	switch t.Name {
	case "bool":
		if kind != 't' && kind != 'f' {
			return mismatch("boolean")
		}
	case "string", "Addr":
		if kind != '"' {
			return mismatch("string")
		}
	case "f32", "f64":
		if kind != '0' {
			return mismatch("number")
		}
	case "u128":
		var u wasmrt.Uint128
		if err := json.Unmarshal(v, &u); err != nil {
			return wrapError(ErrTypeMismatch, path, err)
		}
	case "Binary":
		var b wasmrt.Binary
		if err := json.Unmarshal(v, &b); err != nil {
			return wrapError(ErrTypeMismatch, path, err)
		}
	case "Coin":
		var c wasmrt.Coin
		if err := json.Unmarshal(v, &c, json.RejectUnknownMembers(true)); err != nil {
			return wrapError(ErrTypeMismatch, path, err)
		}
	case "Empty":
		return s.checkFields(nil, nil, v, path)
	case "Response", "CosmosMsg":
		if kind != '{' {
			return mismatch("object")
		}
	}
	return nil
}

// checkFields validates an object against declared fields: no undeclared
// members, every non-optional field present.
func (s scope) checkFields(fields []*model.Param, bind map[string]model.Type, v jsontext.Value, path []string) error {
	if v.Kind() != '{' {
		return newError(ErrTypeMismatch, path, "expected object, found %s", describe(v.Kind()))
	}
	members, err := objectMembers(v)
	if err != nil {
		return wrapError(ErrTypeMismatch, path, err)
	}
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.WireName()] = true
	}
	byName := make(map[string]jsontext.Value, len(members))
	for _, m := range members {
		if !declared[m.name] {
			return newError(ErrUnknownMember, path, "unknown field %q", m.name)
		}
		byName[m.name] = m.value
	}
	for _, f := range fields {
		val, ok := byName[f.WireName()]
		if !ok {
			if !f.Required() {
				continue
			}
			return newError(ErrMissingField, path, "missing field %q", f.WireName())
		}
		if err := s.check(model.Subst(f.Type, bind), val, append(path, f.WireName())); err != nil {
			return err
		}
	}
	return nil
}
