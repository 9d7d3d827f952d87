package sema

import (
	"strings"

	"weave/internal/ast"
	"weave/internal/diag"
)

type site uint8

const (
	siteInterface site = 1 << iota
	siteContract
	siteStruct
	siteMethod
	siteParam
	siteField
)

func (s site) String() string {
	switch s {
	case siteInterface:
		return "an interface"
	case siteContract:
		return "a contract"
	case siteStruct:
		return "a struct"
	case siteMethod:
		return "a method"
	case siteParam:
		return "a parameter"
	case siteField:
		return "a field"
	}
	return "this position"
}

var attrSites = map[string]site{
	"instantiate":          siteMethod,
	"exec":                 siteMethod,
	"query":                siteMethod,
	"sudo":                 siteMethod,
	"migrate":              siteMethod,
	"reply":                siteMethod,
	"custom":               siteInterface | siteContract,
	"messages":             siteContract,
	"override_entry_point": siteContract,
	"entry_points":         siteContract,
	"error":                siteContract | siteParam,
	"payload":              siteParam,
	"data":                 siteParam,
	"json":                 siteParam | siteField,
	"tag":                  siteParam | siteField,
}

// Expected forms, quoted in grammar diagnostics.
const (
	formQuery    = "@query or @query(resp = Type)"
	formReply    = "@reply(handlers = [name, ...], reply_on = success|failure|always)"
	formCustom   = "@custom(msg = Type, query = Type)"
	formOverride = "@override_entry_point(kind = Handler(MsgType))"
	formEntry    = "@entry_points(generics = [Type, ...])"
	formError    = "@error(Type)"
	formJSON     = `@json("name,opts")`
	formTag      = `@tag(key = "value")`
	formData     = "@data, @data(raw), @data(opt) or @data(raw, opt)"
	formPayload  = "@payload or @payload(raw)"
)

// checkAttrs reports unknown and misplaced attributes.
func checkAttrs(r *declReporter, attrs []*ast.Attr, at site) bool {
	ok := true
	for _, attr := range attrs {
		allowed, known := attrSites[attr.Name.Name]
		switch {
		case !known:
			r.errorf(diag.SynUnknownAttribute, attr.Name.Span, "unknown attribute @%s", attr.Name.Name)
			ok = false
		case allowed&at == 0:
			r.errorf(diag.SynAttrNotAllowed, attr.Span, "@%s is not allowed on %s", attr.Name.Name, at)
			ok = false
		}
	}
	return ok
}

// keyedArgs validates `key = value` arguments against the allowed keys.
func keyedArgs(r *declReporter, attr *ast.Attr, form string, allowed ...string) (map[string]*ast.AttrArg, bool) {
	out := make(map[string]*ast.AttrArg, len(attr.Args))
	ok := true
	for _, arg := range attr.Args {
		if arg.Key == nil {
			r.errorf(diag.SynBadAttrShape, arg.Span, "@%s expects key = value arguments; form is %s", attr.Name.Name, form)
			ok = false
			continue
		}
		if !contains(allowed, arg.Key.Name) {
			r.errorf(diag.SynUnknownAttrArg, arg.Key.Span, "unknown argument %q for @%s; expected %s", arg.Key.Name, attr.Name.Name, form)
			ok = false
			continue
		}
		if prev, dup := out[arg.Key.Name]; dup {
			diag.ReportError(r, diag.SynDuplicateAttrArg, arg.Span, "duplicate argument "+arg.Key.Name).
				WithNote(prev.Span, "first given here").
				Emit()
			ok = false
			continue
		}
		out[arg.Key.Name] = arg
	}
	return out, ok
}

// flagArgs validates bare-word arguments such as `raw`, `opt`.
func flagArgs(r *declReporter, attr *ast.Attr, form string, allowed ...string) (map[string]bool, bool) {
	out := make(map[string]bool, len(attr.Args))
	ok := true
	for _, arg := range attr.Args {
		word, isWord := identValue(arg.Value)
		if arg.Key != nil || !isWord {
			r.errorf(diag.SynBadAttrShape, arg.Span, "@%s takes bare flags; form is %s", attr.Name.Name, form)
			ok = false
			continue
		}
		if !contains(allowed, word) {
			r.errorf(diag.SynUnknownAttrArg, arg.Span, "unknown flag %q for @%s; expected %s", word, attr.Name.Name, form)
			ok = false
			continue
		}
		if out[word] {
			r.errorf(diag.SynDuplicateAttrArg, arg.Span, "flag %s given twice", word)
			ok = false
			continue
		}
		out[word] = true
	}
	return out, ok
}

func noArgs(r *declReporter, attr *ast.Attr) bool {
	if len(attr.Args) == 0 {
		return true
	}
	r.errorf(diag.SynUnknownAttrArg, attr.Args[0].Span, "@%s takes no arguments", attr.Name.Name)
	return false
}

func identValue(v ast.AttrValue) (string, bool) {
	tv, ok := v.(*ast.TypeValue)
	if !ok {
		return "", false
	}
	id, ok := tv.Ident()
	if !ok {
		return "", false
	}
	return id.Name, true
}

func typeValue(v ast.AttrValue) (*ast.TypeExpr, bool) {
	tv, ok := v.(*ast.TypeValue)
	if !ok {
		return nil, false
	}
	return tv.Type, true
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// forwardAttrs reads @json / @tag on a parameter or field.
func forwardAttrs(r *declReporter, attrs []*ast.Attr) (string, [][2]string, bool) {
	var (
		jsonTag string
		tags    [][2]string
		ok      = true
	)
	for _, attr := range attrs {
		switch attr.Name.Name {
		case "json":
			if len(attr.Args) != 1 || attr.Args[0].Key != nil {
				r.errorf(diag.SynBadAttrShape, attr.Span, "expected %s", formJSON)
				ok = false
				continue
			}
			s, isStr := attr.Args[0].Value.(*ast.StringValue)
			if !isStr || strings.ContainsAny(s.Value, "`\"") {
				r.errorf(diag.SynBadAttrShape, attr.Args[0].Span, "expected %s", formJSON)
				ok = false
				continue
			}
			jsonTag = s.Value
		case "tag":
			for _, arg := range attr.Args {
				s, isStr := arg.Value.(*ast.StringValue)
				if arg.Key == nil || !isStr || strings.ContainsAny(s.Value, "`\"") {
					r.errorf(diag.SynBadAttrShape, arg.Span, "expected %s", formTag)
					ok = false
					continue
				}
				if arg.Key.Name == "json" {
					r.errorf(diag.SynBadAttrShape, arg.Span, "use @json(...) for the json tag")
					ok = false
					continue
				}
				tags = append(tags, [2]string{arg.Key.Name, s.Value})
			}
		}
	}
	return jsonTag, tags, ok
}
