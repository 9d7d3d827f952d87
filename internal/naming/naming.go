// Package naming converts IDL identifiers into Go and wire spellings.
package naming

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.Und, cases.NoLower)

// Words splits an identifier on underscores and case boundaries:
// "admin_list" -> [admin list], "AdminList" -> [Admin List],
// "HTTPServer" -> [HTTP Server], "cw1" -> [cw1].
func Words(s string) []string {
	var words []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' }) {
		words = append(words, splitCase(part)...)
	}
	return words
}

func splitCase(s string) []string {
	runes := []rune(s)
	var out []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsLower(prev) && unicode.IsUpper(cur)
		if !boundary && unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			boundary = true
		}
		if boundary {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	return append(out, string(runes[start:]))
}

// Pascal is the exported Go spelling: "admin_list" -> "AdminList".
func Pascal(s string) string {
	var sb strings.Builder
	for _, w := range Words(s) {
		sb.WriteString(title.String(w))
	}
	out := sb.String()
	if out == "" {
		return "X"
	}
	if r := []rune(out)[0]; !unicode.IsLetter(r) {
		out = "X" + out
	}
	return out
}

// Snake is the wire spelling: "AdminList" -> "admin_list", "Cw1" -> "cw1".
func Snake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Camel is an unexported Go spelling safe to use as a parameter name.
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return "v"
	}
	var sb strings.Builder
	sb.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		sb.WriteString(title.String(w))
	}
	out := sb.String()
	if token.IsKeyword(out) || predeclared[out] {
		return out + "_"
	}
	return out
}

// names that would shadow something the generated code relies on
var predeclared = map[string]bool{
	"ctx": true, "msg": true, "err": true, "c": true, "json": true, "wasmrt": true,
	"string": true, "bool": true, "error": true, "any": true, "len": true, "new": true,
}
