package token

import (
	"weave/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwPackage && t.Kind <= KwFalse
}

// IsPunct reports whether the token is punctuation.
func (t Token) IsPunct() bool {
	return t.Kind >= At && t.Kind <= Underscore
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Doc collects the text of leading doc comments, one entry per line,
// with the "///" marker and one following space stripped.
func (t Token) Doc() []string {
	var out []string
	for _, tr := range t.Leading {
		if tr.Kind != TriviaDocLine {
			continue
		}
		line := tr.Text
		if len(line) >= 3 {
			line = line[3:]
		}
		if len(line) > 0 && line[0] == ' ' {
			line = line[1:]
		}
		out = append(out, line)
	}
	return out
}
