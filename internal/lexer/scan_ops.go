package lexer

import (
	"weave/internal/diag"
	"weave/internal/token"
)

// scanOperatorOrPunct: единственный двухсимвольный токен: "->".
// '>' never combines, so `Vec<Vec<u32>>` closes with two Gt tokens.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '-' && b1 == '>' {
		lx.cursor.Bump()
		lx.cursor.Bump()
		return emit(token.Arrow)
	}

	var kind token.Kind
	switch lx.cursor.Peek() {
	case '@':
		kind = token.At
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case ':':
		kind = token.Colon
	case '.':
		kind = token.Dot
	case '=':
		kind = token.Assign
	case '?':
		kind = token.Question
	case '+':
		kind = token.Plus
	case '&':
		kind = token.Amp
	default:
		lx.bumpRune()
		tok := emit(token.Invalid)
		lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character "+quoteChar(tok.Text))
		return tok
	}
	lx.cursor.Bump()
	return emit(kind)
}

func quoteChar(s string) string {
	return "'" + s + "'"
}
