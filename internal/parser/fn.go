package parser

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/token"
)

// [attrs] fn name(params) [-> Type];
func (p *Parser) parseFn() (*ast.FnDecl, bool) {
	first := p.lx.Peek()
	attrs, ok := p.parseAttrs()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.KwFn, diag.SynUnexpectedToken, "expected 'fn'"); !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	fn := &ast.FnDecl{Doc: first.Doc(), Attrs: attrs, Name: name}
	if p.at(token.Lt) {
		p.err(diag.SynUnexpectedToken, "handler methods cannot declare their own generic parameters")
		return nil, false
	}
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	fn.Params = params
	if p.at(token.Arrow) {
		p.advance()
		res, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fn.Result = res
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after method signature")
	if !ok {
		return nil, false
	}
	fn.Span = first.Span.Cover(semi.Span)
	return fn, true
}

func (p *Parser) parseParams() ([]*ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to open parameter list"); !ok {
		return nil, false
	}
	var params []*ast.Param
	for !p.at(token.RParen) {
		param, ok := p.parseParam()
		if !ok {
			return nil, false
		}
		params = append(params, param)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameter list"); !ok {
		return nil, false
	}
	return params, true
}

// parseParam: [attrs] (name | pattern) : Type.
// Patterns are parsed (not rejected) here; sema reports them with the
// parameter's span so the rest of the method still lowers.
func (p *Parser) parseParam() (*ast.Param, bool) {
	first := p.lx.Peek()
	attrs, ok := p.parseAttrs()
	if !ok {
		return nil, false
	}
	param := &ast.Param{Attrs: attrs}
	switch p.lx.Peek().Kind {
	case token.Ident:
		tok := p.advance()
		param.Name = &ast.Ident{Name: tok.Text, Span: tok.Span}
	case token.LParen, token.LBrace, token.Underscore:
		pat, ok := p.parsePattern()
		if !ok {
			return nil, false
		}
		param.Pattern = pat
	default:
		p.err(diag.SynExpectIdentifier, "expected parameter name, got "+describe(p.lx.Peek()))
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after parameter name"); !ok {
		return nil, false
	}
	ty, ok := p.parseType()
	if !ok {
		return nil, false
	}
	param.Type = ty
	param.Span = first.Span.Cover(ty.Span)
	return param, true
}

// parsePattern reads `(a, b)`, `{x, y}` (nesting allowed) or `_`.
func (p *Parser) parsePattern() (*ast.Pattern, bool) {
	open := p.advance()
	pat := &ast.Pattern{Span: open.Span}
	var closeKind token.Kind
	switch open.Kind {
	case token.Underscore:
		pat.Kind = ast.PatternWildcard
		return pat, true
	case token.LParen:
		pat.Kind = ast.PatternTuple
		closeKind = token.RParen
	default:
		pat.Kind = ast.PatternStruct
		closeKind = token.RBrace
	}
	for !p.at(closeKind) {
		switch p.lx.Peek().Kind {
		case token.Ident:
			tok := p.advance()
			pat.Names = append(pat.Names, &ast.Ident{Name: tok.Text, Span: tok.Span})
		case token.LParen, token.LBrace, token.Underscore:
			inner, ok := p.parsePattern()
			if !ok {
				return nil, false
			}
			pat.Names = append(pat.Names, inner.Names...)
		case token.Comma, token.Colon:
			p.advance()
		default:
			p.err(diag.SynUnclosedDelimiter, "unterminated destructuring pattern")
			return nil, false
		}
	}
	closing := p.advance()
	pat.Span = pat.Span.Cover(closing.Span)
	return pat, true
}
