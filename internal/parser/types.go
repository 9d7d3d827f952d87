package parser

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/token"
)

// parseType: path ["<" type {"," type} ">"] { "[]" | "?" }.
func (p *Parser) parseType() (*ast.TypeExpr, bool) {
	if !p.at(token.Ident) {
		p.err(diag.SynExpectType, "expected type, got "+describe(p.lx.Peek()))
		return nil, false
	}
	first := p.advance()
	ty := &ast.TypeExpr{
		Kind: ast.TypePath,
		Path: []*ast.Ident{{Name: first.Text, Span: first.Span}},
		Span: first.Span,
	}
	for p.at(token.Dot) {
		p.advance()
		seg, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		ty.Path = append(ty.Path, seg)
		ty.Span = ty.Span.Cover(seg.Span)
	}
	if p.at(token.Lt) {
		p.advance()
		for {
			arg, ok := p.parseType()
			if !ok {
				return nil, false
			}
			ty.Args = append(ty.Args, arg)
			if !p.at(token.Comma) {
				break
			}
			p.advance()
		}
		closing, ok := p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' to close type arguments")
		if !ok {
			return nil, false
		}
		ty.Span = ty.Span.Cover(closing.Span)
	}
	for {
		switch {
		case p.at(token.LBracket):
			p.advance()
			closing, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' in slice type T[]")
			if !ok {
				return nil, false
			}
			ty = &ast.TypeExpr{Kind: ast.TypeSlice, Elem: ty, Span: ty.Span.Cover(closing.Span)}
		case p.at(token.Question):
			q := p.advance()
			ty = &ast.TypeExpr{Kind: ast.TypeOptional, Elem: ty, Span: ty.Span.Cover(q.Span)}
		default:
			return ty, true
		}
	}
}
