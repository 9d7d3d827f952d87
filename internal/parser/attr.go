package parser

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/token"
)

// parseAttrs reads zero or more `@name[(args)]`. Attribute names are not
// validated here; sema knows which attribute is allowed where.
func (p *Parser) parseAttrs() ([]*ast.Attr, bool) {
	var attrs []*ast.Attr
	for p.at(token.At) {
		attr, ok := p.parseAttr()
		if !ok {
			return nil, false
		}
		attrs = append(attrs, attr)
	}
	return attrs, true
}

func (p *Parser) parseAttr() (*ast.Attr, bool) {
	at := p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	attr := &ast.Attr{Name: name, Span: at.Span.Cover(name.Span)}
	if !p.at(token.LParen) {
		return attr, true
	}
	p.advance()
	attr.HasParens = true
	if name.Name == "messages" {
		spec, ok := p.parseMessagesSpec()
		if !ok {
			return nil, false
		}
		attr.Messages = spec
	} else {
		args, ok := p.parseAttrArgs(token.RParen)
		if !ok {
			return nil, false
		}
		attr.Args = args
	}
	closing, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close @"+name.Name)
	if !ok {
		return nil, false
	}
	attr.Span = attr.Span.Cover(closing.Span)
	return attr, true
}

// parseAttrArgs reads comma separated `value` or `key = value` up to (not
// including) the closing token. A trailing comma is accepted.
func (p *Parser) parseAttrArgs(closing token.Kind) ([]*ast.AttrArg, bool) {
	var args []*ast.AttrArg
	for !p.at(closing) && !p.at(token.EOF) {
		arg, ok := p.parseAttrArg()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return args, true
}

func (p *Parser) parseAttrArg() (*ast.AttrArg, bool) {
	v, ok := p.parseAttrValue()
	if !ok {
		return nil, false
	}
	arg := &ast.AttrArg{Value: v, Span: v.ValueSpan()}
	tv, isType := v.(*ast.TypeValue)
	if !isType || !p.at(token.Assign) {
		return arg, true
	}
	key, bare := tv.Ident()
	if !bare {
		p.err(diag.SynBadAttrShape, "attribute argument key must be a plain name")
		return nil, false
	}
	p.advance()
	val, ok := p.parseAttrValue()
	if !ok {
		return nil, false
	}
	arg.Key = key
	arg.Value = val
	arg.Span = key.Span.Cover(val.ValueSpan())
	return arg, true
}

func (p *Parser) parseAttrValue() (ast.AttrValue, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.StringLit:
		p.advance()
		return &ast.StringValue{Value: lexer.Unquote(tok.Text), Span: tok.Span}, true
	case token.IntLit:
		p.advance()
		return &ast.IntValue{Text: tok.Text, Span: tok.Span}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.BoolValue{Value: tok.Kind == token.KwTrue, Span: tok.Span}, true
	case token.LBracket:
		return p.parseListValue()
	case token.Ident:
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		if !p.at(token.LParen) {
			return &ast.TypeValue{Type: ty}, true
		}
		return p.parseCallTail(ty)
	}
	p.err(diag.SynBadAttrShape, "expected attribute value (string, number, bool, list or type), got "+describe(tok))
	return nil, false
}

func (p *Parser) parseListValue() (ast.AttrValue, bool) {
	open := p.advance()
	list := &ast.ListValue{Span: open.Span}
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		item, ok := p.parseAttrValue()
		if !ok {
			return nil, false
		}
		list.Items = append(list.Items, item)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closing, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close list")
	if !ok {
		return nil, false
	}
	list.Span = list.Span.Cover(closing.Span)
	return list, true
}

// parseCallTail reads `(args)` after callee.
func (p *Parser) parseCallTail(callee *ast.TypeExpr) (*ast.CallValue, bool) {
	p.advance()
	args, ok := p.parseAttrArgs(token.RParen)
	if !ok {
		return nil, false
	}
	closing, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close "+callee.Name()+"(...)")
	if !ok {
		return nil, false
	}
	return &ast.CallValue{Callee: callee, Args: args, Span: callee.Span.Cover(closing.Span)}, true
}

const messagesForm = "@messages(path [as Alias] [: custom(msg, query)] [, bind(P = T)])"

// parseMessagesSpec reads the body of @messages(...).
func (p *Parser) parseMessagesSpec() (*ast.MessagesSpec, bool) {
	first, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	spec := &ast.MessagesSpec{Path: []*ast.Ident{first}, Span: first.Span}
	for p.at(token.Dot) {
		p.advance()
		seg, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		spec.Path = append(spec.Path, seg)
		spec.Span = spec.Span.Cover(seg.Span)
	}
	if p.at(token.KwAs) {
		p.advance()
		alias, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		spec.Alias = alias
		spec.Span = spec.Span.Cover(alias.Span)
	}
	if p.at(token.Colon) {
		p.advance()
		call, ok := p.parseNamedCall("custom")
		if !ok {
			return nil, false
		}
		spec.Custom = call
		spec.Span = spec.Span.Cover(call.Span)
	}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		call, ok := p.parseNamedCall("bind")
		if !ok {
			return nil, false
		}
		for _, a := range call.Args {
			if a.Key == nil {
				p.report(diag.SynBadAttrShape, diag.SevError, a.Span,
					"bind(...) expects `Placeholder = Type` pairs; form is "+messagesForm)
				return nil, false
			}
		}
		spec.Binds = append(spec.Binds, call.Args...)
		spec.Span = spec.Span.Cover(call.Span)
	}
	return spec, true
}

func (p *Parser) parseNamedCall(name string) (*ast.CallValue, bool) {
	tok := p.lx.Peek()
	if tok.Kind != token.Ident || tok.Text != name {
		p.err(diag.SynBadAttrShape, "expected "+name+"(...) in "+messagesForm+", got "+describe(tok))
		return nil, false
	}
	p.advance()
	callee := &ast.TypeExpr{Kind: ast.TypePath, Path: []*ast.Ident{{Name: tok.Text, Span: tok.Span}}, Span: tok.Span}
	if !p.at(token.LParen) {
		p.err(diag.SynBadAttrShape, "expected '(' after "+name+"; form is "+messagesForm)
		return nil, false
	}
	return p.parseCallTail(callee)
}
