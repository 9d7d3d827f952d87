package parser

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/token"
)

// interface Name { type A; type Error = T; fn ...; }
func (p *Parser) parseInterface(doc []string, attrs []*ast.Attr, start source.Span) (ast.Decl, bool) {
	p.advance() // interface
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	decl := &ast.InterfaceDecl{Doc: doc, Attrs: attrs, Name: name}
	if p.at(token.Lt) {
		p.err(diag.SynUnexpectedToken, "interfaces take no generic parameters; declare placeholders as `type Name;` inside the body")
		return nil, false
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open interface body"); !ok {
		return nil, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		if p.at(token.KwType) {
			before := p.lx.Peek().Span
			if assoc, ok := p.parseAssoc(); ok {
				decl.Assocs = append(decl.Assocs, assoc)
			} else {
				p.recoverMember(before)
			}
			continue
		}
		before := p.lx.Peek().Span
		if fn, ok := p.parseFn(); ok {
			decl.Methods = append(decl.Methods, fn)
		} else {
			p.recoverMember(before)
		}
	}
	closing, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close interface body")
	if !ok {
		return nil, false
	}
	decl.Span = start.Cover(closing.Span)
	return decl, true
}

// type Name [= T];
func (p *Parser) parseAssoc() (*ast.AssocType, bool) {
	kw := p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	assoc := &ast.AssocType{Name: name}
	if p.at(token.Assign) {
		p.advance()
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		assoc.Default = ty
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after associated type")
	if !ok {
		return nil, false
	}
	assoc.Span = kw.Span.Cover(semi.Span)
	return assoc, true
}

// contract Name<T: bound> where T: bound { fn ...; }
func (p *Parser) parseContract(doc []string, attrs []*ast.Attr, start source.Span) (ast.Decl, bool) {
	p.advance() // contract
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	decl := &ast.ContractDecl{Doc: doc, Attrs: attrs, Name: name}
	if p.at(token.Lt) {
		gens, ok := p.parseGenericParams()
		if !ok {
			return nil, false
		}
		decl.Generics = gens
	}
	if p.at(token.KwWhere) {
		preds, ok := p.parseWhere()
		if !ok {
			return nil, false
		}
		decl.Where = preds
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open contract body"); !ok {
		return nil, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		if p.at(token.KwType) {
			p.err(diag.SynUnexpectedToken, "associated types are only allowed in interfaces")
			p.advance()
			p.resyncMember()
			continue
		}
		before := p.lx.Peek().Span
		if fn, ok := p.parseFn(); ok {
			decl.Methods = append(decl.Methods, fn)
		} else {
			p.recoverMember(before)
		}
	}
	closing, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close contract body")
	if !ok {
		return nil, false
	}
	decl.Span = start.Cover(closing.Span)
	return decl, true
}

// <A, B: bound>
func (p *Parser) parseGenericParams() ([]*ast.GenericParam, bool) {
	p.advance() // <
	var out []*ast.GenericParam
	for {
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		gp := &ast.GenericParam{Name: name, Span: name.Span}
		if p.at(token.Colon) {
			p.advance()
			bound, ok := p.parseIdent()
			if !ok {
				return nil, false
			}
			gp.Bound = bound
			gp.Span = gp.Span.Cover(bound.Span)
		}
		out = append(out, gp)
		if p.at(token.Comma) {
			p.advance()
			if p.at(token.Gt) {
				break // trailing comma
			}
			continue
		}
		break
	}
	if _, ok := p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' to close generic parameters"); !ok {
		return nil, false
	}
	return out, true
}

// where A: bound, B: bound
func (p *Parser) parseWhere() ([]*ast.WherePred, bool) {
	p.advance() // where
	var out []*ast.WherePred
	for {
		name, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in where clause (form: `where T: bound`)"); !ok {
			return nil, false
		}
		bound, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		out = append(out, &ast.WherePred{Name: name, Bound: bound, Span: name.Span.Cover(bound.Span)})
		if !p.at(token.Comma) {
			return out, true
		}
		p.advance()
	}
}

// struct Name<T> { [attrs] field: T; }
func (p *Parser) parseStruct(doc []string, attrs []*ast.Attr, start source.Span) (ast.Decl, bool) {
	p.advance() // struct
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	decl := &ast.StructDecl{Doc: doc, Attrs: attrs, Name: name}
	if p.at(token.Lt) {
		gens, ok := p.parseGenericParams()
		if !ok {
			return nil, false
		}
		decl.Generics = gens
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open struct body"); !ok {
		return nil, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		before := p.lx.Peek().Span
		if field, ok := p.parseField(); ok {
			decl.Fields = append(decl.Fields, field)
		} else {
			p.recoverMember(before)
		}
	}
	closing, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close struct body")
	if !ok {
		return nil, false
	}
	decl.Span = start.Cover(closing.Span)
	return decl, true
}

func (p *Parser) parseField() (*ast.Field, bool) {
	first := p.lx.Peek()
	attrs, ok := p.parseAttrs()
	if !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after field name"); !ok {
		return nil, false
	}
	ty, ok := p.parseType()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after struct field")
	if !ok {
		return nil, false
	}
	return &ast.Field{Doc: first.Doc(), Attrs: attrs, Name: name, Type: ty, Span: first.Span.Cover(semi.Span)}, true
}

// extern type Name = "go/import/path".GoName;
func (p *Parser) parseExtern(doc []string, attrs []*ast.Attr, start source.Span) (ast.Decl, bool) {
	p.advance() // extern
	if _, ok := p.expect(token.KwType, diag.SynUnexpectedToken, "expected 'type' after 'extern'"); !ok {
		return nil, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, `expected '=' (form: extern type Name = "import/path".Ident;)`); !ok {
		return nil, false
	}
	pathTok, ok := p.expect(token.StringLit, diag.SynUnexpectedToken, "expected Go import path string")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Dot, diag.SynUnexpectedToken, "expected '.' between import path and Go type name"); !ok {
		return nil, false
	}
	goName, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after extern declaration")
	if !ok {
		return nil, false
	}
	path := lexer.Unquote(pathTok.Text)
	if path == "" {
		p.report(diag.SynBadStringLit, diag.SevError, pathTok.Span, "extern import path must not be empty")
		return nil, false
	}
	return &ast.ExternDecl{
		Doc:      doc,
		Attrs:    attrs,
		Name:     name,
		GoPath:   path,
		GoName:   goName,
		PathSpan: pathTok.Span,
		Span:     start.Cover(semi.Span),
	}, true
}
