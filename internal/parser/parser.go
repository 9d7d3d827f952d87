package parser

import (
	"slices"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   *ast.File
	Errors uint
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена
}

// ParseFile parses one .wv file. It never stops at the first error: broken
// declarations are skipped and parsing resumes at the next top-level item.
func ParseFile(file *source.File, lx *lexer.Lexer, opts Options) Result {
	p := Parser{
		lx:       lx,
		file:     file,
		opts:     opts,
		lastSpan: source.Span{File: file.ID},
	}
	f := p.parseFile()
	return Result{File: f, Errors: p.opts.CurrentErrors}
}

// ParseSource is a convenience wrapper that builds the lexer itself.
func ParseSource(fs *source.FileSet, id source.FileID, opts Options) Result {
	file := fs.Get(id)
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	return ParseFile(file, lx, opts)
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{Source: p.file.ID}
	start := p.lx.Peek().Span
	sawDecl := false

	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.KwPackage:
			pkgTok := p.lx.Peek()
			pkg, ok := p.parsePackage()
			if !ok {
				p.resyncTop()
				continue
			}
			if f.Package != nil || sawDecl || len(f.Imports) > 0 {
				p.report(diag.SynPackagePosition, diag.SevError, pkgTok.Span,
					"the package clause must be the first item in the file and appear once")
				continue
			}
			f.Package = pkg
		case token.KwImport:
			sawDecl = true
			if im, ok := p.parseImport(); ok {
				f.Imports = append(f.Imports, im)
			} else {
				p.resyncTop()
			}
		default:
			sawDecl = true
			if decl, ok := p.parseDecl(); ok {
				f.Decls = append(f.Decls, decl)
			} else {
				p.resyncTop()
			}
		}
	}
	f.Span = start.Cover(p.lastSpan)
	return f
}

// package name;
func (p *Parser) parsePackage() (*ast.Ident, bool) {
	p.advance()
	name, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after package name"); !ok {
		return nil, false
	}
	return name, true
}

// import "path.wv" [as alias];
func (p *Parser) parseImport() (*ast.Import, bool) {
	kw := p.advance()
	pathTok, ok := p.expect(token.StringLit, diag.SynUnexpectedToken, `expected import path string, e.g. import "cw1.wv";`)
	if !ok {
		return nil, false
	}
	im := &ast.Import{Path: lexer.Unquote(pathTok.Text), PathSpan: pathTok.Span}
	if p.at(token.KwAs) {
		p.advance()
		alias, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		im.Alias = alias
	}
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after import")
	if !ok {
		return nil, false
	}
	im.Span = kw.Span.Cover(semi.Span)
	return im, true
}

// parseDecl: { attribute } ( interface | contract | struct | extern ).
func (p *Parser) parseDecl() (ast.Decl, bool) {
	first := p.lx.Peek()
	doc := first.Doc()
	attrs, ok := p.parseAttrs()
	if !ok {
		return nil, false
	}
	switch p.lx.Peek().Kind {
	case token.KwInterface:
		return p.parseInterface(doc, attrs, first.Span)
	case token.KwContract:
		return p.parseContract(doc, attrs, first.Span)
	case token.KwStruct:
		return p.parseStruct(doc, attrs, first.Span)
	case token.KwExtern:
		return p.parseExtern(doc, attrs, first.Span)
	default:
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.getDiagnosticSpan(),
			"expected interface, contract, struct or extern declaration, got "+describe(p.lx.Peek()))
		return nil, false
	}
}

// resyncTop: восстановление после ошибки на верхнем уровне: прокручиваем до
// стартового токена следующего item, пропуская сбалансированные {}.
func (p *Parser) resyncTop() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth > 0 {
				depth--
				p.advance()
				if depth == 0 && p.at(token.Semicolon) {
					p.advance()
				}
				if depth == 0 {
					return
				}
				continue
			}
		case token.KwInterface, token.KwContract, token.KwStruct, token.KwExtern, token.KwImport, token.KwPackage, token.At:
			if depth == 0 {
				return
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// resyncMember skips to the end of the current member: past ';', or up to '}' / next member start.
func (p *Parser) resyncMember() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.lx.Peek().Kind {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.RBrace:
			if depth == 0 {
				return
			}
		case token.KwFn, token.KwType:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// recoverMember resyncs after a failed member and guarantees progress.
func (p *Parser) recoverMember(before source.Span) {
	p.resyncMember()
	if p.lx.Peek().Span == before && !p.at(token.EOF) {
		p.advance()
		p.resyncMember()
	}
}
