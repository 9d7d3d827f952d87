package parser

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/fix"
	"weave/internal/source"
	"weave/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan: лучший span для диагностики: на EOF указываем сразу после
// последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return p.lastSpan.EndPoint()
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	var fixes []diag.Fix
	if k == token.Semicolon && p.lastSpan.End > 0 {
		// вставляем ';' сразу после последнего токена
		fixes = append(fixes, fix.InsertText("insert ';'", p.lastSpan.EndPoint(), ";"))
	}
	p.reportFix(code, diag.SevError, sp, msg+", got "+describe(p.lx.Peek()), fixes)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	return p.reportFix(code, sev, sp, msg, nil)
}

func (p *Parser) reportFix(code diag.Code, sev diag.Severity, sp source.Span, msg string, fixes []diag.Fix) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
		if p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
			return false // достигли лимита
		}
	}
	if p.opts.Reporter == nil {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, fixes)
	return true
}

// parseIdent ожидает Ident. На ошибке SynExpectIdentifier.
func (p *Parser) parseIdent() (*ast.Ident, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return &ast.Ident{Name: tok.Text, Span: tok.Span}, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.lx.Peek()))
	return nil, false
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier '" + tok.Text + "'"
	case token.Invalid:
		return "invalid token"
	}
	return "'" + tok.Text + "'"
}
