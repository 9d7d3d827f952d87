package lexer_test

import (
	"testing"

	"weave/internal/diag"
	"weave/internal/lexer"
	"weave/internal/source"
	"weave/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.wv", []byte(src))
	bag := diag.NewBag(0)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexMethodSignature(t *testing.T) {
	toks, bag := lexAll(t, `@query(resp = AdminListResponse) fn admin_list(ctx: QueryCtx) -> Vec<Vec<u32>>;`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Codes())
	}
	want := []token.Kind{
		token.At, token.Ident, token.LParen, token.Ident, token.Assign, token.Ident, token.RParen,
		token.KwFn, token.Ident, token.LParen, token.Ident, token.Colon, token.Ident, token.RParen,
		token.Arrow, token.Ident, token.Lt, token.Ident, token.Lt, token.Ident, token.Gt, token.Gt,
		token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[8].Text != "admin_list" {
		t.Fatalf("text is not a source slice: %q", toks[8].Text)
	}
}

func TestLexDocComments(t *testing.T) {
	toks, _ := lexAll(t, "// plain\n/// Counter contract.\n//// banner\ncontract Counter {}")
	doc := toks[0].Doc()
	if toks[0].Kind != token.KwContract || len(doc) != 1 || doc[0] != "Counter contract." {
		t.Fatalf("unexpected doc on %v: %q", toks[0].Kind, doc)
	}
}

func TestLexStringsAndUnquote(t *testing.T) {
	toks, bag := lexAll(t, `extern type Dec = "github.com/x/dec\"q".Dec;`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Codes())
	}
	var lit token.Token
	for _, tok := range toks {
		if tok.Kind == token.StringLit {
			lit = tok
		}
	}
	if got := lexer.Unquote(lit.Text); got != `github.com/x/dec"q` {
		t.Fatalf("unquote = %q", got)
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{`"open`, diag.LexUnterminatedString},
		{"/* never closed", diag.LexUnterminatedBlockComment},
		{"fn $x", diag.LexUnknownChar},
		{"12ab", diag.LexBadNumber},
		{`"\q"`, diag.LexBadEscape},
	}
	for _, tc := range cases {
		_, bag := lexAll(t, tc.src)
		codes := bag.Codes()
		if len(codes) != 1 || codes[0] != tc.code {
			t.Errorf("%q: got %v, want [%v]", tc.src, codes, tc.code)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	lx := lexer.New(fs.Get(fs.AddVirtual("p.wv", []byte("a b"))), lexer.Options{})
	if lx.Peek().Text != "a" || lx.Peek().Text != "a" || lx.Next().Text != "a" || lx.Next().Text != "b" {
		t.Fatalf("peek/next mismatch")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatalf("EOF must be sticky")
	}
}

func TestUnderscoreAndUnicode(t *testing.T) {
	toks, _ := lexAll(t, "_ _x счёт")
	got := kinds(toks)
	if got[0] != token.Underscore || got[1] != token.Ident || got[2] != token.Ident || toks[2].Text != "счёт" {
		t.Fatalf("unexpected tokens %v", got)
	}
}
