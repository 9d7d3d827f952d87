// Package token defines lexical token kinds and trivia for .wv declaration files.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - Attributes are lexed as '@' (Kind: At) + Ident; attribute names are not keywords.
//   - Doc comments (/// ...) are leading Trivia (TriviaDocLine) and never appear
//     in the main token stream.
//   - Builtin type names (u32, string, Vec, Response, ...) are identifiers.
//     They are recognized by sema, not by the lexer.
package token
