// Package diag defines the diagnostic model shared by all weave phases.
//
// Diagnostic is the central record: severity, a stable numeric Code, a short
// message, the primary source.Span and optional notes / fix suggestions.
// Producers (lexer, parser, sema) never format anything; they emit through a
// Reporter, usually via ReportBuilder:
//
//	diag.ReportError(r, diag.SemPatternParam, param.Span, "handler parameters must bind a single name").
//		WithNote(fn.Span, "in this method").
//		Emit()
//
// Codes are grouped by range:
//
//   - LEX1xxx lexical errors;
//   - SYN2xxx grammar errors (malformed attribute or declaration syntax);
//   - SEM3xxx structural errors (constructor, pattern params, duplicate and
//     colliding variants, context parameters, unknown names);
//   - CON4xxx constraint errors (unused constrained generics, overlapping reply
//     filters, ambiguous custom types, alias collisions);
//   - IO5xxx and PRJ6xxx tool-level problems.
//
// Rendering lives in internal/diagfmt. Bag keeps diagnostics per file and
// supports limit, sort and dedup; FormatGoldenDiagnostics gives a stable
// one-line-per-entry form for tests.
package diag
