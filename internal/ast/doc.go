// Package ast holds the syntax tree of a .wv file.
//
// Nodes are plain pointer structs: a file is parsed once and lowered once per
// run. Every node keeps the span it was parsed from so sema can pin
// diagnostics exactly (pattern parameters, attribute arguments, aliases).
package ast
