// Package model holds the semantic model produced by sema and consumed by the
// emitters: declarations with their lowered method descriptors, per-kind
// unions with their generic usage, composites, reply tables and entry plans.
//
// Everything here is built fresh for one file and dropped after emission.
package model
