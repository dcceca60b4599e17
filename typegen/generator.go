// Package typegen turns a header IR into declaration files for a
// declare-before-use target notation.
//
// # Architecture
//
// The package uses a two-layer design:
//  1. Language-agnostic ordering (typegen/order) builds the dependency graph
//     of a scope and plans the emission order, falling back to a phased
//     layout when declarations refer to each other
//  2. Language-specific generators (typegen/cython) render the plan
//
// Output is deterministic for a given IR: the same header always renders to
// the same bytes, which is what check mode relies on.
package typegen

import "github.com/teranos/pxdgen/ir"

// Generator renders a header IR in one target notation.
type Generator interface {
	// Generate renders the whole header. It never fails for a structurally
	// valid header; declarations the notation cannot express are dropped.
	Generate(h *ir.Header) *Result

	// FileExtension returns the file extension for this notation (e.g., "pxd")
	FileExtension() string

	// Language returns the notation name (e.g., "cython")
	Language() string
}
