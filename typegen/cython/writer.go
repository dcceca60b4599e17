// Package cython renders a header IR as a Cython .pxd declaration file.
//
// Declarations are grouped by namespace into "cdef extern from" blocks and
// ordered so that every name is declared before use. Scopes whose structs
// refer to each other are emitted in five phases (forward declarations,
// typedefs, name-only declarations, struct bodies, functions); see
// typegen/order for the planning rules.
//
// Rendering never fails: declarations Cython cannot express are dropped
// from the output.
package cython

import (
	"strings"

	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen"
	"github.com/teranos/pxdgen/typegen/order"
)

// Options configures a Writer.
type Options struct {
	// StubCimportPrefix is the package holding .pxd stubs for types Cython
	// does not ship (va_list, socket and pthread types). Empty disables stub
	// cimports.
	StubCimportPrefix string
}

// Writer implements typegen.Generator for Cython.
type Writer struct {
	opts Options
}

// New creates a Cython writer.
func New(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Language returns "cython"
func (w *Writer) Language() string {
	return "cython"
}

// FileExtension returns "pxd"
func (w *Writer) FileExtension() string {
	return "pxd"
}

// Write renders h with default options.
func Write(h *ir.Header) string {
	return New(Options{}).Generate(h).Output
}

// Generate renders h and summarizes how each scope was ordered.
func (w *Writer) Generate(h *ir.Header) *typegen.Result {
	im := CollectImports(h)
	r := newResolver(h, im)

	var lines []string
	if imports := im.Lines(w.opts.StubCimportPrefix); len(imports) > 0 {
		lines = append(lines, imports...)
		lines = append(lines, "")
	}

	scopes := order.Partition(h.Declarations)
	if im.HasUndeclared() && scopes[0].Namespace != "" {
		scopes = append([]order.Scope{{}}, scopes...)
	}

	res := &typegen.Result{HeaderPath: h.Path}
	for _, sc := range scopes {
		plan := order.Plan(sc.Decls, order.Options{External: IsStubType})

		if sc.Namespace == "" {
			lines = append(lines, `cdef extern from "`+h.Path+`":`)
		} else {
			lines = append(lines, `cdef extern from "`+h.Path+`" namespace "`+sc.Namespace+`":`)
		}

		var forwards []string
		if sc.Namespace == "" {
			forwards = undeclaredForwards(im)
		}
		if len(forwards) > 0 {
			lines = append(lines, "")
			lines = append(lines, forwards...)
		}

		if plan.Phased {
			lines = r.phased(lines, plan)
		} else {
			lines = r.ordered(lines, plan, len(forwards) > 0)
		}
		res.Scopes = append(res.Scopes, summarize(sc, plan))
	}

	res.Output = strings.Join(lines, "\n")
	return res
}

func undeclaredForwards(im Imports) []string {
	var out []string
	for _, name := range im.UndeclaredStructs {
		out = append(out, indent+"cdef struct "+name)
	}
	for _, name := range im.UndeclaredUnions {
		out = append(out, indent+"cdef union "+name)
	}
	return out
}

// ordered appends an acyclic scope: a blank line, then each declaration
// followed by a blank line. A scope with nothing to say gets "pass" unless
// forward declarations already gave the block a body.
func (r resolver) ordered(lines []string, plan order.ScopePlan, hasForwards bool) []string {
	var body []string
	for _, step := range plan.Steps {
		body = appendDecl(body, r.declaration(step.Decl))
	}
	switch {
	case len(body) > 0:
		lines = append(lines, "")
		return append(lines, body...)
	case hasForwards:
		return append(lines, "")
	default:
		return append(lines, indent+"pass", "")
	}
}

// phased appends the five-phase layout. Non-empty phases are separated by
// one blank line; forward declarations are contiguous, every other
// declaration is followed by a blank line.
func (r resolver) phased(lines []string, plan order.ScopePlan) []string {
	groups := make(map[order.Phase][]string)
	for _, step := range plan.Steps {
		if step.Phase == order.PhaseForward {
			if s, ok := step.Decl.(*ir.Struct); ok {
				for _, l := range r.forwardDecl(s) {
					groups[step.Phase] = append(groups[step.Phase], indent+l)
				}
			}
			continue
		}
		groups[step.Phase] = appendDecl(groups[step.Phase], r.declaration(step.Decl))
	}

	start := len(lines)
	for _, p := range []order.Phase{
		order.PhaseForward,
		order.PhaseTypedefs,
		order.PhaseNameOnly,
		order.PhaseBodies,
		order.PhaseFunctions,
	} {
		if len(groups[p]) == 0 {
			continue
		}
		if lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, groups[p]...)
	}
	if len(lines) == start {
		lines = append(lines, indent+"pass", "")
	}
	return lines
}

func appendDecl(out, decl []string) []string {
	if len(decl) == 0 {
		return out
	}
	for _, l := range decl {
		if l == "" {
			out = append(out, "")
			continue
		}
		out = append(out, indent+l)
	}
	return append(out, "")
}

func summarize(sc order.Scope, plan order.ScopePlan) typegen.ScopeSummary {
	names := func(indices []int) []string {
		var out []string
		for _, i := range indices {
			out = append(out, sc.Decls[i].DeclName())
		}
		return out
	}
	return typegen.ScopeSummary{
		Namespace:    sc.Namespace,
		Declarations: len(sc.Decls),
		Phased:       plan.Phased,
		Cycles:       names(plan.Cycles),
		ForwardRefs:  names(plan.ForwardRefs),
		InnerCycles:  names(plan.InnerCycles),
	}
}
