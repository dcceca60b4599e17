package order

import (
	"github.com/teranos/pxdgen/ir"
)

// Phase identifies a group of steps in a scope plan.
type Phase int

const (
	// PhaseOrdered is the single pass used when the scope needs no forward
	// declarations: every declaration in dependency order.
	PhaseOrdered Phase = iota
	// PhaseForward declares struct and union tags without bodies.
	PhaseForward
	// PhaseTypedefs emits every typedef.
	PhaseTypedefs
	// PhaseNameOnly emits enums, opaque structs, variables and constants.
	PhaseNameOnly
	// PhaseBodies emits struct and union bodies, sorted among themselves.
	PhaseBodies
	// PhaseFunctions emits free functions.
	PhaseFunctions
)

func (p Phase) String() string {
	switch p {
	case PhaseOrdered:
		return "ordered"
	case PhaseForward:
		return "forward"
	case PhaseTypedefs:
		return "typedefs"
	case PhaseNameOnly:
		return "name-only"
	case PhaseBodies:
		return "bodies"
	case PhaseFunctions:
		return "functions"
	default:
		return "unknown"
	}
}

// Step is one declaration to emit. Index is the position of Decl in the
// scope's declaration list.
type Step struct {
	Phase Phase
	Index int
	Decl  ir.Declaration
}

// ScopePlan is the emission order of one scope.
type ScopePlan struct {
	Steps []Step
	// Phased is true when the five-phase layout was used.
	Phased bool
	// Cycles holds the indices left over by the dependency sort.
	Cycles []int
	// ForwardRefs holds the indices of declarations that reference a struct
	// or union that would otherwise be declared after them (or themselves).
	ForwardRefs []int
	// InnerCycles holds struct bodies that could not be ordered among
	// themselves. Only malformed input (structs embedding each other by
	// value) produces entries; they are emitted in original order.
	InnerCycles []int
}

// Options adjusts planning for a particular target notation.
type Options struct {
	// External reports struct tags supplied by an external module. They get
	// neither a forward declaration nor a body in the phased layout and do
	// not count as forward references.
	External func(name string) bool
}

func (o Options) external(name string) bool {
	return name != "" && o.External != nil && o.External(name)
}

// Plan orders the declarations of one scope.
//
// The scope is emitted in plain dependency order unless the dependency sort
// leaves a cycle, or some declaration refers through a pointer to a struct
// that is not declared before it. Either case switches to five phases:
// forward declarations, typedefs, name-only declarations, struct bodies,
// functions.
func Plan(decls []ir.Declaration, opts Options) ScopePlan {
	g := BuildGraph(decls)
	sorted, cycles := TopoSort(g)

	plan := ScopePlan{Cycles: cycles}
	if len(cycles) == 0 {
		plan.ForwardRefs = forwardRefs(g, sorted, opts)
	}

	if len(cycles) == 0 && len(plan.ForwardRefs) == 0 {
		for _, i := range sorted {
			plan.Steps = append(plan.Steps, Step{Phase: PhaseOrdered, Index: i, Decl: decls[i]})
		}
		return plan
	}

	plan.Phased = true
	plan.Steps, plan.InnerCycles = phasedSteps(g, decls, opts)
	return plan
}

// forwardRefs finds declarations whose pointer references point at
// themselves or at a struct emitted later in sorted.
func forwardRefs(g *Graph, sorted []int, opts Options) []int {
	pos := make([]int, len(sorted))
	for p, i := range sorted {
		pos[i] = p
	}
	var out []int
	for i := 0; i < g.Len(); i++ {
		for _, j := range g.Refs(i) {
			if opts.external(g.decls[j].DeclName()) {
				continue
			}
			if pos[j] >= pos[i] {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func phasedSteps(g *Graph, decls []ir.Declaration, opts Options) ([]Step, []int) {
	var steps []Step
	add := func(p Phase, i int) {
		steps = append(steps, Step{Phase: p, Index: i, Decl: decls[i]})
	}

	// typedefNames holds names re-declared by a typedef that emits something;
	// aliased holds every name some typedef refers to.
	typedefNames := make(map[string]bool)
	aliased := make(map[string]bool)
	for _, d := range decls {
		td, ok := d.(*ir.Typedef)
		if !ok {
			continue
		}
		if td.Name != "" && !IsSelfAlias(td) {
			typedefNames[td.Name] = true
		}
		for _, name := range ReferencedNames(td.UnderlyingType) {
			aliased[name] = true
		}
	}

	// Opaque tags named by a typedef are declared up front with the forward
	// declarations, since phase 2 refers to them.
	earlyOpaque := make(map[int]bool)
	var bodies []int
	for i, d := range decls {
		s, ok := d.(*ir.Struct)
		if !ok || opts.external(s.Name) {
			continue
		}
		switch {
		case s.HasBody():
			bodies = append(bodies, i)
			if !s.IsTypedef {
				add(PhaseForward, i)
			}
		case aliased[s.Name] && !typedefNames[s.Name]:
			earlyOpaque[i] = true
			add(PhaseForward, i)
		}
	}

	for i, d := range decls {
		if _, ok := d.(*ir.Typedef); ok {
			add(PhaseTypedefs, i)
		}
	}

	for i, d := range decls {
		switch d := d.(type) {
		case *ir.Struct:
			if d.HasBody() || typedefNames[d.Name] || earlyOpaque[i] {
				continue
			}
			add(PhaseNameOnly, i)
		case *ir.Enum, *ir.Variable, *ir.Constant:
			add(PhaseNameOnly, i)
		case *ir.Typedef, *ir.Function:
		}
	}

	inner := g.Restrict(bodies)
	bodyOrder, innerCycles := TopoSort(inner)
	for _, k := range bodyOrder {
		add(PhaseBodies, bodies[k])
	}
	var leftover []int
	for _, k := range innerCycles {
		leftover = append(leftover, bodies[k])
	}

	for i, d := range decls {
		if _, ok := d.(*ir.Function); ok {
			add(PhaseFunctions, i)
		}
	}
	return steps, leftover
}
