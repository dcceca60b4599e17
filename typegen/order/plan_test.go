package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/pxdgen/ir"
)

func TestTopoSort_SmallestIndexFirst(t *testing.T) {
	// 0 needs 2, 1 is free, 2 is free: ready set starts {1, 2}.
	decls := []ir.Declaration{
		&ir.Struct{Name: "A", Fields: []ir.Field{field("c", named("C"))}},
		&ir.Struct{Name: "B", Fields: []ir.Field{field("x", named("int"))}},
		&ir.Struct{Name: "C", Fields: []ir.Field{field("x", named("int"))}},
	}
	order, cycles := TopoSort(BuildGraph(decls))

	assert.Equal(t, []int{1, 2, 0}, order)
	assert.Empty(t, cycles)
}

func TestTopoSort_CyclesAppendedInOriginalOrder(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Typedef{Name: "b_t", UnderlyingType: named("a_t")},
		&ir.Enum{Name: "Free"},
		&ir.Typedef{Name: "a_t", UnderlyingType: named("b_t")},
	}
	order, cycles := TopoSort(BuildGraph(decls))

	assert.Equal(t, []int{0, 2}, cycles)
	assert.Equal(t, []int{1, 0, 2}, order)
}

func TestTopoSort_AcyclicCompleteness(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Function{Name: "f", ReturnType: named("t3"), Parameters: []ir.Parameter{{Type: named("t1")}}},
		&ir.Typedef{Name: "t3", UnderlyingType: named("S2")},
		&ir.Struct{Name: "S2", Fields: []ir.Field{field("a", named("S1")), field("m", named("Mode"))}},
		&ir.Typedef{Name: "t1", UnderlyingType: named("int")},
		&ir.Struct{Name: "S1", Fields: []ir.Field{field("x", named("t1"))}},
		&ir.Enum{Name: "Mode"},
	}
	g := BuildGraph(decls)
	order, cycles := TopoSort(g)
	require.Empty(t, cycles)
	require.Len(t, order, len(decls))

	pos := make(map[int]int)
	for p, i := range order {
		_, dup := pos[i]
		require.False(t, dup, "index %d visited twice", i)
		pos[i] = p
	}
	for i := range decls {
		for _, j := range g.Deps(i) {
			assert.Less(t, pos[j], pos[i], "%d must precede %d", j, i)
		}
	}
}

func TestPartition(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "W", Namespace: "ui"},
		&ir.Function{Name: "init"},
		&ir.Struct{Name: "V", Namespace: "core"},
		&ir.Struct{Name: "X", Namespace: "ui"},
		&ir.Enum{Name: "E"},
	}
	scopes := Partition(decls)

	require.Len(t, scopes, 3)
	assert.Equal(t, "", scopes[0].Namespace)
	assert.Equal(t, []ir.Declaration{decls[1], decls[4]}, scopes[0].Decls)
	assert.Equal(t, "core", scopes[1].Namespace)
	assert.Equal(t, "ui", scopes[2].Namespace)
	assert.Equal(t, []ir.Declaration{decls[0], decls[3]}, scopes[2].Decls)
}

func TestPartition_Empty(t *testing.T) {
	scopes := Partition(nil)
	require.Len(t, scopes, 1)
	assert.Equal(t, "", scopes[0].Namespace)
	assert.Empty(t, scopes[0].Decls)
}

func TestPartition_NamespacedOnly(t *testing.T) {
	scopes := Partition([]ir.Declaration{&ir.Function{Name: "f", Namespace: "ns"}})
	require.Len(t, scopes, 1)
	assert.Equal(t, "ns", scopes[0].Namespace)
}

func stepNames(steps []Step, phase Phase) []string {
	var names []string
	for _, s := range steps {
		if s.Phase == phase {
			names = append(names, s.Decl.DeclName())
		}
	}
	return names
}

func TestPlan_AcyclicStaysOrdered(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "Point", Fields: []ir.Field{field("x", named("int")), field("y", named("int"))}},
	}
	plan := Plan(decls, Options{})

	assert.False(t, plan.Phased)
	assert.Empty(t, plan.ForwardRefs)
	assert.Equal(t, []string{"Point"}, stepNames(plan.Steps, PhaseOrdered))
}

func TestPlan_SelfReferenceIsPhased(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "Node", Fields: []ir.Field{field("next", ptr(named("Node")))}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Empty(t, plan.Cycles)
	assert.Equal(t, []int{0}, plan.ForwardRefs)
	assert.Equal(t, []string{"Node"}, stepNames(plan.Steps, PhaseForward))
	assert.Equal(t, []string{"Node"}, stepNames(plan.Steps, PhaseBodies))
}

func TestPlan_MutualPointers(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "A", Fields: []ir.Field{field("b", ptr(named("B")))}},
		&ir.Struct{Name: "B", Fields: []ir.Field{field("a", ptr(named("A")))}},
		&ir.Function{Name: "link", ReturnType: named("void"), Parameters: []ir.Parameter{{Type: ptr(named("A"))}}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []string{"A", "B"}, stepNames(plan.Steps, PhaseForward))
	assert.Equal(t, []string{"A", "B"}, stepNames(plan.Steps, PhaseBodies))
	assert.Equal(t, []string{"link"}, stepNames(plan.Steps, PhaseFunctions))
	assert.Empty(t, plan.InnerCycles)

	for i := 1; i < len(plan.Steps); i++ {
		assert.LessOrEqual(t, int(plan.Steps[i-1].Phase), int(plan.Steps[i].Phase))
	}
}

func TestPlan_BackwardPointerNeedsNoPhases(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "Leaf", Fields: []ir.Field{field("v", named("int"))}},
		&ir.Struct{Name: "Tree", Fields: []ir.Field{field("leaf", ptr(named("Leaf")))}},
	}
	plan := Plan(decls, Options{})
	assert.False(t, plan.Phased)
}

func TestPlan_VariablePointerToLaterStruct(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Variable{Name: "g", Type: ptr(named("struct Later"))},
		&ir.Struct{Name: "Later", Fields: []ir.Field{field("x", named("int"))}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []int{0}, plan.ForwardRefs)
	assert.Equal(t, []string{"Later"}, stepNames(plan.Steps, PhaseForward))
	assert.Equal(t, []string{"g"}, stepNames(plan.Steps, PhaseNameOnly))
	assert.Equal(t, []string{"Later"}, stepNames(plan.Steps, PhaseBodies))
}

func TestPlan_VariableByValueFollowsStruct(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Variable{Name: "origin", Type: named("Point")},
		&ir.Struct{Name: "Point", Fields: []ir.Field{field("x", named("int"))}},
	}
	plan := Plan(decls, Options{})

	assert.False(t, plan.Phased)
	assert.Equal(t, []string{"Point", "origin"}, stepNames(plan.Steps, PhaseOrdered))
}

func TestPlan_TypedefPhaseKeepsIndexOrder(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Typedef{Name: "outer_t", UnderlyingType: named("inner_t")},
		&ir.Typedef{Name: "inner_t", UnderlyingType: named("int")},
		&ir.Struct{Name: "Node", Fields: []ir.Field{field("next", ptr(named("Node")))}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []string{"outer_t", "inner_t"}, stepNames(plan.Steps, PhaseTypedefs))
}

func TestPlan_TypedefCycle(t *testing.T) {
	// typedef struct Node* NodePtr; struct Node { NodePtr next; int v; };
	decls := []ir.Declaration{
		&ir.Typedef{Name: "NodePtr", UnderlyingType: ptr(named("struct Node"))},
		&ir.Struct{Name: "Node", Fields: []ir.Field{field("next", named("NodePtr")), field("v", named("int"))}},
		&ir.Function{Name: "head", ReturnType: named("NodePtr")},
		&ir.Enum{Name: "Kind"},
		&ir.Struct{Name: "Opaque"},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []int{0, 1, 2}, plan.Cycles)
	assert.Equal(t, []string{"Node"}, stepNames(plan.Steps, PhaseForward))
	assert.Equal(t, []string{"NodePtr"}, stepNames(plan.Steps, PhaseTypedefs))
	assert.Equal(t, []string{"Kind", "Opaque"}, stepNames(plan.Steps, PhaseNameOnly))
	assert.Equal(t, []string{"Node"}, stepNames(plan.Steps, PhaseBodies))
	assert.Equal(t, []string{"head"}, stepNames(plan.Steps, PhaseFunctions))
}

func TestPlan_OpaqueAliasDeclaredEarly(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "Impl"},
		&ir.Typedef{Name: "handle_t", UnderlyingType: ptr(named("struct Impl"))},
		&ir.Struct{Name: "Self", Fields: []ir.Field{field("s", ptr(named("Self")))}},
		&ir.Struct{Name: "Shadow"},
		&ir.Typedef{Name: "Shadow", UnderlyingType: named("int")},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []string{"Impl", "Self"}, stepNames(plan.Steps, PhaseForward))
	assert.Empty(t, stepNames(plan.Steps, PhaseNameOnly), "Impl already declared, Shadow covered by typedef")
}

func TestPlan_ExternalStructsSkipped(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "sockaddr", Fields: []ir.Field{field("sa_family", named("int"))}},
		&ir.Struct{Name: "Conn", Fields: []ir.Field{field("addr", ptr(named("sockaddr"))), field("self", ptr(named("Conn")))}},
	}
	plan := Plan(decls, Options{External: func(name string) bool { return name == "sockaddr" }})

	require.True(t, plan.Phased)
	assert.Equal(t, []string{"Conn"}, stepNames(plan.Steps, PhaseForward))
	assert.Equal(t, []string{"Conn"}, stepNames(plan.Steps, PhaseBodies))
}

func TestPlan_ValueCyclesNeverReachBodies(t *testing.T) {
	// Pointer-mediated recursion of every shape; none of it embeds by value.
	decls := []ir.Declaration{
		&ir.Struct{Name: "A", Fields: []ir.Field{field("b", ptr(named("struct B"))), field("c", named("C"))}},
		&ir.Struct{Name: "B", Fields: []ir.Field{field("a", ptr(named("A"))), field("self", ptr(named("B")))}},
		&ir.Struct{Name: "C", Fields: []ir.Field{field("a", ptr(named("A"))), field("cb", &ir.FunctionPointer{
			ReturnType: ptr(named("B")),
			Parameters: []ir.Parameter{{Type: named("A")}},
		})}},
		&ir.Typedef{Name: "a_ptr", UnderlyingType: ptr(named("A"))},
		&ir.Struct{Name: "D", Fields: []ir.Field{field("p", named("a_ptr")), field("arr", &ir.Array{Element: ptr(named("D")), Size: "2"})}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Empty(t, plan.InnerCycles)
	// C is embedded in A by value, so its body comes first.
	assert.Equal(t, []string{"B", "C", "A", "D"}, stepNames(plan.Steps, PhaseBodies))
}

func TestPlan_MalformedValueCycleStillEmits(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "A", Fields: []ir.Field{field("b", named("B"))}},
		&ir.Struct{Name: "B", Fields: []ir.Field{field("a", named("A"))}},
	}
	plan := Plan(decls, Options{})

	require.True(t, plan.Phased)
	assert.Equal(t, []int{0, 1}, plan.InnerCycles)
	assert.Equal(t, []string{"A", "B"}, stepNames(plan.Steps, PhaseBodies))
}

func TestPlan_Deterministic(t *testing.T) {
	decls := []ir.Declaration{
		&ir.Struct{Name: "A", Fields: []ir.Field{field("b", ptr(named("B")))}},
		&ir.Typedef{Name: "b_t", UnderlyingType: named("struct B")},
		&ir.Struct{Name: "B", Fields: []ir.Field{field("a", ptr(named("A"))), field("t", named("b_t"))}},
	}
	first := Plan(decls, Options{})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Plan(decls, Options{}))
	}
}
