package order

import (
	"sort"

	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen/util"
)

// Graph is the dependency graph of one scope. Deps(i) lists the declarations
// that must be emitted before declaration i. Refs(i) lists struct and union
// declarations that i mentions only through a pointer (or from a function
// signature); those never constrain the order but need at least a forward
// declaration before i.
type Graph struct {
	decls []ir.Declaration
	deps  [][]int
	refs  [][]int
}

// BuildGraph builds the dependency graph of decls. Names resolve only
// against decls, so declarations in other scopes never produce edges.
func BuildGraph(decls []ir.Declaration) *Graph {
	b := &builder{
		decls:   decls,
		index:   make(map[string][]int),
		deps:    make([]map[int]bool, len(decls)),
		refs:    make([]map[int]bool, len(decls)),
		aliases: make(map[string][]int),
	}
	b.indexNames()
	b.indexAliases()

	for i, d := range decls {
		switch d := d.(type) {
		case *ir.Typedef:
			for _, name := range ReferencedNames(d.UnderlyingType) {
				for _, j := range b.index[name] {
					b.addDep(i, j)
				}
			}
		case *ir.Struct:
			if d.Name == "" || util.IsAnonymous(d.Name) {
				continue
			}
			for _, f := range d.Fields {
				b.addFieldDeps(i, f.Type)
			}
			for _, m := range d.Methods {
				b.addSignatureDeps(i, m.ReturnType, m.Parameters)
			}
		case *ir.Function:
			b.addSignatureDeps(i, d.ReturnType, d.Parameters)
		case *ir.Variable:
			b.addFieldDeps(i, d.Type)
		case *ir.Enum, *ir.Constant:
			// No ordering constraints.
		}
	}

	g := &Graph{
		decls: decls,
		deps:  make([][]int, len(decls)),
		refs:  make([][]int, len(decls)),
	}
	for i := range decls {
		g.deps[i] = sortedKeys(b.deps[i])
		g.refs[i] = sortedKeys(b.refs[i])
	}
	return g
}

// Len returns the number of declarations in the graph.
func (g *Graph) Len() int { return len(g.decls) }

// Deps returns the sorted indices that must precede i.
func (g *Graph) Deps(i int) []int { return g.deps[i] }

// Refs returns the sorted indices of struct/union declarations that i
// references indirectly. i itself is included for self-referential structs.
func (g *Graph) Refs(i int) []int { return g.refs[i] }

// Restrict returns the subgraph induced by indices. Node k of the result
// corresponds to indices[k]; edges leaving the subset are dropped.
func (g *Graph) Restrict(indices []int) *Graph {
	local := make(map[int]int, len(indices))
	for k, i := range indices {
		local[i] = k
	}
	sub := &Graph{
		decls: make([]ir.Declaration, len(indices)),
		deps:  make([][]int, len(indices)),
		refs:  make([][]int, len(indices)),
	}
	for k, i := range indices {
		sub.decls[k] = g.decls[i]
		for _, j := range g.deps[i] {
			if lj, ok := local[j]; ok {
				sub.deps[k] = append(sub.deps[k], lj)
			}
		}
		for _, j := range g.refs[i] {
			if lj, ok := local[j]; ok {
				sub.refs[k] = append(sub.refs[k], lj)
			}
		}
		sort.Ints(sub.deps[k])
		sort.Ints(sub.refs[k])
	}
	return sub
}

type builder struct {
	decls []ir.Declaration
	// index maps a bare name to the structs, enums and typedefs declaring it.
	index map[string][]int
	deps  []map[int]bool
	refs  []map[int]bool
	// aliases maps a typedef name to the structs it names by value,
	// following typedef chains.
	aliases map[string][]int
}

func (b *builder) indexNames() {
	for i, d := range b.decls {
		switch d.(type) {
		case *ir.Struct, *ir.Enum, *ir.Typedef:
			name := d.DeclName()
			if name == "" || util.IsAnonymous(name) {
				continue
			}
			b.index[name] = append(b.index[name], i)
		}
	}
}

func (b *builder) indexAliases() {
	for _, d := range b.decls {
		td, ok := d.(*ir.Typedef)
		if !ok || td.Name == "" {
			continue
		}
		if _, done := b.aliases[td.Name]; done {
			continue
		}
		b.aliases[td.Name] = b.resolveAlias(td, map[string]bool{td.Name: true})
	}
}

// resolveAlias follows td through bare-name typedef chains to the structs it
// finally names. Pointer typedefs alias nothing by value.
func (b *builder) resolveAlias(td *ir.Typedef, visiting map[string]bool) []int {
	ct, ok := td.UnderlyingType.(*ir.CType)
	if !ok {
		return nil
	}
	target := util.StripTagPrefix(ct.Name)
	var out []int
	for _, j := range b.index[target] {
		switch d := b.decls[j].(type) {
		case *ir.Struct:
			out = append(out, j)
		case *ir.Typedef:
			if visiting[d.Name] {
				continue
			}
			visiting[d.Name] = true
			out = append(out, b.resolveAlias(d, visiting)...)
		}
	}
	return out
}

func (b *builder) addFieldDeps(i int, t ir.TypeExpr) {
	for _, name := range ReferencedNames(t) {
		byValue := IsValueUsage(t, name)
		for _, j := range b.index[name] {
			switch b.decls[j].(type) {
			case *ir.Typedef:
				b.addDep(i, j)
				if byValue {
					for _, s := range b.aliases[name] {
						b.addDep(i, s)
					}
				}
			case *ir.Struct:
				if byValue {
					b.addDep(i, j)
				} else {
					b.addRef(i, j)
				}
			case *ir.Enum:
				if byValue {
					b.addDep(i, j)
				}
			}
		}
	}
}

func (b *builder) addSignatureDeps(i int, ret ir.TypeExpr, params []ir.Parameter) {
	types := make([]ir.TypeExpr, 0, len(params)+1)
	if ret != nil {
		types = append(types, ret)
	}
	for _, p := range params {
		types = append(types, p.Type)
	}
	for _, t := range types {
		for _, name := range ReferencedNames(t) {
			for _, j := range b.index[name] {
				switch b.decls[j].(type) {
				case *ir.Typedef:
					b.addDep(i, j)
				case *ir.Struct:
					b.addRef(i, j)
				}
			}
		}
	}
}

func (b *builder) addDep(i, j int) {
	if i == j {
		return
	}
	if b.deps[i] == nil {
		b.deps[i] = make(map[int]bool)
	}
	b.deps[i][j] = true
}

func (b *builder) addRef(i, j int) {
	if b.refs[i] == nil {
		b.refs[i] = make(map[int]bool)
	}
	b.refs[i][j] = true
}

func sortedKeys(m map[int]bool) []int {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
