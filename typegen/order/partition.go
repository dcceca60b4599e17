package order

import (
	"sort"

	"github.com/teranos/pxdgen/ir"
)

// Scope is the declarations of one namespace, in header order. Namespace is
// "" for the global scope.
type Scope struct {
	Namespace string
	Decls     []ir.Declaration
}

// Partition groups decls by namespace. The global scope comes first, then
// namespaces in lexicographic order. A header with no declarations yields a
// single empty global scope.
func Partition(decls []ir.Declaration) []Scope {
	byNamespace := make(map[string][]ir.Declaration)
	for _, d := range decls {
		ns := ir.Namespace(d)
		byNamespace[ns] = append(byNamespace[ns], d)
	}
	if len(byNamespace) == 0 {
		return []Scope{{}}
	}

	names := make([]string, 0, len(byNamespace))
	for ns := range byNamespace {
		names = append(names, ns)
	}
	// "" sorts first.
	sort.Strings(names)

	scopes := make([]Scope, 0, len(names))
	for _, ns := range names {
		scopes = append(scopes, Scope{Namespace: ns, Decls: byNamespace[ns]})
	}
	return scopes
}
