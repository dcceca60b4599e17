package order

import (
	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen/util"
)

// ReferencedNames returns the names mentioned by t, with struct/union/enum
// tags stripped, deduplicated in first-seen order. Pointers, arrays and
// function pointer signatures are unwrapped recursively.
func ReferencedNames(t ir.TypeExpr) []string {
	var names []string
	seen := make(map[string]bool)
	collectNames(t, func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}

func collectNames(t ir.TypeExpr, add func(string)) {
	switch t := t.(type) {
	case *ir.CType:
		if t.Name != "" {
			add(util.StripTagPrefix(t.Name))
		}
	case *ir.Pointer:
		collectNames(t.Pointee, add)
	case *ir.Array:
		collectNames(t.Element, add)
	case *ir.FunctionPointer:
		collectNames(t.ReturnType, add)
		for _, p := range t.Parameters {
			collectNames(p.Type, add)
		}
	}
}

// IsValueUsage reports whether t embeds name by value: t is the bare named
// type, or an array whose element is (recursively) the bare named type.
// Any pointer level, and any function pointer, makes the usage indirect.
func IsValueUsage(t ir.TypeExpr, name string) bool {
	switch t := t.(type) {
	case *ir.CType:
		return util.StripTagPrefix(t.Name) == name
	case *ir.Array:
		return IsValueUsage(t.Element, name)
	default:
		return false
	}
}

// IsSelfAlias reports whether td names itself, as in "typedef struct X X".
// Such typedefs declare nothing new.
func IsSelfAlias(td *ir.Typedef) bool {
	ct, ok := td.UnderlyingType.(*ir.CType)
	return ok && util.StripTagPrefix(ct.Name) == td.Name
}
