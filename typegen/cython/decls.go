package cython

import (
	"fmt"
	"slices"
	"strings"

	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen/order"
	"github.com/teranos/pxdgen/typegen/util"
)

const indent = "    "

// operatorAliases gives Cython-callable names to C++ operators Cython
// cannot declare under their own spelling.
var operatorAliases = map[string]string{
	"operator->": "deref",
	"operator()": "call",
}

var unsupportedOperators = map[string]bool{
	"operator,": true,
}

// declaration renders d as unindented lines. A declaration Cython cannot
// express at all renders as no lines.
func (r resolver) declaration(d ir.Declaration) []string {
	switch d := d.(type) {
	case *ir.Struct:
		return r.structDecl(d)
	case *ir.Enum:
		return r.enumDecl(d)
	case *ir.Function:
		return r.function(d)
	case *ir.Typedef:
		return r.typedef(d)
	case *ir.Variable:
		return r.variable(d)
	case *ir.Constant:
		return r.constant(d)
	default:
		return nil
	}
}

// forwardDecl renders the name-only form of a struct. Opaque structs already
// are name-only and keep their full rendering.
func (r resolver) forwardDecl(s *ir.Struct) []string {
	if !s.HasBody() {
		return r.structDecl(s)
	}
	return []string{"cdef " + structKind(s) + " " + escapeName(s.Name, false)}
}

func structKind(s *ir.Struct) string {
	switch {
	case s.IsCppClass:
		return "cppclass"
	case s.IsUnion:
		return "union"
	default:
		return "struct"
	}
}

func (r resolver) structDecl(s *ir.Struct) []string {
	r = r.withStruct(s)

	var lines []string
	for _, note := range s.Notes {
		lines = append(lines, "# "+note)
	}
	if s.IsPacked {
		lines = append(lines, "# NOTE: packed struct (Cython does not support __attribute__((packed)))")
	}

	name := escapeName(s.Name, true)
	if len(s.TemplateParams) > 0 {
		name += "[" + strings.Join(s.TemplateParams, ", ") + "]"
	}
	if s.CppName != "" && s.CppName != s.Name {
		name += ` "` + s.CppName + `"`
	}
	keyword := "cdef"
	if s.IsTypedef {
		keyword = "ctypedef"
	}
	head := keyword + " " + structKind(s) + " " + name

	if !s.HasBody() {
		return append(lines, head)
	}
	lines = append(lines, head+":")

	for _, f := range s.Fields {
		if line, ok := r.field(f); ok {
			lines = append(lines, indent+line)
		}
	}
	for _, m := range s.Methods {
		lines = append(lines, r.method(m)...)
	}
	return lines
}

// field renders one struct member. Members of anonymous record types and
// members embedding a struct that never gets a body are dropped.
func (r resolver) field(f ir.Field) (string, bool) {
	if ct, ok := f.Type.(*ir.CType); ok && util.IsAnonymous(ct.Name) {
		return "", false
	}
	if r.isIncompleteValue(f.Type) {
		return "", false
	}

	name := escapeName(f.Name, true)
	bits := ""
	if f.BitWidth > 0 {
		bits = fmt.Sprintf("  # bitfield: %d bits", f.BitWidth)
	}

	if fp := functionPointer(f.Type); fp != nil {
		if returnsFunctionPointer(fp) {
			return "void* " + name + bits, true
		}
		return r.funcPtr(fp, name) + bits, true
	}
	return r.declarator(f.Type, name) + bits, true
}

func (r resolver) isIncompleteValue(t ir.TypeExpr) bool {
	if arr, ok := t.(*ir.Array); ok {
		return r.isIncompleteValue(arr.Element)
	}
	ct, ok := t.(*ir.CType)
	if !ok {
		return false
	}
	name := strings.TrimPrefix(ct.Name, "struct ")
	return r.known.incomplete[name] || r.undeclaredStructs[name]
}

func (r resolver) method(m *ir.Function) []string {
	if unsupportedOperators[m.Name] {
		return nil
	}
	if ct, ok := m.ReturnType.(*ir.CType); ok && r.unsupportedInner[ct.Name] {
		spelled := r.innerTypedefs[ct.Name]
		return []string{
			fmt.Sprintf("%s# UNSUPPORTED: %s() returns C++ inner type '%s' (%s)", indent, m.Name, ct.Name, spelled),
			indent + "# Cython cannot represent nested template types. Use the C++ API directly if needed.",
		}
	}
	if alias, ok := operatorAliases[m.Name]; ok {
		return []string{fmt.Sprintf(`%s%s %s "%s"(%s)`, indent,
			r.typeString(m.ReturnType), alias, m.Name, r.params(m.Parameters, m.IsVariadic))}
	}
	var lines []string
	for _, l := range r.function(m) {
		lines = append(lines, indent+l)
	}
	return lines
}

func (r resolver) enumDecl(e *ir.Enum) []string {
	if util.IsAnonymous(e.Name) {
		return nil
	}
	keyword := "cdef"
	if e.IsTypedef {
		keyword = "ctypedef"
	}
	head := keyword + " enum:"
	if e.Name != "" {
		head = keyword + " enum " + escapeName(e.Name, true) + ":"
	}
	lines := []string{head}
	if len(e.Values) == 0 {
		return append(lines, indent+"pass")
	}
	for _, v := range e.Values {
		lines = append(lines, indent+escapeName(v.Name, true))
	}
	return lines
}

func (r resolver) function(f *ir.Function) []string {
	line := r.typeString(f.ReturnType) + " " + escapeName(f.Name, true) +
		"(" + r.params(f.Parameters, f.IsVariadic) + ")"
	if f.CallingConvention != "" {
		line += "  # calling convention: __" + f.CallingConvention + "__"
	}
	return []string{line}
}

func (r resolver) typedef(td *ir.Typedef) []string {
	name := escapeName(td.Name, true)

	if fp := functionPointer(td.UnderlyingType); fp != nil {
		ret := "void*"
		if !returnsFunctionPointer(fp) {
			ret = r.typeString(fp.ReturnType)
		}
		return []string{"ctypedef " + ret + " (*" + name + ")(" + r.params(fp.Parameters, fp.IsVariadic) + ")"}
	}

	if order.IsSelfAlias(td) {
		return nil
	}
	underlying := r.typeString(td.UnderlyingType)
	if underlying == name {
		return nil
	}
	if arr, ok := td.UnderlyingType.(*ir.Array); ok {
		name += arrayDims(arr)
	}
	return []string{"ctypedef " + underlying + " " + name}
}

func (r resolver) variable(v *ir.Variable) []string {
	name := escapeName(v.Name, true)
	if fp := functionPointer(v.Type); fp != nil {
		return []string{r.funcPtr(fp, name)}
	}
	return []string{r.declarator(v.Type, name)}
}

func (r resolver) constant(c *ir.Constant) []string {
	name := escapeName(c.Name, true)
	if c.Type == nil {
		return []string{"int " + name}
	}
	if c.Type.Name == "char" && slices.Contains(c.Type.Qualifiers, "const") {
		return []string{"const char* " + name}
	}
	return []string{r.ctype(c.Type) + " " + name}
}
