package cython

import (
	"regexp"
	"slices"
	"strings"

	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen/util"
)

// resolver carries everything type formatting needs to know about the
// header. It is built once per header and never mutated; struct rendering
// derives a copy with the struct's inner typedefs via withStruct.
type resolver struct {
	known             known
	undeclaredStructs map[string]bool
	undeclaredUnions  map[string]bool

	innerTypedefs    map[string]string
	unsupportedInner map[string]bool
}

func newResolver(h *ir.Header, im Imports) resolver {
	r := resolver{
		known:             collectKnown(h),
		undeclaredStructs: make(map[string]bool),
		undeclaredUnions:  make(map[string]bool),
	}
	for _, n := range im.UndeclaredStructs {
		r.undeclaredStructs[n] = true
	}
	for _, n := range im.UndeclaredUnions {
		r.undeclaredUnions[n] = true
	}
	return r
}

// withStruct returns a resolver that substitutes the inner typedefs of a
// C++ class. Inner typedefs naming an instantiation of a declared template
// cannot be expressed and are recorded as unsupported.
func (r resolver) withStruct(s *ir.Struct) resolver {
	r.innerTypedefs = nil
	r.unsupportedInner = nil
	if !s.IsCppClass || len(s.InnerTypedefs) == 0 {
		return r
	}
	r.innerTypedefs = s.InnerTypedefs
	r.unsupportedInner = make(map[string]bool)
	for name, spelled := range s.InnerTypedefs {
		if !strings.Contains(spelled, "<") || !strings.Contains(spelled, ">") {
			continue
		}
		if base := util.TemplateBase(spelled); base != "" && r.known.structs[base] {
			r.unsupportedInner[name] = true
		}
	}
	return r
}

var namespacePrefix = regexp.MustCompile(`\b\w+::`)

// typeString formats t without any declarator name. Array dimensions are
// not included; callers append them to the name with arrayDims.
func (r resolver) typeString(t ir.TypeExpr) string {
	switch t := t.(type) {
	case *ir.CType:
		return r.ctype(t)
	case *ir.Pointer:
		return r.pointer(t)
	case *ir.Array:
		return r.typeString(t.Element)
	case *ir.FunctionPointer:
		return r.funcPtr(t, "")
	default:
		return "void"
	}
}

func (r resolver) ctype(t *ir.CType) string {
	name := t.Name
	if mapped, ok := cToCython[name]; ok {
		name = mapped
	}

	for strings.Contains(name, "::") {
		stripped := namespacePrefix.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}

	if spelled, ok := r.innerTypedefs[name]; ok {
		name = spelled
	}

	for _, q := range unsupportedQualifiers {
		name = strings.ReplaceAll(name, q+" ", "")
		name = strings.TrimSuffix(name, " "+q)
		if strings.HasPrefix(name, q+"(") && strings.HasSuffix(name, ")") {
			name = name[len(q)+1 : len(name)-1]
		}
	}

	name = r.stripTag(name)

	if strings.Contains(name, "<") && strings.Contains(name, ">") {
		name = templateBrackets(name)
	}

	parts := strings.Fields(name)
	for i, p := range parts {
		parts[i] = escapeName(p, false)
	}
	name = strings.Join(parts, " ")

	var quals []string
	for _, q := range t.Qualifiers {
		if unsupportedQualifierSet[q] || slices.Contains(parts, q) {
			continue
		}
		quals = append(quals, q)
	}
	if len(quals) > 0 {
		return strings.Join(quals, " ") + " " + name
	}
	return name
}

// stripTag drops the struct/union/enum keyword when the tag is declared
// somewhere, so the bare Cython name can be used.
func (r resolver) stripTag(name string) string {
	bare := util.StripTagPrefix(name)
	switch util.TagPrefix(name) {
	case "struct":
		if r.known.structs[bare] || r.undeclaredStructs[bare] || IsStubType(bare) {
			return bare
		}
	case "union":
		if r.known.unions[bare] || r.undeclaredUnions[bare] || IsStubType(bare) {
			return bare
		}
	case "enum":
		if r.known.enums[bare] || !strings.Contains(bare, " ") {
			return bare
		}
	}
	return name
}

func (r resolver) pointer(p *ir.Pointer) string {
	var out string
	switch pointee := p.Pointee.(type) {
	case *ir.FunctionPointer:
		out = r.funcPtr(pointee, "")
	case *ir.Pointer:
		if fp, ok := pointee.Pointee.(*ir.FunctionPointer); ok {
			params := r.params(fp.Parameters, fp.IsVariadic)
			if params == "" {
				params = "void"
			}
			out = r.typeString(fp.ReturnType) + " (**)(" + params + ")"
		} else {
			out = r.typeString(pointee) + "*"
		}
	default:
		out = r.typeString(pointee) + "*"
	}
	for _, q := range p.Qualifiers {
		if !unsupportedQualifierSet[q] {
			out += " " + q
		}
	}
	return out
}

// funcPtr formats a function pointer declarator. An empty name yields the
// abstract form "ret (*)(params)".
func (r resolver) funcPtr(fp *ir.FunctionPointer, name string) string {
	return r.typeString(fp.ReturnType) + " (*" + name + ")(" + r.params(fp.Parameters, fp.IsVariadic) + ")"
}

func (r resolver) params(params []ir.Parameter, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		if p.Name == "" {
			parts = append(parts, r.typeString(p.Type))
			continue
		}
		parts = append(parts, r.declarator(p.Type, escapeName(p.Name, false)))
	}
	if variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// declarator formats "type name" for t, placing function pointer names
// inside the parentheses and array dimensions after the name.
func (r resolver) declarator(t ir.TypeExpr, name string) string {
	if fp := functionPointer(t); fp != nil {
		return r.funcPtr(fp, name)
	}
	if arr, ok := t.(*ir.Array); ok {
		return r.typeString(arr) + " " + name + arrayDims(arr)
	}
	return r.typeString(t) + " " + name
}

// functionPointer returns the signature of a function pointer or of a
// pointer to one, or nil.
func functionPointer(t ir.TypeExpr) *ir.FunctionPointer {
	switch t := t.(type) {
	case *ir.FunctionPointer:
		return t
	case *ir.Pointer:
		if fp, ok := t.Pointee.(*ir.FunctionPointer); ok {
			return fp
		}
	}
	return nil
}

// returnsFunctionPointer reports whether fp returns another function pointer,
// which Cython cannot spell.
func returnsFunctionPointer(fp *ir.FunctionPointer) bool {
	return functionPointer(fp.ReturnType) != nil
}

// arrayDims renders the dimensions of a possibly nested array: "[4][2]",
// "[]" for flexible arrays.
func arrayDims(a *ir.Array) string {
	var b strings.Builder
	var t ir.TypeExpr = a
	for {
		arr, ok := t.(*ir.Array)
		if !ok {
			break
		}
		b.WriteString("[" + arr.Size + "]")
		t = arr.Element
	}
	return b.String()
}

// templateBrackets rewrites C++ template brackets to Cython's: vector<int>
// becomes vector[int]. A '<' only opens a template after an identifier
// character or a closing bracket.
func templateBrackets(name string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '<' && (i == 0 || isIdentByte(name[i-1]) || name[i-1] == ']'):
			b.WriteByte('[')
			depth++
		case c == '>' && depth > 0:
			b.WriteByte(']')
			depth--
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// escapeName renames keywords with a trailing underscore. With cName the
// original spelling is kept as a Cython string alias: class_ "class".
func escapeName(name string, cName bool) string {
	if !keywords[name] {
		return name
	}
	if cName {
		return name + `_ "` + name + `"`
	}
	return name + "_"
}
