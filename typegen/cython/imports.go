package cython

import (
	"sort"
	"strings"

	"github.com/teranos/pxdgen/ir"
	"github.com/teranos/pxdgen/typegen/util"
)

// Imports is everything a header needs from outside the generated file.
type Imports struct {
	// Libc, Libcpp and Stub map a module to the sorted names taken from it.
	// Stub modules are relative to the configured stub prefix.
	Libc   map[string][]string
	Libcpp map[string][]string
	Stub   map[string][]string
	// UndeclaredStructs and UndeclaredUnions are tags used as "struct X" or
	// "union X" that no declaration in the header provides.
	UndeclaredStructs []string
	UndeclaredUnions  []string
}

// Lines renders the cimport block: libc and posix modules, then libcpp, then
// stub modules (only when stubPrefix is set). Modules and names are sorted.
func (im Imports) Lines(stubPrefix string) []string {
	var lines []string
	for _, m := range sortedModules(im.Libc) {
		lines = append(lines, "from "+m+" cimport "+strings.Join(im.Libc[m], ", "))
	}
	for _, m := range sortedModules(im.Libcpp) {
		lines = append(lines, "from "+m+" cimport "+strings.Join(im.Libcpp[m], ", "))
	}
	if stubPrefix != "" {
		for _, m := range sortedModules(im.Stub) {
			lines = append(lines, "from "+stubPrefix+"."+m+" cimport "+strings.Join(im.Stub[m], ", "))
		}
	}
	return lines
}

// HasUndeclared reports whether any bare forward declarations are needed.
func (im Imports) HasUndeclared() bool {
	return len(im.UndeclaredStructs) > 0 || len(im.UndeclaredUnions) > 0
}

// CollectImports walks every type used by h and resolves it against the
// libc, libcpp and stub tables.
func CollectImports(h *ir.Header) Imports {
	c := &collector{
		known:             collectKnown(h),
		libc:              make(map[string]map[string]bool),
		libcpp:            make(map[string]map[string]bool),
		stub:              make(map[string]map[string]bool),
		undeclaredStructs: make(map[string]bool),
		undeclaredUnions:  make(map[string]bool),
	}
	for _, d := range h.Declarations {
		c.declaration(d)
	}
	return Imports{
		Libc:              flatten(c.libc),
		Libcpp:            flatten(c.libcpp),
		Stub:              flatten(c.stub),
		UndeclaredStructs: sortedSet(c.undeclaredStructs),
		UndeclaredUnions:  sortedSet(c.undeclaredUnions),
	}
}

// known holds the tag names the header itself declares.
type known struct {
	structs map[string]bool // structs and typedef names
	unions  map[string]bool
	enums   map[string]bool
	// incomplete holds struct names that are only ever declared without a body.
	incomplete map[string]bool
}

func collectKnown(h *ir.Header) known {
	k := known{
		structs:    make(map[string]bool),
		unions:     make(map[string]bool),
		enums:      make(map[string]bool),
		incomplete: make(map[string]bool),
	}
	complete := make(map[string]bool)
	for _, d := range h.Declarations {
		switch d := d.(type) {
		case *ir.Struct:
			if d.Name == "" {
				continue
			}
			if d.IsUnion {
				k.unions[d.Name] = true
			} else {
				k.structs[d.Name] = true
			}
			if d.HasBody() {
				complete[d.Name] = true
			} else {
				k.incomplete[d.Name] = true
			}
		case *ir.Enum:
			if d.Name != "" {
				k.enums[d.Name] = true
			}
		case *ir.Typedef:
			if d.Name != "" {
				k.structs[d.Name] = true
			}
		case *ir.Function, *ir.Variable, *ir.Constant:
		}
	}
	for name := range complete {
		delete(k.incomplete, name)
	}
	return k
}

type collector struct {
	known             known
	libc              map[string]map[string]bool
	libcpp            map[string]map[string]bool
	stub              map[string]map[string]bool
	undeclaredStructs map[string]bool
	undeclaredUnions  map[string]bool
}

func (c *collector) declaration(d ir.Declaration) {
	switch d := d.(type) {
	case *ir.Function:
		c.signature(d)
	case *ir.Struct:
		for _, f := range d.Fields {
			c.typ(f.Type)
		}
		for _, m := range d.Methods {
			c.signature(m)
		}
	case *ir.Typedef:
		c.typ(d.UnderlyingType)
	case *ir.Variable:
		c.typ(d.Type)
	case *ir.Enum, *ir.Constant:
	}
}

func (c *collector) signature(f *ir.Function) {
	c.typ(f.ReturnType)
	for _, p := range f.Parameters {
		c.typ(p.Type)
	}
}

func (c *collector) typ(t ir.TypeExpr) {
	switch t := t.(type) {
	case *ir.CType:
		c.name(t.Name)
	case *ir.Pointer:
		c.typ(t.Pointee)
	case *ir.Array:
		c.typ(t.Element)
	case *ir.FunctionPointer:
		c.typ(t.ReturnType)
		for _, p := range t.Parameters {
			c.typ(p.Type)
		}
	}
}

func (c *collector) name(name string) {
	if name == "" {
		return
	}
	clean := name
	if util.TagPrefix(name) != "enum" {
		clean = util.StripTagPrefix(name)
	}
	stub := stubModule(clean)
	libc := libcTypes[clean]

	if stub == "" && libc == "" && !util.IsAnonymous(clean) {
		switch util.TagPrefix(name) {
		case "struct":
			if !c.known.structs[clean] {
				c.undeclaredStructs[clean] = true
			}
		case "union":
			if !c.known.unions[clean] {
				c.undeclaredUnions[clean] = true
			}
		}
	}

	if libc != "" {
		add(c.libc, libc, clean)
		return
	}

	cpp := util.StripStd(clean)
	base := util.TemplateBase(cpp)
	if m := libcppTypes[base]; m != "" {
		add(c.libcpp, m, base)
	}
	if strings.Contains(cpp, "<") {
		for _, arg := range util.SplitTemplateArgs(cpp) {
			c.name(arg)
		}
		return
	}
	if stub != "" {
		add(c.stub, stub, clean)
	}
}

func add(m map[string]map[string]bool, module, name string) {
	if m[module] == nil {
		m[module] = make(map[string]bool)
	}
	m[module][name] = true
}

func flatten(m map[string]map[string]bool) map[string][]string {
	out := make(map[string][]string, len(m))
	for module, names := range m {
		out[module] = sortedSet(names)
	}
	return out
}

func sortedSet(s map[string]bool) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedModules(m map[string][]string) []string {
	mods := make([]string, 0, len(m))
	for k := range m {
		mods = append(mods, k)
	}
	sort.Strings(mods)
	return mods
}
