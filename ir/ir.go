// Package ir defines the header intermediate representation consumed by the
// generators: a parsed C/C++ header as an ordered list of declarations.
//
// Declaration and TypeExpr are closed sum types. Both interfaces carry an
// unexported marker method, so the only implementations are the ones in this
// package and a type switch over them is exhaustive.
//
// Values are treated as immutable once decoded; generators read them and never
// write back.
package ir

// TypeExpr is a type expression: *CType, *Pointer, *Array or *FunctionPointer.
type TypeExpr interface {
	typeExpr()
}

// CType is a named type such as "int", "struct Foo" or "std::vector<int>".
// Qualifiers apply to the named type itself (const, volatile, unsigned...).
type CType struct {
	Name       string
	Qualifiers []string
}

// Pointer is a pointer to Pointee. Qualifiers apply to the pointer level
// (a "char * const" pointer has Qualifiers ["const"]).
type Pointer struct {
	Pointee    TypeExpr
	Qualifiers []string
}

// Array is a fixed or flexible array. Size is empty for flexible arrays and
// holds either a decimal length or a macro name otherwise.
type Array struct {
	Element TypeExpr
	Size    string
}

// FunctionPointer is a function signature used as a type.
type FunctionPointer struct {
	ReturnType        TypeExpr
	Parameters        []Parameter
	IsVariadic        bool
	CallingConvention string
}

func (*CType) typeExpr()           {}
func (*Pointer) typeExpr()         {}
func (*Array) typeExpr()           {}
func (*FunctionPointer) typeExpr() {}

// Parameter is a function or function-pointer parameter. Name may be empty.
type Parameter struct {
	Name string
	Type TypeExpr
}

// Field is a struct or union member.
type Field struct {
	Name     string
	Type     TypeExpr
	BitWidth int // 0 when the field is not a bitfield
	// AnonymousStruct holds the body of an inline anonymous struct/union member.
	AnonymousStruct *Struct
}

// EnumValue is one enumerator. Value is nil when the producer could not
// evaluate the initializer.
type EnumValue struct {
	Name  string
	Value *int64
}

// SourceLocation points back into the parsed header.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// Declaration is a top-level declaration: *Struct, *Enum, *Function,
// *Typedef, *Variable or *Constant.
type Declaration interface {
	// DeclName returns the declared name, or "" for anonymous declarations.
	DeclName() string
	declaration()
}

// Struct covers C structs and unions and C++ classes.
type Struct struct {
	Name       string
	Fields     []Field
	Methods    []*Function
	IsUnion    bool
	IsCppClass bool
	// IsTypedef marks the "typedef struct X {...} X" form.
	IsTypedef      bool
	IsPacked       bool
	Namespace      string
	TemplateParams []string
	CppName        string
	Notes          []string
	// InnerTypedefs maps member typedef names to their resolved spelling.
	InnerTypedefs map[string]string
	Location      *SourceLocation
}

// HasBody reports whether the struct has any fields or methods.
func (s *Struct) HasBody() bool {
	return len(s.Fields) > 0 || len(s.Methods) > 0
}

type Enum struct {
	Name      string
	Values    []EnumValue
	IsTypedef bool
	Location  *SourceLocation
}

type Function struct {
	Name              string
	ReturnType        TypeExpr
	Parameters        []Parameter
	IsVariadic        bool
	CallingConvention string
	Namespace         string
	Location          *SourceLocation
}

type Typedef struct {
	Name           string
	UnderlyingType TypeExpr
	Location       *SourceLocation
}

type Variable struct {
	Name     string
	Type     TypeExpr
	Location *SourceLocation
}

// Constant is a #define or a const-qualified global. Value is a decoded
// scalar (int64, float64, string, bool) or nil.
type Constant struct {
	Name     string
	Value    any
	Type     *CType
	IsMacro  bool
	Location *SourceLocation
}

func (d *Struct) DeclName() string   { return d.Name }
func (d *Enum) DeclName() string     { return d.Name }
func (d *Function) DeclName() string { return d.Name }
func (d *Typedef) DeclName() string  { return d.Name }
func (d *Variable) DeclName() string { return d.Name }
func (d *Constant) DeclName() string { return d.Name }

func (*Struct) declaration()   {}
func (*Enum) declaration()     {}
func (*Function) declaration() {}
func (*Typedef) declaration()  {}
func (*Variable) declaration() {}
func (*Constant) declaration() {}

// Namespace returns the C++ namespace enclosing d, or "".
func Namespace(d Declaration) string {
	switch d := d.(type) {
	case *Struct:
		return d.Namespace
	case *Function:
		return d.Namespace
	default:
		return ""
	}
}

// Header is one parsed header file.
type Header struct {
	Path            string
	Declarations    []Declaration
	IncludedHeaders []string
	// IRVersion is the producer's format version, "" when not recorded.
	IRVersion string
}
