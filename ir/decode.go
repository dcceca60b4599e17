package ir

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/pxdgen/errors"
)

// SupportedIRVersions is the range of envelope versions this decoder accepts.
const SupportedIRVersions = ">= 0.1.0, < 2.0.0"

// The raw* types mirror the serialized envelope. Both JSON and YAML decode
// into them; toHeader then builds the typed IR.

type rawHeader struct {
	Path            string    `json:"path" yaml:"path"`
	IRVersion       string    `json:"ir_version,omitempty" yaml:"ir_version,omitempty"`
	Declarations    []rawDecl `json:"declarations" yaml:"declarations"`
	IncludedHeaders []string  `json:"included_headers,omitempty" yaml:"included_headers,omitempty"`
}

type rawType struct {
	Kind              string     `json:"kind" yaml:"kind"`
	Name              string     `json:"name,omitempty" yaml:"name,omitempty"`
	Qualifiers        []string   `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty"`
	Pointee           *rawType   `json:"pointee,omitempty" yaml:"pointee,omitempty"`
	ElementType       *rawType   `json:"element_type,omitempty" yaml:"element_type,omitempty"`
	Size              any        `json:"size,omitempty" yaml:"size,omitempty"`
	ReturnType        *rawType   `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Parameters        []rawParam `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	IsVariadic        bool       `json:"is_variadic,omitempty" yaml:"is_variadic,omitempty"`
	CallingConvention string     `json:"calling_convention,omitempty" yaml:"calling_convention,omitempty"`
}

type rawParam struct {
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type *rawType `json:"type" yaml:"type"`
}

type rawField struct {
	Name            string   `json:"name" yaml:"name"`
	Type            *rawType `json:"type" yaml:"type"`
	BitWidth        int      `json:"bit_width,omitempty" yaml:"bit_width,omitempty"`
	AnonymousStruct *rawDecl `json:"anonymous_struct,omitempty" yaml:"anonymous_struct,omitempty"`
}

type rawEnumValue struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

type rawLocation struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

type rawDecl struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// struct / union
	Fields         []rawField        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods        []rawDecl         `json:"methods,omitempty" yaml:"methods,omitempty"`
	IsTypedef      bool              `json:"is_typedef,omitempty" yaml:"is_typedef,omitempty"`
	IsCppClass     bool              `json:"is_cppclass,omitempty" yaml:"is_cppclass,omitempty"`
	IsPacked       bool              `json:"is_packed,omitempty" yaml:"is_packed,omitempty"`
	Namespace      string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	TemplateParams []string          `json:"template_params,omitempty" yaml:"template_params,omitempty"`
	CppName        string            `json:"cpp_name,omitempty" yaml:"cpp_name,omitempty"`
	Notes          []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	InnerTypedefs  map[string]string `json:"inner_typedefs,omitempty" yaml:"inner_typedefs,omitempty"`

	// enum
	Values []rawEnumValue `json:"values,omitempty" yaml:"values,omitempty"`

	// function
	ReturnType        *rawType   `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Parameters        []rawParam `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	IsVariadic        bool       `json:"is_variadic,omitempty" yaml:"is_variadic,omitempty"`
	CallingConvention string     `json:"calling_convention,omitempty" yaml:"calling_convention,omitempty"`

	// typedef
	UnderlyingType *rawType `json:"underlying_type,omitempty" yaml:"underlying_type,omitempty"`

	// variable / constant
	Type    *rawType `json:"type,omitempty" yaml:"type,omitempty"`
	Value   any      `json:"value,omitempty" yaml:"value,omitempty"`
	IsMacro bool     `json:"is_macro,omitempty" yaml:"is_macro,omitempty"`

	Location *rawLocation `json:"location,omitempty" yaml:"location,omitempty"`
}

// DecodeJSON parses a header IR document in the headerkit JSON format.
func DecodeJSON(data []byte) (*Header, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw rawHeader
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.Wrap(errors.ErrInvalidIR, err.Error()), "failed to decode JSON IR")
	}
	return raw.toHeader()
}

// DecodeYAML parses the same document shape written as YAML.
func DecodeYAML(data []byte) (*Header, error) {
	var raw rawHeader
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.Wrap(errors.ErrInvalidIR, err.Error()), "failed to decode YAML IR")
	}
	return raw.toHeader()
}

// LoadFile reads and decodes an IR file, picking the format from the
// extension (.yaml/.yml, anything else is JSON).
func LoadFile(path string) (*Header, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read IR file %s", path)
	}
	var h *Header
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		h, err = DecodeYAML(data)
	default:
		h, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "in %s", path)
	}
	return h, data, nil
}

// CheckVersion verifies that v satisfies SupportedIRVersions. An empty
// version is accepted: older producers never wrote one.
func CheckVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(errors.ErrUnsupportedVersion, "invalid IR version %q: %s", v, err)
	}
	constraint, err := semver.NewConstraint(SupportedIRVersions)
	if err != nil {
		return errors.Wrap(err, "invalid supported version constraint")
	}
	if !constraint.Check(ver) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedVersion, "IR version %s", v),
			"pxdgen reads IR versions %s", SupportedIRVersions)
	}
	return nil
}

func (r *rawHeader) toHeader() (*Header, error) {
	if err := CheckVersion(r.IRVersion); err != nil {
		return nil, err
	}
	h := &Header{
		Path:            r.Path,
		IRVersion:       r.IRVersion,
		IncludedHeaders: r.IncludedHeaders,
		Declarations:    make([]Declaration, 0, len(r.Declarations)),
	}
	for i := range r.Declarations {
		d, err := r.Declarations[i].toDecl()
		if err != nil {
			return nil, errors.Wrapf(err, "declaration %d", i)
		}
		h.Declarations = append(h.Declarations, d)
	}
	return h, nil
}

func (r *rawDecl) toDecl() (Declaration, error) {
	loc := r.Location.toLocation()
	switch r.Kind {
	case "struct", "union":
		return r.toStruct()
	case "enum":
		e := &Enum{Name: r.Name, IsTypedef: r.IsTypedef, Location: loc}
		for _, v := range r.Values {
			val, err := intValue(v.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "enum %s value %s", r.Name, v.Name)
			}
			e.Values = append(e.Values, EnumValue{Name: v.Name, Value: val})
		}
		return e, nil
	case "function":
		return r.toFunction()
	case "typedef":
		t, err := r.UnderlyingType.toType()
		if err != nil {
			return nil, errors.Wrapf(err, "typedef %s", r.Name)
		}
		return &Typedef{Name: r.Name, UnderlyingType: t, Location: loc}, nil
	case "variable":
		t, err := r.Type.toType()
		if err != nil {
			return nil, errors.Wrapf(err, "variable %s", r.Name)
		}
		return &Variable{Name: r.Name, Type: t, Location: loc}, nil
	case "constant":
		c := &Constant{Name: r.Name, Value: scalarValue(r.Value), IsMacro: r.IsMacro, Location: loc}
		if r.Type != nil {
			t, err := r.Type.toType()
			if err != nil {
				return nil, errors.Wrapf(err, "constant %s", r.Name)
			}
			ct, ok := t.(*CType)
			if !ok {
				return nil, errors.NewInvalidIRError("constant %s: type must be a ctype", r.Name)
			}
			c.Type = ct
		}
		return c, nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownKind, "declaration kind %q", r.Kind)
	}
}

func (r *rawDecl) toStruct() (*Struct, error) {
	s := &Struct{
		Name:           r.Name,
		IsUnion:        r.Kind == "union",
		IsCppClass:     r.IsCppClass,
		IsTypedef:      r.IsTypedef,
		IsPacked:       r.IsPacked,
		Namespace:      r.Namespace,
		TemplateParams: r.TemplateParams,
		CppName:        r.CppName,
		Notes:          r.Notes,
		InnerTypedefs:  r.InnerTypedefs,
		Location:       r.Location.toLocation(),
	}
	for _, f := range r.Fields {
		t, err := f.Type.toType()
		if err != nil {
			return nil, errors.Wrapf(err, "struct %s field %s", r.Name, f.Name)
		}
		field := Field{Name: f.Name, Type: t, BitWidth: f.BitWidth}
		if f.AnonymousStruct != nil {
			anon, err := f.AnonymousStruct.toStruct()
			if err != nil {
				return nil, errors.Wrapf(err, "struct %s field %s", r.Name, f.Name)
			}
			field.AnonymousStruct = anon
		}
		s.Fields = append(s.Fields, field)
	}
	for i := range r.Methods {
		m, err := r.Methods[i].toFunction()
		if err != nil {
			return nil, errors.Wrapf(err, "struct %s", r.Name)
		}
		s.Methods = append(s.Methods, m)
	}
	return s, nil
}

func (r *rawDecl) toFunction() (*Function, error) {
	ret, err := r.ReturnType.toType()
	if err != nil {
		return nil, errors.Wrapf(err, "function %s return type", r.Name)
	}
	params, err := toParams(r.Parameters)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s", r.Name)
	}
	return &Function{
		Name:              r.Name,
		ReturnType:        ret,
		Parameters:        params,
		IsVariadic:        r.IsVariadic,
		CallingConvention: r.CallingConvention,
		Namespace:         r.Namespace,
		Location:          r.Location.toLocation(),
	}, nil
}

func (r *rawType) toType() (TypeExpr, error) {
	if r == nil {
		return nil, errors.NewInvalidIRError("missing type")
	}
	switch r.Kind {
	case "ctype":
		return &CType{Name: r.Name, Qualifiers: r.Qualifiers}, nil
	case "pointer":
		p, err := r.Pointee.toType()
		if err != nil {
			return nil, errors.Wrap(err, "pointee")
		}
		return &Pointer{Pointee: p, Qualifiers: r.Qualifiers}, nil
	case "array":
		e, err := r.ElementType.toType()
		if err != nil {
			return nil, errors.Wrap(err, "array element")
		}
		size, err := sizeString(r.Size)
		if err != nil {
			return nil, err
		}
		return &Array{Element: e, Size: size}, nil
	case "function_pointer":
		ret, err := r.ReturnType.toType()
		if err != nil {
			return nil, errors.Wrap(err, "function pointer return type")
		}
		params, err := toParams(r.Parameters)
		if err != nil {
			return nil, err
		}
		return &FunctionPointer{
			ReturnType:        ret,
			Parameters:        params,
			IsVariadic:        r.IsVariadic,
			CallingConvention: r.CallingConvention,
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownKind, "type kind %q", r.Kind)
	}
}

func toParams(raw []rawParam) ([]Parameter, error) {
	params := make([]Parameter, 0, len(raw))
	for i, p := range raw {
		t, err := p.Type.toType()
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		params = append(params, Parameter{Name: p.Name, Type: t})
	}
	return params, nil
}

func (l *rawLocation) toLocation() *SourceLocation {
	if l == nil {
		return nil
	}
	return &SourceLocation{File: l.File, Line: l.Line, Column: l.Column}
}

// intValue narrows a decoded number to int64. JSON numbers arrive as
// json.Number, YAML numbers as int, uint64 or float64.
func intValue(v any) (*int64, error) {
	var (
		n   int64
		err error
	)
	switch v := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		n, err = v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return nil, errors.NewInvalidIRError("non-numeric value %q", v.String())
			}
			return floatValue(f)
		}
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		n, err = safecast.Conv[int64](v)
	case float64:
		return floatValue(v)
	case string:
		// Unevaluated initializer expression; nothing to record.
		return nil, nil
	default:
		return nil, errors.NewInvalidIRError("unexpected value %v", v)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidIR, err.Error())
	}
	return &n, nil
}

func floatValue(f float64) (*int64, error) {
	if f != math.Trunc(f) {
		return nil, errors.NewInvalidIRError("non-integral value %v", f)
	}
	n, err := safecast.Convert[int64](f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidIR, err.Error())
	}
	return &n, nil
}

func sizeString(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		n, err := intValue(v)
		if err != nil {
			return "", errors.Wrap(err, "array size")
		}
		if n == nil {
			return "", nil
		}
		return strconv.FormatInt(*n, 10), nil
	}
}

// scalarValue normalizes constant literals so JSON and YAML produce the
// same Go values.
func scalarValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int:
		return int64(v)
	default:
		return v
	}
}
