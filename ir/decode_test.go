package ir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/pxdgen/errors"
)

const listJSON = `{
  "path": "list.h",
  "declarations": [
    {
      "kind": "struct",
      "name": "Node",
      "fields": [
        {"name": "value", "type": {"kind": "ctype", "name": "int", "qualifiers": ["const"]}},
        {"name": "next", "type": {"kind": "pointer", "pointee": {"kind": "ctype", "name": "struct Node"}}},
        {"name": "flags", "type": {"kind": "ctype", "name": "unsigned int"}, "bit_width": 3},
        {"name": "tag", "type": {"kind": "array", "element_type": {"kind": "ctype", "name": "char"}, "size": 16}}
      ],
      "location": {"file": "list.h", "line": 3}
    },
    {"kind": "enum", "name": "Color", "values": [{"name": "RED", "value": 0}, {"name": "BIG", "value": 4294967296}, {"name": "EXPR", "value": "1 << 2"}]},
    {
      "kind": "function",
      "name": "visit",
      "return_type": {"kind": "ctype", "name": "void"},
      "parameters": [
        {"name": "cb", "type": {"kind": "function_pointer", "return_type": {"kind": "ctype", "name": "int"}, "parameters": [{"type": {"kind": "ctype", "name": "int"}}], "is_variadic": false}}
      ],
      "is_variadic": true,
      "calling_convention": "stdcall"
    },
    {"kind": "typedef", "name": "node_t", "underlying_type": {"kind": "ctype", "name": "struct Node"}},
    {"kind": "variable", "name": "table", "type": {"kind": "array", "element_type": {"kind": "ctype", "name": "int"}, "size": "TABLE_SIZE"}},
    {"kind": "constant", "name": "VERSION", "value": 3, "is_macro": true},
    {"kind": "constant", "name": "PI", "value": 3.5, "type": {"kind": "ctype", "name": "double"}}
  ],
  "included_headers": ["stdint.h"]
}`

func TestDecodeJSON(t *testing.T) {
	h, err := DecodeJSON([]byte(listJSON))
	require.NoError(t, err)

	assert.Equal(t, "list.h", h.Path)
	assert.Equal(t, []string{"stdint.h"}, h.IncludedHeaders)
	require.Len(t, h.Declarations, 7)

	node, ok := h.Declarations[0].(*Struct)
	require.True(t, ok)
	assert.Equal(t, "Node", node.DeclName())
	require.Len(t, node.Fields, 4)
	assert.Equal(t, &CType{Name: "int", Qualifiers: []string{"const"}}, node.Fields[0].Type)
	assert.Equal(t, &Pointer{Pointee: &CType{Name: "struct Node"}}, node.Fields[1].Type)
	assert.Equal(t, 3, node.Fields[2].BitWidth)
	assert.Equal(t, &Array{Element: &CType{Name: "char"}, Size: "16"}, node.Fields[3].Type)
	assert.Equal(t, &SourceLocation{File: "list.h", Line: 3}, node.Location)
	assert.True(t, node.HasBody())

	color := h.Declarations[1].(*Enum)
	require.Len(t, color.Values, 3)
	require.NotNil(t, color.Values[0].Value)
	assert.Equal(t, int64(0), *color.Values[0].Value)
	assert.Equal(t, int64(4294967296), *color.Values[1].Value)
	assert.Nil(t, color.Values[2].Value)

	visit := h.Declarations[2].(*Function)
	assert.True(t, visit.IsVariadic)
	assert.Equal(t, "stdcall", visit.CallingConvention)
	fp, ok := visit.Parameters[0].Type.(*FunctionPointer)
	require.True(t, ok)
	assert.Equal(t, &CType{Name: "int"}, fp.ReturnType)
	assert.Len(t, fp.Parameters, 1)

	assert.Equal(t, &Array{Element: &CType{Name: "int"}, Size: "TABLE_SIZE"}, h.Declarations[4].(*Variable).Type)

	version := h.Declarations[5].(*Constant)
	assert.Equal(t, int64(3), version.Value)
	assert.True(t, version.IsMacro)
	assert.Nil(t, version.Type)

	pi := h.Declarations[6].(*Constant)
	assert.Equal(t, 3.5, pi.Value)
	assert.Equal(t, &CType{Name: "double"}, pi.Type)
}

func TestDecodeYAMLMatchesJSON(t *testing.T) {
	doc := `
path: list.h
declarations:
  - kind: union
    name: Value
    namespace: ui
    fields:
      - name: i
        type: {kind: ctype, name: int}
  - kind: enum
    name: Mode
    values:
      - {name: A, value: 1}
`
	h, err := DecodeYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, h.Declarations, 2)

	u := h.Declarations[0].(*Struct)
	assert.True(t, u.IsUnion)
	assert.Equal(t, "ui", Namespace(u))
	assert.Equal(t, int64(1), *h.Declarations[1].(*Enum).Values[0].Value)
	assert.Equal(t, "", Namespace(h.Declarations[1]))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind error
	}{
		{"malformed", `{"path": `, errors.ErrInvalidIR},
		{"unknown decl kind", `{"path": "a.h", "declarations": [{"kind": "macro", "name": "X"}]}`, errors.ErrUnknownKind},
		{"unknown type kind", `{"path": "a.h", "declarations": [{"kind": "variable", "name": "x", "type": {"kind": "unknown"}}]}`, errors.ErrUnknownKind},
		{"missing type", `{"path": "a.h", "declarations": [{"kind": "typedef", "name": "x"}]}`, errors.ErrInvalidIR},
		{"fractional enum", `{"path": "a.h", "declarations": [{"kind": "enum", "name": "E", "values": [{"name": "A", "value": 1.5}]}]}`, errors.ErrInvalidIR},
		{"fractional array size", `{"path": "a.h", "declarations": [{"kind": "variable", "name": "x", "type": {"kind": "array", "element_type": {"kind": "ctype", "name": "int"}, "size": 2.5}}]}`, errors.ErrInvalidIR},
		{"future version", `{"path": "a.h", "ir_version": "3.0.0", "declarations": []}`, errors.ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestDecodeIntegralFloats(t *testing.T) {
	jsonDoc := `{"path": "a.h", "declarations": [
  {"kind": "enum", "name": "E", "values": [{"name": "A", "value": 1.0}]},
  {"kind": "variable", "name": "buf", "type": {"kind": "array", "element_type": {"kind": "ctype", "name": "char"}, "size": 4.0}}
]}`
	yamlDoc := `
path: a.h
declarations:
  - kind: enum
    name: E
    values:
      - {name: A, value: 1.0}
  - kind: variable
    name: buf
    type: {kind: array, element_type: {kind: ctype, name: char}, size: 4.0}
`
	for name, decode := range map[string]func() (*Header, error){
		"json": func() (*Header, error) { return DecodeJSON([]byte(jsonDoc)) },
		"yaml": func() (*Header, error) { return DecodeYAML([]byte(yamlDoc)) },
	} {
		t.Run(name, func(t *testing.T) {
			h, err := decode()
			require.NoError(t, err)
			require.Len(t, h.Declarations, 2)
			e := h.Declarations[0].(*Enum)
			require.NotNil(t, e.Values[0].Value)
			assert.Equal(t, int64(1), *e.Values[0].Value)
			assert.Equal(t, &Array{Element: &CType{Name: "char"}, Size: "4"}, h.Declarations[1].(*Variable).Type)
		})
	}
}

func TestDecodeYAMLOutOfRange(t *testing.T) {
	tests := map[string]string{
		"enum value": `
path: a.h
declarations:
  - kind: enum
    name: E
    values:
      - {name: HUGE, value: 18446744073709551615}
`,
		"fractional enum": `
path: a.h
declarations:
  - kind: enum
    name: E
    values:
      - {name: A, value: 1.5}
`,
		"array size": `
path: a.h
declarations:
  - kind: variable
    name: x
    type: {kind: array, element_type: {kind: ctype, name: int}, size: 18446744073709551615}
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeYAML([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidIRError(err), "got %v", err)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion(""))
	assert.NoError(t, CheckVersion("1.4.0"))
	assert.Error(t, CheckVersion("2.0.0"))
	assert.Error(t, CheckVersion("not-a-version"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(path, []byte(listJSON), 0o644))

	h, raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "list.h", h.Path)
	assert.Equal(t, []byte(listJSON), raw)

	_, _, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
