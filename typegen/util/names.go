package util

import "strings"

// tagPrefixes are the C/C++ elaborated-type keywords that may precede a tag.
var tagPrefixes = []string{"struct ", "union ", "enum ", "class "}

// StripTagPrefix removes a leading struct/union/enum/class keyword so that
// "struct Foo" and "Foo" name the same tag.
func StripTagPrefix(name string) string {
	for _, p := range tagPrefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimSpace(name[len(p):])
		}
	}
	return name
}

// TagPrefix returns the elaborated keyword of name ("struct", "union",
// "enum", "class") or "".
func TagPrefix(name string) string {
	for _, p := range tagPrefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimSpace(p)
		}
	}
	return ""
}

// IsAnonymous reports whether name is a clang placeholder for an anonymous
// record, e.g. "struct (unnamed at foo.h:3:5)".
func IsAnonymous(name string) bool {
	return strings.Contains(name, "(unnamed at") || strings.Contains(name, "(anonymous at")
}

// TemplateBase returns the part of a template spelling before the first '<'.
func TemplateBase(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

// SplitTemplateArgs splits the arguments of the outermost <...> of name at
// depth-zero commas. "map<string, vector<int>>" yields
// ["string", "vector<int>"]. Names without a well-formed argument list yield
// nil.
func SplitTemplateArgs(name string) []string {
	open := strings.IndexByte(name, '<')
	end := strings.LastIndexByte(name, '>')
	if open < 0 || end <= open {
		return nil
	}
	inner := name[open+1 : end]

	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = appendArg(args, inner[start:i])
				start = i + 1
			}
		}
	}
	return appendArg(args, inner[start:])
}

func appendArg(args []string, arg string) []string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return args
	}
	return append(args, arg)
}

// StripStd removes a leading "std::" qualifier.
func StripStd(name string) string {
	return strings.TrimPrefix(name, "std::")
}
