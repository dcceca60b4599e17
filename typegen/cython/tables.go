package cython

// keywords are Python and Cython reserved words. Declarations using one of
// these names are renamed with a trailing underscore. Type words such as
// "struct", "const" or "unsigned" are left out: they appear inside type
// spellings and must pass through untouched.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true,
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "exec": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "print": true, "raise": true, "return": true,
	"try": true, "while": true, "with": true, "yield": true,

	"cdef": true, "cpdef": true, "ctypedef": true, "cimport": true,
	"include": true, "extern": true, "public": true, "api": true,
	"readonly": true, "inline": true, "nogil": true, "gil": true,
	"DEF": true, "IF": true, "ELIF": true, "ELSE": true,
}

// unsupportedQualifiers are dropped from type spellings. Order matters only
// for determinism.
var unsupportedQualifiers = []string{"_Atomic", "__restrict", "_Noreturn", "__restrict__"}

var unsupportedQualifierSet = map[string]bool{
	"_Atomic": true, "__restrict": true, "_Noreturn": true, "__restrict__": true,
}

// cToCython maps C spellings that Cython names differently.
var cToCython = map[string]string{
	"_Bool": "bint",
}

// libcTypes maps C library typedefs to the Cython module that declares them.
// size_t and ssize_t are Cython builtins and need no cimport.
var libcTypes = map[string]string{
	"int8_t": "libc.stdint", "int16_t": "libc.stdint", "int32_t": "libc.stdint", "int64_t": "libc.stdint",
	"uint8_t": "libc.stdint", "uint16_t": "libc.stdint", "uint32_t": "libc.stdint", "uint64_t": "libc.stdint",
	"int_least8_t": "libc.stdint", "int_least16_t": "libc.stdint", "int_least32_t": "libc.stdint", "int_least64_t": "libc.stdint",
	"uint_least8_t": "libc.stdint", "uint_least16_t": "libc.stdint", "uint_least32_t": "libc.stdint", "uint_least64_t": "libc.stdint",
	"int_fast8_t": "libc.stdint", "int_fast16_t": "libc.stdint", "int_fast32_t": "libc.stdint", "int_fast64_t": "libc.stdint",
	"uint_fast8_t": "libc.stdint", "uint_fast16_t": "libc.stdint", "uint_fast32_t": "libc.stdint", "uint_fast64_t": "libc.stdint",
	"intptr_t": "libc.stdint", "uintptr_t": "libc.stdint", "intmax_t": "libc.stdint", "uintmax_t": "libc.stdint",

	"FILE":   "libc.stdio",
	"fpos_t": "libc.stdio",

	"ptrdiff_t": "libc.stddef",
	"wchar_t":   "libc.stddef",

	"time_t":  "libc.time",
	"clock_t": "libc.time",
	"tm":      "libc.time",

	"div_t":   "libc.stdlib",
	"ldiv_t":  "libc.stdlib",
	"lldiv_t": "libc.stdlib",

	"sig_atomic_t": "libc.signal",
	"jmp_buf":      "libc.setjmp",

	"off_t": "posix.types", "pid_t": "posix.types", "mode_t": "posix.types",
	"uid_t": "posix.types", "gid_t": "posix.types", "dev_t": "posix.types",
	"ino_t": "posix.types", "nlink_t": "posix.types", "blkcnt_t": "posix.types",
	"blksize_t": "posix.types", "clockid_t": "posix.types", "suseconds_t": "posix.types",
}

// libcppTypes maps C++ standard library templates (without std::) to their
// libcpp module.
var libcppTypes = map[string]string{
	"vector":             "libcpp.vector",
	"string":             "libcpp.string",
	"string_view":        "libcpp.string_view",
	"map":                "libcpp.map",
	"multimap":           "libcpp.map",
	"set":                "libcpp.set",
	"multiset":           "libcpp.set",
	"unordered_map":      "libcpp.unordered_map",
	"unordered_set":      "libcpp.unordered_set",
	"pair":               "libcpp.utility",
	"list":               "libcpp.list",
	"deque":              "libcpp.deque",
	"queue":              "libcpp.queue",
	"priority_queue":     "libcpp.queue",
	"stack":              "libcpp.stack",
	"shared_ptr":         "libcpp.memory",
	"unique_ptr":         "libcpp.memory",
	"weak_ptr":           "libcpp.memory",
	"optional":           "libcpp.optional",
	"function":           "libcpp.functional",
	"complex":            "libcpp.complex",
	"atomic":             "libcpp.atomic",
	"any":                "libcpp.any",
	"variant":            "libcpp.variant",
	"reference_wrapper":  "libcpp.functional",
	"forward_list":       "libcpp.forward_list",
	"unordered_multimap": "libcpp.unordered_map",
}

// stubTypes are types Cython ships no declarations for. They are imported
// from "<prefix>.<module>" when a stub prefix is configured, and their tags
// are never declared by the generated file itself.
var stubTypes = map[string]string{
	"va_list": "stdarg",

	"sockaddr":         "sys_socket",
	"sockaddr_storage": "sys_socket",
	"socklen_t":        "sys_socket",
	"sa_family_t":      "sys_socket",
	"msghdr":           "sys_socket",

	"sockaddr_in":  "netinet_in",
	"sockaddr_in6": "netinet_in",
	"in_addr":      "netinet_in",
	"in6_addr":     "netinet_in",
	"in_port_t":    "netinet_in",

	"pthread_t":       "pthread",
	"pthread_attr_t":  "pthread",
	"pthread_mutex_t": "pthread",
	"pthread_cond_t":  "pthread",
	"pthread_once_t":  "pthread",
	"pthread_key_t":   "pthread",

	"DIR":    "dirent",
	"dirent": "dirent",
}

// stubModule returns the stub module declaring name, or "".
func stubModule(name string) string {
	return stubTypes[name]
}

// IsStubType reports whether name is provided by a stub module.
func IsStubType(name string) bool {
	_, ok := stubTypes[name]
	return ok
}
