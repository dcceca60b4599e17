package typegen

import (
	"fmt"
	"strings"
)

// Result is the rendering of one header.
type Result struct {
	// HeaderPath is the path recorded in the IR, used in extern blocks.
	HeaderPath string

	// Output is the rendered file content.
	Output string

	// Scopes describes how each namespace scope was ordered, in output order.
	Scopes []ScopeSummary
}

// ScopeSummary reports the ordering decisions for one scope. Names are the
// declaration names at the reported indices; anonymous declarations show up
// as empty strings.
type ScopeSummary struct {
	Namespace    string   `json:"namespace,omitempty"`
	Declarations int      `json:"declarations"`
	Phased       bool     `json:"phased"`
	Cycles       []string `json:"cycles,omitempty"`
	ForwardRefs  []string `json:"forward_refs,omitempty"`
	InnerCycles  []string `json:"inner_cycles,omitempty"`
}

// Phased reports whether any scope needed the phased layout.
func (r *Result) Phased() bool {
	for _, s := range r.Scopes {
		if s.Phased {
			return true
		}
	}
	return false
}

// InnerCycles lists struct bodies that could not be ordered, qualified by
// namespace. Only malformed IR produces any.
func (r *Result) InnerCycles() []string {
	var out []string
	for _, s := range r.Scopes {
		for _, name := range s.InnerCycles {
			if s.Namespace != "" {
				name = s.Namespace + "::" + name
			}
			out = append(out, name)
		}
	}
	return out
}

// MetadataPrefix starts the banner line written above generated output.
// Check mode ignores lines with this prefix.
const MetadataPrefix = "# Generated by pxdgen"

// Banner returns the metadata line for a file generated from source.
func Banner(source, version string) string {
	return fmt.Sprintf("%s %s from %s. Do not edit.", MetadataPrefix, version, source)
}

// FileContent returns the bytes written for r: the banner, a blank line and
// the output, ending in exactly one newline.
func FileContent(r *Result, source, version string) []byte {
	var b strings.Builder
	b.WriteString(Banner(source, version))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimRight(r.Output, "\n"))
	b.WriteString("\n")
	return []byte(b.String())
}
