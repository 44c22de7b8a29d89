package rtutil

import "strings"

// Indent returns s with each line prefixed by depth*2 spaces, for nested,
// readable debug dumps.
func Indent(depth int, s string) string {
	pad := strings.Repeat("  ", depth)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

// DupString returns an independent copy of s. Go strings are already
// immutable value types, but this name documents the places where the
// original design's string-duplication semantics apply (a Token/Thing
// taking ownership of its own copy of text rather than aliasing a caller's
// buffer).
func DupString(s string) string {
	b := make([]byte, len(s))
	copy(b, s)
	return string(b)
}
