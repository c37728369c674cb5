// Package store implements the parameter fetch core: the translation of
// parameter names into environment variable identifiers, the abstract
// remote provider boundary, the AWS SSM-backed provider, and the fetcher
// that drives paginated retrieval into an environment sink.
package store

import (
	"strings"
	"unicode"

	"paramenv/internal/types"
)

// EnvVarName converts a parameter name into an environment variable
// identifier. Letters are upper-cased, digits kept, and every other
// character (including '/', '-', '_' and punctuation) becomes an
// underscore. Consecutive non-alphanumerics are not collapsed: each one
// produces its own underscore.
//
// The portion of name that is translated depends on path and naming:
//
//   - path == "" (flat listing): the whole name.
//   - NamingRelative: everything after path, when name is longer than
//     path; otherwise the whole name.
//   - NamingAbsolute: everything after the mandatory leading '/'.
//   - NamingBasename / NamingUnspecified: the final path segment after
//     the last '/'.
//
// A redundant separator at the start offset is skipped, so a path
// without a trailing slash yields the same result as one with it. When
// the offset lands at or past the end of name, the result is the empty
// string; callers treat an empty identifier as untranslatable.
func EnvVarName(name, path string, naming types.NamingMode) string {
	start := 0
	if path != "" {
		switch naming {
		case types.NamingRelative:
			if len(name) > len(path) {
				start = len(path)
			}
		case types.NamingAbsolute:
			start = 1
		default:
			start = strings.LastIndexByte(name, '/') + 1
		}
	}
	if start < len(name) && name[start] == '/' {
		start++
	}
	if start >= len(name) {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name) - start)
	for _, r := range name[start:] {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
