// Package types defines the shared domain types for paramenv: remote
// parameters, naming modes, fetch requests, and the redacted secret
// string used to keep decrypted values out of logs.
package types

import "strings"

// ParameterType identifies the storage type of a parameter in the
// remote store.
type ParameterType string

const (
	ParameterTypeString       ParameterType = "String"
	ParameterTypeSecureString ParameterType = "SecureString"
	ParameterTypeStringList   ParameterType = "StringList"
)

// Parameter is a single entry fetched from the parameter store. It is
// read-only: fetched once per invocation, never mutated or persisted.
//
// Value is a SecretString because SecureString parameters arrive
// decrypted; wrapping every value keeps accidental fmt/JSON/slog output
// from leaking plaintext regardless of the parameter type.
type Parameter struct {
	Name  string
	Value SecretString
	Type  ParameterType
}

// NamingMode selects how an environment variable identifier is derived
// from a parameter's hierarchical name during a by-path fetch.
type NamingMode string

const (
	// NamingUnspecified behaves identically to NamingBasename for
	// by-path lookups. It is the mode used for flat listings, where no
	// hierarchy is involved.
	NamingUnspecified NamingMode = ""

	// NamingBasename uses the final path segment after the last '/'.
	NamingBasename NamingMode = "basename"

	// NamingRelative uses everything after the request path.
	NamingRelative NamingMode = "relative"

	// NamingAbsolute uses the full parameter path minus the leading '/'.
	NamingAbsolute NamingMode = "absolute"
)

// ParseNamingMode maps the user-supplied string form to a NamingMode.
// Empty or unrecognized input yields NamingUnspecified, which downstream
// code treats as basename.
func ParseNamingMode(s string) NamingMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(NamingBasename):
		return NamingBasename
	case string(NamingRelative):
		return NamingRelative
	case string(NamingAbsolute):
		return NamingAbsolute
	default:
		return NamingUnspecified
	}
}

// FetchRequest is the immutable configuration for one fetch invocation.
//
// Path and NamePrefixes are mutually exclusive retrieval strategies: a
// non-empty Path selects the hierarchy listing branch, where prefix
// filtering is not applied. NamePrefixes only takes effect in the flat
// listing branch.
type FetchRequest struct {
	// Path is the optional hierarchy root (slash-delimited).
	Path string

	// Recursive fetches all parameters within the hierarchy rather
	// than a single level. Only meaningful when Path is set.
	Recursive bool

	// Naming selects the environment variable derivation strategy for
	// by-path fetches.
	Naming NamingMode

	// NamePrefixes holds literal starts-with filters for the flat
	// listing branch, in the order the caller supplied them.
	NamePrefixes []string
}

// ParseNamePrefixes splits a comma-delimited prefix filter string into
// an ordered slice of literal prefixes. Blank entries are dropped, so
// an empty or whitespace-only input means "no filter".
func ParseNamePrefixes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var prefixes []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		prefixes = append(prefixes, p)
	}
	return prefixes
}
