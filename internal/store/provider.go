package store

import (
	"context"

	"paramenv/internal/types"
)

// DescribePage is one page of parameter names from a flat listing.
// An empty NextToken signals that the listing is exhausted.
type DescribePage struct {
	Names     []string
	NextToken string
}

// ParameterPage is one page of parameters from a hierarchy listing.
// An empty NextToken signals that the listing is exhausted.
type ParameterPage struct {
	Parameters []types.Parameter
	NextToken  string
}

// ParameterProvider is the remote parameter store boundary. Each listing
// call returns a single page plus an opaque continuation token; callers
// pass the token back to resume and stop when it comes back empty.
// Traversal is inherently sequential: one token per response.
type ParameterProvider interface {
	// DescribeParameterNames lists parameter names, optionally filtered
	// by literal starts-with prefixes on the parameter name.
	DescribeParameterNames(ctx context.Context, prefixes []string, nextToken string) (DescribePage, error)

	// GetParameter fetches a single parameter by name. When decrypt is
	// true, SecureString values are returned as plaintext.
	GetParameter(ctx context.Context, name string, decrypt bool) (types.Parameter, error)

	// GetParametersByPath lists the parameters under a hierarchy path,
	// descending into sub-paths when recursive is true. Values are
	// always decrypted.
	GetParametersByPath(ctx context.Context, path string, recursive bool, nextToken string) (ParameterPage, error)
}

// Sink receives derived environment bindings. Writes are last-write-wins
// for duplicate keys; the fetcher writes in provider-return order and
// the sink owes no ordering guarantee beyond that.
type Sink interface {
	Set(key, value string)
}
