package store

import (
	"context"
	"fmt"
	"log/slog"

	"paramenv/internal/types"
)

// Fetcher drives paginated retrieval from a ParameterProvider and writes
// the derived environment bindings into a Sink.
//
// Failure policy:
//
//   - Flat listing failures abandon the describe loop but the names
//     collected so far are still fetched.
//   - By-path listing failures abandon the branch entirely.
//   - Per-item failures (a single GetParameter call, or a name that
//     translates to an empty identifier) skip that item and continue.
//
// None of these escape Fetch; they are surfaced as warning-level log
// entries and the caller proceeds with whatever subset succeeded. Only
// an invalid invocation (nil provider or sink) returns an error.
type Fetcher struct {
	provider ParameterProvider
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher. A nil logger falls back to slog.Default.
func NewFetcher(provider ParameterProvider, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		provider: provider,
		logger:   logger,
	}
}

// Fetch retrieves parameters per req and writes bindings into sink.
//
// The retrieval strategy is selected by req.Path: an empty path runs the
// flat listing branch (describe names, then fetch values one by one,
// honoring req.NamePrefixes); a non-empty path runs the hierarchy branch
// (list name/value pages under the path). The two strategies are
// mutually exclusive and prefix filters are ignored on the by-path
// branch.
//
// Fetch is synchronous and single-threaded: each remote call completes
// before the next is issued. Deadlines belong to the provider's
// transport configuration, not this loop; ctx is only propagated.
func (f *Fetcher) Fetch(ctx context.Context, req types.FetchRequest, sink Sink) error {
	if f.provider == nil {
		return fmt.Errorf("fetch: provider must not be nil")
	}
	if sink == nil {
		return fmt.Errorf("fetch: sink must not be nil")
	}

	if req.Path == "" {
		f.fetchFlat(ctx, req.NamePrefixes, sink)
	} else {
		f.fetchByPath(ctx, req.Path, req.Recursive, req.Naming, sink)
	}
	return nil
}

// fetchFlat implements the flat listing branch: accumulate all matching
// parameter names across describe pages, then fetch each value with
// decryption. A describe failure keeps the names already collected; a
// per-name fetch failure skips that name only.
func (f *Fetcher) fetchFlat(ctx context.Context, prefixes []string, sink Sink) {
	var names []string
	token := ""
	for {
		page, err := f.provider.DescribeParameterNames(ctx, prefixes, token)
		if err != nil {
			f.logger.Warn("cannot list parameters, continuing with partial results",
				"error", err,
				"names_collected", len(names),
			)
			break
		}
		names = append(names, page.Names...)
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	for _, name := range names {
		param, err := f.provider.GetParameter(ctx, name, true)
		if err != nil {
			f.logger.Warn("cannot fetch parameter, skipping",
				"name", name,
				"error", err,
			)
			continue
		}
		f.bind(name, "", types.NamingUnspecified, param.Value, sink)
	}
}

// fetchByPath implements the hierarchy branch: walk name/value pages
// under path. A listing failure abandons the remaining pages; bindings
// already written stay written.
func (f *Fetcher) fetchByPath(ctx context.Context, path string, recursive bool, naming types.NamingMode, sink Sink) {
	token := ""
	for {
		page, err := f.provider.GetParametersByPath(ctx, path, recursive, token)
		if err != nil {
			f.logger.Warn("cannot fetch parameters by path, abandoning",
				"path", path,
				"error", err,
			)
			return
		}
		for _, param := range page.Parameters {
			f.bind(param.Name, path, naming, param.Value, sink)
		}
		if page.NextToken == "" {
			return
		}
		token = page.NextToken
	}
}

// bind translates a parameter name and writes the binding. A name that
// translates to an empty identifier (shorter than the assumed prefix,
// or nothing left after the offset) is reported and skipped rather than
// written under an empty key.
func (f *Fetcher) bind(name, path string, naming types.NamingMode, value types.SecretString, sink Sink) {
	key := EnvVarName(name, path, naming)
	if key == "" {
		f.logger.Warn("cannot derive environment variable name, skipping",
			"name", name,
			"path", path,
			"naming", string(naming),
		)
		return
	}
	sink.Set(key, value.Unmask())
	f.logger.Debug("environment binding written",
		"key", key,
		"name", name,
		"value_length", len(value),
	)
}
