package envsink

import (
	"fmt"
	"io"
	"strings"
)

// WriteExports writes bindings as POSIX shell export statements, one per
// line, suitable for `eval "$(paramenv ...)"`. Values are single-quoted,
// with embedded single quotes rendered as '\'' so arbitrary parameter
// values round-trip through the shell unevaluated.
func WriteExports(w io.Writer, bindings []Binding) error {
	for _, b := range bindings {
		if _, err := fmt.Fprintf(w, "export %s=%s\n", b.Key, shellQuote(b.Value)); err != nil {
			return fmt.Errorf("writing export line for %s: %w", b.Key, err)
		}
	}
	return nil
}

// shellQuote single-quotes a value for POSIX shells.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
