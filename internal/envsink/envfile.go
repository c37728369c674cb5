package envsink

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// envFilePerm restricts the generated file to the owner. The file holds
// decrypted SecureString values.
const envFilePerm = 0600

// WriteEnvFile writes bindings to a dotenv-format file at path with
// 0600 permissions. The file starts with a generated header naming the
// source region and path so a reader can tell where the values came
// from, plus a warning not to commit it.
func WriteEnvFile(path string, bindings []Binding, region, sourcePath string) error {
	var sb strings.Builder

	sb.WriteString("# Auto-generated by paramenv\n")
	sb.WriteString(fmt.Sprintf("# Region: %s\n", region))
	if sourcePath != "" {
		sb.WriteString(fmt.Sprintf("# Parameter path: %s\n", sourcePath))
	}
	sb.WriteString(fmt.Sprintf("# Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString("#\n")
	sb.WriteString("# SECURITY WARNING: this file may contain decrypted secrets.\n")
	sb.WriteString("# Do not commit it to version control.\n")
	sb.WriteString("\n")

	for _, b := range bindings {
		sb.WriteString(formatEnvLine(b.Key, b.Value))
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(sb.String()), envFilePerm); err != nil {
		return fmt.Errorf("writing env file %q: %w", path, err)
	}
	return nil
}

// formatEnvLine renders one KEY=VALUE line. Values that dotenv parsers
// would misread bare (whitespace, quotes, '#', '$', backslashes) are
// wrapped in double quotes with the necessary escapes.
func formatEnvLine(key, value string) string {
	if !needsQuoting(value) {
		return key + "=" + value
	}
	escaped := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
	).Replace(value)
	return key + `="` + escaped + `"`
}

// needsQuoting reports whether a value must be quoted in a dotenv file.
func needsQuoting(value string) bool {
	if value == "" {
		return false
	}
	return strings.ContainsAny(value, " \t\n\"'#$\\")
}
