package types

import "log/slog"

// redactedPlaceholder is the string used to replace secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

// redactedJSON is the pre-computed JSON encoding of the redacted placeholder.
var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string type that prevents accidental logging or
// serialization of decrypted parameter values. It overrides String(),
// MarshalJSON(), and LogValue() to return a redacted placeholder, so a
// SecureString parameter cannot leak through fmt functions, JSON output,
// or structured log attributes.
//
// Use Unmask() to retrieve the raw plaintext when it is genuinely needed,
// which for paramenv means exactly one place: writing the final
// environment binding into a sink.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
// This is invoked by fmt.Sprintf, fmt.Println, and any other function
// that uses the fmt.Stringer interface.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// LogValue implements slog.LogValuer so that a SecretString passed as a
// log attribute is redacted before the handler sees it.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to writing environment bindings; diagnostics should log
// len(s) instead.
func (s SecretString) Unmask() string {
	return string(s)
}
