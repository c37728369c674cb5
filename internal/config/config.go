// Package config defines the configuration surface for the paramenv
// tool. Values are resolved via a priority chain:
//
//	CLI Flags (Highest) -> OS Environment -> Dotenv File (Lowest)
//
// The flag layer is applied by cmd/paramenv; this package loads the
// environment and dotenv layers and validates the result.
package config

// Config holds every setting the paramenv CLI accepts from the
// environment. Credential material itself is never configured here: the
// AWS SDK default chain (environment, shared config profile, IMDS)
// resolves credentials at client construction.
type Config struct {
	// Region is the AWS region hosting the parameter store.
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Profile optionally names an AWS shared-config profile.
	Profile string `envconfig:"AWS_PROFILE"`

	// EndpointURL overrides the SSM endpoint. Used for LocalStack;
	// empty in production.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`

	// Path is the optional parameter hierarchy root. When set, the
	// by-path branch is used and NamePrefixes is ignored.
	Path string `envconfig:"PARAMSTORE_PATH"`

	// Recursive fetches all parameters within the Path hierarchy.
	Recursive bool `envconfig:"PARAMSTORE_RECURSIVE" default:"false"`

	// Naming selects the environment variable derivation strategy for
	// by-path fetches. Empty defaults to basename behavior.
	Naming string `envconfig:"PARAMSTORE_NAMING" validate:"omitempty,oneof=basename relative absolute"`

	// NamePrefixes is a comma-delimited list of literal starts-with
	// filters for the flat listing branch.
	NamePrefixes string `envconfig:"PARAMSTORE_NAME_PREFIXES"`

	// LogLevel controls slog verbosity.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrParsing indicates a failure when parsing environment variable
	// values into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)
