package config

import (
	"fmt"
	"os"
	"regexp"
)

// ErrorType classifies configuration failures
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotFound
	ErrTypeInvalidInput
	ErrTypeConfiguration
)

// ConfigError provides structured error information for configuration problems
type ConfigError struct {
	Type    ErrorType
	Message string
	Cause   error
	Hint    string
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// KindName returns a stable name for JSON error output
func (e *ConfigError) KindName() string {
	switch e.Type {
	case ErrTypeNotFound:
		return "config_not_found"
	case ErrTypeInvalidInput:
		return "config_invalid"
	case ErrTypeConfiguration:
		return "config_error"
	default:
		return "config_unknown"
	}
}

// FormatWithHint returns the error message with hint if available
func (e *ConfigError) FormatWithHint() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s\n  Hint: %s", e.Error(), e.Hint)
	}
	return e.Error()
}

// ErrConfigNotFound creates an error for when the config file doesn't exist
func ErrConfigNotFound(path string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("config file not found: %s", path),
		Hint:    "Create a config file or specify an existing file path with --config.",
	}
}

// ErrConfigPermissionDenied creates an error for when the config file cannot be read
func ErrConfigPermissionDenied(path string, cause error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("cannot read config file: %s", path),
		Cause:   cause,
		Hint:    "Check file permissions with 'ls -la' and ensure the file is readable.",
	}
}

// ErrConfigEmpty creates an error for when the config file is empty
func ErrConfigEmpty(path string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeConfiguration,
		Message: fmt.Sprintf("config file is empty: %s", path),
		Hint:    "Add configuration content or remove the --config flag to use defaults.",
	}
}

// ErrConfigPathEmpty creates an error for when the config path is empty or whitespace
func ErrConfigPathEmpty() *ConfigError {
	return &ConfigError{
		Type:    ErrTypeInvalidInput,
		Message: "config file path cannot be empty or whitespace",
		Hint:    "Provide a valid file path with --config or omit the flag to use defaults.",
	}
}

// ErrConfigUnsupportedFormat creates an error for unknown config file extensions
func ErrConfigUnsupportedFormat(path, ext string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeInvalidInput,
		Message: fmt.Sprintf("unsupported config format %q: %s", ext, path),
		Hint:    "Use a .yaml, .yml or .toml file.",
	}
}

// ErrConfigInvalidYAML creates an error for invalid YAML syntax.
// It extracts line/column information from goccy/go-yaml errors when available.
func ErrConfigInvalidYAML(path string, cause error) *ConfigError {
	message := fmt.Sprintf("invalid YAML syntax in %s", path)
	if lineCol := extractLineColumn(cause); lineCol != "" {
		message = fmt.Sprintf("invalid YAML syntax in %s at %s", path, lineCol)
	}

	return &ConfigError{
		Type:    ErrTypeInvalidInput,
		Message: message,
		Cause:   cause,
		Hint:    "Check for proper indentation, missing colons, or unclosed quotes near the indicated location.",
	}
}

// ErrConfigInvalidTOML creates an error for invalid TOML syntax
func ErrConfigInvalidTOML(path string, cause error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeInvalidInput,
		Message: fmt.Sprintf("invalid TOML syntax in %s", path),
		Cause:   cause,
		Hint:    "Check that tables use [calc] and arrays of operations use [[calc.operations]].",
	}
}

// ErrConfigMissingSection creates an error for when the calc section is missing
func ErrConfigMissingSection(path string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeConfiguration,
		Message: fmt.Sprintf("config file missing required 'calc' section: %s", path),
		Hint:    "Add a 'calc:' section to your config file. Example:\n  calc:\n    operations:\n      - name: POW\n        formula: pow(a, b)",
	}
}

// ErrInvalidOperation creates an error for an operation entry that cannot be registered
func ErrInvalidOperation(name string, cause error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeConfiguration,
		Message: fmt.Sprintf("invalid operation '%s'", name),
		Cause:   cause,
		Hint:    "Formulas are expr expressions over a and b, e.g. pow(a, b) or (a + b) / 2.",
	}
}

var lineColumnRegex = regexp.MustCompile(`\[(\d+):(\d+)\]`)

// extractLineColumn extracts line:column from goccy/go-yaml error messages.
// Returns format like "line 5, column 3" or empty string if not found.
func extractLineColumn(err error) string {
	if err == nil {
		return ""
	}

	matches := lineColumnRegex.FindStringSubmatch(err.Error())
	if len(matches) == 3 {
		return fmt.Sprintf("line %s, column %s", matches[1], matches[2])
	}
	return ""
}

// WrapReadError wraps an os error from reading a config file
func WrapReadError(path string, err error) *ConfigError {
	if os.IsNotExist(err) {
		return ErrConfigNotFound(path)
	}
	if os.IsPermission(err) {
		return ErrConfigPermissionDenied(path, err)
	}
	return &ConfigError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("failed to read config file: %s", path),
		Cause:   err,
		Hint:    "Check that the file exists and is readable.",
	}
}
