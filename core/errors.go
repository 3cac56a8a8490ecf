package core

import (
	"errors"
	"fmt"
)

// ConfigError is a configuration problem with an instruction for fixing it.
type ConfigError struct {
	Code    string // Stable identifier for programmatic handling
	Message string // What is wrong
	Action  string // How to fix it
	Err     error  // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Configuration error codes.
const (
	ErrCodeMissingConfig     = "MISSING_CONFIG"
	ErrCodeInvalidValue      = "INVALID_VALUE"
	ErrCodeConfigFile        = "CONFIG_FILE"
	ErrCodeLibraryNotFound   = "LIBRARY_NOT_FOUND"
	ErrCodeChecksumMismatch  = "CHECKSUM_MISMATCH"
	ErrCodeDirectoryNotFound = "DIRECTORY_NOT_FOUND"
)

// ErrMissingConfig reports a required setting that is unset.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in the environment, .env or the YAML config file", varName),
	}
}

// ErrInvalidValue reports a setting whose value cannot be used.
func ErrInvalidValue(varName, value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s %q: %s", varName, value, reason),
		Action:  fmt.Sprintf("Correct %s", varName),
	}
}

// ErrConfigFile reports a YAML config file that cannot be read or parsed.
func ErrConfigFile(path string, err error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeConfigFile,
		Message: fmt.Sprintf("Cannot load config file %s: %v", path, err),
		Action:  "Fix the file or point PHOTODNA_CONFIG at a valid one",
		Err:     err,
	}
}

// ErrLibraryNotFound reports a missing native library file.
func ErrLibraryNotFound(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeLibraryNotFound,
		Message: fmt.Sprintf("PhotoDNA library not found: %s", path),
		Action:  "Set PHOTODNA_LIBRARY_DIR to the SDK's clientlibrary directory",
	}
}

// ErrChecksumMismatch reports a library file that does not match PHOTODNA_LIBRARY_SHA256.
func ErrChecksumMismatch(path, expected, actual string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeChecksumMismatch,
		Message: fmt.Sprintf("Checksum mismatch for %s: expected %s, got %s", path, expected, actual),
		Action:  "Reinstall the SDK or update PHOTODNA_LIBRARY_SHA256",
	}
}

// ErrDirectoryNotFound reports a configured directory that does not exist.
func ErrDirectoryNotFound(varName, path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDirectoryNotFound,
		Message: fmt.Sprintf("%s directory does not exist: %s", varName, path),
		Action:  fmt.Sprintf("Create the directory or change %s", varName),
	}
}

// IsConfigError returns the *ConfigError in err's chain, if any.
func IsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// GetErrorCode returns the ConfigError code in err's chain, or "".
func GetErrorCode(err error) string {
	if ce, ok := IsConfigError(err); ok {
		return ce.Code
	}
	return ""
}
