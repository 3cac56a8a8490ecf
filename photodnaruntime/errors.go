package photodnaruntime

import (
	"errors"
	"fmt"
)

// Sentinel errors for loader operations.
var (
	// ErrNativeUnavailable is returned when the binary was built without native support
	// (nonative tag or an unsupported platform).
	ErrNativeUnavailable = errors.New("photodnaruntime: native library support not compiled in")

	// ErrUnsupportedPlatform indicates no library file name exists for the OS/architecture.
	ErrUnsupportedPlatform = errors.New("photodnaruntime: unsupported platform")

	ErrLibraryOpen   = errors.New("photodnaruntime: failed to load library")
	ErrSymbolMissing = errors.New("photodnaruntime: required symbol not exported")
	ErrInitFailed    = errors.New("photodnaruntime: library initialization returned no instance")
	ErrInvalidPath   = errors.New("photodnaruntime: invalid path")
	ErrLibraryClosed = errors.New("photodnaruntime: library is closed")

	// ErrRecordOutOfRange indicates a result record index outside its buffer.
	ErrRecordOutOfRange = errors.New("photodnaruntime: result record out of range")

	// ErrChecksumMismatch indicates the library file does not match the configured checksum.
	ErrChecksumMismatch = errors.New("photodnaruntime: library checksum mismatch")
)

// LoadError describes a failure while loading, binding or initializing the native library.
type LoadError struct {
	Op     string // "open", "resolve", "init" or "close"
	Path   string // Library path or library directory
	Symbol string // Export name for resolve failures
	Err    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("photodna %s %s (%s): %v", e.Op, e.Symbol, e.Path, e.Err)
	}
	return fmt.Sprintf("photodna %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
