package photodnaruntime

import (
	"fmt"
	"os"
	"strings"

	"go_photodna/core"
)

// VerifyLibraryChecksum checks the SHA256 of the library file against expected
// (hex, case-insensitive). An empty expected value skips the comparison but still
// requires the file to exist.
func VerifyLibraryChecksum(path, expected string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadError{Op: "open", Path: path, Err: fmt.Errorf("%w: file not found", ErrLibraryOpen)}
		}
		return &LoadError{Op: "open", Path: path, Err: err}
	}
	if info.IsDir() {
		return &LoadError{Op: "open", Path: path, Err: fmt.Errorf("%w: path is a directory", ErrInvalidPath)}
	}

	expected = strings.ToLower(strings.TrimSpace(expected))
	if expected == "" {
		return nil
	}

	actual, err := core.ComputeSHA256(path)
	if err != nil {
		return fmt.Errorf("failed to calculate library checksum: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}
