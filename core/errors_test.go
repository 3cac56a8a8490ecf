package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		wantCode string
		contains []string
	}{
		{"missing", ErrMissingConfig("PHOTODNA_DB_PATH"), ErrCodeMissingConfig, []string{"PHOTODNA_DB_PATH", "Set"}},
		{"invalid", ErrInvalidValue("PHOTODNA_SCAN_RATE", "-1", "must be positive"), ErrCodeInvalidValue, []string{`"-1"`, "must be positive"}},
		{"library", ErrLibraryNotFound("/opt/lib.so"), ErrCodeLibraryNotFound, []string{"/opt/lib.so", "PHOTODNA_LIBRARY_DIR"}},
		{"checksum", ErrChecksumMismatch("lib.so", "aa", "bb"), ErrCodeChecksumMismatch, []string{"expected aa", "got bb"}},
		{"directory", ErrDirectoryNotFound("PHOTODNA_LIBRARY_DIR", "/nope"), ErrCodeDirectoryNotFound, []string{"/nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("Error() = %q, missing %q", msg, s)
				}
			}
		})
	}
}

func TestGetErrorCodeWrapped(t *testing.T) {
	err := fmt.Errorf("startup: %w", ErrLibraryNotFound("x"))
	if got := GetErrorCode(err); got != ErrCodeLibraryNotFound {
		t.Errorf("GetErrorCode() = %q", got)
	}
	if _, ok := IsConfigError(errors.New("other")); ok {
		t.Error("IsConfigError matched a plain error")
	}
	if (&ConfigError{Message: "bare"}).Error() != "bare" {
		t.Error("message without action should be returned as-is")
	}
}
