package photodnaruntime

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVerifyLibraryChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libEdgeHashGenerator.so.1.05")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	// sha256("hello")
	const sum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	t.Run("matching checksum", func(t *testing.T) {
		if err := VerifyLibraryChecksum(path, sum); err != nil {
			t.Errorf("VerifyLibraryChecksum() error = %v", err)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		if err := VerifyLibraryChecksum(path, " "+strings.ToUpper(sum)+"\n"); err != nil {
			t.Errorf("VerifyLibraryChecksum() error = %v", err)
		}
	})

	t.Run("empty expected skips comparison", func(t *testing.T) {
		if err := VerifyLibraryChecksum(path, ""); err != nil {
			t.Errorf("VerifyLibraryChecksum() error = %v", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		err := VerifyLibraryChecksum(path, strings.Repeat("0", 64))
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("VerifyLibraryChecksum() error = %v, want ErrChecksumMismatch", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		err := VerifyLibraryChecksum(filepath.Join(dir, "nope.so"), sum)
		if !errors.Is(err, ErrLibraryOpen) {
			t.Errorf("VerifyLibraryChecksum() error = %v, want ErrLibraryOpen", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		if err := VerifyLibraryChecksum(dir, ""); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("VerifyLibraryChecksum() error = %v, want ErrInvalidPath", err)
		}
	})
}
