package core

import (
	"os"
	"path/filepath"
	"testing"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func writeTempFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestComputeSHA256(t *testing.T) {
	path := writeTempFile(t, "hello")

	got, err := ComputeSHA256(path)
	if err != nil {
		t.Fatalf("ComputeSHA256() error: %v", err)
	}
	if got != helloSHA256 {
		t.Errorf("ComputeSHA256() = %s, want %s", got, helloSHA256)
	}
	if got := ComputeSHA256FromBytes([]byte("hello")); got != helloSHA256 {
		t.Errorf("ComputeSHA256FromBytes() = %s", got)
	}
}

func TestComputeBLAKE2b256(t *testing.T) {
	path := writeTempFile(t, "hello")

	fromFile, err := ComputeBLAKE2b256(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile != ComputeBLAKE2b256FromBytes([]byte("hello")) {
		t.Error("file and byte digests differ")
	}
	if len(fromFile) != 64 {
		t.Errorf("digest length = %d, want 64", len(fromFile))
	}
	if fromFile == helloSHA256 {
		t.Error("BLAKE2b digest must differ from SHA-256")
	}
}

func TestComputeSHA256Errors(t *testing.T) {
	if _, err := ComputeSHA256(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := ComputeSHA256(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVerifyChecksum(t *testing.T) {
	path := writeTempFile(t, "hello")

	tests := []struct {
		name     string
		expected string
		want     bool
		wantErr  bool
	}{
		{"match", helloSHA256, true, false},
		{"match upper case", "2CF24DBA5FB0A30E26E83B2AC5B9E29E1B161E5C1FA7425E73043362938B9824", true, false},
		{"mismatch", "0000000000000000000000000000000000000000000000000000000000000000", false, false},
		{"too short", "abc", false, true},
		{"not hex", "zz" + helloSHA256[2:], false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyChecksum(path, tt.expected)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyChecksum() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VerifyChecksum() = %v, want %v", got, tt.want)
			}
		})
	}
}
