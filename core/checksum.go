package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ComputeSHA256 returns the lowercase hex SHA-256 of the file at path.
func ComputeSHA256(path string) (string, error) {
	return hashFile(path, sha256.New())
}

// ComputeSHA256FromBytes returns the lowercase hex SHA-256 of data.
func ComputeSHA256FromBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ComputeBLAKE2b256 returns the lowercase hex BLAKE2b-256 of the file at path. It is the
// content digest stored with hash records.
func ComputeBLAKE2b256(path string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	return hashFile(path, h)
}

// ComputeBLAKE2b256FromBytes returns the lowercase hex BLAKE2b-256 of data.
func ComputeBLAKE2b256FromBytes(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether the file's SHA-256 equals expected, ignoring case.
func VerifyChecksum(path, expected string) (bool, error) {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if len(expected) != 64 {
		return false, fmt.Errorf("invalid SHA256 hash length: expected 64 characters, got %d", len(expected))
	}
	if _, err := hex.DecodeString(expected); err != nil {
		return false, fmt.Errorf("invalid SHA256 hash format: %w", err)
	}
	actual, err := ComputeSHA256(path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}

func hashFile(path string, h hash.Hash) (string, error) {
	if path == "" {
		return "", fmt.Errorf("filepath cannot be empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
