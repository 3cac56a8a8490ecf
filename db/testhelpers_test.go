package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"go_photodna/photodna"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "nested", "photodna.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func testHash(t *testing.T, fill byte) photodna.Hash {
	t.Helper()
	h, err := photodna.HashFromSlice(bytes.Repeat([]byte{fill}, photodna.HashCapacity))
	if err != nil {
		t.Fatal(err)
	}
	return h
}
