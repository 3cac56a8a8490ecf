package photodna

import (
	"bytes"
	"strings"
	"testing"
)

func TestHashFromSlice(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"empty", 0, false},
		{"short", 16, false},
		{"full", HashCapacity, false},
		{"too long", HashCapacity + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]byte, tt.length)
			for i := range in {
				in[i] = byte(i*7 + 1)
			}
			h, err := HashFromSlice(in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("HashFromSlice: %v", err)
			}
			if h.Len() != tt.length || !bytes.Equal(h.Bytes(), in) {
				t.Errorf("got len %d, want %d", h.Len(), tt.length)
			}

			back, err := HashFromHex(h.Hex())
			if err != nil {
				t.Fatalf("HashFromHex: %v", err)
			}
			if back != h {
				t.Error("hex round trip changed the hash")
			}
		})
	}
}

func TestHashFromHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"lower", "00ff10", 3, false},
		{"upper", "00FF10", 3, false},
		{"mixed", "aBcD", 2, false},
		{"odd", "abc", 0, true},
		{"non hex", "zz", 0, true},
		{"max", strings.Repeat("ab", HashCapacity), HashCapacity, false},
		{"over max", strings.Repeat("ab", HashCapacity+1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HashFromHex(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("HashFromHex(%q): %v", tt.in, err)
			}
			if h.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", h.Len(), tt.wantLen)
			}
			if h.Hex() != strings.ToLower(tt.in) {
				t.Errorf("Hex() = %q", h.Hex())
			}
		})
	}
}

func TestHashEqualityIgnoresCapacity(t *testing.T) {
	a, _ := HashFromSlice([]byte{1, 2, 3})
	b, _ := HashFromHex("010203")
	if a != b || !a.Equal(b) || a.Compare(b) != 0 {
		t.Error("equal byte ranges should compare equal")
	}

	// Shrinking must clear the dropped bytes.
	c, _ := HashFromSlice([]byte{1, 2, 3, 4})
	if err := c.SetLen(3); err != nil {
		t.Fatal(err)
	}
	if c != a {
		t.Error("hash shrunk to the same bytes should equal the original")
	}

	m := map[Hash]string{a: "a"}
	if m[b] != "a" {
		t.Error("equal hashes should share a map key")
	}

	d, _ := HashFromSlice([]byte{1, 2, 4})
	if a == d || a.Compare(d) >= 0 {
		t.Error("different bytes should compare unequal and order by content")
	}
}

func TestHashIsEmpty(t *testing.T) {
	if !NewHash().IsEmpty() || NewHash().Len() != HashCapacity {
		t.Error("NewHash should be full length and empty")
	}
	var zero Hash
	if !zero.IsEmpty() || zero.Len() != 0 {
		t.Error("zero Hash should be empty with length 0")
	}
	h, _ := HashFromSlice([]byte{0, 0, 1})
	if h.IsEmpty() {
		t.Error("hash with a non-zero byte is not empty")
	}
}

func TestHashFormatting(t *testing.T) {
	short, _ := HashFromSlice([]byte{0xde, 0xad})
	if got := short.GoString(); got != "Hash(dead)" {
		t.Errorf("GoString() = %q", got)
	}
	if short.String() != "dead" || short.HexUpper() != "DEAD" {
		t.Errorf("String/HexUpper = %q/%q", short.String(), short.HexUpper())
	}

	long := NewHash()
	want := "Hash(" + strings.Repeat("00", 16) + "..., 924 bytes)"
	if got := long.GoString(); got != want {
		t.Errorf("GoString() = %q, want %q", got, want)
	}
}

func TestHashTextMarshaling(t *testing.T) {
	h, _ := HashFromSlice([]byte{9, 8, 7})
	text, err := h.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Hash
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != h {
		t.Error("text round trip changed the hash")
	}
	if err := back.UnmarshalText([]byte("xyz")); err == nil {
		t.Error("invalid text should fail")
	}
}

func TestHashSetLenBounds(t *testing.T) {
	var h Hash
	if err := h.SetLen(HashCapacity + 1); err == nil {
		t.Error("SetLen past capacity should fail")
	}
	if err := h.SetLen(-1); err == nil {
		t.Error("negative SetLen should fail")
	}
}
