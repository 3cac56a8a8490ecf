package photodna

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"go_photodna/photodnaruntime"
)

// HashCapacity is the size of a binary EdgeV2 hash.
const HashCapacity = photodnaruntime.HashSizeEdgeV2

// Hash is a perceptual hash value. Bytes past Len are always zero, so two Hash values
// compare equal with == exactly when their stored byte ranges are equal, and Hash can be
// used as a map key.
//
// The zero value is an empty hash of length 0. NewHash returns a zeroed full-length hash.
type Hash struct {
	data [HashCapacity]byte
	n    int
}

// NewHash returns an all-zero hash of full binary length.
func NewHash() Hash {
	return Hash{n: HashCapacity}
}

// HashFromSlice copies b into a new Hash. Slices longer than HashCapacity are rejected.
func HashFromSlice(b []byte) (Hash, error) {
	var h Hash
	if len(b) > HashCapacity {
		return h, fmt.Errorf("hash length %d exceeds capacity %d", len(b), HashCapacity)
	}
	copy(h.data[:], b)
	h.n = len(b)
	return h, nil
}

// HashFromHex decodes a hex string in either case. The string must have even length and
// decode to at most HashCapacity bytes.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	if len(s)%2 != 0 {
		return h, fmt.Errorf("hex string has odd length %d", len(s))
	}
	if len(s)/2 > HashCapacity {
		return h, fmt.Errorf("hex string decodes to %d bytes, capacity is %d", len(s)/2, HashCapacity)
	}
	n, err := hex.Decode(h.data[:], []byte(s))
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex hash: %w", err)
	}
	h.n = n
	return h, nil
}

// Len returns the number of meaningful bytes.
func (h Hash) Len() int { return h.n }

// Bytes returns a copy of the meaningful bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, h.n)
	copy(out, h.data[:h.n])
	return out
}

// IsEmpty reports whether every meaningful byte is zero.
func (h Hash) IsEmpty() bool {
	for _, b := range h.data[:h.n] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Hex returns the lowercase hex encoding of the meaningful bytes.
func (h Hash) Hex() string {
	return hex.EncodeToString(h.data[:h.n])
}

// HexUpper returns the uppercase hex encoding of the meaningful bytes.
func (h Hash) HexUpper() string {
	return strings.ToUpper(h.Hex())
}

// Equal reports whether h and o hold the same bytes.
func (h Hash) Equal(o Hash) bool {
	return h.n == o.n && bytes.Equal(h.data[:h.n], o.data[:o.n])
}

// Compare orders hashes by their meaningful bytes, shorter prefixes first.
func (h Hash) Compare(o Hash) int {
	return bytes.Compare(h.data[:h.n], o.data[:o.n])
}

// SetLen changes the logical length. Shrinking zeroes the dropped bytes.
func (h *Hash) SetLen(n int) error {
	if n < 0 || n > HashCapacity {
		return fmt.Errorf("hash length %d out of range [0, %d]", n, HashCapacity)
	}
	if n < h.n {
		clear(h.data[n:h.n])
	}
	h.n = n
	return nil
}

func (h Hash) String() string {
	return h.Hex()
}

func (h Hash) GoString() string {
	if h.n > 16 {
		return fmt.Sprintf("Hash(%s..., %d bytes)", hex.EncodeToString(h.data[:16]), h.n)
	}
	return fmt.Sprintf("Hash(%s)", h.Hex())
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
