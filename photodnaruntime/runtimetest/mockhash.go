package runtimetest

import (
	"math/rand/v2"

	"go_photodna/photodnaruntime"
)

// MockHashBuilder builds deterministic hash bytes for tests.
// Precedence when several sources are set: custom bytes, then pattern, then seed.
type MockHashBuilder struct {
	seed    uint64
	pattern *byte
	custom  []byte
	length  int
}

// NewMockHash returns a builder for a full-length (924 byte) hash with seed 0.
func NewMockHash() *MockHashBuilder {
	return &MockHashBuilder{length: photodnaruntime.HashSizeEdgeV2}
}

func (b *MockHashBuilder) WithSeed(seed uint64) *MockHashBuilder {
	b.seed = seed
	return b
}

func (b *MockHashBuilder) WithPattern(p byte) *MockHashBuilder {
	b.pattern = &p
	return b
}

// WithBytes repeats custom to fill the hash.
func (b *MockHashBuilder) WithBytes(custom []byte) *MockHashBuilder {
	b.custom = append([]byte(nil), custom...)
	return b
}

// WithLength sets the hash length, capped at 924.
func (b *MockHashBuilder) WithLength(n int) *MockHashBuilder {
	if n < 0 {
		n = 0
	}
	b.length = min(n, photodnaruntime.HashSizeEdgeV2)
	return b
}

// Build returns the hash bytes.
func (b *MockHashBuilder) Build() []byte {
	out := make([]byte, b.length)
	switch {
	case len(b.custom) > 0:
		for i := range out {
			out[i] = b.custom[i%len(b.custom)]
		}
	case b.pattern != nil:
		for i := range out {
			out[i] = *b.pattern
		}
	default:
		rng := rand.New(rand.NewPCG(b.seed, b.seed^0x9e3779b97f4a7c15))
		for i := range out {
			out[i] = byte(rng.UintN(256))
		}
	}
	return out
}
