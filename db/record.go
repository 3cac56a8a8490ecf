package db

import (
	"time"

	"github.com/google/uuid"

	"go_photodna/photodna"
)

// timeLayout is fixed-width so created_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HashRecord is one stored hash computation.
type HashRecord struct {
	ID             uuid.UUID
	BatchID        string // scan batch, empty for single hashes
	SourcePath     string
	Digest         string // BLAKE2b-256 of the source file, lowercase hex
	Width          int
	Height         int
	PixelFormat    string
	Hash           photodna.Hash
	BorderlessHash *photodna.Hash
	Region         *photodna.Region
	CreatedAt      time.Time
}

// NewHashRecord fills in the ID and creation time for a freshly computed hash.
func NewHashRecord(sourcePath, digest string, width, height int, format photodna.PixelFormat, hash photodna.Hash) *HashRecord {
	return &HashRecord{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		Digest:      digest,
		Width:       width,
		Height:      height,
		PixelFormat: format.String(),
		Hash:        hash,
		CreatedAt:   time.Now().UTC(),
	}
}

// WithBorder attaches a border detection outcome.
func (r *HashRecord) WithBorder(res photodna.BorderHashResult) *HashRecord {
	r.Hash = res.Primary
	r.BorderlessHash = res.Borderless
	r.Region = res.ContentRegion
	return r
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
