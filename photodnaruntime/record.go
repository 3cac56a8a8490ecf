package photodnaruntime

import (
	"encoding/binary"
	"fmt"
)

// Byte offsets of the fields in the native HashResult record. The record is packed with no
// padding between fields and is little-endian on every supported platform.
const (
	recordOffsetResult     = 0
	recordOffsetHashFormat = 4
	recordOffsetX          = 8
	recordOffsetY          = 12
	recordOffsetW          = 16
	recordOffsetH          = 20
	recordOffsetHash       = 24
	recordOffsetReserved   = recordOffsetHash + HashSizeMax

	// ResultRecordSize is the size in bytes of one native HashResult record.
	ResultRecordSize = recordOffsetReserved + 6*4
)

// ResultRecord is a decoded copy of one native HashResult record.
//
// Records are never aliased in place: the native side writes into a plain byte buffer and
// every field is copied out at its fixed offset.
type ResultRecord struct {
	Result     int32
	HashFormat int32
	X          int32
	Y          int32
	W          int32
	H          int32
	Hash       [HashSizeMax]byte
	Reserved   [6]int32
}

// NewResultBuffer allocates a zeroed buffer large enough for count records.
func NewResultBuffer(count int) []byte {
	if count < 0 {
		count = 0
	}
	return make([]byte, count*ResultRecordSize)
}

// DecodeResultRecord copies the record at index out of buf.
func DecodeResultRecord(buf []byte, index int) (ResultRecord, error) {
	var rec ResultRecord
	start := index * ResultRecordSize
	if index < 0 || start+ResultRecordSize > len(buf) {
		return rec, fmt.Errorf("%w: record %d needs %d bytes, buffer has %d",
			ErrRecordOutOfRange, index, start+ResultRecordSize, len(buf))
	}
	b := buf[start : start+ResultRecordSize]

	rec.Result = int32(binary.LittleEndian.Uint32(b[recordOffsetResult:]))
	rec.HashFormat = int32(binary.LittleEndian.Uint32(b[recordOffsetHashFormat:]))
	rec.X = int32(binary.LittleEndian.Uint32(b[recordOffsetX:]))
	rec.Y = int32(binary.LittleEndian.Uint32(b[recordOffsetY:]))
	rec.W = int32(binary.LittleEndian.Uint32(b[recordOffsetW:]))
	rec.H = int32(binary.LittleEndian.Uint32(b[recordOffsetH:]))
	copy(rec.Hash[:], b[recordOffsetHash:recordOffsetReserved])
	for i := range rec.Reserved {
		off := recordOffsetReserved + i*4
		rec.Reserved[i] = int32(binary.LittleEndian.Uint32(b[off:]))
	}
	return rec, nil
}

// EncodeResultRecord writes rec into buf at index using the native layout.
// Fakes of the native library use it to fill result buffers.
func EncodeResultRecord(buf []byte, index int, rec ResultRecord) error {
	start := index * ResultRecordSize
	if index < 0 || start+ResultRecordSize > len(buf) {
		return fmt.Errorf("%w: record %d needs %d bytes, buffer has %d",
			ErrRecordOutOfRange, index, start+ResultRecordSize, len(buf))
	}
	b := buf[start : start+ResultRecordSize]

	binary.LittleEndian.PutUint32(b[recordOffsetResult:], uint32(rec.Result))
	binary.LittleEndian.PutUint32(b[recordOffsetHashFormat:], uint32(rec.HashFormat))
	binary.LittleEndian.PutUint32(b[recordOffsetX:], uint32(rec.X))
	binary.LittleEndian.PutUint32(b[recordOffsetY:], uint32(rec.Y))
	binary.LittleEndian.PutUint32(b[recordOffsetW:], uint32(rec.W))
	binary.LittleEndian.PutUint32(b[recordOffsetH:], uint32(rec.H))
	copy(b[recordOffsetHash:recordOffsetReserved], rec.Hash[:])
	for i, v := range rec.Reserved {
		off := recordOffsetReserved + i*4
		binary.LittleEndian.PutUint32(b[off:], uint32(v))
	}
	return nil
}

// HashBytes returns the hash bytes of the record for the given option word, copied.
func (r ResultRecord) HashBytes(options uint32) []byte {
	n := HashSizeForOptions(options)
	out := make([]byte, n)
	copy(out, r.Hash[:n])
	return out
}
