package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go_photodna/photodna"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("db: record not found")

const recordColumns = `id, batch_id, source_path, digest, width, height, pixel_format,
	hash, borderless_hash, region_x, region_y, region_w, region_h, created_at`

// Repository reads and writes hash records. With an AsyncWriter attached, InsertAsync
// queues writes instead of blocking.
type Repository struct {
	db     *Database
	writer *AsyncWriter
}

// NewRepository creates a repository. writer may be nil.
func NewRepository(db *Database, writer *AsyncWriter) *Repository {
	return &Repository{db: db, writer: writer}
}

// InsertHashRecord stores rec synchronously. A nil ID or zero CreatedAt is filled in.
func (r *Repository) InsertHashRecord(ctx context.Context, rec *HashRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var borderless interface{} // NULL unless a border was found
	if rec.BorderlessHash != nil {
		borderless = rec.BorderlessHash.Bytes()
	}
	var rx, ry, rw, rh sql.NullInt64
	if rec.Region != nil {
		rx = sql.NullInt64{Int64: int64(rec.Region.X), Valid: true}
		ry = sql.NullInt64{Int64: int64(rec.Region.Y), Valid: true}
		rw = sql.NullInt64{Int64: int64(rec.Region.W), Valid: true}
		rh = sql.NullInt64{Int64: int64(rec.Region.H), Valid: true}
	}

	query := `INSERT INTO hash_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return r.db.with(func(conn *sql.DB) error {
		_, err := conn.ExecContext(ctx, query,
			rec.ID.String(), rec.BatchID, rec.SourcePath, rec.Digest,
			rec.Width, rec.Height, rec.PixelFormat,
			rec.Hash.Bytes(), borderless, rx, ry, rw, rh,
			formatTime(rec.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert hash record: %w", err)
		}
		return nil
	})
}

// InsertAsync queues rec on the async writer. It falls back to a synchronous insert when
// no writer is running or its queue is full.
func (r *Repository) InsertAsync(ctx context.Context, rec *HashRecord) error {
	if r.writer != nil && r.writer.IsStarted() && r.writer.Write(rec) {
		return nil
	}
	return r.InsertHashRecord(ctx, rec)
}

// GetHashRecord returns the record with id, or ErrNotFound.
func (r *Repository) GetHashRecord(ctx context.Context, id uuid.UUID) (*HashRecord, error) {
	recs, err := r.query(ctx, `SELECT `+recordColumns+` FROM hash_records WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// FindByDigest returns records of files with the given content digest, newest first.
func (r *Repository) FindByDigest(ctx context.Context, digest string) ([]*HashRecord, error) {
	return r.query(ctx, `SELECT `+recordColumns+` FROM hash_records
		WHERE digest = ? ORDER BY created_at DESC`, digest)
}

// FindByHash returns records whose primary or borderless hash equals h, newest first.
func (r *Repository) FindByHash(ctx context.Context, h photodna.Hash) ([]*HashRecord, error) {
	b := h.Bytes()
	return r.query(ctx, `SELECT `+recordColumns+` FROM hash_records
		WHERE hash = ? OR borderless_hash = ? ORDER BY created_at DESC`, b, b)
}

// ListBatch returns the records of one scan batch in insertion order.
func (r *Repository) ListBatch(ctx context.Context, batchID string) ([]*HashRecord, error) {
	return r.query(ctx, `SELECT `+recordColumns+` FROM hash_records
		WHERE batch_id = ? ORDER BY created_at ASC`, batchID)
}

// ListRecent returns up to limit records, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*HashRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.query(ctx, `SELECT `+recordColumns+` FROM hash_records
		ORDER BY created_at DESC LIMIT ?`, limit)
}

// CountRecords returns the number of stored records.
func (r *Repository) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.with(func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM hash_records`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count hash records: %w", err)
	}
	return n, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]*HashRecord, error) {
	var recs []*HashRecord
	err := r.db.with(func(conn *sql.DB) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query hash records: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return rows.Err()
	})
	return recs, err
}

func scanRecord(rows *sql.Rows) (*HashRecord, error) {
	var (
		rec        HashRecord
		id         string
		hash       []byte
		borderless []byte
		rx, ry     sql.NullInt64
		rw, rh     sql.NullInt64
		createdAt  string
	)
	if err := rows.Scan(&id, &rec.BatchID, &rec.SourcePath, &rec.Digest,
		&rec.Width, &rec.Height, &rec.PixelFormat,
		&hash, &borderless, &rx, &ry, &rw, &rh, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan hash record: %w", err)
	}

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	if rec.Hash, err = photodna.HashFromSlice(hash); err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	if len(borderless) > 0 {
		h, err := photodna.HashFromSlice(borderless)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		rec.BorderlessHash = &h
	}
	if rx.Valid && ry.Valid && rw.Valid && rh.Valid {
		rec.Region = &photodna.Region{X: int(rx.Int64), Y: int(ry.Int64), W: int(rw.Int64), H: int(rh.Int64)}
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("record %s: invalid created_at %q: %w", id, createdAt, err)
	}
	return &rec, nil
}
