package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CleanupResult reports what a retention pass removed.
type CleanupResult struct {
	Deleted  int64
	Cutoff   time.Time
	Vacuumed bool
	Duration time.Duration
}

// Cleanup deletes records older than retentionDays and vacuums the file when anything
// was removed. retentionDays 0 keeps everything.
func (d *Database) Cleanup(ctx context.Context, retentionDays int) (CleanupResult, error) {
	return d.cleanupBefore(ctx, retentionDays, time.Now())
}

func (d *Database) cleanupBefore(ctx context.Context, retentionDays int, now time.Time) (CleanupResult, error) {
	start := time.Now()
	result := CleanupResult{}

	if retentionDays < 0 {
		return result, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	if retentionDays == 0 {
		return result, nil
	}

	result.Cutoff = now.UTC().AddDate(0, 0, -retentionDays)

	err := d.with(func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx,
			`DELETE FROM hash_records WHERE created_at < ?`, formatTime(result.Cutoff))
		if err != nil {
			return fmt.Errorf("failed to delete expired hash records: %w", err)
		}
		if result.Deleted, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to count deleted rows: %w", err)
		}

		if result.Deleted > 0 {
			if _, err := conn.ExecContext(ctx, "VACUUM"); err != nil {
				return fmt.Errorf("failed to vacuum database: %w", err)
			}
			result.Vacuumed = true
		}
		return nil
	})

	result.Duration = time.Since(start)
	return result, err
}
