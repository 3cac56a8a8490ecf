// Package db stores computed hashes in SQLite: embedded schema migrations, a
// repository for hash records, an async writer for batch scans and retention cleanup.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"

	"go_photodna/core"
)

// ConnectionConfig describes how the hash store is opened.
type ConnectionConfig struct {
	Path string

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration

	// Synchronous is the PRAGMA synchronous level: OFF, NORMAL, FULL or EXTRA.
	Synchronous string
}

// DefaultConnectionConfig returns WAL defaults: NORMAL sync and a 5s busy timeout.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:        path,
		BusyTimeout: 5 * time.Second,
		Synchronous: "NORMAL",
	}
}

// ConnectionConfigFrom takes the store settings from the CLI configuration. Zero values
// keep the defaults.
func ConnectionConfigFrom(cfg *core.Config) ConnectionConfig {
	c := DefaultConnectionConfig(cfg.DBPath)
	if cfg.DBBusyTimeout > 0 {
		c.BusyTimeout = cfg.DBBusyTimeout
	}
	if cfg.DBSynchronous != "" {
		c.Synchronous = cfg.DBSynchronous
	}
	return c
}

// DSN renders the modernc.org/sqlite data source name. The pragmas travel as _pragma
// parameters, so the driver applies them to every connection it opens.
func (c ConnectionConfig) DSN() (string, error) {
	if c.Path == "" {
		return "", fmt.Errorf("database path is required")
	}
	if strings.ContainsRune(c.Path, '?') {
		return "", fmt.Errorf("database path %q must not contain '?'", c.Path)
	}
	sync := strings.ToUpper(c.Synchronous)
	switch sync {
	case "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return "", fmt.Errorf("invalid synchronous level %q", c.Synchronous)
	}
	if c.BusyTimeout < 0 {
		return "", fmt.Errorf("invalid busy timeout %s", c.BusyTimeout)
	}

	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "synchronous("+sync+")")
	return c.Path + "?" + q.Encode(), nil
}

// NewSQLiteConnection opens the store described by config and checks that WAL took effect.
// SQLite takes one writer at a time, so the pool holds a single connection.
func NewSQLiteConnection(config ConnectionConfig) (*sql.DB, error) {
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read journal mode: %w", err)
	}
	if journalMode != "wal" {
		db.Close()
		return nil, fmt.Errorf("WAL mode not enabled, got: %s", journalMode)
	}
	return db, nil
}
