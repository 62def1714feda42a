// Package db opens the SQLite database holding conanci's run history.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/bentoudev/conanci/internal/config"
)

// BusyTimeout is how long, in milliseconds, a writer waits for another
// process holding the database lock. Several CI jobs on one runner share
// the same ledger.
const BusyTimeout = 5000

// InitDB opens the ledger at config.DBPath, creating its directory and the
// schema when missing.
func InitDB() (*sql.DB, error) {
	dbPath, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// Open opens (or creates) a ledger file at path and brings its schema up to
// date.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	conn, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
