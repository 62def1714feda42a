package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bentoudev/conanci/internal/config"
)

func TestInitDBCreatesFileAndSchema(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(config.EnvHome, filepath.Join(tmp, "home"))
	t.Setenv(config.EnvDB, "")

	dbPath, err := config.DBPath()
	if err != nil {
		t.Fatalf("DBPath(): %v", err)
	}

	db, err := InitDB()
	if err != nil {
		t.Fatalf("InitDB() error: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	var count int
	r := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs'")
	if err := r.Scan(&count); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected table 'runs' to exist")
	}
}

func TestOpenSetsBusyTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close() }()

	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != BusyTimeout {
		t.Fatalf("busy_timeout = %d, want %d", timeout, BusyTimeout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
}
