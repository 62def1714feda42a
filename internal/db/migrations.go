package db

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ApplyMigrations applies the embedded schema SQL to the database and
// performs lightweight post-creation migrations (adding new columns when needed).
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return ensureRunColumns(db)
}

// ensureRunColumns adds columns introduced after the first schema.
func ensureRunColumns(db *sql.DB) error {
	cols, err := runColumns(db)
	if err != nil {
		return err
	}
	if !cols["build_number"] {
		if _, err := db.Exec("ALTER TABLE runs ADD COLUMN build_number TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	return nil
}

func runColumns(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("PRAGMA table_info(runs)")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
