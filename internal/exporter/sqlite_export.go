// Package exporter copies the run history out of the active database, for
// example to keep it as a CI artifact.
package exporter

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bentoudev/conanci/internal/config"
	dbpkg "github.com/bentoudev/conanci/internal/db"
	"github.com/bentoudev/conanci/internal/history"
)

// ExportDatabase copies the active conanci database to dstPath.
func ExportDatabase(dstPath string) error {
	src, err := config.DBPath()
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source db: %w", err)
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create dst db: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy db: %w", err)
	}
	// a failed close can mean a truncated copy
	if err := out.Close(); err != nil {
		return fmt.Errorf("close dst db: %w", err)
	}
	return nil
}

// ExportPackage writes the runs recorded for pkg into a standalone SQLite
// database at dstPath and returns how many were written. Run IDs are kept.
func ExportPackage(srcDB *sql.DB, pkg string, dstPath string) (int, error) {
	runs, err := history.NewRepository(srcDB).List(0)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return 0, fmt.Errorf("create dst dir: %w", err)
	}
	dstDB, err := dbpkg.Open(dstPath)
	if err != nil {
		return 0, fmt.Errorf("open dst db: %w", err)
	}
	defer func() { _ = dstDB.Close() }()

	dst := history.NewRepository(dstDB)
	n := 0
	// List is newest first; insert oldest first
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Package != pkg {
			continue
		}
		if _, err := dst.Record(runs[i]); err != nil {
			return n, fmt.Errorf("insert run %s: %w", runs[i].ID, err)
		}
		n++
	}
	return n, nil
}
