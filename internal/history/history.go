// Package history records every conanci run in the local SQLite ledger.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded invocation.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Package     string
	Version     string
	Commit      string
	Channel     string
	Provider    string
	BuildNumber string
	Builds      int
	Uploaded    bool
	Status      string
	Error       string
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Repository reads and writes runs.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository using db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts run, assigning an ID when it has none, and returns the ID.
func (r *Repository) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	uploaded := 0
	if run.Uploaded {
		uploaded = 1
	}
	_, err := r.db.Exec(`INSERT INTO runs (id, started_at, finished_at, package, version, commit_hash, channel,
			provider, build_number, builds, uploaded, status, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.Package, run.Version, run.Commit, run.Channel, run.Provider, run.BuildNumber,
		run.Builds, uploaded, run.Status, run.Error)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return run.ID, nil
}

// List returns up to limit runs, newest first. A limit <= 0 returns all.
func (r *Repository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(`SELECT id, started_at, finished_at, package, version, commit_hash, channel,
			provider, build_number, builds, uploaded, status, error
			FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var uploaded int
		if err := rows.Scan(&run.ID, &started, &finished, &run.Package, &run.Version, &run.Commit, &run.Channel,
			&run.Provider, &run.BuildNumber, &run.Builds, &uploaded, &run.Status, &run.Error); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at: %w", run.ID, err)
		}
		run.Uploaded = uploaded != 0
		out = append(out, run)
	}
	return out, rows.Err()
}
