package history

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bentoudev/conanci/internal/db"
)

func openRepo(t *testing.T, name string) *Repository {
	t.Helper()
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return NewRepository(conn)
}

func TestRecordAndList(t *testing.T) {
	r := openRepo(t, "history_record_list")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := r.Record(Run{
		StartedAt: base, FinishedAt: base.Add(90 * time.Second),
		Package: "eastl", Version: "3.16.0", Commit: "c0ffee", Channel: "stable",
		Provider: "Travis", BuildNumber: "41", Builds: 4, Uploaded: true, Status: StatusSuccess,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := r.Record(Run{
		ID: "fixed-id", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second),
		Package: "eastl", Status: StatusFailed, Error: "unable to determine version",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := r.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "fixed-id" || runs[0].Status != StatusFailed {
		t.Fatalf("expected newest failed run first, got %+v", runs[0])
	}
	got := runs[1]
	if got.ID != first || !got.Uploaded || got.Builds != 4 || got.BuildNumber != "41" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %s", got.Duration())
	}

	limited, err := r.List(1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestRecordRejectsEmptyPackage(t *testing.T) {
	r := openRepo(t, "history_empty_pkg")
	now := time.Now()
	if _, err := r.Record(Run{StartedAt: now, FinishedAt: now, Status: StatusSuccess}); err == nil {
		t.Fatalf("expected empty package to be rejected")
	}
}
