// Package testutil provides shared test helpers for journey directories,
// databases and history fixtures.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/histmap/internal/history"
	"github.com/starford/histmap/internal/index"
	"github.com/starford/histmap/internal/models"
	"github.com/starford/histmap/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "histmap-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJourneys creates a temporary journeys directory with a storage.Provider.
func TestJourneys(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StaticSource is a history.Source returning fixed records, truncated to the
// query limit.
type StaticSource struct {
	Records []models.VisitRecord
	Err     error
}

var _ history.Source = (*StaticSource)(nil)

// Recent implements history.Source.
func (s *StaticSource) Recent(_ context.Context, q history.Query) ([]models.VisitRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.Records
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return append([]models.VisitRecord(nil), out...), nil
}

// SampleRecords is a small history spanning several categories.
func SampleRecords() []models.VisitRecord {
	return []models.VisitRecord{
		{ID: "1", URL: "https://github.com/golang/go", Title: "golang/go", VisitCount: 5, LastVisit: 1700000003000},
		{ID: "2", URL: "https://www.reddit.com/r/golang", Title: "r/golang", VisitCount: 2, LastVisit: 1700000002000},
		{ID: "3", URL: "https://gitlab.com/x/y", Title: "", VisitCount: 0, LastVisit: 1700000001000},
		{ID: "4", URL: "https://example.org/", Title: "Example", VisitCount: 1, LastVisit: 1700000000000},
	}
}
