package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/histmap/internal/models"
)

// chromeEpochOffsetMs is the distance between 1601-01-01 and 1970-01-01 in
// milliseconds. Chrome stores visit times as microseconds since 1601.
const chromeEpochOffsetMs = 11644473600000

// ChromeToUnixMilli converts a Chrome timestamp to epoch milliseconds.
func ChromeToUnixMilli(us int64) int64 {
	return us/1000 - chromeEpochOffsetMs
}

// UnixMilliToChrome converts epoch milliseconds to a Chrome timestamp.
func UnixMilliToChrome(ms int64) int64 {
	return (ms + chromeEpochOffsetMs) * 1000
}

// ChromeDB reads the urls table of a Chrome or Chromium "History" database.
type ChromeDB struct {
	path string
}

// NewChromeDB creates a reader for the History file at path.
func NewChromeDB(path string) *ChromeDB {
	return &ChromeDB{path: path}
}

// Recent implements Source. The browser keeps the database locked while it
// runs, so a snapshot copy is queried instead of the live file.
func (c *ChromeDB) Recent(ctx context.Context, q Query) ([]models.VisitRecord, error) {
	snap, err := snapshot(c.path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(snap)

	conn, err := sql.Open("sqlite3", "file:"+snap+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("history: open chrome db: %w", err)
	}
	defer conn.Close()

	var since int64
	if !q.Since.IsZero() {
		since = UnixMilliToChrome(q.Since.UnixMilli())
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id, url, COALESCE(title, ''), visit_count, last_visit_time
		FROM urls
		WHERE hidden = 0 AND last_visit_time >= ?
		ORDER BY last_visit_time DESC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query chrome db: %w", err)
	}
	defer rows.Close()

	var out []models.VisitRecord
	for rows.Next() {
		var (
			id         int64
			r          models.VisitRecord
			lastVisits int64
		)
		if err := rows.Scan(&id, &r.URL, &r.Title, &r.VisitCount, &lastVisits); err != nil {
			return nil, fmt.Errorf("history: scan chrome row: %w", err)
		}
		r.ID = strconv.FormatInt(id, 10)
		r.LastVisit = ChromeToUnixMilli(lastVisits)
		out = append(out, r)
	}
	return out, rows.Err()
}

// snapshot copies path into a temp file and returns its name.
func snapshot(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("history: open %s: %w", path, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "histmap-history-*.db")
	if err != nil {
		return "", fmt.Errorf("history: create snapshot: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("history: copy snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("history: close snapshot: %w", err)
	}
	return tmp.Name(), nil
}

// Window returns the Query for the last d of history capped at limit.
func Window(now time.Time, d time.Duration, limit int) Query {
	q := Query{Limit: limit}
	if d > 0 {
		q.Since = now.Add(-d)
	}
	return q
}
