package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// JourneyRow represents a row in the journeys table.
type JourneyRow struct {
	Name      string
	ID        string
	Checksum  string
	NodeCount int
	SavedAt   time.Time
}

// SearchResult represents one search hit: a journey and the matching node.
// A journey matched by name alone yields a single result with no node.
type SearchResult struct {
	Journey string `json:"journey"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// UpsertJourney inserts or replaces a journey and its nodes within a transaction.
func (db *DB) UpsertJourney(j JourneyRow, nodes []models.HistoryNode) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO journeys (name, id, checksum, node_count, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id         = excluded.id,
			checksum   = excluded.checksum,
			node_count = excluded.node_count,
			saved_at   = excluded.saved_at
	`, j.Name, j.ID, j.Checksum, len(nodes), j.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert journey: %w", err)
	}

	// Replace nodes: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM journey_nodes WHERE journey = ?`, j.Name); err != nil {
		return fmt.Errorf("index: clear nodes: %w", err)
	}
	if len(nodes) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO journey_nodes (journey, seq, node_id, url, host, title, category, visit_count, last_visit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare node insert: %w", err)
		}
		defer stmt.Close()
		for i, n := range nodes {
			// Stored files are validated on parse, so a bad URL only loses host lookup.
			host, _ := categorize.Hostname(n.URL)
			if _, err := stmt.Exec(j.Name, i, n.ID, n.URL, host, n.Title, string(n.Category), n.VisitCount, n.LastVisit); err != nil {
				return fmt.Errorf("index: insert node: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteJourney removes a journey and its nodes.
func (db *DB) DeleteJourney(name string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM journey_nodes WHERE journey = ?`, name); err != nil {
		return fmt.Errorf("index: delete nodes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM journeys WHERE name = ?`, name); err != nil {
		return fmt.Errorf("index: delete journey: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a journey, or empty string if not found.
func (db *DB) GetChecksum(name string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM journeys WHERE name = ?`, name).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns name -> checksum for every indexed journey.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT name, checksum FROM journeys`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, cs string
		if err := rows.Scan(&name, &cs); err != nil {
			return nil, err
		}
		out[name] = cs
	}
	return out, rows.Err()
}

// ListJourneys returns journeys newest first. A non-empty category keeps only
// journeys holding at least one node of that category.
func (db *DB) ListJourneys(limit, offset int, category string) ([]JourneyRow, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	const where = `WHERE (? = '' OR name IN (SELECT journey FROM journey_nodes WHERE category = ?))`

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM journeys `+where, category, category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count journeys: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT name, id, checksum, node_count, saved_at
		FROM journeys `+where+`
		ORDER BY saved_at DESC, name
		LIMIT ? OFFSET ?
	`, category, category, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list journeys: %w", err)
	}
	defer rows.Close()

	var out []JourneyRow
	for rows.Next() {
		var r JourneyRow
		if err := rows.Scan(&r.Name, &r.ID, &r.Checksum, &r.NodeCount, &r.SavedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a literal, case-insensitive substring match over journey
// names, node titles and URLs. Matching nodes are returned one per row; a
// journey whose name matches but none of its nodes do is returned once.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT n.journey AS journey, n.title AS title, n.url AS url, n.seq AS seq
		FROM journey_nodes n
		WHERE n.title LIKE ? ESCAPE '\' OR n.url LIKE ? ESCAPE '\'
		UNION ALL
		SELECT j.name, '', '', -1
		FROM journeys j
		WHERE j.name LIKE ? ESCAPE '\'
			AND NOT EXISTS (
				SELECT 1 FROM journey_nodes m
				WHERE m.journey = j.name
					AND (m.title LIKE ? ESCAPE '\' OR m.url LIKE ? ESCAPE '\')
			)
		ORDER BY journey, seq
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var seq int
		if err := rows.Scan(&r.Journey, &r.Title, &r.URL, &seq); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// JourneysForHost returns the names of journeys that visited host.
func (db *DB) JourneysForHost(host string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT journey FROM journey_nodes WHERE host = ? ORDER BY journey
	`, strings.ToLower(host))
	if err != nil {
		return nil, fmt.Errorf("index: journeys for host: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
