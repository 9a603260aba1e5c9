package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/starford/histmap/internal/models"
)

// exportItem mirrors the HistoryItem objects returned by chrome.history.search.
type exportItem struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	VisitCount    int     `json:"visitCount"`
	LastVisitTime float64 `json:"lastVisitTime"`
}

// Export reads a JSON array of history items saved from the extension API.
type Export struct {
	path string
}

// NewExport creates a reader for the export file at path.
func NewExport(path string) *Export {
	return &Export{path: path}
}

// Recent implements Source.
func (e *Export) Recent(_ context.Context, q Query) ([]models.VisitRecord, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("history: read export: %w", err)
	}
	var items []exportItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("history: decode export %s: %w", e.path, err)
	}

	since := int64(0)
	if !q.Since.IsZero() {
		since = q.Since.UnixMilli()
	}

	out := make([]models.VisitRecord, 0, len(items))
	for _, it := range items {
		last := int64(it.LastVisitTime)
		if last < since {
			continue
		}
		out = append(out, models.VisitRecord{
			ID:         it.ID,
			URL:        it.URL,
			Title:      it.Title,
			VisitCount: it.VisitCount,
			LastVisit:  last,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastVisit > out[j].LastVisit })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
