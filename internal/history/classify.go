package history

import (
	"log/slog"

	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/metrics"
	"github.com/starford/histmap/internal/models"
)

// NewNode classifies a single record, applying the title and visit count
// defaults.
func NewNode(r models.VisitRecord) (models.HistoryNode, error) {
	cat, err := categorize.Categorize(r.URL)
	if err != nil {
		return models.HistoryNode{}, err
	}
	title := r.Title
	if title == "" {
		title = models.DefaultTitle
	}
	visits := r.VisitCount
	if visits <= 0 {
		visits = 1
	}
	return models.HistoryNode{
		ID:         r.ID,
		URL:        r.URL,
		Title:      title,
		Category:   cat,
		VisitCount: visits,
		LastVisit:  r.LastVisit,
	}, nil
}

// Classify builds nodes from records in order. Records whose URL cannot be
// parsed are logged and skipped.
func Classify(records []models.VisitRecord, logger *slog.Logger) []models.HistoryNode {
	out := make([]models.HistoryNode, 0, len(records))
	for _, r := range records {
		n, err := NewNode(r)
		if err != nil {
			metrics.ObserveInvalidURL()
			logger.Warn("history: skipping record",
				slog.String("id", r.ID),
				slog.String("url", r.URL),
				slog.String("error", err.Error()))
			continue
		}
		metrics.ObserveCategory(n.Category)
		out = append(out, n)
	}
	return out
}
