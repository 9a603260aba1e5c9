package mindmap

import (
	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/models"
)

// Related reports whether a and b share an exact hostname or a category.
// The relation is symmetric and reflexive; callers enumerating edges skip
// the self-pair themselves.
func Related(a, b models.HistoryNode) (bool, error) {
	hostA, err := categorize.Hostname(a.URL)
	if err != nil {
		return false, err
	}
	hostB, err := categorize.Hostname(b.URL)
	if err != nil {
		return false, err
	}
	return hostA == hostB || a.Category == b.Category, nil
}

// Edge connects two related nodes by their index in the sequence.
type Edge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	SourceIndex int    `json:"source_index"`
	TargetIndex int    `json:"target_index"`
	SameHost    bool   `json:"same_host"`
}

// Edges evaluates every unordered pair i < j and returns the related ones in
// index order. Cost is quadratic in len(nodes).
func Edges(nodes []models.HistoryNode) ([]Edge, error) {
	hosts := make([]string, len(nodes))
	for i, n := range nodes {
		h, err := categorize.Hostname(n.URL)
		if err != nil {
			return nil, err
		}
		hosts[i] = h
	}

	out := []Edge{}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			sameHost := hosts[i] == hosts[j]
			if !sameHost && nodes[i].Category != nodes[j].Category {
				continue
			}
			out = append(out, Edge{
				Source:      nodes[i].ID,
				Target:      nodes[j].ID,
				SourceIndex: i,
				TargetIndex: j,
				SameHost:    sameHost,
			})
		}
	}
	return out, nil
}
