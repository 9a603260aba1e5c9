// Package models defines the domain types for histmap.
package models

// Category is the semantic label assigned to a visited URL.
type Category string

// Categories of the fixed taxonomy.
const (
	CategorySocial   Category = "social"
	CategoryWork     Category = "work"
	CategoryNews     Category = "news"
	CategoryDev      Category = "dev"
	CategoryShopping Category = "shopping"
	CategoryOther    Category = "other"
)

// Categories returns every category in rule precedence order, with other last.
func Categories() []Category {
	return []Category{
		CategorySocial,
		CategoryDev,
		CategoryWork,
		CategoryNews,
		CategoryShopping,
		CategoryOther,
	}
}

// Valid reports whether c belongs to the taxonomy.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DefaultTitle is used when a visit record carries no title.
const DefaultTitle = "Untitled"

// HistoryNode is one classified browsing-history visit. Values are never
// mutated after construction.
type HistoryNode struct {
	ID         string   `json:"id"`
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Category   Category `json:"category"`
	VisitCount int      `json:"visit_count"`
	LastVisit  int64    `json:"last_visit"` // epoch milliseconds
}

// VisitRecord is a raw entry read from a browser history source.
type VisitRecord struct {
	ID         string
	URL        string
	Title      string // empty when unknown
	VisitCount int    // zero when unknown
	LastVisit  int64  // epoch milliseconds
}
