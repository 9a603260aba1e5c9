package index

import "github.com/starford/histmap/internal/models"

// JourneyIndex defines the interface for journey indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type JourneyIndex interface {
	UpsertJourney(j JourneyRow, nodes []models.HistoryNode) error
	DeleteJourney(name string) error
	GetChecksum(name string) (string, error)
	ListJourneys(limit, offset int, category string) ([]JourneyRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	JourneysForHost(host string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies JourneyIndex at compile time.
var _ JourneyIndex = (*DB)(nil)
