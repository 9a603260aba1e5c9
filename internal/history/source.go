// Package history reads raw visit records from browser history sources and
// classifies them into nodes.
package history

import (
	"context"
	"time"

	"github.com/starford/histmap/internal/models"
)

// Source drivers.
const (
	DriverChrome = "chrome"
	DriverExport = "export"
)

// Query bounds a history read.
type Query struct {
	Since time.Time // zero means no lower bound
	Limit int       // <= 0 means no limit
}

// Source returns visit records, most recent first.
type Source interface {
	Recent(ctx context.Context, q Query) ([]models.VisitRecord, error)
}

// Open returns the Source for driver reading from path.
func Open(driver, path string) (Source, error) {
	switch driver {
	case DriverChrome:
		return NewChromeDB(path), nil
	case DriverExport:
		return NewExport(path), nil
	default:
		return nil, &UnknownDriverError{Driver: driver}
	}
}

// UnknownDriverError is returned by Open for unsupported drivers.
type UnknownDriverError struct {
	Driver string
}

func (e *UnknownDriverError) Error() string {
	return "history: unknown driver " + e.Driver
}
