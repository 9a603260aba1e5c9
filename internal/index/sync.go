package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/histmap/internal/checksum"
	"github.com/starford/histmap/internal/journeyfile"
	"github.com/starford/histmap/internal/storage"
)

// Sync lists the journeys directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		name := m.Name
		disk[name] = struct{}{}

		if checksums[name] == m.Checksum {
			continue
		}

		data, err := store.Read(name)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("file", m.File), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, name, data); err != nil {
			logger.Warn("sync: index failed", slog.String("file", m.File), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("journey", name))
		}
	}

	// Remove stale entries.
	for name := range checksums {
		if _, ok := disk[name]; !ok {
			if err := db.DeleteJourney(name); err != nil {
				logger.Warn("sync: delete failed", slog.String("journey", name), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("journey", name))
			}
		}
	}

	return nil
}

// IndexFile parses a stored journey and upserts it under name. The file name
// is authoritative over the name recorded inside the file.
func IndexFile(db JourneyIndex, name string, data []byte) error {
	j, err := journeyfile.Parse(data)
	if err != nil {
		return fmt.Errorf("index: %s: %w", name, err)
	}
	return db.UpsertJourney(JourneyRow{
		Name:     name,
		ID:       j.ID,
		Checksum: checksum.Sum(data),
		SavedAt:  j.SavedAt,
	}, j.Nodes)
}
