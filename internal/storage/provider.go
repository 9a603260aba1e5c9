// Package storage keeps journeys as files in a single flat directory.
package storage

import "github.com/starford/histmap/internal/models"

// Provider stores raw journey documents keyed by journey name. The on-disk
// file name is derived with journeyfile.FileName.
type Provider interface {
	// List returns metadata for every journey in the directory, by name.
	List() ([]models.JourneyMetadata, error)
	// Read returns the stored document for name.
	Read(name string) ([]byte, error)
	// Write atomically replaces the document for name.
	Write(name string, content []byte) error
	// Delete removes the document for name.
	Delete(name string) error
	// Move renames a journey's file; an existing target is replaced.
	Move(oldName, newName string) error
}
