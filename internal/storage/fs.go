package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/checksum"
	"github.com/starford/histmap/internal/journeyfile"
	"github.com/starford/histmap/internal/models"
)

// tempPrefix marks in-flight writes. journeyfile.NameFromFile rejects
// dot-prefixed files, so List and the index watcher never see them.
const tempPrefix = ".histmap-tmp-"

// FS implements Provider on a local directory.
type FS struct {
	root string // absolute path to the journeys directory
}

// NewFS creates a new FS provider rooted at dir, which must already exist.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute journeys directory.
func (f *FS) Root() string {
	return f.root
}

// fileFor maps a journey name to its absolute file path. Names are escaped
// into a single path segment; the result must sit directly under root.
func (f *FS) fileFor(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("storage: %w: empty", apperr.ErrInvalidName)
	}
	p := filepath.Join(f.root, journeyfile.FileName(name))
	if filepath.Dir(p) != f.root {
		return "", fmt.Errorf("storage: %w: %q escapes journeys root", apperr.ErrInvalidName, name)
	}
	return p, nil
}

// List reads the root directory only. Entries that are not journey files
// (subdirectories, other extensions, temp files) are skipped.
func (f *FS) List() ([]models.JourneyMetadata, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	out := make([]models.JourneyMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name, ok := journeyfile.NameFromFile(e.Name())
		if !ok || journeyfile.FileName(name) != e.Name() {
			// not a journey, or an encoding Read(name) would not resolve to
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				// removed between ReadDir and ReadFile
				continue
			}
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, models.JourneyMetadata{
			Name:      name,
			File:      e.Name(),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the stored document for name. A missing journey yields an
// error satisfying errors.Is(err, os.ErrNotExist).
func (f *FS) Read(name string) ([]byte, error) {
	p, err := f.fileFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", name, err)
	}
	return data, nil
}

// Write replaces the document for name: temp file, fsync, rename.
func (f *FS) Write(name string, content []byte) error {
	p, err := f.fileFor(name)
	if err != nil {
		return err
	}
	if err := f.writeAtomic(p, content); err != nil {
		return fmt.Errorf("storage: write %q: %w", name, err)
	}
	return nil
}

func (f *FS) writeAtomic(target string, content []byte) (err error) {
	tmp, err := os.CreateTemp(f.root, tempPrefix+"*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Delete removes the document for name.
func (f *FS) Delete(name string) error {
	p, err := f.fileFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("storage: delete %q: %w", name, err)
	}
	return nil
}

// Move renames oldName's file to newName's.
func (f *FS) Move(oldName, newName string) error {
	from, err := f.fileFor(oldName)
	if err != nil {
		return err
	}
	to, err := f.fileFor(newName)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("storage: move %q to %q: %w", oldName, newName, err)
	}
	return nil
}
