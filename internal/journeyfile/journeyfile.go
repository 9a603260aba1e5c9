// Package journeyfile encodes journeys to and from their on-disk JSON form.
package journeyfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/histmap/internal/models"
)

// Ext is the file extension of stored journeys.
const Ext = ".json"

// MaxNameLength bounds journey names.
const MaxNameLength = 120

// FileName returns the file name a journey is stored under. A leading dot is
// escaped so the file is never mistaken for a hidden or temp file.
func FileName(name string) string {
	esc := url.PathEscape(name)
	if strings.HasPrefix(esc, ".") {
		esc = "%2E" + esc[1:]
	}
	return esc + Ext
}

// NameFromFile reverses FileName. ok is false for paths that are not journeys.
func NameFromFile(p string) (string, bool) {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if !strings.HasSuffix(base, Ext) || strings.HasPrefix(base, ".") {
		return "", false
	}
	name, err := url.PathUnescape(strings.TrimSuffix(base, Ext))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// NormalizeName trims surrounding whitespace from a user supplied name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName checks a normalised journey name.
func ValidateName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, MaxNameLength),
	)
}

// Parse decodes and validates a stored journey.
func Parse(data []byte) (*models.Journey, error) {
	var j models.Journey
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return nil, fmt.Errorf("journeyfile: decode: %w", err)
	}
	if err := Validate(&j); err != nil {
		return nil, fmt.Errorf("journeyfile: %w", err)
	}
	if j.Nodes == nil {
		j.Nodes = []models.HistoryNode{}
	}
	return &j, nil
}

// Marshal validates j and renders it as indented JSON with a trailing newline.
func Marshal(j *models.Journey) ([]byte, error) {
	if err := Validate(j); err != nil {
		return nil, fmt.Errorf("journeyfile: %w", err)
	}
	nodes := j.Nodes
	if nodes == nil {
		nodes = []models.HistoryNode{}
	}
	out := *j
	out.Nodes = nodes
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("journeyfile: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Validate checks journey fields and every node.
func Validate(j *models.Journey) error {
	if err := validation.ValidateStruct(j,
		validation.Field(&j.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
	); err != nil {
		return err
	}
	for i := range j.Nodes {
		if err := validateNode(&j.Nodes[i]); err != nil {
			return fmt.Errorf("nodes[%d]: %w", i, err)
		}
	}
	return nil
}

func validateNode(n *models.HistoryNode) error {
	categories := make([]any, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		categories = append(categories, c)
	}
	return validation.ValidateStruct(n,
		validation.Field(&n.URL, validation.Required),
		validation.Field(&n.Category, validation.Required, validation.In(categories...)),
		validation.Field(&n.VisitCount, validation.Required, validation.Min(1)),
	)
}
