package journeyfile

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/histmap/internal/models"
)

func sampleJourney() *models.Journey {
	return &models.Journey{
		ID:      "0b6f9a1e-0000-4000-8000-000000000001",
		Name:    "research / go",
		SavedAt: time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC),
		Nodes: []models.HistoryNode{
			{ID: "1", URL: "https://github.com/golang/go", Title: "go", Category: models.CategoryDev, VisitCount: 2, LastVisit: 1737365400000},
			{ID: "2", URL: "https://news.ycombinator.com", Title: "HN", Category: models.CategoryNews, VisitCount: 1, LastVisit: 1737365300000},
		},
	}
}

func TestMarshalParse(t *testing.T) {
	j := sampleJourney()
	data, err := Marshal(j)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("missing trailing newline")
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Name != j.Name || len(got.Nodes) != 2 || got.Nodes[1].Category != models.CategoryNews {
		t.Errorf("parsed = %+v", got)
	}
	if !got.SavedAt.Equal(j.SavedAt) {
		t.Errorf("SavedAt = %v", got.SavedAt)
	}
}

func TestMarshal_EmptyNodesEncodedAsArray(t *testing.T) {
	data, err := Marshal(&models.Journey{Name: "empty"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nodes": []`) {
		t.Errorf("nodes should encode as []: %s", data)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad json":       `{`,
		"missing name":   `{"id":"x","nodes":[]}`,
		"unknown field":  `{"name":"a","nodes":[],"extra":1}`,
		"bad category":   `{"name":"a","nodes":[{"id":"1","url":"https://x.com","category":"games","visit_count":1}]}`,
		"zero visits":    `{"name":"a","nodes":[{"id":"1","url":"https://x.com","category":"other","visit_count":0}]}`,
		"missing url":    `{"name":"a","nodes":[{"id":"1","category":"other","visit_count":1}]}`,
		"name too long":  `{"name":"` + strings.Repeat("x", MaxNameLength+1) + `","nodes":[]}`,
	}
	for name, input := range cases {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileNameRoundTrip(t *testing.T) {
	names := []string{"simple", "with space", "slash/inside", "../escape", "юникод", "100%", ".dotted"}
	for _, n := range names {
		fn := FileName(n)
		if strings.Contains(fn, "/") {
			t.Errorf("FileName(%q) = %q contains a separator", n, fn)
		}
		got, ok := NameFromFile("journeys/" + fn)
		if !ok || got != n {
			t.Errorf("NameFromFile(FileName(%q)) = %q, %v", n, got, ok)
		}
	}
}

func TestNameFromFile_IgnoresOthers(t *testing.T) {
	for _, p := range []string{"notes.md", ".histmap-tmp-123", ".hidden.json", ".json"} {
		if _, ok := NameFromFile(p); ok {
			t.Errorf("NameFromFile(%q) should be false", p)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName(NormalizeName("  trip  ")); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateName(NormalizeName("   ")); err == nil {
		t.Error("blank name accepted")
	}
}
