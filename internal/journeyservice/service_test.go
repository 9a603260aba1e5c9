package journeyservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/mindmap"
	"github.com/starford/histmap/internal/models"
	"github.com/starford/histmap/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.StaticSource) {
	t.Helper()
	_, store := testutil.TestJourneys(t)
	db := testutil.TestDB(t)
	src := &testutil.StaticSource{Records: testutil.SampleRecords()}
	svc := NewService(store, db, src, Settings{
		Window:     24 * time.Hour,
		MaxResults: 10,
		Canvas:     mindmap.Canvas{Width: 600, Height: 320, Radius: 120},
	}, testutil.QuietLogger())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, src
}

func TestCurrentGraph(t *testing.T) {
	svc, _ := newTestService(t)
	g, err := svc.CurrentGraph(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(g.Nodes))
	}
	if g.Nodes[2].Title != models.DefaultTitle || g.Nodes[2].VisitCount != 1 {
		t.Errorf("defaults not applied: %+v", g.Nodes[2].HistoryNode)
	}
	// github and gitlab are both dev; nothing else shares a host or category.
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %+v", g.Edges)
	}
	if g.Edges[0].SourceIndex != 0 || g.Edges[0].TargetIndex != 2 {
		t.Errorf("unexpected edge %+v", g.Edges[0])
	}
}

func TestCurrentNodes_RespectsMaxResults(t *testing.T) {
	svc, _ := newTestService(t)
	svc.settings.MaxResults = 2
	nodes, err := svc.CurrentNodes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
}

func TestCurrentNodes_SourceError(t *testing.T) {
	svc, src := newTestService(t)
	src.Err = errors.New("boom")
	if _, err := svc.CurrentNodes(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveJourney_SnapshotsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.SaveJourney(ctx, "  morning  ", nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "morning" {
		t.Errorf("name not trimmed: %q", d.Name)
	}
	if d.ID == "" || d.Checksum == "" {
		t.Errorf("missing id/checksum: %+v", d)
	}
	if len(d.Nodes) != 4 || len(d.Graph.Nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d / %d", len(d.Nodes), len(d.Graph.Nodes))
	}

	got, err := svc.GetJourney(ctx, "morning")
	if err != nil {
		t.Fatal(err)
	}
	if got.Checksum != d.Checksum || got.ID != d.ID {
		t.Errorf("read back mismatch: %+v vs %+v", got, d)
	}

	items, total, err := svc.ListJourneys(ctx, 10, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || items[0].NodeCount != 4 {
		t.Errorf("unexpected list: %d %+v", total, items)
	}
}

func TestSaveJourney_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveJourney(ctx, "   ", nil); !errors.Is(err, apperr.ErrInvalidName) {
		t.Errorf("blank name: expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.SaveJourney(ctx, "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveJourney(ctx, "a", nil); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate: expected ErrAlreadyExists, got %v", err)
	}
	bad := []models.HistoryNode{{ID: "x", URL: "not a url"}}
	if _, err := svc.SaveJourney(ctx, "b", bad); !errors.Is(err, apperr.ErrInvalidURL) {
		t.Errorf("bad node: expected ErrInvalidURL, got %v", err)
	}
}

func TestJourneyNamesAreTrimmedOnEveryOperation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.SaveJourney(ctx, " trip ", nil)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Name != "trip" {
		t.Fatalf("saved name = %q, want trip", saved.Name)
	}

	got, err := svc.GetJourney(ctx, " trip ")
	if err != nil {
		t.Fatalf("get with padding: %v", err)
	}
	if got.Name != "trip" {
		t.Errorf("get name = %q", got.Name)
	}
	if _, err := svc.UpdateJourney(ctx, "\ttrip\n", []models.HistoryNode{}, saved.Checksum); err != nil {
		t.Fatalf("update with padding: %v", err)
	}
	if _, err := svc.RenameJourney(ctx, " trip", "voyage"); err != nil {
		t.Fatalf("rename with padding: %v", err)
	}
	if err := svc.DeleteJourney(ctx, "voyage  "); err != nil {
		t.Fatalf("delete with padding: %v", err)
	}
	if _, err := svc.GetJourney(ctx, "voyage"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after delete: expected ErrNotFound, got %v", err)
	}
}

func TestSaveJourney_DerivesCategoryFromURL(t *testing.T) {
	svc, _ := newTestService(t)
	nodes := []models.HistoryNode{
		{ID: "1", URL: "https://github.com/a", Category: models.CategoryShopping},
	}
	d, err := svc.SaveJourney(context.Background(), "x", nodes)
	if err != nil {
		t.Fatal(err)
	}
	if d.Nodes[0].Category != models.CategoryDev {
		t.Errorf("expected dev, got %s", d.Nodes[0].Category)
	}
	if d.Nodes[0].Title != models.DefaultTitle || d.Nodes[0].VisitCount != 1 {
		t.Errorf("defaults not applied: %+v", d.Nodes[0])
	}
}

func TestSaveJourney_EmptyNodes(t *testing.T) {
	svc, _ := newTestService(t)
	d, err := svc.SaveJourney(context.Background(), "empty", []models.HistoryNode{})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Nodes) != 0 || len(d.Graph.Nodes) != 0 || len(d.Graph.Edges) != 0 {
		t.Errorf("expected empty journey, got %+v", d)
	}
}

func TestUpdateJourney(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SaveJourney(ctx, "j", nil)
	if err != nil {
		t.Fatal(err)
	}
	nodes := []models.HistoryNode{{ID: "9", URL: "https://www.bbc.co.uk/news"}}

	if _, err := svc.UpdateJourney(ctx, "j", nodes, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	updated, err := svc.UpdateJourney(ctx, "j", nodes, created.Checksum)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %s -> %s", created.ID, updated.ID)
	}
	if updated.Checksum == created.Checksum {
		t.Error("checksum should change")
	}
	if len(updated.Nodes) != 1 || updated.Nodes[0].Category != models.CategoryNews {
		t.Errorf("unexpected nodes: %+v", updated.Nodes)
	}

	if _, err := svc.UpdateJourney(ctx, "missing", nodes, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameJourney(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveJourney(ctx, "old", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveJourney(ctx, "taken", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RenameJourney(ctx, "old", "taken"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	d, err := svc.RenameJourney(ctx, "old", "new")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "new" {
		t.Errorf("expected new, got %s", d.Name)
	}
	if _, err := svc.GetJourney(ctx, "old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old should be gone, got %v", err)
	}
	got, err := svc.GetJourney(ctx, "new")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "new" {
		t.Errorf("stored name: %s", got.Name)
	}
	names, err := svc.JourneysForHost(ctx, "github.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "new" || names[1] != "taken" {
		t.Errorf("unexpected host journeys: %v", names)
	}
}

func TestDeleteJourney(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveJourney(ctx, "d", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteJourney(ctx, "d"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteJourney(ctx, "d"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, total, err := svc.ListJourneys(ctx, 10, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected empty index, got %d", total)
	}
}

func TestSearchAndHosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SaveJourney(ctx, "golang reading", nil); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Search(ctx, "r/golang", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) == 0 || res[0].Journey != "golang reading" {
		t.Errorf("unexpected search results: %+v", res)
	}
	names, err := svc.JourneysForHost(ctx, "nowhere.invalid")
	if err != nil {
		t.Fatal(err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", names)
	}
}

func TestConcurrentSaveSameName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SaveJourney(ctx, "race", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadyExists):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly one successful save, got %d", ok)
	}
	if _, err := svc.GetJourney(ctx, "race"); err != nil {
		t.Fatal(err)
	}
}

func TestOnChangeEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var events []string
	svc.OnChange(func(kind, name string) {
		events = append(events, kind+":"+name)
	})

	if _, err := svc.SaveJourney(ctx, "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateJourney(ctx, "a", nil, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RenameJourney(ctx, "a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteJourney(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	// failed operations emit nothing
	_, _ = svc.SaveJourney(ctx, " ", nil)

	want := []string{"created:a", "updated:a", "deleted:a", "created:b", "deleted:b"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
}
