// Package journeyservice coordinates history sources, journey storage, the
// journey index and the mind map layout.
package journeyservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/histmap/internal/apperr"
	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/checksum"
	"github.com/starford/histmap/internal/history"
	"github.com/starford/histmap/internal/index"
	"github.com/starford/histmap/internal/journeyfile"
	"github.com/starford/histmap/internal/metrics"
	"github.com/starford/histmap/internal/mindmap"
	"github.com/starford/histmap/internal/models"
	"github.com/starford/histmap/internal/storage"
)

// JourneyDetail is the full representation of a journey with its layout.
type JourneyDetail struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	SavedAt  time.Time            `json:"saved_at"`
	Checksum string               `json:"checksum"`
	Nodes    []models.HistoryNode `json:"nodes"`
	Graph    *mindmap.Graph       `json:"graph"`
}

// JourneyListItem is a lightweight item in a list response.
type JourneyListItem struct {
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Checksum  string    `json:"checksum"`
	NodeCount int       `json:"node_count"`
	SavedAt   time.Time `json:"saved_at"`
}

// Settings bound history reads and size the layout.
type Settings struct {
	Window     time.Duration
	MaxResults int
	Canvas     mindmap.Canvas
}

// Service coordinates storage, index and history operations.
type Service struct {
	store    storage.Provider
	db       index.JourneyIndex
	source   history.Source
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
	notify   func(kind, name string)

	// mu serialises journey writes so concurrent saves of one name cannot
	// both pass the existence check.
	mu sync.Mutex
}

// NewService creates a new journey service.
func NewService(store storage.Provider, db index.JourneyIndex, source history.Source, settings Settings, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		db:       db,
		source:   source,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// OnChange registers fn to be called after each journey mutation with kind
// "created", "updated" or "deleted". Call before serving requests.
func (s *Service) OnChange(fn func(kind, name string)) {
	s.notify = fn
}

func (s *Service) emit(kind, name string) {
	if s.notify != nil {
		s.notify(kind, name)
	}
}

// Canvas returns the layout canvas used for graphs.
func (s *Service) Canvas() mindmap.Canvas {
	return s.settings.Canvas
}

// Categorize classifies a single URL.
func (s *Service) Categorize(_ context.Context, rawURL string) (models.Category, error) {
	return categorize.Categorize(rawURL)
}

// CurrentNodes reads the recent history window and classifies it.
func (s *Service) CurrentNodes(ctx context.Context) ([]models.HistoryNode, error) {
	q := history.Window(s.now(), s.settings.Window, s.settings.MaxResults)
	records, err := s.source.Recent(ctx, q)
	if err != nil {
		return nil, err
	}
	return history.Classify(records, s.logger), nil
}

// CurrentGraph lays out the recent history window.
func (s *Service) CurrentGraph(ctx context.Context) (*mindmap.Graph, error) {
	nodes, err := s.CurrentNodes(ctx)
	if err != nil {
		return nil, err
	}
	return s.graph(nodes)
}

// GetJourney reads a journey from storage and lays it out.
func (s *Service) GetJourney(_ context.Context, name string) (*JourneyDetail, error) {
	name = journeyfile.NormalizeName(name)
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	j, err := journeyfile.Parse(data)
	if err != nil {
		return nil, err
	}
	j.Name = name
	return s.buildDetail(j, data)
}

// SaveJourney stores a new journey. nil nodes snapshot the current history.
func (s *Service) SaveJourney(ctx context.Context, name string, nodes []models.HistoryNode) (*JourneyDetail, error) {
	name, err := checkName(name)
	if err != nil {
		return nil, err
	}
	nodes, err = s.resolveNodes(ctx, nodes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Read(name); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	j := &models.Journey{
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: s.now().UTC(),
		Nodes:   nodes,
	}
	detail, err := s.write(j)
	if err != nil {
		return nil, err
	}
	metrics.ObserveJourneySaved("create")
	s.emit("created", name)
	s.logger.Info("journey saved", slog.String("journey", name), slog.Int("nodes", len(nodes)))
	return detail, nil
}

// UpdateJourney overwrites a journey with optimistic concurrency: a non-empty
// ifMatch must name the stored checksum (see checksum.Match). nil nodes snapshot the current history.
func (s *Service) UpdateJourney(ctx context.Context, name string, nodes []models.HistoryNode, ifMatch string) (*JourneyDetail, error) {
	name = journeyfile.NormalizeName(name)
	nodes, err := s.resolveNodes(ctx, nodes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(name)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Match(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	prev, err := journeyfile.Parse(existing)
	if err != nil {
		return nil, err
	}
	id := prev.ID
	if id == "" {
		id = uuid.NewString()
	}
	detail, err := s.write(&models.Journey{
		ID:      id,
		Name:    name,
		SavedAt: s.now().UTC(),
		Nodes:   nodes,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveJourneySaved("update")
	s.emit("updated", name)
	return detail, nil
}

// RenameJourney moves a journey to a new name.
func (s *Service) RenameJourney(_ context.Context, oldName, newName string) (*JourneyDetail, error) {
	oldName = journeyfile.NormalizeName(oldName)
	newName, err := checkName(newName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(oldName)
	if err != nil {
		return nil, err
	}
	if oldName == newName {
		j, err := journeyfile.Parse(data)
		if err != nil {
			return nil, err
		}
		return s.buildDetail(j, data)
	}
	if _, err := s.store.Read(newName); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	j, err := journeyfile.Parse(data)
	if err != nil {
		return nil, err
	}

	if err := s.store.Move(oldName, newName); err != nil {
		return nil, err
	}
	if err := s.db.DeleteJourney(oldName); err != nil {
		return nil, err
	}
	j.Name = newName
	detail, err := s.write(j)
	if err != nil {
		return nil, err
	}
	metrics.ObserveJourneySaved("rename")
	s.emit("deleted", oldName)
	s.emit("created", newName)
	return detail, nil
}

// DeleteJourney removes a journey from storage and index.
func (s *Service) DeleteJourney(_ context.Context, name string) error {
	name = journeyfile.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteJourney(name); err != nil {
		return err
	}
	s.emit("deleted", name)
	return nil
}

// ListJourneys returns paginated journeys with optional category filter.
func (s *Service) ListJourneys(_ context.Context, limit, offset int, category string) ([]JourneyListItem, int, error) {
	rows, total, err := s.db.ListJourneys(limit, offset, category)
	if err != nil {
		return nil, 0, err
	}
	items := make([]JourneyListItem, len(rows))
	for i, r := range rows {
		items[i] = JourneyListItem{
			Name:      r.Name,
			ID:        r.ID,
			Checksum:  r.Checksum,
			NodeCount: r.NodeCount,
			SavedAt:   r.SavedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// JourneysForHost returns the journeys that visited host.
func (s *Service) JourneysForHost(_ context.Context, host string) ([]string, error) {
	names, err := s.db.JourneysForHost(host)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(names), nil
}

func (s *Service) read(name string) ([]byte, error) {
	data, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// write stores j and indexes it. Callers hold s.mu.
func (s *Service) write(j *models.Journey) (*JourneyDetail, error) {
	data, err := journeyfile.Marshal(j)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(j.Name, data); err != nil {
		return nil, err
	}
	if err := index.IndexFile(s.db, j.Name, data); err != nil {
		return nil, err
	}
	return s.buildDetail(j, data)
}

// resolveNodes snapshots the current history for nil input and otherwise
// rebuilds each node so its category is derived from its URL.
func (s *Service) resolveNodes(ctx context.Context, nodes []models.HistoryNode) ([]models.HistoryNode, error) {
	if nodes == nil {
		return s.CurrentNodes(ctx)
	}
	out := make([]models.HistoryNode, len(nodes))
	for i, n := range nodes {
		rebuilt, err := history.NewNode(models.VisitRecord{
			ID:         n.ID,
			URL:        n.URL,
			Title:      n.Title,
			VisitCount: n.VisitCount,
			LastVisit:  n.LastVisit,
		})
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		out[i] = rebuilt
	}
	return out, nil
}

func (s *Service) buildDetail(j *models.Journey, data []byte) (*JourneyDetail, error) {
	g, err := s.graph(j.Nodes)
	if err != nil {
		return nil, err
	}
	return &JourneyDetail{
		ID:       j.ID,
		Name:     j.Name,
		SavedAt:  j.SavedAt,
		Checksum: checksum.Sum(data),
		Nodes:    nonNilSlice(j.Nodes),
		Graph:    g,
	}, nil
}

func (s *Service) graph(nodes []models.HistoryNode) (*mindmap.Graph, error) {
	g, err := mindmap.Build(nodes, s.settings.Canvas)
	if err != nil {
		return nil, err
	}
	metrics.ObserveGraph(len(g.Edges))
	return g, nil
}

func checkName(name string) (string, error) {
	name = journeyfile.NormalizeName(name)
	if err := journeyfile.ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidName, err)
	}
	return name, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
