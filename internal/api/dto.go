package api

import (
	"github.com/starford/histmap/internal/index"
	"github.com/starford/histmap/internal/journeyservice"
	"github.com/starford/histmap/internal/mindmap"
	"github.com/starford/histmap/internal/models"
)

// SaveJourneyRequest is the request body for saving a journey. Omitting nodes
// snapshots the current history window.
type SaveJourneyRequest struct {
	Name  string               `json:"name" example:"Monday research" validate:"required"`
	Nodes []models.HistoryNode `json:"nodes,omitempty"`
}

// UpdateJourneyRequest is the request body for overwriting a journey.
type UpdateJourneyRequest struct {
	Nodes []models.HistoryNode `json:"nodes,omitempty"`
}

// RenameJourneyRequest is the request body for renaming a journey.
type RenameJourneyRequest struct {
	Name string `json:"name" example:"Tuesday research" validate:"required"`
}

// JourneyDetail is the full journey response type (aliased from the domain layer).
type JourneyDetail = journeyservice.JourneyDetail

// JourneyListItem is a lightweight item in a list response (aliased from the domain layer).
type JourneyListItem = journeyservice.JourneyListItem

// JourneyListResponse wraps paginated journey listings.
type JourneyListResponse struct {
	Journeys []JourneyListItem `json:"journeys" validate:"required"`
	Total    int               `json:"total" example:"3" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CategorizeResponse is the classification of a single URL.
type CategorizeResponse struct {
	URL      string          `json:"url" example:"https://github.com/golang/go" validate:"required"`
	Host     string          `json:"host" example:"github.com" validate:"required"`
	Category models.Category `json:"category" example:"dev" validate:"required"`
}

// HostJourneysResponse lists the journeys that visited a host.
type HostJourneysResponse struct {
	Host     string   `json:"host" example:"github.com" validate:"required"`
	Journeys []string `json:"journeys" validate:"required"`
}

// GraphResponse is the laid-out relationship graph.
type GraphResponse = mindmap.Graph
