package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/index"
	"github.com/starford/histmap/internal/journeyservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *journeyservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journeyservice.Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a decoded chi path parameter. chi matches against
// RawPath when the request carries one (an encoded slash, for instance), so
// only then is the parameter still escaped.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Graph handles GET /api/graph.
//
//	@Summary		Lay out the recent browsing history
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.CurrentGraph(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Categorize handles GET /api/categorize.
//
//	@Summary		Categorize a URL
//	@Tags			graph
//	@Produce		json
//	@Param			url	query		string	true	"Absolute URL"
//	@Success		200	{object}	CategorizeResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categorize [get]
func (h *Handler) Categorize(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'url' is required"))
		return
	}
	c, err := h.svc.Categorize(r.Context(), raw)
	if err != nil {
		writeError(w, "categorize", err, slog.String("url", raw))
		return
	}
	host, _ := categorize.Hostname(raw)
	writeJSON(w, http.StatusOK, CategorizeResponse{URL: raw, Host: host, Category: c})
}

// ListJourneys handles GET /api/journeys.
//
//	@Summary		List saved journeys
//	@Tags			journeys
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Only journeys containing this category"	Enums(social, work, news, dev, shopping, other)
//	@Success		200			{object}	JourneyListResponse
//	@Security		BearerAuth
//	@Router			/journeys [get]
func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListJourneys(r.Context(), limit, offset, q.Get("category"))
	if err != nil {
		writeError(w, "list journeys", err)
		return
	}
	if items == nil {
		items = []JourneyListItem{}
	}
	writeJSON(w, http.StatusOK, JourneyListResponse{Journeys: items, Total: total})
}

// SaveJourney handles POST /api/journeys.
//
//	@Summary		Save a journey
//	@Tags			journeys
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveJourneyRequest	true	"Journey to save"
//	@Success		201		{object}	JourneyDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journeys [post]
func (h *Handler) SaveJourney(w http.ResponseWriter, r *http.Request) {
	var req SaveJourneyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.SaveJourney(r.Context(), req.Name, req.Nodes)
	if err != nil {
		writeError(w, "save journey", err, slog.String("journey", req.Name))
		return
	}
	writeJourney(w, http.StatusCreated, d)
}

// GetJourney handles GET /api/journeys/{name}.
//
//	@Summary		Get a journey and its layout
//	@Tags			journeys
//	@Produce		json
//	@Param			name	path		string	true	"Journey name"
//	@Success		200		{object}	JourneyDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journeys/{name} [get]
func (h *Handler) GetJourney(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	d, err := h.svc.GetJourney(r.Context(), name)
	if err != nil {
		writeError(w, "get journey", err, slog.String("journey", name))
		return
	}
	writeJourney(w, http.StatusOK, d)
}

// UpdateJourney handles PUT /api/journeys/{name}.
//
//	@Summary		Overwrite a journey with optimistic concurrency
//	@Tags			journeys
//	@Accept			json
//	@Produce		json
//	@Param			name		path		string					true	"Journey name"
//	@Param			If-Match	header		string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateJourneyRequest	false	"Replacement nodes"
//	@Success		200			{object}	JourneyDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journeys/{name} [put]
func (h *Handler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	var req UpdateJourneyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.UpdateJourney(r.Context(), name, req.Nodes, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update journey", err, slog.String("journey", name))
		return
	}
	writeJourney(w, http.StatusOK, d)
}

// RenameJourney handles POST /api/journeys/{name}/rename.
//
//	@Summary		Rename a journey
//	@Tags			journeys
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Current journey name"
//	@Param			body	body		RenameJourneyRequest	true	"New name"
//	@Success		200		{object}	JourneyDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journeys/{name}/rename [post]
func (h *Handler) RenameJourney(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	var req RenameJourneyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.RenameJourney(r.Context(), name, req.Name)
	if err != nil {
		writeError(w, "rename journey", err, slog.String("journey", name), slog.String("to", req.Name))
		return
	}
	writeJourney(w, http.StatusOK, d)
}

// DeleteJourney handles DELETE /api/journeys/{name}.
//
//	@Summary		Delete a journey
//	@Tags			journeys
//	@Param			name	path	string	true	"Journey name"
//	@Success		204		"Journey deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/journeys/{name} [delete]
func (h *Handler) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if err := h.svc.DeleteJourney(r.Context(), name); err != nil {
		writeError(w, "delete journey", err, slog.String("journey", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Search journey names, node titles and URLs
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// HostJourneys handles GET /api/hosts/{host}/journeys.
//
//	@Summary		List journeys that visited a host
//	@Tags			search
//	@Produce		json
//	@Param			host	path		string	true	"Hostname"
//	@Success		200		{object}	HostJourneysResponse
//	@Security		BearerAuth
//	@Router			/hosts/{host}/journeys [get]
func (h *Handler) HostJourneys(w http.ResponseWriter, r *http.Request) {
	host := strings.ToLower(urlParam(r, "host"))
	names, err := h.svc.JourneysForHost(r.Context(), host)
	if err != nil {
		writeError(w, "journeys for host", err, slog.String("host", host))
		return
	}
	writeJSON(w, http.StatusOK, HostJourneysResponse{Host: host, Journeys: names})
}
