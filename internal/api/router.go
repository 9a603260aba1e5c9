package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/starford/histmap/internal/journeyservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// AllowedOrigins feeds the CORS handler; empty disables CORS headers.
	AllowedOrigins []string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *journeyservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-Match"},
			ExposedHeaders:   []string{"ETag"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	// Current history.
	r.Get("/graph", h.Graph)
	r.Get("/categorize", h.Categorize)

	// Journeys.
	r.Get("/journeys", h.ListJourneys)
	r.Post("/journeys", h.SaveJourney)
	r.Get("/journeys/{name}", h.GetJourney)
	r.Put("/journeys/{name}", h.UpdateJourney)
	r.Delete("/journeys/{name}", h.DeleteJourney)
	r.Post("/journeys/{name}/rename", h.RenameJourney)

	r.Get("/search", h.Search)
	r.Get("/hosts/{host}/journeys", h.HostJourneys)

	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}
