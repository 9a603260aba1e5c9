// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/histmap/internal/models"
)

var (
	categorizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "histmap_categorized_total",
		Help: "Visit records classified, by category",
	}, []string{"category"})

	invalidURLsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "histmap_invalid_urls_total",
		Help: "Visit records skipped because the URL had no usable hostname",
	})

	journeysSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "histmap_journeys_saved_total",
		Help: "Journeys written to storage, by operation",
	}, []string{"operation"})

	graphEdges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "histmap_graph_edges",
		Help:    "Number of edges per built graph",
		Buckets: []float64{0, 1, 5, 10, 20, 45, 100},
	})
)

// ObserveCategory counts one classified record.
func ObserveCategory(c models.Category) {
	categorizedTotal.WithLabelValues(string(c)).Inc()
}

// ObserveInvalidURL counts one record rejected for its URL.
func ObserveInvalidURL() {
	invalidURLsTotal.Inc()
}

// ObserveJourneySaved counts a journey write; op is "create", "update" or "rename".
func ObserveJourneySaved(op string) {
	journeysSavedTotal.WithLabelValues(op).Inc()
}

// ObserveGraph records the edge count of a built graph.
func ObserveGraph(edges int) {
	graphEdges.Observe(float64(edges))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
