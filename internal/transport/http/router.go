package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orderlens/internal/config"
	"orderlens/internal/middleware"
	"orderlens/internal/services"
)

// NewRouter assembles the full API surface: dataset endpoints under
// /api/v1, plus health and Prometheus metrics at the root.
func NewRouter(cfg *config.Config, service *services.DataService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	datasetHandler := NewDatasetHandler(service, logger)
	healthHandler := NewHealthHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/dataset", datasetHandler.Routes())
		r.Get("/customers", datasetHandler.Customers)
		r.Get("/products", datasetHandler.Products)
		r.Get("/export", datasetHandler.Export)
		r.Get("/health", healthHandler.Health)
	})

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
