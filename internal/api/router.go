package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/eddiguesti/jengu-backend/internal/analytics"
	"github.com/eddiguesti/jengu-backend/internal/api/handlers"
	custommiddleware "github.com/eddiguesti/jengu-backend/internal/api/middleware"
	"github.com/eddiguesti/jengu-backend/internal/config"
	"github.com/eddiguesti/jengu-backend/internal/enrichment"
	"github.com/eddiguesti/jengu-backend/internal/repository"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	db *sql.DB,
	propertyRepo *repository.PropertyRepository,
	rowRepo *repository.PricingRowRepository,
	enrichmentService *enrichment.Service,
	analyticsService *analytics.Service,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(db)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/property", func(r chi.Router) {
			propertyHandler := handlers.NewPropertyHandler(propertyRepo, rowRepo)
			r.Post("/", propertyHandler.Create)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", propertyHandler.Get)
				r.Put("/location", propertyHandler.UpdateLocation)
				r.Post("/rows", propertyHandler.UploadRows)
				r.Get("/rows", propertyHandler.ListRows)
			})
		})

		r.Route("/enrichment", func(r chi.Router) {
			enrichmentHandler := handlers.NewEnrichmentHandler(enrichmentService)

			r.Route("/property/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Post("/trigger", enrichmentHandler.Trigger)
			})

			// Job IDs are composite handles, not UUIDs; no UUID validation here.
			r.Get("/jobs/{jobId}", enrichmentHandler.JobStatus)
		})

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

			r.Route("/property/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", analyticsHandler.Summary)
			})
		})
	})

	return r
}
