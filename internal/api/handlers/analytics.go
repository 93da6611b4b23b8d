package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eddiguesti/jengu-backend/internal/analytics"
	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/api/response"
)

// AnalyticsHandler handles HTTP requests for analytics summaries produced by
// the chained analytics jobs.
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided service dependency.
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Summary handles GET requests for a property's latest analytics summary.
//
// Endpoint: GET /api/analytics/property/{uuid}
// Response: 200 OK with the summary
// Error: 404 if no summary has been calculated yet
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	summary, err := h.analyticsService.GetSummary(propertyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalyticsNotFound) {
			response.RespondError(w, http.StatusNotFound, "no analytics summary for property", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve analytics summary", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
