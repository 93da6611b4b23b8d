package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/api/response"
	"github.com/eddiguesti/jengu-backend/internal/enrichment"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// EnrichmentHandler handles HTTP requests for the enrichment pipeline: the
// trigger endpoint and the job status poll.
type EnrichmentHandler struct {
	enrichmentService *enrichment.Service
}

// NewEnrichmentHandler creates a new EnrichmentHandler with the provided service dependency.
func NewEnrichmentHandler(enrichmentService *enrichment.Service) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
	}
}

// TriggerResponse carries the job handle the client must retain for polling.
type TriggerResponse struct {
	JobID string `json:"job_id"`
}

// Trigger handles POST requests to start enrichment for a property. The job
// executes asynchronously; the response returns as soon as the job record is
// persisted and queued.
//
// Endpoint: POST /api/enrichment/property/{propertyId}/trigger
// Response: 202 Accepted with the job ID to poll
// Error: 404 if the property does not exist, 422 if it has no rows,
// 503 if the queue cannot accept more work
func (h *EnrichmentHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	jobID, err := h.enrichmentService.RequestEnrichment(propertyID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPropertyNotFound):
			response.RespondError(w, http.StatusNotFound, "property not found", "")
		case errors.Is(err, apperrors.ErrNoRows):
			response.RespondError(w, http.StatusUnprocessableEntity, "property has no pricing rows to enrich", "")
		case errors.Is(err, apperrors.ErrQueueFull):
			response.RespondError(w, http.StatusServiceUnavailable, "enrichment queue is full, retry later", "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to request enrichment", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusAccepted, TriggerResponse{JobID: jobID})
}

// StageStatusResponse is the per-stage progress block of a status response.
type StageStatusResponse struct {
	Status   model.StageStatus `json:"status"`
	Enriched int               `json:"enriched"`
	Total    int               `json:"total"`
}

// JobStatusResponse is the polling contract: overall status plus per-stage
// progress, and the error message for failed jobs.
type JobStatusResponse struct {
	JobID      string                         `json:"job_id"`
	PropertyID string                         `json:"property_id"`
	Status     model.JobStatus                `json:"status"`
	Stages     map[string]StageStatusResponse `json:"stages"`
	Error      *string                        `json:"error,omitempty"`
}

// JobStatus handles GET requests polling an enrichment job.
//
// The jobId must be the exact token returned by Trigger; a property ID will
// not resolve. A 404 means unknown or expired, which the client must treat
// distinctly from a failed job: terminal records are garbage-collected, so
// not-found can follow a success.
//
// Endpoint: GET /api/enrichment/jobs/{jobId}
// Response: 200 OK with JobStatusResponse
// Error: 404 with a distinct not-found body for unknown or expired IDs
func (h *EnrichmentHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		response.RespondError(w, http.StatusBadRequest, "job ID is required", "")
		return
	}

	job, err := h.enrichmentService.GetJobStatus(jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrJobNotFound) {
			response.RespondError(w, http.StatusNotFound, "job not found or expired", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve job status", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, JobStatusResponse{
		JobID:      job.ID,
		PropertyID: job.PropertyID,
		Status:     job.Status,
		Stages: map[string]StageStatusResponse{
			model.StageTemporal: stageResponse(job.Temporal),
			model.StageWeather:  stageResponse(job.Weather),
			model.StageHoliday:  stageResponse(job.Holiday),
		},
		Error: job.Error,
	})
}

func stageResponse(p model.StageProgress) StageStatusResponse {
	return StageStatusResponse{Status: p.Status, Enriched: p.Enriched, Total: p.Total}
}
