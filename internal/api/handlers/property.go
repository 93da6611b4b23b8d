package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/api/response"
	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/repository"
	"github.com/eddiguesti/jengu-backend/internal/validation"
)

// PropertyHandler handles HTTP requests for property and pricing-row
// endpoints: the upstream collaborators that feed the enrichment pipeline.
type PropertyHandler struct {
	propertyRepo *repository.PropertyRepository
	rowRepo      *repository.PricingRowRepository
}

// NewPropertyHandler creates a new PropertyHandler with the provided repositories.
func NewPropertyHandler(propertyRepo *repository.PropertyRepository, rowRepo *repository.PricingRowRepository) *PropertyHandler {
	return &PropertyHandler{
		propertyRepo: propertyRepo,
		rowRepo:      rowRepo,
	}
}

// CreatePropertyRequest is the payload for creating a property.
type CreatePropertyRequest struct {
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
}

// Create handles POST requests to register a new property.
//
// Endpoint: POST /api/property
// Response: 201 Created with the property
// Error: 400 on invalid payload
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Name == "" {
		response.RespondError(w, http.StatusBadRequest, "name is required", "")
		return
	}
	if err := validation.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid coordinates", err.Error())
		return
	}
	if err := validation.ValidateCountryCode(req.CountryCode); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid country code", err.Error())
		return
	}

	property := &model.Property{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		CountryCode: req.CountryCode,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.propertyRepo.Create(property); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create property", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, property)
}

// Get handles GET requests for a single property.
//
// Endpoint: GET /api/property/{uuid}
// Response: 200 OK with the property
// Error: 404 if the property does not exist
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	property, err := h.propertyRepo.Get(propertyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			response.RespondError(w, http.StatusNotFound, "property not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve property", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, property)
}

// UpdateLocationRequest is the payload for setting a property's location.
type UpdateLocationRequest struct {
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CountryCode *string  `json:"country_code,omitempty"`
}

// UpdateLocation handles PUT requests to set the coordinate pair and country
// code, which control whether the weather and holiday stages apply.
//
// Endpoint: PUT /api/property/{uuid}/location
// Response: 204 No Content
// Error: 400 on invalid payload, 404 if the property does not exist
func (h *PropertyHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid coordinates", err.Error())
		return
	}
	if err := validation.ValidateCountryCode(req.CountryCode); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid country code", err.Error())
		return
	}

	if err := h.propertyRepo.UpdateLocation(propertyID, req.Latitude, req.Longitude, req.CountryCode); err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			response.RespondError(w, http.StatusNotFound, "property not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update property", err.Error())
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// UploadRowRequest is one pricing observation in an upload payload.
type UploadRowRequest struct {
	Date      string          `json:"date"`
	Price     float64         `json:"price"`
	Occupancy *float64        `json:"occupancy,omitempty"`
	Bookings  *int            `json:"bookings,omitempty"`
	Extra     json.RawMessage `json:"extra,omitempty"`
}

// UploadRowsResponse reports how many rows were stored.
type UploadRowsResponse struct {
	Inserted int `json:"inserted"`
}

// UploadRows handles POST requests that bulk-insert pricing rows for a
// property. Rows colliding on date overwrite the previous observation.
//
// Endpoint: POST /api/property/{uuid}/rows
// Response: 201 Created with the inserted count
// Error: 400 on invalid payload, 404 if the property does not exist
func (h *PropertyHandler) UploadRows(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	if _, err := h.propertyRepo.Get(propertyID); err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			response.RespondError(w, http.StatusNotFound, "property not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve property", err.Error())
		return
	}

	var req []UploadRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req) == 0 {
		response.RespondError(w, http.StatusBadRequest, "at least one row is required", "")
		return
	}

	rows := make([]model.PricingRow, 0, len(req))
	for i, upload := range req {
		date, err := validation.ParseTime(upload.Date)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid row date", map[string]any{
				"index": i, "date": upload.Date,
			})
			return
		}
		rows = append(rows, model.PricingRow{
			PropertyID: propertyID,
			Date:       date,
			Price:      upload.Price,
			Occupancy:  upload.Occupancy,
			Bookings:   upload.Bookings,
			Extra:      upload.Extra,
		})
	}

	if err := h.rowRepo.InsertBatch(propertyID, rows); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store pricing rows", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, UploadRowsResponse{Inserted: len(rows)})
}

// ListRows handles GET requests for a property's rows, including whatever
// enrichment fields have been written so far.
//
// Endpoint: GET /api/property/{uuid}/rows
// Response: 200 OK with an array of pricing rows
func (h *PropertyHandler) ListRows(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "uuid")

	rows, err := h.rowRepo.ListByProperty(propertyID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve pricing rows", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rows)
}
