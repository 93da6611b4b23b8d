package handlers

import (
	"database/sql"
	"net/http"

	"github.com/eddiguesti/jengu-backend/internal/database"
)

// AppVersion is the reported application version.
const AppVersion = "1.2.0"

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	db *sql.DB
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *sql.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	// Check database health
	if err := database.HealthCheck(h.db); err != nil {
		response := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		respondJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	// System is healthy
	response := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	respondJSON(w, http.StatusOK, response)
}

// VersionInfoResponse represents the version check response containing
// application and database schema version information.
type VersionInfoResponse struct {
	AppVersion string `json:"app_version"`
	DbVersion  int64  `json:"db_version"`
}

// Version handles GET requests to retrieve version information.
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	dbVersion, err := database.SchemaVersion(h.db)
	if err != nil {
		// Version info is best-effort; report the app version regardless.
		dbVersion = -1
	}

	respondJSON(w, http.StatusOK, VersionInfoResponse{
		AppVersion: AppVersion,
		DbVersion:  dbVersion,
	})
}
