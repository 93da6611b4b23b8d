package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// AnalyticsRepository provides data access methods for the analytics_job and
// analytics_summary tables. Summaries are one-per-property upserts; jobs carry
// a unique triggered_by so a completed enrichment job can never chain twice.
type AnalyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository with the provided database connection.
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CreateJob inserts a queued analytics job. Returns apperrors.ErrDuplicateEntry
// when a job for the same triggering enrichment job already exists, which the
// dispatcher treats as an already-dispatched no-op.
func (r *AnalyticsRepository) CreateJob(job *model.AnalyticsJob) error {
	query := `
		INSERT INTO analytics_job (id, property_id, triggered_by, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := job.CreatedAt.UTC().Format(time.RFC3339)
	_, err := r.db.Exec(query, job.ID, job.PropertyID, job.TriggeredBy, job.Status, job.Error, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert analytics job: %w", err)
	}

	return nil
}

// GetJob retrieves an analytics job by ID.
func (r *AnalyticsRepository) GetJob(jobID string) (*model.AnalyticsJob, error) {
	query := `
		SELECT id, property_id, triggered_by, status, error, created_at, updated_at
		FROM analytics_job
		WHERE id = ?
	`

	var (
		job          model.AnalyticsJob
		createdAtStr string
		updatedAtStr string
	)
	err := r.db.QueryRow(query, jobID).Scan(
		&job.ID, &job.PropertyID, &job.TriggeredBy, &job.Status, &job.Error,
		&createdAtStr, &updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics_job table: %w", err)
	}

	job.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analytics job created_at: %w", err)
	}
	job.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analytics job updated_at: %w", err)
	}

	return &job, nil
}

// SetJobStatus transitions an analytics job to a new lifecycle status.
func (r *AnalyticsRepository) SetJobStatus(jobID string, status model.JobStatus, errMsg *string) error {
	query := `
		UPDATE analytics_job
		SET status = ?, error = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, status, errMsg, time.Now().UTC().Format(time.RFC3339), jobID)
	if err != nil {
		return fmt.Errorf("failed to update analytics job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrJobNotFound
	}

	return nil
}

// ListUnfinishedJobs returns analytics jobs that are not terminal, oldest
// first. Used at boot to re-enqueue chained work whose in-memory task was lost
// to a restart or a full queue.
func (r *AnalyticsRepository) ListUnfinishedJobs() ([]model.AnalyticsJob, error) {
	query := `
		SELECT id, property_id, triggered_by, status
		FROM analytics_job
		WHERE status IN (?, ?)
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, model.JobQueued, model.JobRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to query unfinished analytics jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.AnalyticsJob{}
	for rows.Next() {
		var job model.AnalyticsJob
		if err := rows.Scan(&job.ID, &job.PropertyID, &job.TriggeredBy, &job.Status); err != nil {
			return nil, fmt.Errorf("failed to scan analytics job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unfinished analytics jobs: %w", err)
	}

	return jobs, nil
}

// RequeueJob resets a non-terminal analytics job back to queued. Safe for
// interrupted running jobs because the summary is a full recompute.
func (r *AnalyticsRepository) RequeueJob(jobID string) error {
	return r.SetJobStatus(jobID, model.JobQueued, nil)
}

// UpsertSummary writes the per-property summary, replacing any previous one.
func (r *AnalyticsRepository) UpsertSummary(s *model.AnalyticsSummary) error {
	var seasonAverages any
	if len(s.SeasonAverages) > 0 {
		encoded, err := json.Marshal(s.SeasonAverages)
		if err != nil {
			return fmt.Errorf("failed to encode season averages: %w", err)
		}
		seasonAverages = string(encoded)
	}

	query := `
		INSERT INTO analytics_summary (
			id, property_id, row_count, average_price,
			weekend_average_price, weekday_average_price, holiday_uplift_pct,
			season_averages, rainy_average_price, clear_average_price, calculated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			row_count = excluded.row_count,
			average_price = excluded.average_price,
			weekend_average_price = excluded.weekend_average_price,
			weekday_average_price = excluded.weekday_average_price,
			holiday_uplift_pct = excluded.holiday_uplift_pct,
			season_averages = excluded.season_averages,
			rainy_average_price = excluded.rainy_average_price,
			clear_average_price = excluded.clear_average_price,
			calculated_at = excluded.calculated_at
	`

	_, err := r.db.Exec(query,
		s.ID, s.PropertyID, s.RowCount, s.AveragePrice,
		s.WeekendAveragePrice, s.WeekdayAveragePrice, s.HolidayUpliftPct,
		seasonAverages, s.RainyAveragePrice, s.ClearAveragePrice,
		s.CalculatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert analytics summary: %w", err)
	}

	return nil
}

// GetSummary retrieves the latest summary for a property.
// Returns apperrors.ErrAnalyticsNotFound if none has been calculated yet.
func (r *AnalyticsRepository) GetSummary(propertyID string) (*model.AnalyticsSummary, error) {
	query := `
		SELECT id, property_id, row_count, average_price,
		       weekend_average_price, weekday_average_price, holiday_uplift_pct,
		       season_averages, rainy_average_price, clear_average_price, calculated_at
		FROM analytics_summary
		WHERE property_id = ?
	`

	var (
		s               model.AnalyticsSummary
		seasonAverages  sql.NullString
		calculatedAtStr string
	)
	err := r.db.QueryRow(query, propertyID).Scan(
		&s.ID, &s.PropertyID, &s.RowCount, &s.AveragePrice,
		&s.WeekendAveragePrice, &s.WeekdayAveragePrice, &s.HolidayUpliftPct,
		&seasonAverages, &s.RainyAveragePrice, &s.ClearAveragePrice, &calculatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrAnalyticsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics_summary table: %w", err)
	}

	if seasonAverages.Valid {
		if err := json.Unmarshal([]byte(seasonAverages.String), &s.SeasonAverages); err != nil {
			return nil, fmt.Errorf("failed to decode season averages: %w", err)
		}
	}
	s.CalculatedAt, err = ParseTime(calculatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary calculated_at: %w", err)
	}

	return &s, nil
}
