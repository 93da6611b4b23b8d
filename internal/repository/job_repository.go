package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// JobRepository is the durable job status store. Records are created before a
// task is handed to the in-process queue, mutated only by the job runner, and
// looked up strictly by the exact job ID issued at creation time. Terminal
// records are immutable and eventually swept by the retention schedule.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the provided database connection.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a freshly requested job in the queued state.
func (r *JobRepository) Create(job *model.EnrichmentJob) error {
	query := `
		INSERT INTO enrichment_job (
			id, property_id, status,
			temporal_status, temporal_enriched, temporal_total,
			weather_status, weather_enriched, weather_total,
			holiday_status, holiday_enriched, holiday_total,
			error, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := job.CreatedAt.UTC().Format(time.RFC3339)
	_, err := r.db.Exec(query,
		job.ID, job.PropertyID, job.Status,
		job.Temporal.Status, job.Temporal.Enriched, job.Temporal.Total,
		job.Weather.Status, job.Weather.Enriched, job.Weather.Total,
		job.Holiday.Status, job.Holiday.Enriched, job.Holiday.Total,
		job.Error, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment job: %w", err)
	}

	return nil
}

// Get retrieves a job by its exact ID.
// Returns apperrors.ErrJobNotFound if no record exists (possibly expired).
func (r *JobRepository) Get(jobID string) (*model.EnrichmentJob, error) {
	query := `
		SELECT id, property_id, status,
		       temporal_status, temporal_enriched, temporal_total,
		       weather_status, weather_enriched, weather_total,
		       holiday_status, holiday_enriched, holiday_total,
		       error, created_at, updated_at
		FROM enrichment_job
		WHERE id = ?
	`

	var (
		job          model.EnrichmentJob
		createdAtStr string
		updatedAtStr string
	)
	err := r.db.QueryRow(query, jobID).Scan(
		&job.ID, &job.PropertyID, &job.Status,
		&job.Temporal.Status, &job.Temporal.Enriched, &job.Temporal.Total,
		&job.Weather.Status, &job.Weather.Enriched, &job.Weather.Total,
		&job.Holiday.Status, &job.Holiday.Enriched, &job.Holiday.Total,
		&job.Error, &createdAtStr, &updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query enrichment_job table: %w", err)
	}

	job.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job created_at: %w", err)
	}
	job.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job updated_at: %w", err)
	}

	return &job, nil
}

// SetStatus transitions a job to a new lifecycle status. Transitions out of a
// terminal status are rejected with apperrors.ErrTerminalJob; a new enrichment
// request must create a new job instead.
func (r *JobRepository) SetStatus(jobID string, status model.JobStatus, errMsg *string) error {
	query := `
		UPDATE enrichment_job
		SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)
	`

	result, err := r.db.Exec(query, status, errMsg, time.Now().UTC().Format(time.RFC3339),
		jobID, model.JobQueued, model.JobRunning)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		if _, err := r.Get(jobID); err != nil {
			return err
		}
		return apperrors.ErrTerminalJob
	}

	return nil
}

// UpdateStage writes the progress counters and status of one stage. Called
// after every committed batch; this is the unit of progress a polling client
// can observe mid-stage.
func (r *JobRepository) UpdateStage(jobID, stage string, progress model.StageProgress) error {
	var query string
	switch stage {
	case model.StageTemporal:
		query = `UPDATE enrichment_job SET temporal_status = ?, temporal_enriched = ?, temporal_total = ?, updated_at = ? WHERE id = ?`
	case model.StageWeather:
		query = `UPDATE enrichment_job SET weather_status = ?, weather_enriched = ?, weather_total = ?, updated_at = ? WHERE id = ?`
	case model.StageHoliday:
		query = `UPDATE enrichment_job SET holiday_status = ?, holiday_enriched = ?, holiday_total = ?, updated_at = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown enrichment stage: %s", stage)
	}

	result, err := r.db.Exec(query, progress.Status, progress.Enriched, progress.Total,
		time.Now().UTC().Format(time.RFC3339), jobID)
	if err != nil {
		return fmt.Errorf("failed to update %s stage progress: %w", stage, err)
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

// ListUnfinished returns IDs of jobs that are not terminal, oldest first.
// Used at boot to re-enqueue work that was queued or mid-flight when the
// process last stopped.
func (r *JobRepository) ListUnfinished() ([]string, error) {
	query := `
		SELECT id
		FROM enrichment_job
		WHERE status IN (?, ?)
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, model.JobQueued, model.JobRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to query unfinished jobs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unfinished jobs: %w", err)
	}

	return ids, nil
}

// Requeue resets a non-terminal job back to queued. Safe for interrupted
// running jobs because every stage overwrites its fields idempotently.
func (r *JobRepository) Requeue(jobID string) error {
	return r.SetStatus(jobID, model.JobQueued, nil)
}

// DeleteTerminalBefore removes completed and failed job records whose last
// update is older than the cutoff. Returns the number of records removed.
func (r *JobRepository) DeleteTerminalBefore(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM enrichment_job
		WHERE status IN (?, ?) AND updated_at < ?
	`

	result, err := r.db.Exec(query, model.JobCompleted, model.JobFailed,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired job records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}
