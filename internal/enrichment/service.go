package enrichment

import (
	"fmt"
	"log"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// RowCounter reports how many pricing rows a property has.
type RowCounter interface {
	CountByProperty(propertyID string) (int, error)
}

// Service is the facade the HTTP layer talks to: it accepts enrichment
// requests, hands them to the worker pool, and answers status polls. The job
// record is persisted before the task is queued, so a request that has been
// acknowledged can always be recovered after a process reload.
type Service struct {
	properties PropertyStore
	rowCounter RowCounter
	jobs       JobStore
	queue      *Queue
}

// NewService creates a Service with the provided stores and queue.
func NewService(properties PropertyStore, rowCounter RowCounter, jobs JobStore, queue *Queue) *Service {
	return &Service{
		properties: properties,
		rowCounter: rowCounter,
		jobs:       jobs,
		queue:      queue,
	}
}

// RequestEnrichment creates and schedules a new enrichment job for a property
// and returns its job ID immediately. The returned ID is the exact token the
// client must present on every status poll. Each request creates a fresh job,
// even back-to-back requests for the same property.
func (s *Service) RequestEnrichment(propertyID string) (string, error) {
	if _, err := s.properties.Get(propertyID); err != nil {
		return "", err
	}

	count, err := s.rowCounter.CountByProperty(propertyID)
	if err != nil {
		return "", fmt.Errorf("failed to count pricing rows: %w", err)
	}
	if count == 0 {
		return "", apperrors.ErrNoRows
	}

	now := time.Now().UTC()
	job := &model.EnrichmentJob{
		ID:         model.NewEnrichmentJobID(propertyID, now),
		PropertyID: propertyID,
		Status:     model.JobQueued,
		Temporal:   model.StageProgress{Status: model.StagePending, Total: count},
		Weather:    model.StageProgress{Status: model.StagePending, Total: count},
		Holiday:    model.StageProgress{Status: model.StagePending, Total: count},
		CreatedAt:  now,
	}

	// Persist first: the record is the durability boundary, the queued task is
	// just a pointer to it.
	if err := s.jobs.Create(job); err != nil {
		return "", fmt.Errorf("failed to create job record: %w", err)
	}

	if err := s.queue.Submit(Task{Kind: TaskEnrichment, JobID: job.ID, PropertyID: propertyID}); err != nil {
		message := err.Error()
		if statusErr := s.jobs.SetStatus(job.ID, model.JobFailed, &message); statusErr != nil {
			log.Printf("job %s: cannot record queue rejection: %v", job.ID, statusErr)
		}
		return "", err
	}

	log.Printf("job %s: queued for property %s (%d rows)", job.ID, propertyID, count)
	return job.ID, nil
}

// GetJobStatus returns the job record for the exact ID issued at request time.
// Returns apperrors.ErrJobNotFound for unknown or expired IDs; the client must
// treat that distinctly from a failed job, since terminal records expire.
func (s *Service) GetJobStatus(jobID string) (*model.EnrichmentJob, error) {
	return s.jobs.Get(jobID)
}

// RecoverPending re-enqueues jobs that were queued or running when the process
// last stopped. Interrupted running jobs restart from the beginning; stage
// writes are idempotent overwrites, so replaying them is safe.
func (s *Service) RecoverPending() error {
	ids, err := s.jobs.ListUnfinished()
	if err != nil {
		return fmt.Errorf("failed to list unfinished jobs: %w", err)
	}

	for _, id := range ids {
		job, err := s.jobs.Get(id)
		if err != nil {
			log.Printf("recovery: cannot load job %s: %v", id, err)
			continue
		}

		if job.Status == model.JobRunning {
			if err := s.jobs.Requeue(id); err != nil {
				log.Printf("recovery: cannot requeue job %s: %v", id, err)
				continue
			}
		}

		if err := s.queue.Submit(Task{Kind: TaskEnrichment, JobID: id, PropertyID: job.PropertyID}); err != nil {
			log.Printf("recovery: cannot schedule job %s: %v", id, err)
			continue
		}
		log.Printf("recovery: re-enqueued job %s", id)
	}

	return nil
}

// SweepExpired deletes terminal job records older than the retention window.
// Driven by the cron schedule.
func (s *Service) SweepExpired(retention time.Duration) {
	removed, err := s.jobs.DeleteTerminalBefore(time.Now().Add(-retention))
	if err != nil {
		log.Printf("job retention sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("job retention sweep removed %d terminal records", removed)
	}
}
