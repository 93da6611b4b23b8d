package enrichment

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// AnalyticsJobStore persists the chained analytics jobs. CreateJob must reject
// a duplicate triggered_by with apperrors.ErrDuplicateEntry.
type AnalyticsJobStore interface {
	CreateJob(job *model.AnalyticsJob) error
	ListUnfinishedJobs() ([]model.AnalyticsJob, error)
	RequeueJob(jobID string) error
}

// AnalyticsDispatcher enqueues the downstream analytics job when an enrichment
// job completes. The durable analytics job record is written before the task
// is queued, and the unique triggered_by constraint makes dispatching
// idempotent per enrichment job.
type AnalyticsDispatcher struct {
	store AnalyticsJobStore
	queue *Queue
}

// NewAnalyticsDispatcher creates an AnalyticsDispatcher.
func NewAnalyticsDispatcher(store AnalyticsJobStore, queue *Queue) *AnalyticsDispatcher {
	return &AnalyticsDispatcher{store: store, queue: queue}
}

// Dispatch enqueues exactly one analytics job for the completed enrichment
// job identified by triggeredBy. Calling it again for the same trigger is a
// no-op.
func (d *AnalyticsDispatcher) Dispatch(propertyID, triggeredBy string) error {
	job := &model.AnalyticsJob{
		ID:          uuid.NewString(),
		PropertyID:  propertyID,
		TriggeredBy: triggeredBy,
		Status:      model.JobQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if err := d.store.CreateJob(job); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			log.Printf("analytics job for trigger %s already dispatched", triggeredBy)
			return nil
		}
		return fmt.Errorf("failed to persist analytics job: %w", err)
	}

	err := d.queue.Submit(Task{
		Kind:        TaskAnalytics,
		JobID:       job.ID,
		PropertyID:  propertyID,
		TriggeredBy: triggeredBy,
	})
	if err != nil {
		// The record exists, so RecoverPending re-enqueues it on the next boot;
		// the enrichment job's completed status is not affected.
		return fmt.Errorf("failed to queue analytics job %s: %w", job.ID, err)
	}

	return nil
}

// RecoverPending re-enqueues analytics jobs that were queued or running when
// the process last stopped, including jobs whose dispatch-time Submit was
// rejected. Interrupted running jobs restart from scratch; the summary is a
// full recompute, so replaying one is safe.
func (d *AnalyticsDispatcher) RecoverPending() error {
	jobs, err := d.store.ListUnfinishedJobs()
	if err != nil {
		return fmt.Errorf("failed to list unfinished analytics jobs: %w", err)
	}

	for _, job := range jobs {
		if job.Status == model.JobRunning {
			if err := d.store.RequeueJob(job.ID); err != nil {
				log.Printf("recovery: cannot requeue analytics job %s: %v", job.ID, err)
				continue
			}
		}

		task := Task{
			Kind:        TaskAnalytics,
			JobID:       job.ID,
			PropertyID:  job.PropertyID,
			TriggeredBy: job.TriggeredBy,
		}
		if err := d.queue.Submit(task); err != nil {
			log.Printf("recovery: cannot schedule analytics job %s: %v", job.ID, err)
			continue
		}
		log.Printf("recovery: re-enqueued analytics job %s", job.ID)
	}

	return nil
}

var _ Dispatcher = (*AnalyticsDispatcher)(nil)
