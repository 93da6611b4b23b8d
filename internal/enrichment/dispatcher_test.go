package enrichment

import (
	"testing"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/repository"
	"github.com/eddiguesti/jengu-backend/internal/testutil"
)

func TestAnalyticsDispatcher(t *testing.T) {
	t.Run("DispatchQueuesOneJob", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)

		queue := NewQueue(10)
		dispatcher := NewAnalyticsDispatcher(repository.NewAnalyticsRepository(db), queue)

		if err := dispatcher.Dispatch(property.ID, property.ID+"-1"); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}

		if len(queue.tasks) != 1 {
			t.Fatalf("Expected 1 queued task, got %d", len(queue.tasks))
		}
		task := <-queue.tasks
		if task.Kind != TaskAnalytics {
			t.Errorf("Expected analytics task, got %s", task.Kind)
		}
		if task.PropertyID != property.ID {
			t.Errorf("Expected property %s, got %s", property.ID, task.PropertyID)
		}

		testutil.AssertRowCount(t, db, "analytics_job", 1)
	})

	t.Run("DuplicateTriggerIsNoOp", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)

		queue := NewQueue(10)
		dispatcher := NewAnalyticsDispatcher(repository.NewAnalyticsRepository(db), queue)

		trigger := model.NewEnrichmentJobID(property.ID, testutil.NewJob(property.ID).CreatedAt)
		if err := dispatcher.Dispatch(property.ID, trigger); err != nil {
			t.Fatalf("First dispatch failed: %v", err)
		}
		if err := dispatcher.Dispatch(property.ID, trigger); err != nil {
			t.Fatalf("Expected duplicate dispatch to be a no-op, got %v", err)
		}

		if len(queue.tasks) != 1 {
			t.Errorf("Expected 1 queued task after duplicate dispatch, got %d", len(queue.tasks))
		}
		testutil.AssertRowCount(t, db, "analytics_job", 1)
	})

	t.Run("RecoverPendingReEnqueuesPersistedJobs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		property := testutil.NewProperty().Build(t, db)
		analyticsRepo := repository.NewAnalyticsRepository(db)

		// A full queue at dispatch time drops the task but keeps the record.
		full := NewQueue(0)
		dispatcher := NewAnalyticsDispatcher(analyticsRepo, full)
		if err := dispatcher.Dispatch(property.ID, property.ID+"-1"); err == nil {
			t.Fatal("Expected dispatch against a full queue to fail")
		}
		testutil.AssertRowCount(t, db, "analytics_job", 1)

		// An interrupted running job and a finished one from earlier runs.
		interrupted := &model.AnalyticsJob{
			ID:          testutil.MakeID(),
			PropertyID:  property.ID,
			TriggeredBy: property.ID + "-2",
			Status:      model.JobQueued,
			CreatedAt:   time.Now().UTC(),
		}
		done := &model.AnalyticsJob{
			ID:          testutil.MakeID(),
			PropertyID:  property.ID,
			TriggeredBy: property.ID + "-3",
			Status:      model.JobQueued,
			CreatedAt:   time.Now().UTC(),
		}
		for _, job := range []*model.AnalyticsJob{interrupted, done} {
			if err := analyticsRepo.CreateJob(job); err != nil {
				t.Fatalf("CreateJob failed: %v", err)
			}
		}
		if err := analyticsRepo.SetJobStatus(interrupted.ID, model.JobRunning, nil); err != nil {
			t.Fatalf("SetJobStatus failed: %v", err)
		}
		if err := analyticsRepo.SetJobStatus(done.ID, model.JobCompleted, nil); err != nil {
			t.Fatalf("SetJobStatus failed: %v", err)
		}

		// Next boot: a fresh queue picks the persisted jobs back up.
		queue := NewQueue(10)
		dispatcher = NewAnalyticsDispatcher(analyticsRepo, queue)
		if err := dispatcher.RecoverPending(); err != nil {
			t.Fatalf("RecoverPending failed: %v", err)
		}

		if len(queue.tasks) != 2 {
			t.Fatalf("Expected 2 recovered tasks, got %d", len(queue.tasks))
		}
		for i := 0; i < 2; i++ {
			task := <-queue.tasks
			if task.Kind != TaskAnalytics {
				t.Errorf("Expected analytics task, got %s", task.Kind)
			}
		}

		// The interrupted job is reset to queued before re-submission.
		job, err := analyticsRepo.GetJob(interrupted.ID)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if job.Status != model.JobQueued {
			t.Errorf("Expected interrupted job requeued, got %s", job.Status)
		}

		// Terminal jobs are left alone.
		job, _ = analyticsRepo.GetJob(done.ID)
		if job.Status != model.JobCompleted {
			t.Errorf("Expected completed job untouched, got %s", job.Status)
		}
	})
}
