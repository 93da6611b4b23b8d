package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
	"github.com/eddiguesti/jengu-backend/internal/provider"
)

// maxErrorLength bounds the error text retained on a failed job record; the
// full error still goes to the log.
const maxErrorLength = 500

// RowStore is the durable pricing-row storage the runner commits feature
// batches through. A batch update must be atomic: either every row in the
// batch gets its stage fields or none does.
type RowStore interface {
	ListByProperty(propertyID string) ([]model.PricingRow, error)
	UpdateTemporalBatch(rows []model.PricingRow) error
	UpdateWeatherBatch(rows []model.PricingRow) error
	UpdateHolidayBatch(rows []model.PricingRow) error
}

// JobStore is the durable job status store mutated only by the runner (and the
// service that creates records).
type JobStore interface {
	Create(job *model.EnrichmentJob) error
	Get(jobID string) (*model.EnrichmentJob, error)
	SetStatus(jobID string, status model.JobStatus, errMsg *string) error
	UpdateStage(jobID, stage string, progress model.StageProgress) error
	ListUnfinished() ([]string, error)
	Requeue(jobID string) error
	DeleteTerminalBefore(cutoff time.Time) (int64, error)
}

// PropertyStore resolves the property a job belongs to.
type PropertyStore interface {
	Get(propertyID string) (*model.Property, error)
}

// Dispatcher chains the downstream analytics job after a completed run.
type Dispatcher interface {
	Dispatch(propertyID, triggeredBy string) error
}

// Runner executes the three enrichment stages for one job: temporal, then
// weather, then holiday. The order is fixed, cheapest first, so a polling
// client sees partial progress early. Provider failures mark the stage failed
// and the job carries on; storage failures abort the job.
type Runner struct {
	properties   PropertyStore
	rows         RowStore
	jobs         JobStore
	weather      provider.WeatherSource
	holiday      provider.HolidaySource
	dispatcher   Dispatcher
	batchSize    int
	stageTimeout time.Duration
}

// NewRunner creates a Runner with the provided stores and providers.
func NewRunner(
	properties PropertyStore,
	rows RowStore,
	jobs JobStore,
	weather provider.WeatherSource,
	holiday provider.HolidaySource,
	dispatcher Dispatcher,
	batchSize int,
	stageTimeout time.Duration,
) *Runner {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Runner{
		properties:   properties,
		rows:         rows,
		jobs:         jobs,
		weather:      weather,
		holiday:      holiday,
		dispatcher:   dispatcher,
		batchSize:    batchSize,
		stageTimeout: stageTimeout,
	}
}

// Run executes one enrichment job to a terminal status. Rows already enriched
// by a previous run are simply overwritten; re-running is safe.
func (r *Runner) Run(ctx context.Context, jobID, propertyID string) {
	if err := r.jobs.SetStatus(jobID, model.JobRunning, nil); err != nil {
		log.Printf("job %s: cannot transition to running: %v", jobID, err)
		return
	}

	property, err := r.properties.Get(propertyID)
	if err != nil {
		r.failJob(jobID, fmt.Errorf("failed to load property: %w", err))
		return
	}

	rows, err := r.rows.ListByProperty(propertyID)
	if err != nil {
		r.failJob(jobID, fmt.Errorf("failed to load pricing rows: %w", err))
		return
	}

	log.Printf("job %s: enriching %d rows for property %s", jobID, len(rows), propertyID)

	if err := r.runTemporalStage(jobID, rows); err != nil {
		r.failJob(jobID, err)
		return
	}
	if err := r.runWeatherStage(ctx, jobID, property, rows); err != nil {
		r.failJob(jobID, err)
		return
	}
	if err := r.runHolidayStage(ctx, jobID, property, rows); err != nil {
		r.failJob(jobID, err)
		return
	}

	if err := r.jobs.SetStatus(jobID, model.JobCompleted, nil); err != nil {
		log.Printf("job %s: cannot transition to completed: %v", jobID, err)
		return
	}
	log.Printf("job %s: completed", jobID)

	// Chaining runs synchronously in the same execution context so a process
	// restart between jobs cannot drop the trigger. A dispatch failure is
	// logged but never reverts the completed status: enrichment succeeding and
	// chaining succeeding are independent guarantees.
	if err := r.dispatcher.Dispatch(propertyID, jobID); err != nil {
		log.Printf("job %s: analytics dispatch failed: %v", jobID, err)
	}
}

// runTemporalStage derives the date-based features. The computation is pure
// and total, so the only failure mode is storage, which is fatal.
func (r *Runner) runTemporalStage(jobID string, rows []model.PricingRow) error {
	progress := model.StageProgress{Status: model.StageRunning, Total: len(rows)}
	if err := r.jobs.UpdateStage(jobID, model.StageTemporal, progress); err != nil {
		return err
	}

	for start := 0; start < len(rows); start += r.batchSize {
		batch := rows[start:min(start+r.batchSize, len(rows))]

		for i := range batch {
			batch[i].Temporal = provider.ComputeTemporal(batch[i].Date)
		}

		if err := r.rows.UpdateTemporalBatch(batch); err != nil {
			progress.Status = model.StageFailed
			r.updateStageLogged(jobID, model.StageTemporal, progress)
			return fmt.Errorf("temporal stage: %w", err)
		}

		progress.Enriched += len(batch)
		if err := r.jobs.UpdateStage(jobID, model.StageTemporal, progress); err != nil {
			return err
		}
	}

	progress.Status = model.StageCompleted
	return r.jobs.UpdateStage(jobID, model.StageTemporal, progress)
}

// runWeatherStage joins one bulk archive lookup spanning the whole row set
// against the rows. Requires coordinates; skipped without them. A provider
// failure fails only this stage.
func (r *Runner) runWeatherStage(ctx context.Context, jobID string, property *model.Property, rows []model.PricingRow) error {
	if !property.HasCoordinates() {
		log.Printf("job %s: weather stage skipped: %v", jobID, apperrors.ErrMissingCoordinates)
		return r.jobs.UpdateStage(jobID, model.StageWeather,
			model.StageProgress{Status: model.StageSkipped, Total: len(rows)})
	}

	progress := model.StageProgress{Status: model.StageRunning, Total: len(rows)}
	if err := r.jobs.UpdateStage(jobID, model.StageWeather, progress); err != nil {
		return err
	}

	if len(rows) == 0 {
		progress.Status = model.StageCompleted
		return r.jobs.UpdateStage(jobID, model.StageWeather, progress)
	}

	// Rows arrive ordered by date, so the span is first..last.
	start, end := rows[0].Date, rows[len(rows)-1].Date

	fetchCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	features, err := r.weather.FetchDailyRange(fetchCtx, *property.Latitude, *property.Longitude, start, end)
	if err != nil {
		log.Printf("job %s: weather stage failed: %v", jobID, err)
		progress.Status = model.StageFailed
		return r.jobs.UpdateStage(jobID, model.StageWeather, progress)
	}

	for batchStart := 0; batchStart < len(rows); batchStart += r.batchSize {
		batch := rows[batchStart:min(batchStart+r.batchSize, len(rows))]

		for i := range batch {
			if f, found := features[batch[i].DateKey()]; found {
				batch[i].Weather = f
			}
		}

		if err := r.rows.UpdateWeatherBatch(batch); err != nil {
			progress.Status = model.StageFailed
			r.updateStageLogged(jobID, model.StageWeather, progress)
			return fmt.Errorf("weather stage: %w", err)
		}

		progress.Enriched += len(batch)
		if err := r.jobs.UpdateStage(jobID, model.StageWeather, progress); err != nil {
			return err
		}
	}

	progress.Status = model.StageCompleted
	return r.jobs.UpdateStage(jobID, model.StageWeather, progress)
}

// runHolidayStage joins the property country's holiday calendars against the
// rows. One calendar fetch per distinct year covers every distinct date.
// Requires a country code; skipped without one.
func (r *Runner) runHolidayStage(ctx context.Context, jobID string, property *model.Property, rows []model.PricingRow) error {
	if !property.HasCountry() {
		log.Printf("job %s: holiday stage skipped: %v", jobID, apperrors.ErrMissingCountry)
		return r.jobs.UpdateStage(jobID, model.StageHoliday,
			model.StageProgress{Status: model.StageSkipped, Total: len(rows)})
	}

	progress := model.StageProgress{Status: model.StageRunning, Total: len(rows)}
	if err := r.jobs.UpdateStage(jobID, model.StageHoliday, progress); err != nil {
		return err
	}

	if len(rows) == 0 {
		progress.Status = model.StageCompleted
		return r.jobs.UpdateStage(jobID, model.StageHoliday, progress)
	}

	calendar, err := r.fetchCalendars(ctx, *property.CountryCode, rows)
	if err != nil {
		log.Printf("job %s: holiday stage failed: %v", jobID, err)
		progress.Status = model.StageFailed
		return r.jobs.UpdateStage(jobID, model.StageHoliday, progress)
	}

	for batchStart := 0; batchStart < len(rows); batchStart += r.batchSize {
		batch := rows[batchStart:min(batchStart+r.batchSize, len(rows))]

		for i := range batch {
			name, isHoliday := calendar[batch[i].DateKey()]
			batch[i].Holiday.IsHoliday = &isHoliday
			if isHoliday {
				batch[i].Holiday.HolidayName = &name
			} else {
				batch[i].Holiday.HolidayName = nil
			}
		}

		if err := r.rows.UpdateHolidayBatch(batch); err != nil {
			progress.Status = model.StageFailed
			r.updateStageLogged(jobID, model.StageHoliday, progress)
			return fmt.Errorf("holiday stage: %w", err)
		}

		progress.Enriched += len(batch)
		if err := r.jobs.UpdateStage(jobID, model.StageHoliday, progress); err != nil {
			return err
		}
	}

	progress.Status = model.StageCompleted
	return r.jobs.UpdateStage(jobID, model.StageHoliday, progress)
}

// fetchCalendars retrieves the holiday calendar of every distinct year in the
// row set, at most two years in flight at once.
func (r *Runner) fetchCalendars(ctx context.Context, countryCode string, rows []model.PricingRow) (map[string]string, error) {
	years := []int{}
	seen := map[int]bool{}
	for _, row := range rows {
		year := row.Date.UTC().Year()
		if !seen[year] {
			seen[year] = true
			years = append(years, year)
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	group, fetchCtx := errgroup.WithContext(fetchCtx)
	group.SetLimit(2)

	calendars := make([]map[string]string, len(years))
	for i, year := range years {
		i, year := i, year
		group.Go(func() error {
			calendar, err := r.holiday.HolidaysForYear(fetchCtx, countryCode, year)
			if err != nil {
				return err
			}
			calendars[i] = calendar
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := map[string]string{}
	for _, calendar := range calendars {
		for date, name := range calendar {
			merged[date] = name
		}
	}
	return merged, nil
}

// failJob marks the job failed, retaining a truncated error message for the
// polling client.
func (r *Runner) failJob(jobID string, err error) {
	log.Printf("job %s: failed: %v", jobID, err)

	message := err.Error()
	if len(message) > maxErrorLength {
		message = message[:maxErrorLength]
	}

	if statusErr := r.jobs.SetStatus(jobID, model.JobFailed, &message); statusErr != nil {
		if !errors.Is(statusErr, context.Canceled) {
			log.Printf("job %s: cannot record failure: %v", jobID, statusErr)
		}
	}
}

func (r *Runner) updateStageLogged(jobID, stage string, progress model.StageProgress) {
	if err := r.jobs.UpdateStage(jobID, stage, progress); err != nil {
		log.Printf("job %s: cannot record %s stage status: %v", jobID, stage, err)
	}
}
