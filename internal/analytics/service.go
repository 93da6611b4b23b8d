// Package analytics implements the downstream job chained onto completed
// enrichment runs: a per-property pricing summary over the enriched rows.
package analytics

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/eddiguesti/jengu-backend/internal/model"
)

// RowStore loads the enriched rows a summary is computed from.
type RowStore interface {
	ListByProperty(propertyID string) ([]model.PricingRow, error)
}

// SummaryStore persists analytics jobs and summaries.
type SummaryStore interface {
	SetJobStatus(jobID string, status model.JobStatus, errMsg *string) error
	UpsertSummary(s *model.AnalyticsSummary) error
	GetSummary(propertyID string) (*model.AnalyticsSummary, error)
}

// Service computes and stores per-property analytics summaries.
type Service struct {
	rows  RowStore
	store SummaryStore
}

// NewService creates an analytics Service.
func NewService(rows RowStore, store SummaryStore) *Service {
	return &Service{rows: rows, store: store}
}

// GetSummary returns the latest summary for a property.
func (s *Service) GetSummary(propertyID string) (*model.AnalyticsSummary, error) {
	return s.store.GetSummary(propertyID)
}

// Run executes one analytics job to a terminal status. Enrichment gaps are
// tolerated: rows missing a feature simply drop out of the aggregates that
// need it.
func (s *Service) Run(jobID, propertyID string) {
	if err := s.store.SetJobStatus(jobID, model.JobRunning, nil); err != nil {
		log.Printf("analytics job %s: cannot transition to running: %v", jobID, err)
		return
	}

	rows, err := s.rows.ListByProperty(propertyID)
	if err != nil {
		message := err.Error()
		if statusErr := s.store.SetJobStatus(jobID, model.JobFailed, &message); statusErr != nil {
			log.Printf("analytics job %s: cannot record failure: %v", jobID, statusErr)
		}
		return
	}

	summary := Summarize(propertyID, rows)
	if err := s.store.UpsertSummary(summary); err != nil {
		message := err.Error()
		if statusErr := s.store.SetJobStatus(jobID, model.JobFailed, &message); statusErr != nil {
			log.Printf("analytics job %s: cannot record failure: %v", jobID, statusErr)
		}
		return
	}

	if err := s.store.SetJobStatus(jobID, model.JobCompleted, nil); err != nil {
		log.Printf("analytics job %s: cannot transition to completed: %v", jobID, err)
		return
	}
	log.Printf("analytics job %s: summary updated for property %s (%d rows)", jobID, propertyID, len(rows))
}

// Summarize computes the aggregate summary for a row set.
func Summarize(propertyID string, rows []model.PricingRow) *model.AnalyticsSummary {
	summary := &model.AnalyticsSummary{
		ID:           uuid.NewString(),
		PropertyID:   propertyID,
		RowCount:     len(rows),
		CalculatedAt: time.Now().UTC(),
	}

	if len(rows) == 0 {
		return summary
	}

	var (
		total        float64
		weekend      meanAccumulator
		weekday      meanAccumulator
		holiday      meanAccumulator
		nonHoliday   meanAccumulator
		rainy        meanAccumulator
		clear        meanAccumulator
		seasonTotals = map[string]*meanAccumulator{}
	)

	for _, row := range rows {
		total += row.Price

		if row.Temporal.IsWeekend != nil {
			if *row.Temporal.IsWeekend {
				weekend.add(row.Price)
			} else {
				weekday.add(row.Price)
			}
		}

		if row.Temporal.Season != nil {
			acc, found := seasonTotals[*row.Temporal.Season]
			if !found {
				acc = &meanAccumulator{}
				seasonTotals[*row.Temporal.Season] = acc
			}
			acc.add(row.Price)
		}

		if row.Holiday.IsHoliday != nil {
			if *row.Holiday.IsHoliday {
				holiday.add(row.Price)
			} else {
				nonHoliday.add(row.Price)
			}
		}

		if row.Weather.Condition != nil {
			switch *row.Weather.Condition {
			case "rainy", "drizzle":
				rainy.add(row.Price)
			case "clear":
				clear.add(row.Price)
			}
		}
	}

	summary.AveragePrice = total / float64(len(rows))
	summary.WeekendAveragePrice = weekend.mean()
	summary.WeekdayAveragePrice = weekday.mean()
	summary.RainyAveragePrice = rainy.mean()
	summary.ClearAveragePrice = clear.mean()

	if holidayMean, baseMean := holiday.mean(), nonHoliday.mean(); holidayMean != nil && baseMean != nil && *baseMean > 0 {
		uplift := (*holidayMean - *baseMean) / *baseMean * 100
		summary.HolidayUpliftPct = &uplift
	}

	if len(seasonTotals) > 0 {
		summary.SeasonAverages = map[string]float64{}
		for season, acc := range seasonTotals {
			if m := acc.mean(); m != nil {
				summary.SeasonAverages[season] = *m
			}
		}
	}

	return summary
}

// meanAccumulator tracks a running sum and count for an optional average.
type meanAccumulator struct {
	sum   float64
	count int
}

func (a *meanAccumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a *meanAccumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	m := a.sum / float64(a.count)
	return &m
}
