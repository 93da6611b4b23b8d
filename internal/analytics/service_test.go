package analytics

import (
	"testing"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/model"
)

func ptr[T any](v T) *T { return &v }

// makeRow builds an enriched row for summary tests.
func makeRow(price float64, weekend, holiday bool, season, condition string) model.PricingRow {
	return model.PricingRow{
		Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Price: price,
		Temporal: model.TemporalFeatures{
			IsWeekend: ptr(weekend),
			Season:    ptr(season),
		},
		Weather: model.WeatherFeatures{
			Condition: ptr(condition),
		},
		Holiday: model.HolidayFeatures{
			IsHoliday: ptr(holiday),
		},
	}
}

func TestSummarize(t *testing.T) {
	t.Run("EmptyRowSet", func(t *testing.T) {
		summary := Summarize("prop-1", nil)

		if summary.RowCount != 0 {
			t.Errorf("Expected row count 0, got %d", summary.RowCount)
		}
		if summary.AveragePrice != 0 {
			t.Errorf("Expected zero average, got %f", summary.AveragePrice)
		}
		if summary.WeekendAveragePrice != nil {
			t.Error("Expected nil weekend average for empty row set")
		}
	})

	t.Run("Averages", func(t *testing.T) {
		rows := []model.PricingRow{
			makeRow(100, false, false, "Winter", "clear"),
			makeRow(120, false, false, "Winter", "rainy"),
			makeRow(150, true, false, "Summer", "clear"),
			makeRow(170, true, true, "Summer", "drizzle"),
		}

		summary := Summarize("prop-1", rows)

		if summary.RowCount != 4 {
			t.Errorf("Expected row count 4, got %d", summary.RowCount)
		}
		if summary.AveragePrice != 135 {
			t.Errorf("Expected average 135, got %f", summary.AveragePrice)
		}
		if *summary.WeekendAveragePrice != 160 {
			t.Errorf("Expected weekend average 160, got %f", *summary.WeekendAveragePrice)
		}
		if *summary.WeekdayAveragePrice != 110 {
			t.Errorf("Expected weekday average 110, got %f", *summary.WeekdayAveragePrice)
		}
		// Drizzle counts as rainy.
		if *summary.RainyAveragePrice != 145 {
			t.Errorf("Expected rainy average 145, got %f", *summary.RainyAveragePrice)
		}
		if *summary.ClearAveragePrice != 125 {
			t.Errorf("Expected clear average 125, got %f", *summary.ClearAveragePrice)
		}
		if summary.SeasonAverages["Winter"] != 110 || summary.SeasonAverages["Summer"] != 160 {
			t.Errorf("Unexpected season averages: %v", summary.SeasonAverages)
		}
	})

	t.Run("HolidayUplift", func(t *testing.T) {
		rows := []model.PricingRow{
			makeRow(100, false, false, "Winter", "clear"),
			makeRow(100, false, false, "Winter", "clear"),
			makeRow(150, false, true, "Winter", "clear"),
		}

		summary := Summarize("prop-1", rows)

		if summary.HolidayUpliftPct == nil {
			t.Fatal("Expected holiday uplift to be computed")
		}
		if *summary.HolidayUpliftPct != 50 {
			t.Errorf("Expected 50%% uplift, got %f", *summary.HolidayUpliftPct)
		}
	})

	t.Run("NoHolidaysNoUplift", func(t *testing.T) {
		rows := []model.PricingRow{
			makeRow(100, false, false, "Winter", "clear"),
		}

		summary := Summarize("prop-1", rows)

		if summary.HolidayUpliftPct != nil {
			t.Errorf("Expected nil uplift without holiday rows, got %f", *summary.HolidayUpliftPct)
		}
	})

	t.Run("UnenrichedRowsDropFromAggregates", func(t *testing.T) {
		// Rows with no feature pointers at all, as after a failed stage.
		rows := []model.PricingRow{
			{Price: 100},
			{Price: 200},
		}

		summary := Summarize("prop-1", rows)

		if summary.AveragePrice != 150 {
			t.Errorf("Expected overall average 150, got %f", summary.AveragePrice)
		}
		if summary.WeekendAveragePrice != nil || summary.WeekdayAveragePrice != nil {
			t.Error("Expected nil weekend/weekday averages without temporal features")
		}
		if summary.RainyAveragePrice != nil || summary.ClearAveragePrice != nil {
			t.Error("Expected nil condition averages without weather features")
		}
		if summary.SeasonAverages != nil {
			t.Errorf("Expected no season averages, got %v", summary.SeasonAverages)
		}
	})
}
