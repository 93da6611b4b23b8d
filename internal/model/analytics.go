package model

import "time"

// AnalyticsSummary is the per-property aggregate recomputed by the chained
// analytics job after each successful enrichment run. One row per property,
// upserted in place.
type AnalyticsSummary struct {
	ID                  string             `json:"id"`
	PropertyID          string             `json:"property_id"`
	RowCount            int                `json:"row_count"`
	AveragePrice        float64            `json:"average_price"`
	WeekendAveragePrice *float64           `json:"weekend_average_price,omitempty"`
	WeekdayAveragePrice *float64           `json:"weekday_average_price,omitempty"`
	HolidayUpliftPct    *float64           `json:"holiday_uplift_pct,omitempty"`
	SeasonAverages      map[string]float64 `json:"season_averages,omitempty"`
	RainyAveragePrice   *float64           `json:"rainy_average_price,omitempty"`
	ClearAveragePrice   *float64           `json:"clear_average_price,omitempty"`
	CalculatedAt        time.Time          `json:"calculated_at"`
}
