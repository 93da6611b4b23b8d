package model

import (
	"encoding/json"
	"time"
)

// PricingRow is one dated pricing observation for a property. The feature
// fields are nullable on purpose: a nil field means the corresponding stage has
// never written it, which keeps never-attempted distinguishable from enriched.
type PricingRow struct {
	ID         string          `json:"id"`
	PropertyID string          `json:"property_id"`
	Date       time.Time       `json:"date"`
	Price      float64         `json:"price"`
	Occupancy  *float64        `json:"occupancy,omitempty"`
	Bookings   *int            `json:"bookings,omitempty"`
	Extra      json.RawMessage `json:"extra,omitempty"`

	Temporal TemporalFeatures `json:"temporal"`
	Weather  WeatherFeatures  `json:"weather"`
	Holiday  HolidayFeatures  `json:"holiday"`

	CreatedAt time.Time `json:"created_at"`
}

// TemporalFeatures are derived purely from the row's date.
type TemporalFeatures struct {
	DayOfWeek *int    `json:"day_of_week,omitempty"` // 0=Sunday .. 6=Saturday
	Month     *int    `json:"month,omitempty"`       // 1-12
	Season    *string `json:"season,omitempty"`      // Winter, Spring, Summer, Autumn
	IsWeekend *bool   `json:"is_weekend,omitempty"`
}

// WeatherFeatures are daily aggregates from the historical weather archive.
type WeatherFeatures struct {
	TemperatureMean *float64 `json:"temperature_mean,omitempty"` // degrees Celsius
	PrecipitationMM *float64 `json:"precipitation_mm,omitempty"`
	Condition       *string  `json:"condition,omitempty"`
	SunshineHours   *float64 `json:"sunshine_hours,omitempty"`
}

// HolidayFeatures flag public holidays from the property's country calendar.
type HolidayFeatures struct {
	IsHoliday   *bool   `json:"is_holiday,omitempty"`
	HolidayName *string `json:"holiday_name,omitempty"`
}

// DateKey returns the row date in the ISO form used for provider lookups and
// cache keys.
func (r *PricingRow) DateKey() string {
	return r.Date.UTC().Format("2006-01-02")
}
