package provider

import (
	"time"

	"github.com/eddiguesti/jengu-backend/internal/model"
)

// Season labels derived from the calendar month (northern hemisphere).
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonAutumn = "Autumn"
)

// ComputeTemporal derives the temporal features for a date. It is pure and
// total: no external dependency, same output for the same date, never fails.
// Day-of-week follows time.Weekday numbering (0=Sunday .. 6=Saturday) and a
// weekend is Saturday or Sunday.
func ComputeTemporal(date time.Time) model.TemporalFeatures {
	date = date.UTC()

	dayOfWeek := int(date.Weekday())
	month := int(date.Month())
	season := seasonForMonth(date.Month())
	isWeekend := dayOfWeek == 0 || dayOfWeek == 6

	return model.TemporalFeatures{
		DayOfWeek: &dayOfWeek,
		Month:     &month,
		Season:    &season,
		IsWeekend: &isWeekend,
	}
}

func seasonForMonth(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}
