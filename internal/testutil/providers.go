package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/model"
)

// StubWeatherSource returns deterministic weather features for every date in
// the requested range, and counts its calls so tests can assert the bulk
// fetch happens once per job.
type StubWeatherSource struct {
	mu    sync.Mutex
	calls int
	// Err, when set, makes every fetch fail (simulated provider outage).
	Err error
}

// FetchDailyRange returns winter-ish fixed values for each day in the span.
func (s *StubWeatherSource) FetchDailyRange(_ context.Context, _, _ float64, start, end time.Time) (map[string]model.WeatherFeatures, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	features := map[string]model.WeatherFeatures{}
	for d := start.UTC(); !d.After(end.UTC()); d = d.AddDate(0, 0, 1) {
		temp := 8.5
		precip := 1.2
		condition := "partly cloudy"
		sunshine := 5.5
		features[d.Format("2006-01-02")] = model.WeatherFeatures{
			TemperatureMean: &temp,
			PrecipitationMM: &precip,
			Condition:       &condition,
			SunshineHours:   &sunshine,
		}
	}
	return features, nil
}

// Calls returns how many bulk fetches were issued.
func (s *StubWeatherSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubHolidaySource serves a fixed holiday calendar, keyed by ISO date, for
// any requested country and year. Dates outside the calendar are plain days.
type StubHolidaySource struct {
	mu       sync.Mutex
	calls    int
	Calendar map[string]string
	// Err, when set, makes every lookup fail (simulated provider outage).
	Err error
}

// HolidaysForYear returns the configured calendar.
func (s *StubHolidaySource) HolidaysForYear(_ context.Context, _ string, _ int) (map[string]string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if s.Calendar == nil {
		return map[string]string{}, nil
	}
	return s.Calendar, nil
}

// Calls returns how many calendar fetches were issued.
func (s *StubHolidaySource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
