package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/cache"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// countingWeatherSource records calls and serves a fixed single-day result.
type countingWeatherSource struct {
	calls int
	err   error
}

func (s *countingWeatherSource) FetchDailyRange(_ context.Context, _, _ float64, start, _ time.Time) (map[string]model.WeatherFeatures, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	temp := 12.0
	return map[string]model.WeatherFeatures{
		start.UTC().Format("2006-01-02"): {TemperatureMean: &temp},
	}, nil
}

// countingHolidaySource records calls and serves a fixed calendar.
type countingHolidaySource struct {
	calls int
}

func (s *countingHolidaySource) HolidaysForYear(_ context.Context, _ string, _ int) (map[string]string, error) {
	s.calls++
	return map[string]string{"2024-01-01": "New Year's Day"}, nil
}

func TestCachedWeatherSource(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("SecondFetchServedFromCache", func(t *testing.T) {
		upstream := &countingWeatherSource{}
		cached := NewCachedWeatherSource(upstream, cache.NewMemoryCache(), time.Hour)

		first, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end)
		if err != nil {
			t.Fatalf("First fetch failed: %v", err)
		}
		second, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end)
		if err != nil {
			t.Fatalf("Second fetch failed: %v", err)
		}

		if upstream.calls != 1 {
			t.Errorf("Expected 1 upstream call, got %d", upstream.calls)
		}
		if *first["2024-01-01"].TemperatureMean != *second["2024-01-01"].TemperatureMean {
			t.Error("Cached result differs from upstream result")
		}
	})

	t.Run("NearbyCoordinatesShareEntry", func(t *testing.T) {
		upstream := &countingWeatherSource{}
		cached := NewCachedWeatherSource(upstream, cache.NewMemoryCache(), time.Hour)

		// Both round to the 43.14,5.75 bucket.
		if _, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end); err != nil {
			t.Fatalf("First fetch failed: %v", err)
		}
		if _, err := cached.FetchDailyRange(context.Background(), 43.1371, 5.7512, start, end); err != nil {
			t.Fatalf("Second fetch failed: %v", err)
		}

		if upstream.calls != 1 {
			t.Errorf("Expected bucketed coordinates to share one entry, got %d upstream calls", upstream.calls)
		}
	})

	t.Run("UpstreamFailureNotCached", func(t *testing.T) {
		upstream := &countingWeatherSource{err: errors.New("offline")}
		cached := NewCachedWeatherSource(upstream, cache.NewMemoryCache(), time.Hour)

		if _, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end); err == nil {
			t.Fatal("Expected fetch to fail")
		}

		upstream.err = nil
		if _, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end); err != nil {
			t.Fatalf("Expected recovery fetch to succeed, got %v", err)
		}
		if upstream.calls != 2 {
			t.Errorf("Expected failure to reach upstream again, got %d calls", upstream.calls)
		}
	})

	t.Run("CorruptEntryTriggersRefetch", func(t *testing.T) {
		upstream := &countingWeatherSource{}
		memCache := cache.NewMemoryCache()
		cached := NewCachedWeatherSource(upstream, memCache, time.Hour)

		key := cache.CoordinateBucket(43.1353, 5.7547) + ":2024-01-01:2024-01-05"
		memCache.Set(context.Background(), "weather", key, "{not json", time.Hour)

		if _, err := cached.FetchDailyRange(context.Background(), 43.1353, 5.7547, start, end); err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if upstream.calls != 1 {
			t.Errorf("Expected corrupt entry to force an upstream fetch, got %d calls", upstream.calls)
		}
	})
}

func TestCachedHolidaySource(t *testing.T) {
	t.Run("SecondFetchServedFromCache", func(t *testing.T) {
		upstream := &countingHolidaySource{}
		cached := NewCachedHolidaySource(upstream, cache.NewMemoryCache(), time.Hour)

		if _, err := cached.HolidaysForYear(context.Background(), "FR", 2024); err != nil {
			t.Fatalf("First fetch failed: %v", err)
		}
		calendar, err := cached.HolidaysForYear(context.Background(), "FR", 2024)
		if err != nil {
			t.Fatalf("Second fetch failed: %v", err)
		}

		if upstream.calls != 1 {
			t.Errorf("Expected 1 upstream call, got %d", upstream.calls)
		}
		if calendar["2024-01-01"] != "New Year's Day" {
			t.Errorf("Unexpected cached calendar: %v", calendar)
		}
	})

	t.Run("DistinctYearsDistinctEntries", func(t *testing.T) {
		upstream := &countingHolidaySource{}
		cached := NewCachedHolidaySource(upstream, cache.NewMemoryCache(), time.Hour)

		if _, err := cached.HolidaysForYear(context.Background(), "FR", 2024); err != nil {
			t.Fatalf("2024 fetch failed: %v", err)
		}
		if _, err := cached.HolidaysForYear(context.Background(), "FR", 2025); err != nil {
			t.Fatalf("2025 fetch failed: %v", err)
		}

		if upstream.calls != 2 {
			t.Errorf("Expected one upstream call per year, got %d", upstream.calls)
		}
	})
}
