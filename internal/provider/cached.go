package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/cache"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// Cache provider namespaces.
const (
	weatherCacheProvider = "weather"
	holidayCacheProvider = "holiday"
)

// CachedWeatherSource wraps a WeatherSource and adds best-effort caching.
// Keys bucket the coordinates so near-duplicate properties share entries.
// Temporal features are never cached: deriving them is cheaper than a lookup.
type CachedWeatherSource struct {
	source WeatherSource
	cache  cache.Cache
	ttl    time.Duration
}

// NewCachedWeatherSource creates a caching wrapper around a weather source.
func NewCachedWeatherSource(source WeatherSource, c cache.Cache, ttl time.Duration) *CachedWeatherSource {
	return &CachedWeatherSource{source: source, cache: c, ttl: ttl}
}

// FetchDailyRange fetches daily weather, using the cache when available.
func (c *CachedWeatherSource) FetchDailyRange(ctx context.Context, lat, lon float64, start, end time.Time) (map[string]model.WeatherFeatures, error) {
	key := fmt.Sprintf("%s:%s:%s",
		cache.CoordinateBucket(lat, lon),
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"))

	if raw, found := c.cache.Get(ctx, weatherCacheProvider, key); found {
		var features map[string]model.WeatherFeatures
		if err := json.Unmarshal([]byte(raw), &features); err == nil {
			return features, nil
		}
		// Corrupt entry, fall through to a fresh fetch.
		log.Printf("discarding undecodable weather cache entry for %s", key)
	}

	features, err := c.source.FetchDailyRange(ctx, lat, lon, start, end)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(features); err == nil {
		c.cache.Set(ctx, weatherCacheProvider, key, string(encoded), c.ttl)
	}

	return features, nil
}

// CachedHolidaySource wraps a HolidaySource and adds best-effort caching keyed
// by (country, year).
type CachedHolidaySource struct {
	source HolidaySource
	cache  cache.Cache
	ttl    time.Duration
}

// NewCachedHolidaySource creates a caching wrapper around a holiday source.
func NewCachedHolidaySource(source HolidaySource, c cache.Cache, ttl time.Duration) *CachedHolidaySource {
	return &CachedHolidaySource{source: source, cache: c, ttl: ttl}
}

// HolidaysForYear fetches a holiday calendar, using the cache when available.
func (c *CachedHolidaySource) HolidaysForYear(ctx context.Context, countryCode string, year int) (map[string]string, error) {
	key := fmt.Sprintf("%s:%d", countryCode, year)

	if raw, found := c.cache.Get(ctx, holidayCacheProvider, key); found {
		var calendar map[string]string
		if err := json.Unmarshal([]byte(raw), &calendar); err == nil {
			return calendar, nil
		}
		log.Printf("discarding undecodable holiday cache entry for %s", key)
	}

	calendar, err := c.source.HolidaysForYear(ctx, countryCode, year)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(calendar); err == nil {
		c.cache.Set(ctx, holidayCacheProvider, key, string(encoded), c.ttl)
	}

	return calendar, nil
}

var (
	_ WeatherSource = (*CachedWeatherSource)(nil)
	_ HolidaySource = (*CachedHolidaySource)(nil)
)
