package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
	"github.com/eddiguesti/jengu-backend/internal/model"
)

// WeatherSource fetches daily weather aggregates for a coordinate pair over an
// inclusive date range. One call covers the whole range, so a job makes O(1)
// weather requests regardless of row count.
type WeatherSource interface {
	FetchDailyRange(ctx context.Context, lat, lon float64, start, end time.Time) (map[string]model.WeatherFeatures, error)
}

// OpenMeteoClient fetches historical daily weather from the Open-Meteo archive
// API. The API key is optional; the public endpoint accepts unauthenticated
// requests, commercial keys raise the rate limits.
type OpenMeteoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      retryConfig
}

// NewOpenMeteoClient creates an OpenMeteoClient for the given endpoint.
// Pass an empty apiKey for the public endpoint.
func NewOpenMeteoClient(baseURL, apiKey string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		retry:      defaultRetry(),
	}
}

// openMeteoDaily mirrors the daily block of the archive API response. Values
// are pointers because the archive reports null for days it has no data for.
type openMeteoDaily struct {
	Time             []string   `json:"time"`
	Temperature2Mean []*float64 `json:"temperature_2m_mean"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weather_code"`
	SunshineDuration []*float64 `json:"sunshine_duration"` // seconds
}

// FetchDailyRange retrieves daily mean temperature, precipitation, weather
// code and sunshine duration for every day in [start, end], keyed by ISO date.
func (c *OpenMeteoClient) FetchDailyRange(ctx context.Context, lat, lon float64, start, end time.Time) (map[string]model.WeatherFeatures, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("start_date", start.UTC().Format("2006-01-02"))
	q.Set("end_date", end.UTC().Format("2006-01-02"))
	q.Set("daily", "temperature_2m_mean,precipitation_sum,weather_code,sunshine_duration")
	q.Set("timezone", "UTC")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	endpoint := c.baseURL + "?" + q.Encode()

	var resp struct {
		Daily openMeteoDaily `json:"daily"`
	}
	err := c.retry.do(ctx, "weather archive fetch", func() error {
		return c.doJSON(ctx, endpoint, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}

	features := make(map[string]model.WeatherFeatures, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		f := model.WeatherFeatures{}

		if i < len(resp.Daily.Temperature2Mean) {
			f.TemperatureMean = resp.Daily.Temperature2Mean[i]
		}
		if i < len(resp.Daily.PrecipitationSum) {
			f.PrecipitationMM = resp.Daily.PrecipitationSum[i]
		}
		if i < len(resp.Daily.WeatherCode) && resp.Daily.WeatherCode[i] != nil {
			condition := ConditionForCode(*resp.Daily.WeatherCode[i])
			f.Condition = &condition
		}
		if i < len(resp.Daily.SunshineDuration) && resp.Daily.SunshineDuration[i] != nil {
			hours := *resp.Daily.SunshineDuration[i] / 3600
			f.SunshineHours = &hours
		}

		features[day] = f
	}

	return features, nil
}

// doJSON performs an HTTP GET and decodes a successful JSON response body.
func (c *OpenMeteoClient) doJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("weather provider returned status=%d body=%q", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// conditionBucket maps an inclusive WMO weather-code range to a label.
type conditionBucket struct {
	min, max int
	label    string
}

// WMO 4677 code ranges as reported by Open-Meteo.
var conditionBuckets = []conditionBucket{
	{0, 0, "clear"},
	{1, 3, "partly cloudy"},
	{45, 48, "foggy"},
	{51, 57, "drizzle"},
	{61, 67, "rainy"},
	{71, 77, "snowy"},
	{80, 82, "rainy"},
	{85, 86, "snowy"},
	{95, 99, "thunderstorm"},
}

// ConditionForCode maps a numeric weather code to its coarse human-readable
// label. Unmapped codes yield "unknown" rather than failing the row.
func ConditionForCode(code int) string {
	for _, bucket := range conditionBuckets {
		if code >= bucket.min && code <= bucket.max {
			return bucket.label
		}
	}
	return "unknown"
}

var _ WeatherSource = (*OpenMeteoClient)(nil)
