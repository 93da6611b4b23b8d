package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/eddiguesti/jengu-backend/internal/apperrors"
)

// HolidaySource resolves the public-holiday calendar for a country and year.
// The runner deduplicates per distinct row date against the returned map, so
// one calendar fetch serves every row in that year.
type HolidaySource interface {
	// HolidaysForYear returns holiday names keyed by ISO date.
	HolidaysForYear(ctx context.Context, countryCode string, year int) (map[string]string, error)
}

// NagerClient fetches public holiday calendars from the Nager.Date API.
// Requests are rate limited to stay inside the public endpoint's limits when
// many jobs run concurrently.
type NagerClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retry      retryConfig
}

// NewNagerClient creates a NagerClient for the given endpoint with the given
// requests-per-second budget.
func NewNagerClient(baseURL string, requestsPerSecond float64, timeout time.Duration) *NagerClient {
	return &NagerClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retry:      defaultRetry(),
	}
}

// nagerHoliday mirrors one entry of the Nager.Date public holidays response.
type nagerHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// HolidaysForYear retrieves the public holiday calendar for a country.
func (c *NagerClient) HolidaysForYear(ctx context.Context, countryCode string, year int) (map[string]string, error) {
	endpoint := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, strings.ToUpper(countryCode))

	var holidays []nagerHoliday
	err := c.retry.do(ctx, "holiday calendar fetch", func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.doJSON(ctx, endpoint, &holidays)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}

	calendar := make(map[string]string, len(holidays))
	for _, h := range holidays {
		name := h.Name
		if name == "" {
			name = h.LocalName
		}
		calendar[h.Date] = name
	}

	return calendar, nil
}

// doJSON performs an HTTP GET and decodes a successful JSON response body.
func (c *NagerClient) doJSON(ctx context.Context, endpoint string, dst any) error {
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
		return fmt.Errorf("holiday provider returned status=%d body=%q", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

var _ HolidaySource = (*NagerClient)(nil)
