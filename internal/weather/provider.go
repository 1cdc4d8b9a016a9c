package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bebablub/flyover-backend-go/internal/cache"
)

// hourlyParams are the provider series requested for every fetch.
var hourlyParams = []string{
	"rain",
	"temperature_2m",
	"apparent_temperature",
	"windspeed_10m",
	"winddirection_10m",
	"cloudcover",
	"snowfall",
	"dewpoint_2m",
	"relativehumidity_2m",
}

// HourlyData is an hourly time series keyed by parameter name. Every
// series is aligned to the shared Time axis of unix hour boundaries;
// parameters the provider did not return are simply absent.
type HourlyData struct {
	Time   []int64
	Series map[string][]*float64
}

// UnmarshalJSON decodes the provider's hourly block, tolerating
// missing or extra parameters.
func (h *HourlyData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	h.Series = make(map[string][]*float64, len(raw))
	for key, value := range raw {
		if key == "time" {
			if err := json.Unmarshal(value, &h.Time); err != nil {
				return fmt.Errorf("malformed time axis: %w", err)
			}
			continue
		}
		var series []*float64
		if err := json.Unmarshal(value, &series); err != nil {
			// Non-numeric block (units metadata etc.), skip it.
			continue
		}
		h.Series[key] = series
	}
	return nil
}

// MarshalJSON encodes the hourly block back into provider shape so
// cached responses round-trip through UnmarshalJSON.
func (h HourlyData) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Series)+1)
	out["time"] = h.Time
	for key, series := range h.Series {
		out[key] = series
	}
	return json.Marshal(out)
}

type hourlyResponse struct {
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Hourly    *HourlyData `json:"hourly"`
}

// Provider returns an hourly weather time series for a location and
// date range (dates formatted 2006-01-02).
type Provider interface {
	Hourly(ctx context.Context, lat, lon float64, startDate, endDate string) (*HourlyData, error)
}

// Client fetches historical weather from an open-meteo style archive
// API, caching raw responses per rounded location and date range. A
// cache hit is returned verbatim without re-fetching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *logrus.Entry
}

// NewClient creates a provider client. The request timeout bounds the
// only blocking I/O in the pipeline; a timeout or non-200 surfaces as
// an error the enricher treats as soft failure.
func NewClient(baseURL string, timeout time.Duration, c cache.Cache, cacheTTL time.Duration, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		cacheTTL:   cacheTTL,
		log:        log.WithField("component", "weather-client"),
	}
}

// Hourly implements Provider.
func (c *Client) Hourly(ctx context.Context, lat, lon float64, startDate, endDate string) (*HourlyData, error) {
	key := fmt.Sprintf("weather:%.2f:%.2f:%s:%s", lat, lon, startDate, endDate)

	if cached, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var data HourlyData
		if err := json.Unmarshal(cached, &data); err == nil {
			return &data, nil
		}
		// Unreadable cache entry, fall through to a fresh fetch.
	}

	data, err := c.fetch(ctx, lat, lon, startDate, endDate)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(data); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.cacheTTL); err != nil {
			c.log.WithError(err).Warn("failed to cache weather response")
		}
	}

	return data, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, startDate, endDate string) (*HourlyData, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.4f", lat))
	query.Set("longitude", fmt.Sprintf("%.4f", lon))
	query.Set("start_date", startDate)
	query.Set("end_date", endDate)
	query.Set("hourly", strings.Join(hourlyParams, ","))
	query.Set("timeformat", "unixtime")

	reqURL := c.baseURL + "/v1/archive?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded hourlyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("malformed weather response: %w", err)
	}
	if decoded.Hourly == nil {
		return nil, fmt.Errorf("weather response has no hourly block")
	}

	return decoded.Hourly, nil
}
