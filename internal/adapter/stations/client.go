// Package stations resolves station identifiers against an HTTP station
// registry and caches the results. Lookups are best-effort: the pipeline
// keeps the reported coordinates when the registry is down.
package stations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/climate-indicator-etl/internal/domain"
	"github.com/couchcryptid/climate-indicator-etl/internal/observability"
)

// Client implements domain.StationResolver against a station registry API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a station registry client.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve looks up one station by its identifier.
func (c *Client) Resolve(ctx context.Context, stationID string) (domain.StationInfo, error) {
	u := fmt.Sprintf("%s/v1/stations/%s", c.baseURL, url.PathEscape(stationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.StationInfo{}, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.StationAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.StationLookups.WithLabelValues("error").Inc()
		return domain.StationInfo{}, fmt.Errorf("station lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.StationLookups.WithLabelValues("not_found").Inc()
		return domain.StationInfo{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.StationLookups.WithLabelValues("error").Inc()
		return domain.StationInfo{}, fmt.Errorf("station registry error: status %d: %s", resp.StatusCode, body)
	}

	var sr stationResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		c.metrics.StationLookups.WithLabelValues("error").Inc()
		return domain.StationInfo{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.StationLookups.WithLabelValues("success").Inc()
	return domain.StationInfo{
		Name:      sr.Name,
		Network:   sr.Network,
		Lat:       sr.Latitude,
		Lon:       sr.Longitude,
		Elevation: sr.Elevation,
	}, nil
}

// Station registry API response type.

type stationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Network   string  `json:"network"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}
