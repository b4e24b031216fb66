// Package google implements domain.Geocoder with the Google Geocoding API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

const (
	provider       = "google"
	defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Response statuses of the Geocoding API.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client implements domain.Geocoder using the Google Geocoding API. Requests
// are paced by a token-bucket limiter shared by all callers.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Google geocoding client allowing ratePerSecond
// requests per second.
func NewClient(apiKey string, timeout time.Duration, ratePerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	burst := max(int(ratePerSecond), 1)
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		metrics:    metrics,
		logger:     logger,
	}
}

// Geocode looks up feature and returns one candidate per result.
func (c *Client) Geocode(ctx context.Context, feature string) ([]domain.GeocodeCandidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{
		"address": {feature},
		"key":     {c.apiKey},
	}

	start := time.Now()
	candidates, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues(provider, "error").Inc()
		return nil, err
	case len(candidates) == 0:
		c.metrics.GeocodeRequests.WithLabelValues(provider, "empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues(provider, "success").Inc()
	}
	c.logger.Debug("google geocode", "feature", feature, "candidates", len(candidates))
	return candidates, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.GeocodeCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google API error: status %d: %s", resp.StatusCode, body)
	}

	var gResp response
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch gResp.Status {
	case statusOK:
	case statusZeroResults:
		return nil, nil
	default:
		return nil, fmt.Errorf("google API error: %s: %s", gResp.Status, gResp.ErrorMessage)
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(gResp.Results))
	for _, r := range gResp.Results {
		candidates = append(candidates, r.candidate())
	}
	return candidates, nil
}

// Google API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Results      []result `json:"results"`
}

type result struct {
	AddressComponents []component `json:"address_components"`
	FormattedAddress  string      `json:"formatted_address"`
	Geometry          geometry    `json:"geometry"`
}

type component struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Bounds       *bounds `json:"bounds"`
	Location     latLng  `json:"location"`
	LocationType string  `json:"location_type"`
}

type bounds struct {
	Northeast latLng `json:"northeast"`
	Southwest latLng `json:"southwest"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// candidate names the result after its first address component; every
// component's long and short name is kept for matching.
func (r result) candidate() domain.GeocodeCandidate {
	cand := domain.GeocodeCandidate{
		FormattedAddress: r.FormattedAddress,
		Location:         geo.NewPoint(r.Geometry.Location.Lng, r.Geometry.Location.Lat),
		LocationType:     r.Geometry.LocationType,
		Source:           provider,
	}
	if b := r.Geometry.Bounds; b != nil {
		box := geo.NewBoundingBox(b.Southwest.Lng, b.Northeast.Lat, b.Northeast.Lng, b.Southwest.Lat)
		cand.Bounds = &box
	}
	for i, comp := range r.AddressComponents {
		if i == 0 {
			cand.Name = comp.LongName
		}
		cand.Names = append(cand.Names, comp.LongName)
		if comp.ShortName != comp.LongName {
			cand.Names = append(cand.Names, comp.ShortName)
		}
	}
	return cand
}
