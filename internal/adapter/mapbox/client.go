package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

const (
	provider       = "mapbox"
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	defaultLimit   = 5
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	limit      int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		limit:   defaultLimit,
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode forward-geocodes a feature name and returns every place Mapbox
// proposes for it.
func (c *Client) Geocode(ctx context.Context, feature string) ([]domain.GeocodeCandidate, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(feature))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {strconv.Itoa(c.limit)},
	}

	start := time.Now()
	candidates, err := c.doRequest(ctx, u+"?"+params.Encode())
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
	c.logger.Debug("mapbox geocode", "feature", feature, "candidates", len(candidates))
	return candidates, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.GeocodeCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(mapboxResp.Features))
	for _, f := range mapboxResp.Features {
		if cand, ok := f.candidate(); ok {
			candidates = append(candidates, cand)
		}
	}
	return candidates, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center     []float64      `json:"center"` // [lon, lat]
	BBox       []float64      `json:"bbox"`   // [minLon, minLat, maxLon, maxLat]
	PlaceName  string         `json:"place_name"`
	Text       string         `json:"text"`
	Relevance  float64        `json:"relevance"`
	Context    []placeContext `json:"context"`
	Properties struct {
		Accuracy string `json:"accuracy"`
	} `json:"properties"`
}

type placeContext struct {
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}

// candidate converts a feature; features without a usable center are skipped.
func (f feature) candidate() (domain.GeocodeCandidate, bool) {
	if len(f.Center) != 2 {
		return domain.GeocodeCandidate{}, false
	}
	cand := domain.GeocodeCandidate{
		Name:             f.Text,
		FormattedAddress: f.PlaceName,
		Location:         geo.NewPoint(f.Center[0], f.Center[1]),
		Source:           provider,
	}
	if len(f.BBox) == 4 {
		b := geo.NewBoundingBox(f.BBox[0], f.BBox[3], f.BBox[2], f.BBox[1])
		cand.Bounds = &b
	}
	if strings.EqualFold(f.Properties.Accuracy, "rooftop") {
		cand.LocationType = domain.LocationTypeRooftop
	}
	for _, pc := range f.Context {
		if pc.Text != "" {
			cand.Names = append(cand.Names, pc.Text)
		}
		// Region codes look like "US-CA"; the bare "CA" is what people write.
		if _, code, ok := strings.Cut(pc.ShortCode, "-"); ok && code != "" {
			cand.Names = append(cand.Names, strings.ToUpper(code))
		}
	}
	return cand, true
}
