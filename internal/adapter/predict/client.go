// Package predict classifies localities with a remote locality-type model.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/locality-georef/internal/domain"
)

// Client implements domain.Classifier by POSTing the locality name to a
// prediction endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a prediction client for the endpoint at url.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type request struct {
	Query string `json:"query"`
}

type response struct {
	LocalityType string             `json:"locality_type"`
	Scores       map[string]float64 `json:"scores"`
}

func (c *Client) Classify(ctx context.Context, name string) (domain.Classification, error) {
	body, err := json.Marshal(request{Query: name})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return domain.Classification{}, fmt.Errorf("prediction API error: status %d: %s", resp.StatusCode, msg)
	}

	var pResp response
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}

	lt, err := domain.ParseLocalityType(pResp.LocalityType)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("prediction for %q: %w", name, err)
	}
	c.logger.Debug("locality classified", "locality", name, "type", lt, "scores", pResp.Scores)
	return domain.Classification{Type: lt, Scores: pResp.Scores}, nil
}
