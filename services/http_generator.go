package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sensor-dashboard/models"
)

// HTTPGenerator pulls readings from a remote sensor gateway that answers GET
// with {"values": {...}, "timestamp": "..."}.
type HTTPGenerator struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

func NewHTTPGenerator(url string) *HTTPGenerator {
	return &HTTPGenerator{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context) (models.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return models.Reading{}, fmt.Errorf("http generator: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return models.Reading{}, fmt.Errorf("http generator: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return models.Reading{}, fmt.Errorf("http generator: unexpected status %d", resp.StatusCode)
	}

	var r models.Reading
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.Reading{}, fmt.Errorf("http generator: decode: %w", err)
	}
	if len(r.Values) == 0 {
		return models.Reading{}, fmt.Errorf("http generator: reading has no values")
	}

	// Remote timestamps are kept when they parse; anything else is restamped.
	if _, err := r.Time(); err != nil {
		r.Timestamp = g.now().Format(models.TimestampLayout)
	}
	return r.Clone(), nil
}
