package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signal-sniper/internal/domain"
)

// DataSource is what the dashboard reads from.
type DataSource interface {
	Trending(ctx context.Context) ([]domain.TickerMention, error)
	Sentiment(ctx context.Context, ticker string) ([]domain.SentimentEntry, error)
}

// APIClient reads the dashboard data from the HTTP query API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &APIClient{baseURL: baseURL, client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *APIClient) Trending(ctx context.Context) ([]domain.TickerMention, error) {
	var out []domain.TickerMention
	if err := c.getJSON(ctx, "/trending", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) Sentiment(ctx context.Context, ticker string) ([]domain.SentimentEntry, error) {
	var out []domain.SentimentEntry
	if err := c.getJSON(ctx, "/sentiment/"+url.PathEscape(domain.CanonicalTicker(ticker)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
