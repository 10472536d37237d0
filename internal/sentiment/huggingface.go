package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHFAPIURL serves the model behind the transformers "sentiment-analysis" pipeline default.
const maxHFResponseBytes = 64 << 10

const DefaultHFAPIURL = "https://api-inference.huggingface.co/models/distilbert/distilbert-base-uncased-finetuned-sst-2-english"

// HuggingFace calls a hosted text-classification endpoint.
type HuggingFace struct {
	client *http.Client
	url    string
	token  string
}

func NewHuggingFace(apiURL, token string) *HuggingFace {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		apiURL = DefaultHFAPIURL
	}
	return &HuggingFace{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    apiURL,
		token:  strings.TrimSpace(token),
	}
}

func (c *HuggingFace) Classify(ctx context.Context, text string) (Result, error) {
	payload, err := json.Marshal(map[string]string{"inputs": Truncate(text)})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("inference API error %d: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHFResponseBytes+1))
	if err != nil {
		return Result{}, err
	}
	if len(body) > maxHFResponseBytes {
		return Result{}, fmt.Errorf("inference API response exceeds %d bytes", maxHFResponseBytes)
	}

	candidates, err := decodeHFCandidates(body)
	if err != nil {
		return Result{}, err
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return normalizeResult(best), nil
}

// decodeHFCandidates accepts both [[{label,score}]] and [{label,score}].
func decodeHFCandidates(body []byte) ([]Result, error) {
	var nested [][]Result
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []Result
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty inference response")
	}
	return flat, nil
}
