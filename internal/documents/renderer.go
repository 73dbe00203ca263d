package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
)

// HTTPRenderer calls an external rendering service that turns an order into a
// hosted PDF and returns its URL.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

// NewHTTPRenderer builds a renderer client for the given service URL.
func NewHTTPRenderer(url string) *HTTPRenderer {
	return &HTTPRenderer{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type renderResponse struct {
	URL string `json:"url"`
}

// Render posts the order to the rendering service and returns the document
// URL it responds with.
func (r *HTTPRenderer) Render(ctx context.Context, order ordermodels.OrderRecord) (string, error) {
	payload := map[string]interface{}{
		"order":     order,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("document renderer returned status %d", resp.StatusCode)
	}

	var rendered renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rendered); err != nil {
		return "", fmt.Errorf("failed to decode renderer response: %w", err)
	}
	if rendered.URL == "" {
		return "", fmt.Errorf("document renderer returned an empty url")
	}
	return rendered.URL, nil
}
