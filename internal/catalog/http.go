package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobmate/listings-service/internal/listing"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxCatalogBytes    = 8 << 20
)

// HTTP fetches the baseline catalog as a JSON array from a static URL.
type HTTP struct {
	URL    string
	client *http.Client
}

// NewHTTP constructs an HTTP source. timeout <= 0 selects the default.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTP{
		URL:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes the catalog. Every failure is a *TransportError.
func (h *HTTP) Fetch(ctx context.Context) ([]listing.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, &TransportError{Source: h.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Source: h.URL, Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, &TransportError{Source: h.URL, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Source: h.URL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var jobs []listing.Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, &TransportError{Source: h.URL, Err: fmt.Errorf("json unmarshal: %w", err)}
	}
	return jobs, nil
}
