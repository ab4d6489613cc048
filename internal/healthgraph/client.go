// Package healthgraph reads the RunKeeper Health Graph REST API and exposes
// its resources as OMH endpoints.
package healthgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"example.com/runkeeper/internal/observability"
)

// DefaultBaseURL is the production Health Graph host.
const DefaultBaseURL = "https://api.runkeeper.com/"

var (
	// ErrTransport marks connection/IO failures reaching the vendor.
	ErrTransport = errors.New("health graph transport error")
	// ErrProtocol marks non-2xx statuses and malformed vendor responses.
	ErrProtocol = errors.New("health graph protocol error")
)

// Client performs authenticated GETs against the Health Graph API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get issues a single bearer-authorized GET for the endpoint path and
// returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, params url.Values, bearer string) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordVendorRequest(path, "transport_error", time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordVendorRequest(path, "transport_error", time.Since(start))
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecordVendorRequest(path, "vendor_error", time.Since(start))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProtocol, resp.StatusCode, truncate(body, 256))
	}

	observability.RecordVendorRequest(path, "success", time.Since(start))
	return body, nil
}

func truncate(body []byte, max int) string {
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
