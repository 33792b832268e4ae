// Package trigger calls the ingestion service's process trigger endpoint from the command line.
package trigger

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

// DefaultURL is the process trigger endpoint of a locally running ingestion service.
const DefaultURL = "http://localhost:8080/api/v1/scrape-via-process/today-price"

// Response is the trigger endpoint's reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the run stored everything or at least part of it.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusMultiStatus
}

// ExitCode is 0 for a full or partial success and 1 for anything else.
func (r *Response) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Pretty renders the body as indented JSON, or as-is when it is not JSON.
func (r *Response) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Body, "", "  "); err != nil {
		return strings.TrimSpace(string(r.Body))
	}
	return buf.String()
}

// Client calls the trigger endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a new Client. The timeout should cover a full scrape and store.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{url: url, httpClient: &http.Client{Timeout: timeout}}
}

// Trigger issues the GET. A non-nil error means the endpoint could not be reached at all.
func (c *Client) Trigger(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
