package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"nepse-stock-scryper/internal/ingestion/config"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
)

// maxPageBytes bounds how much of the page is read.
const maxPageBytes = 10 << 20

// HTTPSource fetches the page with a plain GET. It only sees server-rendered
// markup, so it works for mirrors and static snapshots of the table.
type HTTPSource struct {
	client    *http.Client
	url       string
	userAgent string
	logger    *logger.Logger
}

// NewHTTPSource creates a new HTTPSource.
func NewHTTPSource(cfg config.Scraper, logger *logger.Logger) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	url := cfg.URL
	if url == "" {
		url = common.NepseTodayPriceURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = common.BrowserUserAgent
	}
	return &HTTPSource{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		userAgent: ua,
		logger:    logger,
	}
}

func (s *HTTPSource) Name() string { return "http" }

// FetchHTML downloads the page body.
func (s *HTTPSource) FetchHTML(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to fetch page", logger.ErrorField(err), logger.StringField("url", s.url))
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Failed to fetch page with non-200 status", logger.IntField("status", resp.StatusCode), logger.StringField("url", s.url))
		return "", fmt.Errorf("failed to fetch page: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
