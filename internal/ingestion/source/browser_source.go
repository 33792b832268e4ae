package source

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"nepse-stock-scryper/internal/ingestion/config"
	"nepse-stock-scryper/pkg/common"
	"nepse-stock-scryper/pkg/logger"
)

// BrowserSource renders the page in headless Chrome. The NEPSE site builds
// the table client-side, so this is the source that works against it.
type BrowserSource struct {
	cfg    config.Scraper
	logger *logger.Logger
}

// NewBrowserSource creates a new BrowserSource.
func NewBrowserSource(cfg config.Scraper, logger *logger.Logger) *BrowserSource {
	if cfg.URL == "" {
		cfg.URL = common.NepseTodayPriceURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = common.BrowserUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &BrowserSource{cfg: cfg, logger: logger}
}

func (s *BrowserSource) Name() string { return "browser" }

// FetchHTML navigates to the page, waits for the table rows and returns the rendered document.
func (s *BrowserSource) FetchHTML(ctx context.Context) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	if s.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, s.cfg.Timeout)
	defer timeoutCancel()

	actions := []chromedp.Action{chromedp.Navigate(s.cfg.URL)}
	if s.cfg.WaitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(s.cfg.WaitSelector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.Sleep(5*time.Second))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(browserCtx, actions...); err != nil {
		s.logger.Error("Failed to render page", logger.ErrorField(err), logger.StringField("url", s.cfg.URL))
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	s.logger.Debug("Rendered page", logger.StringField("url", s.cfg.URL), logger.Field("duration", time.Since(start)))
	return html, nil
}
