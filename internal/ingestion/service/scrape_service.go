package service

import (
	"context"
	"fmt"
	"time"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/internal/ingestion/normalizer"
	"nepse-stock-scryper/internal/ingestion/scraper"
	"nepse-stock-scryper/internal/ingestion/source"
	"nepse-stock-scryper/pkg/logger"
)

// ScrapeService fetches and parses the page in-process.
type ScrapeService interface {
	Scrape(ctx context.Context, sourceName string) ([]dto.ScrapedRow, error)
	DryRun(ctx context.Context, sourceName string) (*dto.DryRunResponse, error)
	ScrapeAndIngest(ctx context.Context, sourceName string) (*IngestionResult, error)
}

// NewScrapeService creates a scrape service over the given page sources, keyed by Name().
func NewScrapeService(sources []source.PageSource, ingestionService IngestionService, logger *logger.Logger) ScrapeService {
	byName := make(map[string]source.PageSource, len(sources))
	for _, src := range sources {
		byName[src.Name()] = src
	}
	return &scrapeService{
		sources:          byName,
		ingestionService: ingestionService,
		logger:           logger,
		now:              time.Now,
	}
}

type scrapeService struct {
	sources          map[string]source.PageSource
	ingestionService IngestionService
	logger           *logger.Logger
	now              func() time.Time
}

// Scrape returns KindSourceUnavailable when the page cannot be fetched and
// KindParseFailure when it has no usable rows.
func (s *scrapeService) Scrape(ctx context.Context, sourceName string) ([]dto.ScrapedRow, error) {
	src, ok := s.sources[sourceName]
	if !ok {
		return nil, newError(KindInvalidInput, "scrape", fmt.Errorf("%w: %q", ErrUnknownSource, sourceName))
	}

	html, err := src.FetchHTML(ctx)
	if err != nil {
		return nil, newError(KindSourceUnavailable, "fetch page", err)
	}

	rows, err := scraper.ParseHTML(html)
	if err != nil {
		s.logger.Warn("Failed to parse today's price page", logger.ErrorField(err), logger.StringField("source", sourceName))
		return nil, newError(KindParseFailure, "parse page", err)
	}

	s.logger.Info("Scraped today's price page", logger.StringField("source", sourceName), logger.IntField("rows", len(rows)))
	return rows, nil
}

// DryRun scrapes and normalizes without storing anything.
func (s *scrapeService) DryRun(ctx context.Context, sourceName string) (*dto.DryRunResponse, error) {
	rows, err := s.Scrape(ctx, sourceName)
	if err != nil {
		return nil, err
	}

	data := make([]dto.NormalizedRow, len(rows))
	for i, row := range rows {
		data[i] = normalizer.Normalize(row)
	}
	return &dto.DryRunResponse{
		Message:   "Scraping successful (dry run, nothing stored).",
		Source:    sourceName,
		Count:     len(data),
		Data:      data,
		ScrapedAt: s.now(),
	}, nil
}

// ScrapeAndIngest scrapes and hands the rows to the ingestion pipeline.
func (s *scrapeService) ScrapeAndIngest(ctx context.Context, sourceName string) (*IngestionResult, error) {
	rows, err := s.Scrape(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	return s.ingestionService.Ingest(ctx, sourceName, rows)
}
