package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"nepse-stock-scryper/pkg/logger"
)

// ScheduleService runs the in-process scrape on a cron schedule.
type ScheduleService interface {
	Start(ctx context.Context)
	// RunDue scrapes when the schedule is due at now and returns whether it ran.
	RunDue(ctx context.Context, now time.Time) bool
	NextRun() time.Time
}

// NewScheduleService parses expr (standard five fields or a descriptor such as
// "@daily") and evaluates it in loc.
func NewScheduleService(expr, sourceName string, loc *time.Location, pollingInterval time.Duration, scrapeService ScrapeService, logger *logger.Logger) (ScheduleService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if pollingInterval <= 0 {
		pollingInterval = 30 * time.Second
	}
	return &scheduleService{
		schedule:        schedule,
		sourceName:      sourceName,
		loc:             loc,
		pollingInterval: pollingInterval,
		scrapeService:   scrapeService,
		logger:          logger,
		now:             time.Now,
	}, nil
}

type scheduleService struct {
	schedule        cron.Schedule
	sourceName      string
	loc             *time.Location
	pollingInterval time.Duration
	scrapeService   ScrapeService
	logger          *logger.Logger
	now             func() time.Time

	mu   sync.Mutex
	next time.Time
}

// Start polls until ctx is done.
func (s *scheduleService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	s.logger.Info("Scrape schedule started", logger.Field("next_run", s.NextRun()))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scrape schedule stopping")
			return
		case <-ticker.C:
			s.RunDue(ctx, s.now())
		}
	}
}

func (s *scheduleService) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next.IsZero() {
		s.next = s.schedule.Next(s.now().In(s.loc))
	}
	return s.next
}

func (s *scheduleService) RunDue(ctx context.Context, now time.Time) bool {
	next := s.NextRun()
	if now.Before(next) {
		return false
	}

	s.mu.Lock()
	s.next = s.schedule.Next(now.In(s.loc))
	s.mu.Unlock()

	result, err := s.scrapeService.ScrapeAndIngest(ctx, s.sourceName)
	if err != nil {
		s.logger.Error("Scheduled scrape failed", logger.ErrorField(err), logger.StringField("source", s.sourceName))
		return true
	}
	s.logger.Info("Scheduled scrape finished",
		logger.StringField("outcome", result.Outcome.String()),
		logger.Field("next_run", s.NextRun()),
	)
	return true
}
