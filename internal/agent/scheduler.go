package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/llm"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/notify"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

// cleanupSpec runs the nightly maintenance while nobody is watching.
const cleanupSpec = "0 3 * * *"

// scoutSpec runs the weekly strategy agents early Monday morning.
const scoutSpec = "0 4 * * 1"

// Scheduler drives the pipeline on its configured cadence plus the daily
// summary, nightly cleanup and weekly scout jobs.
type Scheduler struct {
	cfg           *config.Config
	pipeline      *Pipeline
	store         *store.Store
	notifier      *notify.Notifier
	termScout     *llm.TermScout
	platformScout *llm.PlatformScout
	cron          *cron.Cron
	log           logger.Logger
}

// NewScheduler builds the scheduler. The scouts may be nil when the LLM
// layer is disabled.
func NewScheduler(cfg *config.Config, p *Pipeline, st *store.Store,
	notifier *notify.Notifier, termScout *llm.TermScout,
	platformScout *llm.PlatformScout, log logger.Logger) *Scheduler {

	return &Scheduler{
		cfg:           cfg,
		pipeline:      p,
		store:         st,
		notifier:      notifier,
		termScout:     termScout,
		platformScout: platformScout,
		cron:          cron.New(),
		log:           log,
	}
}

// Run registers all jobs, fires an immediate first pipeline run, and blocks
// until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.register(ctx); err != nil {
		return err
	}

	s.log.Info("scheduler started",
		logger.Duration("interval", s.cfg.Scraper.Interval),
		logger.String("summary_time", s.cfg.Telegram.SummaryTime))

	// First run right away instead of waiting out the first interval.
	s.runPipeline(ctx)

	s.cron.Start()
	<-ctx.Done()

	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("scheduler stop timed out, jobs may have been cut short")
	}
	return ctx.Err()
}

func (s *Scheduler) register(ctx context.Context) error {
	interval := fmt.Sprintf("@every %s", s.cfg.Scraper.Interval)
	if _, err := s.cron.AddFunc(interval, func() { s.runPipeline(ctx) }); err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}

	summarySpec, err := dailySpec(s.cfg.Telegram.SummaryTime)
	if err != nil {
		return fmt.Errorf("summary time %q: %w", s.cfg.Telegram.SummaryTime, err)
	}
	if _, err := s.cron.AddFunc(summarySpec, s.runSummary); err != nil {
		return fmt.Errorf("schedule summary: %w", err)
	}

	if _, err := s.cron.AddFunc(cleanupSpec, s.runCleanup); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}

	if s.termScout != nil || s.platformScout != nil {
		if _, err := s.cron.AddFunc(scoutSpec, func() { s.runScouts(ctx) }); err != nil {
			return fmt.Errorf("schedule scouts: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) runPipeline(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.pipeline.RunOnce(ctx); err != nil {
		s.log.Error("pipeline run failed", logger.Error(err))
		if err := s.notifier.SendError(err.Error()); err != nil {
			s.log.Warn("error notification failed", logger.Error(err))
		}
	}
}

func (s *Scheduler) runSummary() {
	if err := s.pipeline.SendDailySummary(); err != nil {
		s.log.Error("daily summary failed", logger.Error(err))
	}

	pending, err := s.store.PendingDecisions()
	if err != nil {
		s.log.Warn("loading pending decisions failed", logger.Error(err))
		return
	}
	if len(pending) == 0 {
		return
	}
	if err := s.notifier.SendText(notify.FormatPendingDecisions(pending)); err != nil {
		s.log.Warn("pending decision notification failed", logger.Error(err))
	}
}

func (s *Scheduler) runCleanup() {
	if err := s.pipeline.Cleanup(); err != nil {
		s.log.Error("cleanup failed", logger.Error(err))
		return
	}
	s.log.Info("nightly cleanup done",
		logger.Int("retention_days", s.cfg.Database.CleanupDays))
}

// runScouts asks the strategy agents for new search terms and platforms.
// Their proposals land as pending decisions, never as config changes.
func (s *Scheduler) runScouts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if s.termScout != nil {
		stats, err := s.store.TermStatsSince(30)
		if err != nil {
			s.log.Warn("term stats for scout failed", logger.Error(err))
		} else {
			terms := s.pipeline.searchTerms()
			if proposals, err := s.termScout.Propose(ctx, terms, stats); err != nil {
				s.log.Warn("term scout failed", logger.Error(err))
			} else if len(proposals) > 0 {
				s.log.Info("term scout proposed changes", logger.Int("count", len(proposals)))
			}
		}
	}

	if s.platformScout != nil {
		known := make([]string, 0, len(s.pipeline.scrapers))
		for _, sc := range s.pipeline.scrapers {
			known = append(known, string(sc.Name()))
		}
		if proposals, err := s.platformScout.Propose(ctx, known); err != nil {
			s.log.Warn("platform scout failed", logger.Error(err))
		} else if len(proposals) > 0 {
			s.log.Info("platform scout proposed platforms", logger.Int("count", len(proposals)))
		}
	}
}

// dailySpec turns a "HH:MM" clock time into a daily cron spec.
func dailySpec(clock string) (string, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("expected HH:MM")
	}
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return "", err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("out of range")
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
