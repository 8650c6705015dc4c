package cli

import (
	"fmt"
	"os"

	"github.com/Susa-Sek/se-handwerk/internal/agent"
	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/geo"
	"github.com/Susa-Sek/se-handwerk/internal/learn"
	"github.com/Susa-Sek/se-handwerk/internal/llm"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/notify"
	"github.com/Susa-Sek/se-handwerk/internal/respond"
	"github.com/Susa-Sek/se-handwerk/internal/scoring"
	"github.com/Susa-Sek/se-handwerk/internal/scrape"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

// app holds the fully wired agent and everything that needs closing.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	store     *store.Store
	checker   *geo.Checker
	notifier  *notify.Notifier
	pipeline  *agent.Pipeline
	scheduler *agent.Scheduler
}

// loadConfig reads the config file, falling back to built-in defaults plus
// environment overrides when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config file %s not found, using defaults\n", path)
		return config.Default()
	}
	return config.Load(path)
}

// buildApp wires every component together.
func buildApp(cfgPath string) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.New(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	checker, err := geo.NewChecker(cfg.Geo, log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init geo checker: %w", err)
	}

	notifier, err := notify.New(cfg.Telegram, log)
	if err != nil {
		checker.Close()
		st.Close()
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	engine := scoring.NewEngine(cfg, checker, log)
	client := llm.NewClient(cfg.LLM, log)
	scorer := llm.NewScorer(client, engine, cfg.LLM, log)
	reporter := learn.NewReporter(st, cfg.Learning, log)

	var scrapers []scrape.Scraper
	if cfg.Scraper.Kleinanzeigen.Enabled {
		fetcher := scrape.NewFetcher(cfg.Scraper, log)
		scrapers = append(scrapers, scrape.NewKleinanzeigen(cfg.Scraper.Kleinanzeigen, fetcher, log))
	}
	if len(scrapers) == 0 {
		log.Warn("no scrapers enabled, runs will find nothing")
	}

	var termScout *llm.TermScout
	var platformScout *llm.PlatformScout
	if client.Available() {
		termScout = llm.NewTermScout(client, st, cfg.LLM, log)
		platformScout = llm.NewPlatformScout(client, st, cfg.LLM, log)
	}

	pipeline := agent.NewPipeline(cfg, st, scrapers, scorer,
		respond.NewGenerator(log), notifier, reporter, log)
	scheduler := agent.NewScheduler(cfg, pipeline, st, notifier,
		termScout, platformScout, log)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		checker:   checker,
		notifier:  notifier,
		pipeline:  pipeline,
		scheduler: scheduler,
	}, nil
}

func (a *app) Close() {
	if err := a.checker.Close(); err != nil {
		a.log.Warn("closing geo cache failed", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store failed", logger.Error(err))
	}
	_ = a.log.Sync()
}
