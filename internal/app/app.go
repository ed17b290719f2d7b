package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"NewsPolarity/internal/cleaner"
	"NewsPolarity/internal/config"
	"NewsPolarity/internal/infrastructure/llm"
	"NewsPolarity/internal/infrastructure/parser"
	"NewsPolarity/internal/infrastructure/scheduler"
	"NewsPolarity/internal/infrastructure/staging"
	"NewsPolarity/internal/infrastructure/storage"
	"NewsPolarity/internal/logging"
	"NewsPolarity/internal/scanner"
	"NewsPolarity/internal/sentiment"
	"NewsPolarity/internal/topics"
	"NewsPolarity/internal/usecase"
)

// Application wires configs to use cases. Adapters are built on first use so a
// scrape-only process never opens the database.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	runID  string

	repo    *storage.Repository
	staging *staging.Store
}

// New builds an application instance tagged with a fresh run id.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	runID := uuid.NewString()
	return &Application{
		cfg:    cfg,
		logger: baseLogger.With("run_id", runID),
		runID:  runID,
	}
}

// RunID identifies this process in logs.
func (a *Application) RunID() string { return a.runID }

// Logger returns the run-scoped logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Config returns the effective configuration.
func (a *Application) Config() config.Config { return a.cfg }

// Repository opens the relational store once.
func (a *Application) Repository(ctx context.Context) (*storage.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, err := storage.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	a.repo = repo
	return repo, nil
}

// Staging builds the bucket-backed staging store once.
func (a *Application) Staging(ctx context.Context) (*staging.Store, error) {
	if a.staging != nil {
		return a.staging, nil
	}
	if a.cfg.Staging.Bucket == "" {
		return nil, errors.New("staging bucket is not configured")
	}
	client, err := staging.NewS3Client(ctx, a.cfg.Staging)
	if err != nil {
		return nil, err
	}
	a.staging = staging.NewStore(client, a.cfg.Staging.Bucket, a.logger.With("component", "staging"))
	return a.staging, nil
}

// Source builds the scanner registry for the configured sites.
func (a *Application) Source() *parser.StrategySource {
	fetcher := parser.NewPageFetcher(nil, parser.FetcherOptions{
		Timeout:           a.cfg.Scraper.Timeout,
		WaveSize:          a.cfg.Scraper.WaveSize,
		RequestsPerSecond: a.cfg.Scraper.RequestsPerSecond,
		UserAgent:         a.cfg.Scraper.UserAgent,
	}, a.logger.With("component", "fetcher"))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(fetcher, a.logger.With("component", "scanner.rss")))
	registry.Register(parser.NewTopicScanner(fetcher, a.logger.With("component", "scanner.topics")))

	return parser.NewStrategySource(registry, a.cfg.Sites, a.logger.With("component", "source"))
}

// ScrapePipeline wires fetchers, cleaner and staging.
func (a *Application) ScrapePipeline(ctx context.Context) (*usecase.ScrapePipeline, error) {
	store, err := a.Staging(ctx)
	if err != nil {
		return nil, err
	}
	return usecase.NewScrapePipeline(usecase.ScrapeDeps{
		Source:  a.Source(),
		Staging: store,
		Cleaner: cleaner.New(),
		MaxAge:  a.cfg.Scraper.MaxAge,
		Logger:  a.logger.With("component", "scrape"),
	}), nil
}

// AnalysisPipeline wires staging, scorer, classifier and repository.
func (a *Application) AnalysisPipeline(ctx context.Context) (*usecase.AnalysisPipeline, error) {
	if a.cfg.ChatGPT.APIKey == "" {
		return nil, errors.New("chatgpt api key is not configured")
	}
	store, err := a.Staging(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := a.Repository(ctx)
	if err != nil {
		return nil, err
	}

	chat := llm.NewChatGPTClient(a.cfg.ChatGPT, &http.Client{Timeout: a.cfg.ChatGPT.Timeout})
	return usecase.NewAnalysisPipeline(usecase.AnalysisDeps{
		Staging:          store,
		Repository:       repo,
		Scorer:           sentiment.New(cleaner.New()),
		Classifier:       topics.NewClassifier(chat, a.cfg.ChatGPT.BatchSize, a.logger.With("component", "classifier")),
		StagingMaxAge:    a.cfg.Staging.Retention,
		DropUnclassified: a.cfg.Analysis.DropsUnclassified(),
		Logger:           a.logger.With("component", "analysis"),
	}), nil
}

// Watcher schedules scrape plus analysis on the configured interval.
func (a *Application) Watcher(ctx context.Context) (*usecase.Scheduler, error) {
	scrape, err := a.ScrapePipeline(ctx)
	if err != nil {
		return nil, err
	}
	analysis, err := a.AnalysisPipeline(ctx)
	if err != nil {
		return nil, err
	}
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.ScrapeInterval, a.cfg.Scheduler.Location())
	return usecase.NewScheduler(driver, &usecase.Cycle{
		Scrape:   scrape,
		Analysis: analysis,
		Logger:   a.logger.With("component", "watch"),
	}), nil
}

// Close releases opened adapters.
func (a *Application) Close() error {
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}
