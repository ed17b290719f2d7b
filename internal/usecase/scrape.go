package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/ports"
)

// TextCleaner normalises scraped text before it is staged.
type TextCleaner interface {
	Clean(text string) string
}

// ScrapeDeps wires the driven adapters of the scrape run.
type ScrapeDeps struct {
	Source  ports.ArticleSource
	Staging ports.StagingStore
	Cleaner TextCleaner
	MaxAge  time.Duration
	Logger  *slog.Logger
}

// ScrapeReport summarises one scrape run.
type ScrapeReport struct {
	Fetched int
	Keys    []string
}

// ScrapePipeline fetches recent articles and stages one batch per source.
type ScrapePipeline struct {
	source  ports.ArticleSource
	staging ports.StagingStore
	cleaner TextCleaner
	maxAge  time.Duration
	logger  *slog.Logger
}

// NewScrapePipeline constructs the scrape use case.
func NewScrapePipeline(deps ScrapeDeps) *ScrapePipeline {
	return &ScrapePipeline{
		source:  deps.Source,
		staging: deps.Staging,
		cleaner: deps.Cleaner,
		maxAge:  deps.MaxAge,
		logger:  deps.Logger,
	}
}

// Run fetches, cleans and stages. Sources that produced nothing write no batch.
func (p *ScrapePipeline) Run(ctx context.Context) (ScrapeReport, error) {
	var report ScrapeReport
	if p.source == nil || p.staging == nil {
		return report, fmt.Errorf("scrape pipeline is not configured")
	}

	articles, err := p.source.FetchRecent(ctx, p.maxAge)
	if err != nil {
		return report, fmt.Errorf("fetch recent: %w", err)
	}
	report.Fetched = len(articles)

	order, bySource := groupBySource(articles)
	for _, source := range order {
		rows := bySource[source]
		if p.cleaner != nil {
			for i := range rows {
				rows[i].Title = p.cleaner.Clean(rows[i].Title)
				rows[i].Content = p.cleaner.Clean(rows[i].Content)
			}
		}

		key, err := p.staging.PutBatch(ctx, source, rows)
		if err != nil {
			return report, fmt.Errorf("stage %s: %w", source, err)
		}
		report.Keys = append(report.Keys, key)
		p.info("batch staged", "source", source, "rows", len(rows), "key", key)
	}

	return report, nil
}

func groupBySource(articles []domain.RawArticle) ([]string, map[string][]domain.RawArticle) {
	var order []string
	groups := map[string][]domain.RawArticle{}
	for _, a := range articles {
		if _, ok := groups[a.SourceName]; !ok {
			order = append(order, a.SourceName)
		}
		groups[a.SourceName] = append(groups[a.SourceName], a)
	}
	return order, groups
}

func (p *ScrapePipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
