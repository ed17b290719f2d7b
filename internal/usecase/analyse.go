package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/novelty"
	"NewsPolarity/internal/ports"
	"NewsPolarity/internal/topics"
)

// AnalysisDeps wires the driven adapters of the analysis run.
type AnalysisDeps struct {
	Staging          ports.StagingStore
	Repository       ports.ArticleRepository
	Scorer           ports.SentimentScorer
	Classifier       ports.TopicClassifier
	StagingMaxAge    time.Duration
	DropUnclassified bool
	Logger           *slog.Logger
}

// AnalysisReport counts what happened to staged rows.
type AnalysisReport struct {
	Staged        int
	UnknownSource int
	Undated       int
	Novel         int
	Classified    int
	Persisted     []domain.PersistedArticle
}

// AnalysisPipeline turns staged batches into scored, classified, stored articles.
type AnalysisPipeline struct {
	staging          ports.StagingStore
	repository       ports.ArticleRepository
	scorer           ports.SentimentScorer
	classifier       ports.TopicClassifier
	maxAge           time.Duration
	dropUnclassified bool
	logger           *slog.Logger
}

// NewAnalysisPipeline constructs the analysis use case.
func NewAnalysisPipeline(deps AnalysisDeps) *AnalysisPipeline {
	return &AnalysisPipeline{
		staging:          deps.Staging,
		repository:       deps.Repository,
		scorer:           deps.Scorer,
		classifier:       deps.Classifier,
		maxAge:           deps.StagingMaxAge,
		dropUnclassified: deps.DropUnclassified,
		logger:           deps.Logger,
	}
}

// Run drains staging and persists the novel articles. An empty staging area is a successful no-op.
func (p *AnalysisPipeline) Run(ctx context.Context) (AnalysisReport, error) {
	var report AnalysisReport
	if p.staging == nil || p.repository == nil || p.scorer == nil || p.classifier == nil {
		return report, fmt.Errorf("analysis pipeline is not configured")
	}

	rows, err := DrainStaging(ctx, p.staging, p.maxAge)
	if errors.Is(err, domain.ErrNothingStaged) {
		p.info("nothing staged")
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("read staging: %w", err)
	}
	report.Staged = len(rows)

	sourceIDs, err := p.repository.SourceIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("load sources: %w", err)
	}
	known := rows[:0]
	for _, r := range rows {
		if _, ok := sourceIDs[r.SourceName]; !ok {
			report.UnknownSource++
			p.warn("dropping row of unknown source", "source", r.SourceName, "title", r.Title)
			continue
		}
		if r.Published.IsZero() {
			report.Undated++
			p.warn("dropping row without publish date", "source", r.SourceName, "title", r.Title)
			continue
		}
		known = append(known, r)
	}

	novel, err := novelty.Dedupe(ctx, known, p.repository.KnownTitles)
	if err != nil {
		return report, err
	}
	report.Novel = len(novel)
	if len(novel) == 0 {
		p.info("no new articles", "staged", report.Staged)
		return report, nil
	}

	scored, err := p.scorer.ScoreArticles(novel)
	if err != nil {
		return report, fmt.Errorf("score articles: %w", err)
	}
	titles := make([]string, len(scored))
	for i := range scored {
		scored[i].SourceID = sourceIDs[scored[i].Article.SourceName]
		titles[i] = scored[i].Article.Title
	}

	vocabulary, err := p.repository.TopicNames(ctx)
	if err != nil {
		return report, fmt.Errorf("load topics: %w", err)
	}
	if len(vocabulary) == 0 {
		p.warn("topic vocabulary is empty; every article stays unclassified")
	}

	result, err := p.classifier.Classify(ctx, titles, vocabulary)
	if err != nil {
		return report, fmt.Errorf("classify titles: %w", err)
	}

	classified := topics.Assign(scored, result, p.dropUnclassified)
	report.Classified = len(classified)

	persisted, err := p.repository.Persist(ctx, classified)
	report.Persisted = persisted
	if err != nil {
		return report, fmt.Errorf("persist articles: %w", err)
	}

	p.info("analysis done",
		"staged", report.Staged,
		"novel", report.Novel,
		"classified", report.Classified,
		"persisted", len(persisted),
	)
	return report, nil
}

func (p *AnalysisPipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *AnalysisPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
