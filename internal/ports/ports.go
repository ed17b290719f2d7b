package ports

import (
	"context"
	"time"

	"NewsPolarity/internal/domain"
)

// ArticleSource pulls recent articles from every configured outlet.
type ArticleSource interface {
	FetchRecent(ctx context.Context, maxAge time.Duration) ([]domain.RawArticle, error)
}

// StagingStore holds scraped batches between the scrape and analysis runs.
type StagingStore interface {
	PutBatch(ctx context.Context, source string, rows []domain.RawArticle) (string, error)
	ListRecent(ctx context.Context, maxAge time.Duration) ([]string, error)
	Get(ctx context.Context, key string) ([]domain.RawArticle, error)
	Delete(ctx context.Context, key string) error
}

// ArticleRepository is the system of record for sources, topics and articles.
type ArticleRepository interface {
	KnownTitles(ctx context.Context, titles []string) (map[string]bool, error)
	SourceIDs(ctx context.Context) (map[string]int64, error)
	TopicNames(ctx context.Context) ([]string, error)
	Persist(ctx context.Context, articles []domain.ClassifiedArticle) ([]domain.PersistedArticle, error)
}

// SentimentScorer assigns polarity scores to titles and bodies.
type SentimentScorer interface {
	ScoreArticles(articles []domain.RawArticle) ([]domain.ScoredArticle, error)
}

// TopicClassifier maps titles onto the controlled vocabulary.
type TopicClassifier interface {
	Classify(ctx context.Context, titles, vocabulary []string) (map[string][]string, error)
}

// ChatClient sends one system instruction plus one user message to an LLM API.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
