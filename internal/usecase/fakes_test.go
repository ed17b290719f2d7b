package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"NewsPolarity/internal/domain"
)

type fakeSource struct {
	articles []domain.RawArticle
	err      error
	maxAge   time.Duration
}

func (f *fakeSource) FetchRecent(_ context.Context, maxAge time.Duration) ([]domain.RawArticle, error) {
	f.maxAge = maxAge
	return f.articles, f.err
}

type memStaging struct {
	mu      sync.Mutex
	seq     int
	batches map[string][]domain.RawArticle
	putErr  error
	deleted []string
}

func newMemStaging() *memStaging {
	return &memStaging{batches: map[string][]domain.RawArticle{}}
}

func (m *memStaging) PutBatch(_ context.Context, source string, rows []domain.RawArticle) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%03d_%s", m.seq, strings.ToLower(strings.ReplaceAll(source, " ", "_")))
	m.batches[key] = append([]domain.RawArticle(nil), rows...)
	return key, nil
}

func (m *memStaging) ListRecent(context.Context, time.Duration) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.batches) == 0 {
		return nil, domain.ErrNothingStaged
	}
	keys := make([]string, 0, len(m.batches))
	for k := range m.batches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStaging) Get(_ context.Context, key string) ([]domain.RawArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.batches[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return rows, nil
}

func (m *memStaging) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.batches, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type memRepo struct {
	sources  map[string]int64
	topics   []string
	stored   map[string]domain.ClassifiedArticle
	nextID   int64
	persists int
}

var storyDay = time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)

func newMemRepo(known ...string) *memRepo {
	r := &memRepo{
		sources: map[string]int64{"Fox News": 1, "Democracy Now!": 2},
		topics:  []string{"Trump", "Climate Change", "Guns"},
		stored:  map[string]domain.ClassifiedArticle{},
	}
	for _, title := range known {
		r.nextID++
		r.stored[title] = domain.ClassifiedArticle{}
	}
	return r
}

func (r *memRepo) KnownTitles(_ context.Context, titles []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, t := range titles {
		if _, ok := r.stored[t]; ok {
			out[t] = true
		}
	}
	return out, nil
}

func (r *memRepo) SourceIDs(context.Context) (map[string]int64, error) { return r.sources, nil }

func (r *memRepo) TopicNames(context.Context) ([]string, error) { return r.topics, nil }

func (r *memRepo) Persist(_ context.Context, articles []domain.ClassifiedArticle) ([]domain.PersistedArticle, error) {
	r.persists++
	var out []domain.PersistedArticle
	for _, a := range articles {
		if _, ok := r.stored[a.Article.Title]; ok {
			continue
		}
		r.nextID++
		r.stored[a.Article.Title] = a
		out = append(out, domain.PersistedArticle{ID: r.nextID, Title: a.Article.Title})
	}
	return out, nil
}

type lengthScorer struct{}

func (lengthScorer) ScoreArticles(articles []domain.RawArticle) ([]domain.ScoredArticle, error) {
	out := make([]domain.ScoredArticle, len(articles))
	for i, a := range articles {
		out[i] = domain.ScoredArticle{Article: a, TitleScore: 0.1, ContentScore: -0.1}
	}
	return out, nil
}

type keywordClassifier struct {
	calls      int
	vocabulary []string
}

func (k *keywordClassifier) Classify(_ context.Context, titles, vocabulary []string) (map[string][]string, error) {
	k.calls++
	k.vocabulary = vocabulary
	out := make(map[string][]string, len(titles))
	for _, title := range titles {
		out[title] = []string{}
		for _, topic := range vocabulary {
			if strings.Contains(strings.ToLower(title), strings.ToLower(topic)) {
				out[title] = append(out[title], topic)
			}
		}
	}
	return out, nil
}
