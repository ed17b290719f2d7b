// Package sentiment scores article polarity with the VADER lexicon.
package sentiment

import (
	"math"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/ports"
)

// TextCleaner normalises text before scoring.
type TextCleaner interface {
	Clean(text string) string
}

// Scorer wraps one analyzer instance; it holds no per-row state.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
	cleaner  TextCleaner
}

var _ ports.SentimentScorer = (*Scorer)(nil)

// New builds a scorer. A nil cleaner scores text as given.
func New(cleaner TextCleaner) *Scorer {
	return &Scorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		cleaner:  cleaner,
	}
}

// Score returns the four-component polarity of text after cleaning.
func (s *Scorer) Score(text string) domain.Scores {
	if s.cleaner != nil {
		text = s.cleaner.Clean(text)
	}
	return s.scoreClean(text)
}

func (s *Scorer) scoreClean(text string) domain.Scores {
	if text == "" {
		return domain.Scores{Neutral: 1}
	}
	raw := s.analyzer.PolarityScores(text)
	return domain.Scores{
		Positive: raw.Positive,
		Negative: raw.Negative,
		Neutral:  raw.Neutral,
		Compound: clamp(raw.Compound),
	}
}

// ScoreArticles scores title and content independently. The returned articles carry the
// cleaned text that was scored. Any non-text field fails the whole batch with no output.
func (s *Scorer) ScoreArticles(articles []domain.RawArticle) ([]domain.ScoredArticle, error) {
	for i, a := range articles {
		if !utf8.ValidString(a.Title) {
			return nil, notText("title", i)
		}
		if !utf8.ValidString(a.Content) {
			return nil, notText("content", i)
		}
	}

	out := make([]domain.ScoredArticle, len(articles))
	for i, a := range articles {
		if s.cleaner != nil {
			a.Title = s.cleaner.Clean(a.Title)
			a.Content = s.cleaner.Clean(a.Content)
		}
		out[i] = domain.ScoredArticle{
			Article:      a,
			TitleScore:   s.scoreClean(a.Title).Compound,
			ContentScore: s.scoreClean(a.Content).Compound,
		}
	}
	return out, nil
}

func notText(field string, index int) error {
	return &domain.ValidationError{
		Stage:  "sentiment",
		Field:  field,
		Index:  index,
		Reason: "value is not valid UTF-8 text",
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
