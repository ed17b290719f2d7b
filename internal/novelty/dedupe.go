// Package novelty keeps an article from being persisted more than once.
package novelty

import (
	"context"
	"fmt"

	"NewsPolarity/internal/domain"
)

// TitleLookup reports which of the given titles are already stored.
type TitleLookup func(ctx context.Context, titles []string) (map[string]bool, error)

// Dedupe drops repeated titles within the batch, then titles the lookup already knows.
// The lookup is not called for an empty batch.
func Dedupe(ctx context.Context, articles []domain.RawArticle, lookup TitleLookup) ([]domain.RawArticle, error) {
	unique := DropDuplicateTitles(articles)
	if len(unique) == 0 {
		return nil, nil
	}
	if lookup == nil {
		return unique, nil
	}

	titles := make([]string, len(unique))
	for i, a := range unique {
		titles[i] = a.Title
	}

	known, err := lookup(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("load known titles: %w", err)
	}

	return DropKnown(unique, known), nil
}

// DropDuplicateTitles keeps the first article for every title, preserving input order.
func DropDuplicateTitles(articles []domain.RawArticle) []domain.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.RawArticle, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.Title]; ok {
			continue
		}
		seen[a.Title] = struct{}{}
		out = append(out, a)
	}
	return out
}

// DropKnown removes articles whose title is in known.
func DropKnown(articles []domain.RawArticle, known map[string]bool) []domain.RawArticle {
	if len(known) == 0 {
		return articles
	}
	out := make([]domain.RawArticle, 0, len(articles))
	for _, a := range articles {
		if known[a.Title] {
			continue
		}
		out = append(out, a)
	}
	return out
}
