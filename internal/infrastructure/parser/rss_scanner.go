package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/scanner"
)

const noContentPlaceholder = "No content available."

// RSSScanner enumerates syndication feeds and keeps recent items.
type RSSScanner struct {
	fetcher *PageFetcher
	logger  *slog.Logger
}

// NewRSSScanner builds a feed scanner on top of a shared fetcher.
func NewRSSScanner(fetcher *PageFetcher, logger *slog.Logger) *RSSScanner {
	return &RSSScanner{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches every category feed. Feeds that fail to load or parse are skipped.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	urls := make([]string, 0, len(req.Categories))
	for _, cat := range req.Categories {
		urls = append(urls, cat.URL)
	}

	seen := map[string]struct{}{}
	var out []domain.RawArticle

	for i, res := range s.fetcher.FetchAll(ctx, urls) {
		if !res.OK() {
			s.warn("feed unavailable", "site", req.SiteName, "feed", req.Categories[i].Name, "error", res.Err)
			continue
		}

		feed, err := gofeed.NewParser().Parse(bytes.NewReader(res.Body))
		if err != nil {
			s.warn("feed unparseable", "site", req.SiteName, "feed", req.Categories[i].Name, "error", err)
			continue
		}

		for _, item := range feed.Items {
			article, ok := itemToArticle(item, req.SiteName)
			if !ok || IsStale(article.Published, req.Now, req.MaxAge) {
				continue
			}
			key := article.URL
			if key == "" {
				key = article.Title
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, article)
		}
	}

	s.debug("feeds scanned", "site", req.SiteName, "feeds", len(urls), "articles", len(out))
	return out, nil
}

func itemToArticle(item *gofeed.Item, siteName string) (domain.RawArticle, bool) {
	if item == nil {
		return domain.RawArticle{}, false
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return domain.RawArticle{}, false
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}
	if strings.TrimSpace(content) == "" {
		content = noContentPlaceholder
	}

	return domain.RawArticle{
		Title:      title,
		Content:    content,
		URL:        strings.TrimSpace(item.Link),
		Published:  itemDate(item),
		SourceName: siteName,
	}, true
}

func itemDate(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	}
	if t, ok := DateFromURL(item.Link); ok {
		return t
	}
	return time.Time{}
}

func (s *RSSScanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *RSSScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
