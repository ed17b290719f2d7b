package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/scanner"
)

const (
	defaultTopicSelector = `a[href^="/topics/"]`
	defaultStorySelector = `a[data-ga-action="Topic: Story Headline"]`
	defaultTitleSelector = "h1.article__title, h1"
	defaultBodySelector  = "div.article__body p"
	defaultDateSelector  = "span.date"
)

// TopicScanner crawls a topic index, follows each topic page and loads the linked stories.
type TopicScanner struct {
	fetcher *PageFetcher
	logger  *slog.Logger
}

// NewTopicScanner builds a topic crawler on top of a shared fetcher.
func NewTopicScanner(fetcher *PageFetcher, logger *slog.Logger) *TopicScanner {
	return &TopicScanner{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *TopicScanner) Name() string {
	return "topics"
}

// Scan walks index -> topic pages -> story pages. An unreachable index yields no articles.
func (s *TopicScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no topic index provided for site %s", req.SiteName)
	}

	var out []domain.RawArticle
	seen := map[string]struct{}{}

	for _, cat := range req.Categories {
		base, err := url.Parse(cat.URL)
		if err != nil {
			return nil, fmt.Errorf("category %s: parse url: %w", cat.Name, err)
		}

		topicURLs, err := s.topicPages(ctx, base, req)
		if err != nil {
			s.warn("topic index unavailable", "site", req.SiteName, "url", cat.URL, "error", err)
			continue
		}

		storyURLs := s.storyLinks(ctx, base, topicURLs, req)
		for _, article := range s.stories(ctx, storyURLs, req) {
			if _, dup := seen[article.URL]; dup {
				continue
			}
			seen[article.URL] = struct{}{}
			out = append(out, article)
		}
	}

	s.debug("topics scanned", "site", req.SiteName, "articles", len(out))
	return out, nil
}

func (s *TopicScanner) topicPages(ctx context.Context, base *url.URL, req scanner.Request) ([]string, error) {
	body, err := s.fetcher.Fetch(ctx, base.String())
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	self := base.String()
	links := collectLinks(doc, req.Option("topic_selector", defaultTopicSelector), base)
	topics := links[:0]
	for _, link := range links {
		if link != self {
			topics = append(topics, link)
		}
	}
	return topics, nil
}

func (s *TopicScanner) storyLinks(ctx context.Context, base *url.URL, topicURLs []string, req scanner.Request) []string {
	selector := req.Option("story_selector", defaultStorySelector)
	seen := map[string]struct{}{}
	var links []string

	for _, res := range s.fetcher.FetchAll(ctx, topicURLs) {
		if !res.OK() {
			s.warn("topic page unavailable", "site", req.SiteName, "url", res.URL, "error", res.Err)
			continue
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
		if err != nil {
			s.warn("topic page unparseable", "url", res.URL, "error", err)
			continue
		}
		for _, link := range collectLinks(doc, selector, base) {
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}

			published, ok := DateFromURL(link)
			if !ok || IsStaleDay(published, req.Now, req.MaxAge) {
				continue
			}
			links = append(links, link)
		}
	}
	return links
}

func (s *TopicScanner) stories(ctx context.Context, storyURLs []string, req scanner.Request) []domain.RawArticle {
	var out []domain.RawArticle
	for _, res := range s.fetcher.FetchAll(ctx, storyURLs) {
		if !res.OK() {
			s.warn("story unavailable", "site", req.SiteName, "url", res.URL, "error", res.Err)
			continue
		}
		article, err := parseStory(res.URL, res.Body, req)
		if err != nil {
			s.warn("story skipped", "url", res.URL, "error", err)
			continue
		}
		if IsStaleDay(article.Published, req.Now, req.MaxAge) {
			continue
		}
		out = append(out, article)
	}
	return out
}

func parseStory(pageURL string, body []byte, req scanner.Request) (domain.RawArticle, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("parse story: %w", err)
	}

	title := strings.TrimSpace(doc.Find(req.Option("title_selector", defaultTitleSelector)).First().Text())
	if title == "" {
		return domain.RawArticle{}, fmt.Errorf("no title")
	}

	var paragraphs []string
	doc.Find(req.Option("body_selector", defaultBodySelector)).Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	content := strings.Join(paragraphs, "\n")
	if content == "" {
		content = readableText(pageURL, body)
	}
	if content == "" {
		content = noContentPlaceholder
	}

	published, ok := parsePageDate(doc.Find(req.Option("date_selector", defaultDateSelector)).First().Text())
	if !ok {
		published, _ = DateFromURL(pageURL)
	}

	return domain.RawArticle{
		Title:      title,
		Content:    content,
		URL:        pageURL,
		Published:  published,
		SourceName: req.SiteName,
	}, nil
}

// readableText extracts the main text block when the layout selectors found nothing.
func readableText(pageURL string, body []byte) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	doc.Find("figure, aside, script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func collectLinks(doc *goquery.Document, selector string, base *url.URL) []string {
	seen := map[string]struct{}{}
	var links []string
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

func (s *TopicScanner) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *TopicScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
