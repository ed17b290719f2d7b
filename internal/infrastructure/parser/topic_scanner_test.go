package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsPolarity/internal/scanner"
)

func newTopicSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/topics/browse", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="container-fluid"><ul>
			<li><a href="/topics/browse">All topics</a></li>
			<li><a href="/topics/immigration">Immigration</a></li>
			<li><a href="/topics/climate">Climate</a></li>
		</ul></div></body></html>`))
	})
	mux.HandleFunc("/topics/immigration", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a data-ga-action="Topic: Story Headline" href="/2024/10/14/border_story">Border</a>
			<a data-ga-action="Topic: Story Headline" href="/2024/10/14/border_story#comments">Border again</a>
			<a data-ga-action="Topic: Story Headline" href="/2023/1/5/old_story">Old</a>
			<a href="/2024/10/14/not_a_story">Sidebar</a>
		</body></html>`))
	})
	mux.HandleFunc("/topics/climate", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/2024/10/14/border_story", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<h1 class="article__title">Asylum seekers wait at the border</h1>
			<span class="date">October 14, 2024</span>
			<div class="article__body"><p>First paragraph.</p><p>Second paragraph.</p></div>
		</body></html>`))
	})
	mux.HandleFunc("/2023/1/5/old_story", func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("stale story should not be fetched")
	})
	return httptest.NewServer(mux)
}

func TestTopicScannerCrawlsRecentStories(t *testing.T) {
	t.Parallel()

	srv := newTopicSite(t)
	defer srv.Close()

	s := NewTopicScanner(NewPageFetcher(srv.Client(), FetcherOptions{}, nil), nil)
	req := scanner.Request{
		Now:        time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC),
		MaxAge:     7 * 24 * time.Hour,
		SiteName:   "Democracy Now!",
		Categories: []scanner.Category{{Name: "topics", URL: srv.URL + "/topics/browse"}},
	}

	articles, err := s.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d: %+v", len(articles), articles)
	}

	got := articles[0]
	if got.Title != "Asylum seekers wait at the border" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Content != "First paragraph.\nSecond paragraph." {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if !strings.HasSuffix(got.URL, "/2024/10/14/border_story") {
		t.Fatalf("unexpected url %q", got.URL)
	}
	if !got.Published.Equal(time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published %v", got.Published)
	}
	if got.SourceName != "Democracy Now!" {
		t.Fatalf("unexpected source %q", got.SourceName)
	}
}

func TestTopicScannerKeepsStoryOnCutoffDayLateInTheDay(t *testing.T) {
	t.Parallel()

	srv := newTopicSite(t)
	defer srv.Close()

	s := NewTopicScanner(NewPageFetcher(srv.Client(), FetcherOptions{}, nil), nil)
	articles, err := s.Scan(context.Background(), scanner.Request{
		Now:        time.Date(2024, 10, 21, 23, 30, 0, 0, time.UTC),
		MaxAge:     7 * 24 * time.Hour,
		SiteName:   "Democracy Now!",
		Categories: []scanner.Category{{Name: "topics", URL: srv.URL + "/topics/browse"}},
	})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("story dated on the cutoff day should be kept, got %d articles", len(articles))
	}
}

func TestTopicScannerUnreachableIndexYieldsNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewTopicScanner(NewPageFetcher(srv.Client(), FetcherOptions{}, nil), nil)
	articles, err := s.Scan(context.Background(), scanner.Request{
		Now:        time.Now(),
		MaxAge:     time.Hour,
		SiteName:   "Democracy Now!",
		Categories: []scanner.Category{{Name: "topics", URL: srv.URL + "/topics/browse"}},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}

func TestParseStoryFallsBackToPlaceholder(t *testing.T) {
	t.Parallel()

	body := []byte(`<html><body><h1>Headline only</h1></body></html>`)
	article, err := parseStory("https://example.com/2024/10/14/headline", body, scanner.Request{SiteName: "Democracy Now!"})
	if err != nil {
		t.Fatalf("parseStory returned error: %v", err)
	}
	if article.Title != "Headline only" {
		t.Fatalf("unexpected title %q", article.Title)
	}
	if article.Content == "" {
		t.Fatalf("content must never be empty")
	}
	if !article.Published.Equal(time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected URL date fallback, got %v", article.Published)
	}
}

func TestParseStoryWithoutTitleFails(t *testing.T) {
	t.Parallel()

	if _, err := parseStory("https://example.com/x", []byte(`<p>text</p>`), scanner.Request{}); err == nil {
		t.Fatalf("expected error for missing title")
	}
}
