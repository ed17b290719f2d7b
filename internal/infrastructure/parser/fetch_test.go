package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NewsPolarity/internal/domain"
)

func TestFetchAllKeepsPositionsAndIsolatesFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "page %s", r.URL.Path)
	}))
	defer srv.Close()

	fetcher := NewPageFetcher(srv.Client(), FetcherOptions{WaveSize: 2}, nil)
	urls := []string{srv.URL + "/a", srv.URL + "/missing", srv.URL + "/c", srv.URL + "/d", srv.URL + "/e"}

	results := fetcher.FetchAll(context.Background(), urls)
	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}

	for i, res := range results {
		if res.URL != urls[i] {
			t.Fatalf("result %d is for %s, want %s", i, res.URL, urls[i])
		}
	}

	if results[1].OK() {
		t.Fatalf("missing page should fail")
	}
	var fetchErr *domain.FetchError
	if !errors.As(results[1].Err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected FetchError with 404, got %v", results[1].Err)
	}

	if got := string(results[3].Body); got != "page /d" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestFetchAllBoundsConcurrencyByWave(t *testing.T) {
	t.Parallel()

	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := NewPageFetcher(srv.Client(), FetcherOptions{WaveSize: 3}, nil)
	urls := make([]string, 10)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d", srv.URL, i)
	}

	for i, res := range fetcher.FetchAll(context.Background(), urls) {
		if !res.OK() {
			t.Fatalf("result %d failed: %v", i, res.Err)
		}
	}
	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Fatalf("peak concurrency %d exceeds wave size", p)
	}
}

func TestFetchAllStopsAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		cancel()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := NewPageFetcher(srv.Client(), FetcherOptions{WaveSize: 2}, nil)
	urls := make([]string, 6)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%d", srv.URL, i)
	}

	results := fetcher.FetchAll(ctx, urls)
	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	if h := atomic.LoadInt32(&hits); h > 2 {
		t.Fatalf("expected only the first wave to reach the server, got %d requests", h)
	}
	for i := 2; i < len(results); i++ {
		if results[i].URL != urls[i] {
			t.Fatalf("result %d is for %s, want %s", i, results[i].URL, urls[i])
		}
		if !errors.Is(results[i].Err, context.Canceled) {
			t.Fatalf("result %d: expected cancellation, got %v", i, results[i].Err)
		}
	}
}

func TestFetchAllEmpty(t *testing.T) {
	t.Parallel()

	fetcher := NewPageFetcher(nil, FetcherOptions{}, nil)
	if got := fetcher.FetchAll(context.Background(), nil); len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}
