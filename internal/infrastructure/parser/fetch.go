package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"NewsPolarity/internal/domain"
	"NewsPolarity/pkg/batch"
)

const (
	defaultWaveSize = 50
	maxBodyBytes    = 8 << 20
)

// FetchResult is the outcome for one URL; exactly one of Body or Err is meaningful.
type FetchResult struct {
	URL  string
	Body []byte
	Err  error
}

// OK reports whether the page was retrieved.
func (r FetchResult) OK() bool { return r.Err == nil }

// PageFetcher issues GET requests in waves of bounded size.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	waveSize  int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// FetcherOptions tunes a PageFetcher. Zero values pick defaults.
type FetcherOptions struct {
	Timeout           time.Duration
	WaveSize          int
	RequestsPerSecond float64
	UserAgent         string
}

// NewPageFetcher wires an HTTP client; a nil client gets one with opts.Timeout (30s by default).
func NewPageFetcher(client *http.Client, opts FetcherOptions, logger *slog.Logger) *PageFetcher {
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if opts.WaveSize <= 0 {
		opts.WaveSize = defaultWaveSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "NewsPolarity/1.0"
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &PageFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		waveSize:  opts.WaveSize,
		limiter:   limiter,
		logger:    logger,
	}
}

// FetchAll retrieves every URL and returns results aligned with the input positions.
// Each wave is awaited in full before the next one starts. Once ctx is cancelled no
// further wave starts and the remaining slots carry the cancellation error.
func (f *PageFetcher) FetchAll(ctx context.Context, urls []string) []FetchResult {
	results := make([]FetchResult, len(urls))
	offset := 0

	for _, wave := range batch.Chunk(urls, f.waveSize) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.waveSize)
		for i, u := range wave {
			pos := offset + i
			g.Go(func() error {
				body, err := f.Fetch(gctx, u)
				results[pos] = FetchResult{URL: u, Body: body, Err: err}
				// Per-page failures stay in their slot; only cancellation stops the run.
				return ctx.Err()
			})
		}
		err := g.Wait()
		offset += len(wave)
		if err != nil {
			for i := offset; i < len(urls); i++ {
				results[i] = FetchResult{URL: urls[i], Err: &domain.FetchError{URL: urls[i], Err: err}}
			}
			f.debug("fetch cancelled", "done", offset, "skipped", len(urls)-offset, "error", err)
			break
		}
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	f.debug("fetch wave set done", "urls", len(urls), "failed", failed)

	return results
}

// Fetch retrieves one page body.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &domain.FetchError{URL: pageURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (f *PageFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
