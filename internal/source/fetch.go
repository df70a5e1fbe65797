package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/intake-cli/internal/resilience"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 2 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int

	// RatePerHost limits requests per second to any one host. Zero disables.
	RatePerHost float64
}

// HTTPFetcher fetches pages over HTTP with per-host rate limiting and
// retries on transient failures.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
	retry  resilience.RetryConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = "intake-cli/1.0 (+refresh)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries + 1
	}
	retry.OnRetry = resilience.RetryLogger("source", "fetch")

	return &HTTPFetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		retry:    retry,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves and parses the page at rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, eris.Errorf("source: invalid url %q", rawURL)
	}

	page, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*Page, error) {
		return f.fetchOnce(ctx, u)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "source: fetch %s", rawURL)
	}
	return page, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, u *url.URL) (*Page, error) {
	if l := f.limiter(u.Host); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if block := DetectBlock(resp, body); block != BlockNone {
		zap.L().Warn("source page blocked",
			zap.String("url", u.String()),
			zap.String("block", string(block)),
		)
		return nil, eris.Errorf("blocked (%s)", block)
	}
	if err := resilience.StatusError(resp.StatusCode, u.String()); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "parse document")
	}
	title, description, text := parsePage(doc)
	return &Page{
		URL:         u.String(),
		StatusCode:  resp.StatusCode,
		Title:       title,
		Description: description,
		Text:        text,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	if f.opts.RatePerHost <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.opts.RatePerHost), 1)
		f.limiters[host] = l
	}
	return l
}
