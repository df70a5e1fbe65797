package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bidPage = `<!doctype html>
<html><head>
<title>Bid 24-117 | City of Austin</title>
<meta property="og:title" content="Library Renovation">
<meta name="description" content="Renovation of the central library.">
<style>body { color: red; }</style>
</head>
<body>
<nav>Home Bids Contact</nav>
<h1>Library Renovation</h1>
<p>Proposals due   2026-04-01.</p>
<script>var tracking = true;</script>
<footer>Copyright</footer>
</body></html>`

func newTestFetcher(opts HTTPOptions) *HTTPFetcher {
	f := NewHTTPFetcher(opts)
	f.retry.InitialBackoff = time.Millisecond
	f.retry.MaxBackoff = time.Millisecond
	return f
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(bidPage))
	}))
	defer srv.Close()

	page, err := newTestFetcher(HTTPOptions{UserAgent: "test-agent"}).Fetch(context.Background(), srv.URL+"/bids/1")
	require.NoError(t, err)

	assert.Equal(t, "test-agent", ua)
	assert.Equal(t, srv.URL+"/bids/1", page.URL)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "Library Renovation", page.Title)
	assert.Equal(t, "Renovation of the central library.", page.Description)
	assert.Equal(t, "Library Renovation Proposals due 2026-04-01.", page.Text)
	assert.False(t, page.FetchedAt.IsZero())
}

func TestHTTPFetcher_TitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title> Plain Title </title></head><body>x</body></html>`))
	}))
	defer srv.Close()

	page, err := newTestFetcher(HTTPOptions{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Plain Title", page.Title)
	assert.Empty(t, page.Description)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := newTestFetcher(HTTPOptions{})
	for _, u := range []string{"", "ftp://example.com/x", "not a url", "https://"} {
		_, err := f.Fetch(context.Background(), u)
		assert.Error(t, err, u)
	}
}

func TestHTTPFetcher_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(bidPage))
	}))
	defer srv.Close()

	page, err := newTestFetcher(HTTPOptions{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Library Renovation", page.Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcher_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(HTTPOptions{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="g-recaptcha"></div></body></html>`))
	}))
	defer srv.Close()

	_, err := newTestFetcher(HTTPOptions{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked (captcha)")
}

func TestHTTPFetcher_LimiterPerHost(t *testing.T) {
	f := newTestFetcher(HTTPOptions{})
	assert.Nil(t, f.limiter("a.example.com"), "disabled without a rate")

	f = newTestFetcher(HTTPOptions{RatePerHost: 2})
	a := f.limiter("a.example.com")
	require.NotNil(t, a)
	assert.Same(t, a, f.limiter("a.example.com"))
	assert.NotSame(t, a, f.limiter("b.example.com"))
}

func TestParsePage_TruncatesText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", maxTextRunes+50) + "</p></body></html>"))
	}))
	defer srv.Close()

	page, err := newTestFetcher(HTTPOptions{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Text, maxTextRunes)
}
