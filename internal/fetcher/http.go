package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrMissingUserAgent is a configuration error raised at construction,
// before any request is attempted. SEC refuses anonymous clients.
var ErrMissingUserAgent = eris.New("fetcher: user agent is required (set edgar.user_agent or SEC_EDGAR_USER_AGENT)")

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int     // total attempts, including the first
	RequestsPerSecond float64 // process-wide ceiling; SEC caps at 10/s
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	RetryStatuses     []int // 5xx codes retried as server errors
	Gate              Gate  // optional; defaults to a rate.Limiter at RequestsPerSecond
}

// HTTPFetcher implements Fetcher using net/http with retry and a single
// shared rate gate.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
	gate   Gate
}

// NewHTTPFetcher creates an HTTPFetcher. It fails if no User-Agent is
// configured.
func NewHTTPFetcher(opts HTTPOptions) (*HTTPFetcher, error) {
	if opts.UserAgent == "" {
		return nil, ErrMissingUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 5
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 8
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 2 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.RetryStatuses == nil {
		opts.RetryStatuses = []int{500, 502, 503, 504}
	}

	gate := opts.Gate
	if gate == nil {
		// Burst 1 turns the ceiling into a minimum inter-request interval.
		gate = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
		gate: gate,
	}, nil
}

func (f *HTTPFetcher) retryableStatus(code int) bool {
	for _, s := range f.opts.RetryStatuses {
		if code == s {
			return true
		}
	}
	return false
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastKind Kind
	var lastStatus int
	var lastErr error

	for attempt := range f.opts.MaxRetries {
		if err := f.gate.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate gate wait")
		}

		cloned := req.Clone(ctx)
		resp, err := f.client.Do(cloned)
		if err != nil {
			kind := KindNetwork
			if isTimeout(err) {
				kind = KindTimeout
			}
			if !isTransientNetErr(err) {
				return nil, &TransportError{Kind: kind, URL: req.URL.String(), Err: err}
			}
			lastKind, lastStatus, lastErr = kind, 0, err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			// SEC signals throttling with both 403 and 429.
			_ = resp.Body.Close()
			lastKind, lastStatus, lastErr = KindRateLimited, resp.StatusCode, nil
			zap.L().Warn("rate limited, backing off",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue

		case f.retryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastKind, lastStatus, lastErr = KindServerError, resp.StatusCode, nil
			zap.L().Warn("server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, &TransportError{Kind: lastKind, URL: req.URL.String(), Status: lastStatus, Err: lastErr}
}

// backoff sleeps for an exponentially growing interval: base doubles per
// attempt up to the cap, plus jitter. Honors context cancellation. No sleep
// is scheduled past the final attempt; the caller fails instead.
func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	if attempt >= f.opts.MaxRetries-1 {
		return
	}

	d := time.Duration(float64(f.opts.BackoffBase) * math.Pow(2, float64(attempt)))
	if d > f.opts.BackoffMax {
		d = f.opts.BackoffMax
	}
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (f *HTTPFetcher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	// Accept-Encoding is left to the transport so gzip bodies are decoded
	// transparently.
	req.Header.Set("User-Agent", f.opts.UserAgent)
	return req, nil
}

// Get fetches the URL and returns the response body bytes.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "read body from %s", url)
	}
	return data, nil
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	return resp.Body, nil
}
