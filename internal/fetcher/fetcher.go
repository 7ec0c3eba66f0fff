// Package fetcher is the single point of outbound HTTP access. It enforces
// the process-wide request-rate ceiling and the retry/backoff policy; no
// caller may bypass it.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for retrieving remote data.
type Fetcher interface {
	// Get fetches the URL and returns the response body bytes.
	Get(ctx context.Context, url string) ([]byte, error)

	// Download fetches the URL and returns the response body for streaming.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Gate serializes outbound requests. All calls across all tickers in a run
// compete for the same budget; tests substitute a controllable gate.
type Gate interface {
	Wait(ctx context.Context) error
}
