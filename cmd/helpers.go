package main

import (
	"time"

	"github.com/sells-group/edgar-cli/internal/config"
	"github.com/sells-group/edgar-cli/internal/fetcher"
)

// buildFetcher constructs the single shared HTTP fetcher for a command run.
// An explicit --user-agent overrides the configured value; an empty result
// is a configuration error raised here, before any network call.
func buildFetcher(cfg *config.Config, userAgentOverride string) (*fetcher.HTTPFetcher, error) {
	ua := userAgentOverride
	if ua == "" {
		ua = cfg.Edgar.UserAgent
	}

	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         ua,
		Timeout:           time.Duration(cfg.Edgar.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Edgar.MaxRetries,
		RequestsPerSecond: cfg.Edgar.MaxRequestsPerSecond,
		BackoffBase:       time.Duration(cfg.Edgar.BackoffBaseSecs * float64(time.Second)),
		BackoffMax:        time.Duration(cfg.Edgar.BackoffMaxSecs * float64(time.Second)),
	})
}
