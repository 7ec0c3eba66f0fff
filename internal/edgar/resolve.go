package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/edgar-cli/internal/config"
	"github.com/sells-group/edgar-cli/internal/fetcher"
)

const tickerCacheFile = "company_tickers.json"

// tickerEntry is one record of the SEC symbol map. The upstream file is
// keyed by array index ("0", "1", ...), not by ticker.
type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// Resolver maps ticker symbols to zero-padded 10-digit CIK strings, using a
// time-bounded on-disk cache of the SEC symbol map. The map is loaded at
// most once per process.
type Resolver struct {
	f   fetcher.Fetcher
	cfg config.EdgarConfig

	group   singleflight.Group
	mu      sync.Mutex
	tickers map[string]tickerEntry
}

// NewResolver creates a Resolver.
func NewResolver(f fetcher.Fetcher, cfg config.EdgarConfig) *Resolver {
	return &Resolver{f: f, cfg: cfg}
}

// Resolve maps a ticker symbol (case-insensitive) to its 10-digit CIK.
// Returns a NotFoundError with close-match suggestions when the ticker is
// absent from the symbol map.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (string, error) {
	m, err := r.tickerMap(ctx)
	if err != nil {
		return "", err
	}

	key := strings.ToUpper(strings.TrimSpace(ticker))
	entry, ok := m[key]
	if !ok {
		candidates := make([]string, 0, len(m))
		for t := range m {
			candidates = append(candidates, t)
		}
		return "", &NotFoundError{Ticker: key, Suggestions: closeMatches(key, candidates, 5)}
	}

	return padCIK(entry.CIK.String()), nil
}

// padCIK zero-pads a numeric CIK to 10 characters; the upstream format is
// inconsistent about padding.
func padCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

func (r *Resolver) cachePath() string {
	return filepath.Join(r.cfg.CacheDir, tickerCacheFile)
}

func (r *Resolver) cacheFresh() bool {
	info, err := os.Stat(r.cachePath())
	if err != nil {
		return false
	}
	maxAge := time.Duration(r.cfg.CacheMaxAgeHours) * time.Hour
	return time.Since(info.ModTime()) < maxAge
}

// tickerMap returns the uppercase-keyed symbol map, loading it on first use.
// Concurrent callers share one load via singleflight.
func (r *Resolver) tickerMap(ctx context.Context) (map[string]tickerEntry, error) {
	r.mu.Lock()
	if r.tickers != nil {
		m := r.tickers
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do("ticker_map", func() (any, error) {
		m, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.tickers = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]tickerEntry), nil
}

func (r *Resolver) load(ctx context.Context) (map[string]tickerEntry, error) {
	log := zap.L().With(zap.String("component", "resolver"))

	if r.cacheFresh() {
		data, err := os.ReadFile(r.cachePath())
		if err == nil {
			m, perr := parseTickerMap(data)
			if perr == nil {
				log.Debug("loaded ticker map from cache", zap.Int("tickers", len(m)))
				return m, nil
			}
			// Corrupt cache is a miss, not a failure.
			log.Warn("corrupt ticker cache, refetching", zap.Error(perr))
		}
	}

	data, err := r.f.Get(ctx, r.cfg.TickerMapURL)
	if err != nil {
		return nil, eris.Wrap(err, "resolver: fetch ticker map")
	}

	m, err := parseTickerMap(data)
	if err != nil {
		return nil, &ParseError{URL: r.cfg.TickerMapURL, Reason: "unrecognized symbol map shape", Err: err}
	}

	if err := r.writeCache(data); err != nil {
		log.Warn("ticker cache write failed", zap.Error(err))
	}

	log.Info("fetched ticker map", zap.Int("tickers", len(m)))
	return m, nil
}

// writeCache persists the raw upstream payload atomically (write temp, then
// rename) so a concurrent run never observes a partially written file.
func (r *Resolver) writeCache(data []byte) error {
	if err := os.MkdirAll(r.cfg.CacheDir, 0o755); err != nil {
		return eris.Wrapf(err, "resolver: create cache dir %s", r.cfg.CacheDir)
	}

	tmp, err := os.CreateTemp(r.cfg.CacheDir, tickerCacheFile+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "resolver: create temp cache file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrap(err, "resolver: write temp cache file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrap(err, "resolver: close temp cache file")
	}
	if err := os.Rename(tmp.Name(), r.cachePath()); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrap(err, "resolver: rename cache file")
	}
	return nil
}

func parseTickerMap(data []byte) (map[string]tickerEntry, error) {
	var raw map[string]tickerEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := make(map[string]tickerEntry, len(raw))
	for _, e := range raw {
		if e.Ticker == "" {
			continue
		}
		m[strings.ToUpper(e.Ticker)] = e
	}
	return m, nil
}
