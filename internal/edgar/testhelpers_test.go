package edgar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sells-group/edgar-cli/internal/config"
	"github.com/sells-group/edgar-cli/internal/fetcher"
)

// fakeFetcher serves canned responses per URL and counts requests.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) respond(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = []byte(body)
}

func (f *fakeFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if body, ok := f.responses[url]; ok {
		return body, nil
	}
	return nil, &fetcher.StatusError{URL: url, Status: 404}
}

func (f *fakeFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	data, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func testEdgarConfig(cacheDir string) config.EdgarConfig {
	return config.EdgarConfig{
		UserAgent:        "test test@example.com",
		TickerMapURL:     "https://example.test/company_tickers.json",
		SubmissionsBase:  "https://example.test/submissions",
		FactsBase:        "https://example.test/api/xbrl/companyfacts",
		ConceptBase:      "https://example.test/api/xbrl/companyconcept",
		CacheDir:         cacheDir,
		CacheMaxAgeHours: 24,
	}
}

func testConfig(cacheDir string) *config.Config {
	return &config.Config{
		Edgar: testEdgarConfig(cacheDir),
		Concepts: config.ConceptsConfig{
			Aliases:  config.DefaultAliases(),
			Priority: config.DefaultPriority(),
			KeyForms: config.DefaultKeyForms(),
		},
	}
}

const tickerMapBody = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"},
	"2": {"cik_str": 1318605, "ticker": "TSLA", "title": "Tesla, Inc."},
	"3": {"cik_str": 1018724, "ticker": "AMZN", "title": "AMAZON COM INC"}
}`

func submissionsBody(cik string, accns []string, forms []string, overflow []string) string {
	quote := func(ss []string) string {
		out := ""
		for i, s := range ss {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf("%q", s)
		}
		return out
	}

	files := ""
	for i, name := range overflow {
		if i > 0 {
			files += ","
		}
		files += fmt.Sprintf(`{"name": %q}`, name)
	}

	dates := make([]string, len(accns))
	for i := range dates {
		dates[i] = fmt.Sprintf("2024-01-%02d", i+1)
	}

	return fmt.Sprintf(`{
		"cik": %s,
		"name": "Test Co",
		"entityType": "operating",
		"sic": "3571",
		"sicDescription": "Electronic Computers",
		"tickers": ["TEST"],
		"exchanges": ["Nasdaq"],
		"filings": {
			"recent": {
				"accessionNumber": [%s],
				"filingDate": [%s],
				"form": [%s]
			},
			"files": [%s]
		}
	}`, cik, quote(accns), quote(dates), quote(forms), files)
}

func overflowBody(accns []string, forms []string) string {
	quote := func(ss []string) string {
		out := ""
		for i, s := range ss {
			if i > 0 {
				out += ","
			}
			out += fmt.Sprintf("%q", s)
		}
		return out
	}
	dates := make([]string, len(accns))
	for i := range dates {
		dates[i] = fmt.Sprintf("2020-06-%02d", i+1)
	}
	return fmt.Sprintf(`{
		"accessionNumber": [%s],
		"filingDate": [%s],
		"form": [%s]
	}`, quote(accns), quote(dates), quote(forms))
}
