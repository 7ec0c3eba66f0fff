package edgar

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-cli/internal/config"
	"github.com/sells-group/edgar-cli/internal/fetcher"
	"github.com/sells-group/edgar-cli/internal/model"
)

// Options selects what the pipeline fetches per ticker.
type Options struct {
	FilingsOnly  bool
	FactsOnly    bool
	PriorityOnly bool
	// Forms filters both the filing list and the fact survivorship input.
	Forms []string
}

// Pipeline sequences resolve → submissions → facts → normalize per ticker.
// Tickers are processed sequentially: the rate gate is process-wide, so
// parallel tickers would only contend for the same request budget.
type Pipeline struct {
	resolver *Resolver
	subs     *SubmissionsClient
	facts    *FactsClient
	tables   Tables
}

// NewPipeline wires the pipeline components around one shared Fetcher.
func NewPipeline(f fetcher.Fetcher, cfg *config.Config) *Pipeline {
	return &Pipeline{
		resolver: NewResolver(f, cfg.Edgar),
		subs:     NewSubmissionsClient(f, cfg.Edgar.SubmissionsBase, cfg.Concepts.KeyForms),
		facts:    NewFactsClient(f, cfg.Edgar.FactsBase, cfg.Edgar.ConceptBase),
		tables: Tables{
			Aliases:  cfg.Concepts.Aliases,
			Priority: cfg.Concepts.Priority,
		},
	}
}

// Resolver exposes the pipeline's resolver for targeted lookups.
func (p *Pipeline) Resolver() *Resolver {
	return p.resolver
}

// Facts exposes the pipeline's facts client for single-concept queries.
func (p *Pipeline) Facts() *FactsClient {
	return p.facts
}

// Run processes each ticker in order. A failed ticker contributes a
// StageError and no result; the remaining tickers still run.
func (p *Pipeline) Run(ctx context.Context, tickers []string, opts Options) ([]model.TickerResult, []*StageError) {
	var results []model.TickerResult
	var failures []*StageError

	for _, ticker := range tickers {
		result, err := p.RunTicker(ctx, ticker, opts)
		if err != nil {
			var se *StageError
			if e, ok := err.(*StageError); ok {
				se = e
			} else {
				se = &StageError{Ticker: strings.ToUpper(ticker), Stage: StageResolve, Err: err}
			}
			zap.L().Error("ticker failed",
				zap.String("ticker", se.Ticker),
				zap.String("stage", string(se.Stage)),
				zap.Error(se.Err),
			)
			failures = append(failures, se)
			continue
		}
		results = append(results, *result)
	}

	return results, failures
}

// RunTicker fetches, normalizes, and assembles the result for one ticker.
// Errors carry the failing stage; a failed ticker yields no partial result.
func (p *Pipeline) RunTicker(ctx context.Context, ticker string, opts Options) (*model.TickerResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	log := zap.L().With(zap.String("ticker", symbol))

	cik, err := p.resolver.Resolve(ctx, symbol)
	if err != nil {
		return nil, &StageError{Ticker: symbol, Stage: StageResolve, Err: err}
	}
	log.Info("resolved ticker", zap.String("cik", cik))

	result := &model.TickerResult{
		Ticker:  symbol,
		CIK:     cik,
		Filings: []model.Filing{},
		Facts:   []model.NormalizedFact{},
	}

	if !opts.FactsOnly {
		company, filings, err := p.subs.Fetch(ctx, cik)
		if err != nil {
			return nil, &StageError{Ticker: symbol, Stage: StageSubmissions, Err: err}
		}
		result.Company = *company
		result.Filings = filterForms(filings, opts.Forms)
		log.Info("fetched filings", zap.Int("count", len(result.Filings)))
	}

	if !opts.FilingsOnly {
		raw, err := p.facts.FetchFacts(ctx, cik)
		if err != nil {
			return nil, &StageError{Ticker: symbol, Stage: StageFacts, Err: err}
		}
		result.Facts = Normalize(raw, p.tables, NormalizeOptions{
			PriorityOnly: opts.PriorityOnly,
			Forms:        opts.Forms,
		})
		log.Info("normalized facts",
			zap.Int("raw", len(raw)),
			zap.Int("kept", len(result.Facts)),
		)
	}

	return result, nil
}

func filterForms(filings []model.Filing, forms []string) []model.Filing {
	if len(forms) == 0 {
		return filings
	}

	set := make(map[string]bool, len(forms))
	for _, f := range forms {
		set[strings.ToUpper(f)] = true
	}

	kept := make([]model.Filing, 0, len(filings))
	for _, f := range filings {
		if set[strings.ToUpper(f.Form)] {
			kept = append(kept, f)
		}
	}
	return kept
}
