// Package model defines the domain types shared across the EDGAR pipeline.
package model

// Company is a flat snapshot of the company metadata returned by the
// submissions endpoint. Immutable per fetch.
type Company struct {
	CIK                  string   `json:"cik"`
	Name                 string   `json:"name"`
	EntityType           string   `json:"entityType"`
	SIC                  string   `json:"sic"`
	SICDescription       string   `json:"sicDescription"`
	StateOfIncorporation string   `json:"stateOfIncorporation"`
	FiscalYearEnd        string   `json:"fiscalYearEnd"`
	Tickers              []string `json:"tickers"`
	Exchanges            []string `json:"exchanges"`
}

// TickerResult is the aggregate unit of work for one ticker: the resolved
// identifier, company snapshot, filing history, and normalized facts.
// Owned by a single pipeline run; never shared across tickers.
type TickerResult struct {
	Ticker  string           `json:"ticker"`
	CIK     string           `json:"cik"`
	Company Company          `json:"company"`
	Filings []Filing         `json:"filings"`
	Facts   []NormalizedFact `json:"facts"`
}
