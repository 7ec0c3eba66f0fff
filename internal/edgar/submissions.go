package edgar

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-cli/internal/fetcher"
	"github.com/sells-group/edgar-cli/internal/model"
)

// filingColumns is the submissions endpoint's parallel-array encoding: one
// array per field, index i across all arrays describing filing i. The
// transpose into per-filing records happens here and nowhere else.
type filingColumns struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	ReportDate         []string `json:"reportDate"`
	AcceptanceDateTime []string `json:"acceptanceDateTime"`
	Act                []string `json:"act"`
	Form               []string `json:"form"`
	FileNumber         []string `json:"fileNumber"`
	FilmNumber         []string `json:"filmNumber"`
	Items              []string `json:"items"`
	Size               []int    `json:"size"`
	IsXBRL             []int    `json:"isXBRL"`
	IsInlineXBRL       []int    `json:"isInlineXBRL"`
	PrimaryDocument    []string `json:"primaryDocument"`
	PrimaryDocDesc     []string `json:"primaryDocDescription"`
}

type overflowRef struct {
	Name string `json:"name"`
}

type submissionsJSON struct {
	CIK                  json.Number `json:"cik"`
	Name                 string      `json:"name"`
	EntityType           string      `json:"entityType"`
	SIC                  string      `json:"sic"`
	SICDescription       string      `json:"sicDescription"`
	StateOfIncorporation string      `json:"stateOfIncorporation"`
	FiscalYearEnd        string      `json:"fiscalYearEnd"`
	Tickers              []string    `json:"tickers"`
	Exchanges            []string    `json:"exchanges"`
	Filings              struct {
		Recent filingColumns `json:"recent"`
		Files  []overflowRef `json:"files"`
	} `json:"filings"`
}

// SubmissionsClient retrieves filing metadata for a resolved CIK.
type SubmissionsClient struct {
	f        fetcher.Fetcher
	base     string
	keyForms map[string]bool
}

// NewSubmissionsClient creates a SubmissionsClient. keyForms is the fixed
// set of form types flagged as key filings.
func NewSubmissionsClient(f fetcher.Fetcher, base string, keyForms []string) *SubmissionsClient {
	set := make(map[string]bool, len(keyForms))
	for _, k := range keyForms {
		set[k] = true
	}
	return &SubmissionsClient{f: f, base: base, keyForms: set}
}

// Fetch retrieves the company snapshot and the complete ordered filing
// history for cik, reassembling overflow pages in the order upstream lists
// them. An empty filing history is a valid non-error outcome.
func (c *SubmissionsClient) Fetch(ctx context.Context, cik string) (*model.Company, []model.Filing, error) {
	url := fmt.Sprintf("%s/CIK%s.json", c.base, cik)

	data, err := c.f.Get(ctx, url)
	if err != nil {
		// A CIK unknown upstream has no filing history; that is a valid
		// empty outcome, not a failure.
		if fetcher.IsNotFound(err) {
			zap.L().Debug("no submissions for cik", zap.String("cik", cik))
			return &model.Company{CIK: cik}, []model.Filing{}, nil
		}
		return nil, nil, err
	}

	var sub submissionsJSON
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, nil, &ParseError{URL: url, Reason: "unrecognized submissions shape", Err: err}
	}

	company := &model.Company{
		CIK:                  padCIK(sub.CIK.String()),
		Name:                 sub.Name,
		EntityType:           sub.EntityType,
		SIC:                  sub.SIC,
		SICDescription:       sub.SICDescription,
		StateOfIncorporation: sub.StateOfIncorporation,
		FiscalYearEnd:        sub.FiscalYearEnd,
		Tickers:              sub.Tickers,
		Exchanges:            sub.Exchanges,
	}

	filings, err := c.transpose(url, sub.Filings.Recent)
	if err != nil {
		return nil, nil, err
	}

	// Older filings are paginated into overflow files; append each batch in
	// the order upstream lists them. Order is upstream's (most recent
	// first) and must not be resorted.
	for _, ref := range sub.Filings.Files {
		overflowURL := fmt.Sprintf("%s/%s", c.base, ref.Name)

		data, err := c.f.Get(ctx, overflowURL)
		if err != nil {
			return nil, nil, err
		}

		var cols filingColumns
		if err := json.Unmarshal(data, &cols); err != nil {
			return nil, nil, &ParseError{URL: overflowURL, Reason: "unrecognized overflow shape", Err: err}
		}

		batch, err := c.transpose(overflowURL, cols)
		if err != nil {
			return nil, nil, err
		}
		filings = append(filings, batch...)
	}

	zap.L().Debug("fetched submissions",
		zap.String("cik", cik),
		zap.Int("filings", len(filings)),
		zap.Int("overflow_files", len(sub.Filings.Files)),
	)

	return company, filings, nil
}

// transpose converts the parallel-array block into one Filing per index,
// preserving input order. All non-empty arrays must agree on length.
func (c *SubmissionsClient) transpose(url string, cols filingColumns) ([]model.Filing, error) {
	count := len(cols.AccessionNumber)

	for name, l := range map[string]int{
		"filingDate":            len(cols.FilingDate),
		"reportDate":            len(cols.ReportDate),
		"acceptanceDateTime":    len(cols.AcceptanceDateTime),
		"act":                   len(cols.Act),
		"form":                  len(cols.Form),
		"fileNumber":            len(cols.FileNumber),
		"filmNumber":            len(cols.FilmNumber),
		"items":                 len(cols.Items),
		"size":                  len(cols.Size),
		"isXBRL":                len(cols.IsXBRL),
		"isInlineXBRL":          len(cols.IsInlineXBRL),
		"primaryDocument":       len(cols.PrimaryDocument),
		"primaryDocDescription": len(cols.PrimaryDocDesc),
	} {
		if l != 0 && l != count {
			return nil, &ParseError{
				URL:    url,
				Reason: fmt.Sprintf("filing array %q has length %d, want %d", name, l, count),
			}
		}
	}

	filings := make([]model.Filing, 0, count)
	for i := 0; i < count; i++ {
		form := strAt(cols.Form, i)
		filings = append(filings, model.Filing{
			AccessionNumber:    cols.AccessionNumber[i],
			FilingDate:         strAt(cols.FilingDate, i),
			ReportDate:         strAt(cols.ReportDate, i),
			AcceptanceDateTime: strAt(cols.AcceptanceDateTime, i),
			Act:                strAt(cols.Act, i),
			Form:               form,
			FileNumber:         strAt(cols.FileNumber, i),
			FilmNumber:         strAt(cols.FilmNumber, i),
			Items:              strAt(cols.Items, i),
			Size:               intAt(cols.Size, i),
			IsXBRL:             intAt(cols.IsXBRL, i) != 0,
			IsInlineXBRL:       intAt(cols.IsInlineXBRL, i) != 0,
			PrimaryDocument:    strAt(cols.PrimaryDocument, i),
			PrimaryDocDesc:     strAt(cols.PrimaryDocDesc, i),
			IsKeyForm:          c.keyForms[form],
		})
	}
	return filings, nil
}

func strAt(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func intAt(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}
