package edgar

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/edgar-cli/internal/fetcher"
	"github.com/sells-group/edgar-cli/internal/model"
)

// observationJSON is one leaf period observation. Val stays any so that a
// legitimately valueless placeholder survives as nil rather than zero.
type observationJSON struct {
	Val   any    `json:"val"`
	End   string `json:"end"`
	Start string `json:"start"`
	FY    int    `json:"fy"`
	FP    string `json:"fp"`
	Form  string `json:"form"`
	Filed string `json:"filed"`
	Accn  string `json:"accn"`
}

type conceptJSON struct {
	Label       string                       `json:"label"`
	Description string                       `json:"description"`
	Units       map[string][]observationJSON `json:"units"`
}

// factsJSON nests taxonomy → tag → unit → observations.
type factsJSON struct {
	CIK        json.Number                       `json:"cik"`
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]conceptJSON `json:"facts"`
}

// conceptSeriesJSON is the single-concept endpoint's response: one concept's
// units at the top level plus its identifying fields.
type conceptSeriesJSON struct {
	CIK         json.Number                  `json:"cik"`
	Taxonomy    string                       `json:"taxonomy"`
	Tag         string                       `json:"tag"`
	Label       string                       `json:"label"`
	Description string                       `json:"description"`
	Units       map[string][]observationJSON `json:"units"`
}

// FactsClient retrieves XBRL financial facts for a resolved CIK.
type FactsClient struct {
	f           fetcher.Fetcher
	base        string
	conceptBase string
}

// NewFactsClient creates a FactsClient.
func NewFactsClient(f fetcher.Fetcher, base, conceptBase string) *FactsClient {
	return &FactsClient{f: f, base: base, conceptBase: conceptBase}
}

// FetchFacts retrieves the nested company facts document for cik and
// flattens it into one RawFact per leaf observation. Companies without XBRL
// data (foreign private issuers, for example) yield an empty result.
func (c *FactsClient) FetchFacts(ctx context.Context, cik string) ([]model.RawFact, error) {
	url := fmt.Sprintf("%s/CIK%s.json", c.base, cik)

	data, err := c.f.Get(ctx, url)
	if err != nil {
		if fetcher.IsNotFound(err) {
			zap.L().Debug("no XBRL data for company", zap.String("cik", cik))
			return nil, nil
		}
		return nil, err
	}

	var doc factsJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{URL: url, Reason: "unrecognized facts shape", Err: err}
	}

	return flattenFacts(doc), nil
}

// flattenFacts walks all three nesting levels and emits one RawFact per
// observation, carrying taxonomy and tag down from the outer levels. No
// observation is dropped or duplicated; emission order is not significant.
func flattenFacts(doc factsJSON) []model.RawFact {
	var rows []model.RawFact
	for taxonomy, concepts := range doc.Facts {
		for tag, concept := range concepts {
			label := concept.Label
			if label == "" {
				label = tag
			}
			for unit, observations := range concept.Units {
				for _, o := range observations {
					rows = append(rows, model.RawFact{
						Taxonomy:    taxonomy,
						Tag:         tag,
						Label:       label,
						Description: concept.Description,
						Unit:        unit,
						Value:       o.Val,
						End:         o.End,
						Start:       o.Start,
						FY:          o.FY,
						FP:          o.FP,
						Form:        o.Form,
						Filed:       o.Filed,
						Accn:        o.Accn,
					})
				}
			}
		}
	}
	return rows
}

// FetchConcept retrieves the time series for a single concept, e.g.
// ("us-gaap", "Revenues"). Useful for targeted queries without pulling the
// full facts document.
func (c *FactsClient) FetchConcept(ctx context.Context, cik, taxonomy, tag string) ([]model.RawFact, error) {
	url := fmt.Sprintf("%s/CIK%s/%s/%s.json", c.conceptBase, cik, taxonomy, tag)

	data, err := c.f.Get(ctx, url)
	if err != nil {
		if fetcher.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var doc conceptSeriesJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{URL: url, Reason: "unrecognized concept shape", Err: err}
	}

	label := doc.Label
	if label == "" {
		label = doc.Tag
	}

	var rows []model.RawFact
	for unit, observations := range doc.Units {
		for _, o := range observations {
			rows = append(rows, model.RawFact{
				Taxonomy:    doc.Taxonomy,
				Tag:         doc.Tag,
				Label:       label,
				Description: doc.Description,
				Unit:        unit,
				Value:       o.Val,
				End:         o.End,
				Start:       o.Start,
				FY:          o.FY,
				FP:          o.FP,
				Form:        o.Form,
				Filed:       o.Filed,
				Accn:        o.Accn,
			})
		}
	}
	return rows, nil
}
