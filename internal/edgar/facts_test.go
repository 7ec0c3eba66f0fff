package edgar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-cli/internal/model"
)

const factsBody = `{
	"cik": 320193,
	"entityName": "Apple Inc.",
	"facts": {
		"us-gaap": {
			"Revenues": {
				"label": "Revenues",
				"description": "Total revenues.",
				"units": {
					"USD": [
						{"val": 394328000000, "end": "2022-09-24", "start": "2021-09-26", "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28", "accn": "0000320193-22-000108"},
						{"val": 383285000000, "end": "2023-09-30", "start": "2022-09-25", "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03", "accn": "0000320193-23-000106"}
					]
				}
			},
			"EarningsPerShareBasic": {
				"label": "Earnings Per Share, Basic",
				"units": {
					"USD/shares": [
						{"val": 6.15, "end": "2022-09-24", "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28", "accn": "0000320193-22-000108"}
					]
				}
			}
		},
		"dei": {
			"EntityCommonStockSharesOutstanding": {
				"label": "",
				"units": {
					"shares": [
						{"val": 15943425000, "end": "2022-10-14", "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28", "accn": "0000320193-22-000108"}
					]
				}
			}
		}
	}
}`

func newFactsClient(f *fakeFetcher) *FactsClient {
	return NewFactsClient(f,
		"https://example.test/api/xbrl/companyfacts",
		"https://example.test/api/xbrl/companyconcept")
}

func TestFetchFacts_Flatten(t *testing.T) {
	f := newFakeFetcher()
	f.respond("https://example.test/api/xbrl/companyfacts/CIK0000320193.json", factsBody)

	c := newFactsClient(f)
	rows, err := c.FetchFacts(context.Background(), "0000320193")
	require.NoError(t, err)

	// One row per leaf observation across all taxonomies, tags, and units.
	require.Len(t, rows, 4)

	byTag := make(map[string][]model.RawFact)
	for _, r := range rows {
		byTag[r.Tag] = append(byTag[r.Tag], r)
	}

	revs := byTag["Revenues"]
	require.Len(t, revs, 2)
	assert.Equal(t, "us-gaap", revs[0].Taxonomy)
	assert.Equal(t, "USD", revs[0].Unit)
	assert.Equal(t, "Total revenues.", revs[0].Description)

	dei := byTag["EntityCommonStockSharesOutstanding"]
	require.Len(t, dei, 1)
	assert.Equal(t, "dei", dei[0].Taxonomy)
	assert.Equal(t, "shares", dei[0].Unit)
	// Empty label falls back to the tag name.
	assert.Equal(t, "EntityCommonStockSharesOutstanding", dei[0].Label)
}

func TestFetchFacts_NullValuePreserved(t *testing.T) {
	f := newFakeFetcher()
	f.respond("https://example.test/api/xbrl/companyfacts/CIK0000000001.json", `{
		"cik": 1,
		"entityName": "Test Co",
		"facts": {
			"us-gaap": {
				"Assets": {
					"label": "Assets",
					"units": {
						"USD": [{"val": null, "end": "2023-12-31", "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2024-02-01", "accn": "a1"}]
					}
				}
			}
		}
	}`)

	c := newFactsClient(f)
	rows, err := c.FetchFacts(context.Background(), "0000000001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Value)
}

func TestFetchFacts_NoXBRLData(t *testing.T) {
	// 404 from the facts endpoint means the company has no XBRL data, which
	// is a valid empty result rather than a failure.
	f := newFakeFetcher()

	c := newFactsClient(f)
	rows, err := c.FetchFacts(context.Background(), "0000000001")
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestFetchFacts_OtherErrorsPropagate(t *testing.T) {
	f := newFakeFetcher()
	f.fail("https://example.test/api/xbrl/companyfacts/CIK0000000001.json", errors.New("server exploded"))

	c := newFactsClient(f)
	_, err := c.FetchFacts(context.Background(), "0000000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server exploded")
}

func TestFetchFacts_BadShape(t *testing.T) {
	f := newFakeFetcher()
	f.respond("https://example.test/api/xbrl/companyfacts/CIK0000000001.json", `{"facts": "not an object"}`)

	c := newFactsClient(f)
	_, err := c.FetchFacts(context.Background(), "0000000001")
	require.Error(t, err)

	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestFetchConcept(t *testing.T) {
	f := newFakeFetcher()
	f.respond("https://example.test/api/xbrl/companyconcept/CIK0000320193/us-gaap/Revenues.json", `{
		"cik": 320193,
		"taxonomy": "us-gaap",
		"tag": "Revenues",
		"label": "Revenues",
		"description": "Total revenues.",
		"units": {
			"USD": [
				{"val": 100, "end": "2022-09-24", "fy": 2022, "fp": "FY", "form": "10-K", "filed": "2022-10-28", "accn": "a1"},
				{"val": 200, "end": "2023-09-30", "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03", "accn": "a2"}
			]
		}
	}`)

	c := newFactsClient(f)
	rows, err := c.FetchConcept(context.Background(), "0000320193", "us-gaap", "Revenues")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "us-gaap", rows[0].Taxonomy)
	assert.Equal(t, "Revenues", rows[0].Tag)
	assert.Equal(t, "USD", rows[0].Unit)
}

func TestFetchConcept_NotFound(t *testing.T) {
	f := newFakeFetcher()

	c := newFactsClient(f)
	rows, err := c.FetchConcept(context.Background(), "0000000001", "us-gaap", "NoSuchTag")
	require.NoError(t, err)
	assert.Nil(t, rows)
}
