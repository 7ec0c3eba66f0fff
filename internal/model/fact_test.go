package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedFactKey(t *testing.T) {
	nf := NormalizedFact{
		RawFact: RawFact{
			Tag:   "SalesRevenueNet",
			Unit:  "USD",
			End:   "2023-12-31",
			FY:    2023,
			FP:    "FY",
			Filed: "2024-02-01",
			Accn:  "a1",
		},
		CanonicalTag: "Revenues",
	}

	key := nf.Key()
	assert.Equal(t, FactKey{
		CanonicalTag: "Revenues",
		End:          "2023-12-31",
		FY:           2023,
		FP:           "FY",
		Unit:         "USD",
	}, key)
}

func TestFactKey_IgnoresProvenance(t *testing.T) {
	a := NormalizedFact{
		RawFact:      RawFact{End: "2023-12-31", FY: 2023, FP: "FY", Unit: "USD", Filed: "2024-02-01", Accn: "a1", Form: "10-K"},
		CanonicalTag: "Assets",
	}
	b := a
	b.Filed = "2024-05-01"
	b.Accn = "a2"
	b.Form = "10-K/A"

	assert.Equal(t, a.Key(), b.Key(), "filed, accn, and form do not split dedup groups")
}

func TestNormalizedFactJSON(t *testing.T) {
	nf := NormalizedFact{
		RawFact: RawFact{
			Taxonomy: "us-gaap",
			Tag:      "SalesRevenueNet",
			Unit:     "USD",
			Value:    float64(100),
			End:      "2023-12-31",
			FY:       2023,
			FP:       "FY",
		},
		CanonicalTag: "Revenues",
	}

	data, err := json.Marshal(nf)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Revenues", m["canonical_tag"])
	assert.Equal(t, "SalesRevenueNet", m["tag"])
	assert.NotContains(t, m, "start", "empty start is omitted")
}

func TestRawFactJSON_NilValue(t *testing.T) {
	data, err := json.Marshal(RawFact{Tag: "Assets", End: "2023-12-31"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	v, ok := m["value"]
	assert.True(t, ok, "nil value is serialized, not omitted")
	assert.Nil(t, v)
}
