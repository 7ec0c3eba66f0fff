package model

// RawFact is one leaf observation from the company facts document, carrying
// the taxonomy and tag down from the outer nesting levels. Value is nil for
// valueless placeholder observations; they are preserved, not dropped.
type RawFact struct {
	Taxonomy    string `json:"taxonomy"`
	Tag         string `json:"tag"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Value       any    `json:"value"`
	End         string `json:"end"`
	Start       string `json:"start,omitempty"`
	FY          int    `json:"fy"`
	FP          string `json:"fp"`
	Form        string `json:"form"`
	Filed       string `json:"filed"`
	Accn        string `json:"accn"`
}

// NormalizedFact is a RawFact whose tag has been resolved against the alias
// table. Tags with no known alias keep their original name as canonical.
type NormalizedFact struct {
	RawFact
	CanonicalTag string `json:"canonical_tag"`
}

// FactKey is the deduplication key: at most one NormalizedFact survives per
// key after normalization.
type FactKey struct {
	CanonicalTag string
	End          string
	FY           int
	FP           string
	Unit         string
}

// Key returns the deduplication key for the fact.
func (f NormalizedFact) Key() FactKey {
	return FactKey{
		CanonicalTag: f.CanonicalTag,
		End:          f.End,
		FY:           f.FY,
		FP:           f.FP,
		Unit:         f.Unit,
	}
}
