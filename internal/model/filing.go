package model

// Filing is one regulatory filing row, transposed from the submissions
// endpoint's parallel-array format. Immutable once constructed.
type Filing struct {
	AccessionNumber    string `json:"accessionNumber"`
	FilingDate         string `json:"filingDate"`
	ReportDate         string `json:"reportDate"`
	AcceptanceDateTime string `json:"acceptanceDateTime"`
	Form               string `json:"form"`
	Act                string `json:"act"`
	FileNumber         string `json:"fileNumber"`
	FilmNumber         string `json:"filmNumber"`
	Items              string `json:"items"`
	Size               int    `json:"size"`
	IsXBRL             bool   `json:"isXBRL"`
	IsInlineXBRL       bool   `json:"isInlineXBRL"`
	PrimaryDocument    string `json:"primaryDocument"`
	PrimaryDocDesc     string `json:"primaryDocDescription"`

	// IsKeyForm is derived locally from the configured key-form set,
	// never sourced from upstream.
	IsKeyForm bool `json:"isKeyForm"`
}
