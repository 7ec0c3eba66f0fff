package edgar

import (
	"fmt"
	"strings"
)

// Stage names the pipeline stage an error is attributed to, so a
// multi-ticker run can report partial success precisely.
type Stage string

const (
	StageResolve     Stage = "resolve"
	StageSubmissions Stage = "submissions"
	StageFacts       Stage = "facts"
)

// NotFoundError means the ticker is absent from the SEC symbol map.
// Reported per ticker; never aborts the rest of a multi-ticker run.
type NotFoundError struct {
	Ticker      string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("ticker %q not found in SEC data", e.Ticker)
	}
	return fmt.Sprintf("ticker %q not found in SEC data (did you mean: %s?)",
		e.Ticker, strings.Join(e.Suggestions, ", "))
}

// ParseError means an upstream response had an unrecognized shape. It is a
// hard failure for the affected ticker, never coerced to empty data.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StageError attributes a failure to a ticker and pipeline stage.
type StageError struct {
	Ticker string
	Stage  Stage
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s stage: %v", e.Ticker, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
