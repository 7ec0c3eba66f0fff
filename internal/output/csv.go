package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-cli/internal/model"
)

// CSVWriter writes <ticker>_filings.csv and <ticker>_facts.csv. Period
// field names are remapped for table formats: end → end_date,
// start → start_date.
type CSVWriter struct{}

var filingHeader = []string{
	"accession_number", "form", "filing_date", "report_date",
	"acceptance_time", "primary_document", "size",
	"is_xbrl", "is_inline_xbrl", "is_key_form",
}

var factHeader = []string{
	"taxonomy", "tag", "canonical_tag", "label", "unit", "value",
	"end_date", "start_date", "fy", "fp", "form", "filed", "accn",
}

// Write writes the filings and facts tables for one ticker. Empty sequences
// produce no file, matching the per-section behavior of the JSON document.
func (w *CSVWriter) Write(result *model.TickerResult, dir string) ([]string, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	var paths []string

	if len(result.Filings) > 0 {
		path := filepath.Join(dir, result.Ticker+"_filings.csv")
		if err := writeCSV(path, filingHeader, filingRows(result.Filings)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if len(result.Facts) > 0 {
		path := filepath.Join(dir, result.Ticker+"_facts.csv")
		if err := writeCSV(path, factHeader, factRows(result.Facts)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func filingRows(filings []model.Filing) [][]string {
	rows := make([][]string, 0, len(filings))
	for _, f := range filings {
		rows = append(rows, []string{
			f.AccessionNumber, f.Form, f.FilingDate, f.ReportDate,
			f.AcceptanceDateTime, f.PrimaryDocument, strconv.Itoa(f.Size),
			boolStr(f.IsXBRL), boolStr(f.IsInlineXBRL), boolStr(f.IsKeyForm),
		})
	}
	return rows
}

func factRows(facts []model.NormalizedFact) [][]string {
	rows := make([][]string, 0, len(facts))
	for _, fact := range facts {
		fy := ""
		if fact.FY != 0 {
			fy = strconv.Itoa(fact.FY)
		}
		rows = append(rows, []string{
			fact.Taxonomy, fact.Tag, fact.CanonicalTag, fact.Label, fact.Unit,
			formatValue(fact.Value), fact.End, fact.Start, fy, fact.FP,
			fact.Form, fact.Filed, fact.Accn,
		})
	}
	return rows
}

// writeCSV writes via a temp file and rename, like the JSON document, so a
// failed run never leaves a truncated table behind.
func writeCSV(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "output: create temp for %s", path)
	}

	cw := csv.NewWriter(tmp)
	writeErr := cw.Write(header)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = cw.Write(row)
	}
	if writeErr == nil {
		cw.Flush()
		writeErr = cw.Error()
	}
	if writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrapf(writeErr, "output: write %s", path)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "output: close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "output: rename %s", path)
	}
	return nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
