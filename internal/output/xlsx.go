package output

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/edgar-cli/internal/model"
)

// XLSXWriter writes one workbook per ticker with Company, Filings, and
// Facts sheets, for analysts who live in spreadsheets.
type XLSXWriter struct{}

// Write writes <dir>/<ticker>.xlsx.
func (w *XLSXWriter) Write(result *model.TickerResult, dir string) ([]string, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	file := xlsx.NewFile()

	if err := addCompanySheet(file, result); err != nil {
		return nil, err
	}
	if err := addStringSheet(file, "Filings", filingHeader, filingRows(result.Filings)); err != nil {
		return nil, err
	}
	if err := addStringSheet(file, "Facts", factHeader, factRows(result.Facts)); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, result.Ticker+".xlsx")
	if err := file.Save(path); err != nil {
		return nil, eris.Wrapf(err, "output: save %s", path)
	}

	return []string{path}, nil
}

func addCompanySheet(file *xlsx.File, result *model.TickerResult) error {
	sheet, err := file.AddSheet("Company")
	if err != nil {
		return eris.Wrap(err, "output: add company sheet")
	}

	c := result.Company
	for _, kv := range [][2]string{
		{"ticker", result.Ticker},
		{"cik", result.CIK},
		{"name", c.Name},
		{"entity_type", c.EntityType},
		{"sic", c.SIC},
		{"sic_description", c.SICDescription},
		{"state_of_inc", c.StateOfIncorporation},
		{"fiscal_year_end", c.FiscalYearEnd},
	} {
		row := sheet.AddRow()
		row.AddCell().Value = kv[0]
		row.AddCell().Value = kv[1]
	}
	return nil
}

func addStringSheet(file *xlsx.File, name string, header []string, rows [][]string) error {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "output: add %s sheet", name)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}
	for _, cols := range rows {
		row := sheet.AddRow()
		for _, v := range cols {
			row.AddCell().Value = v
		}
	}
	return nil
}
