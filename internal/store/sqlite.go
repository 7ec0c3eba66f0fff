package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/edgar-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode so concurrent invocations don't trip over each other.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	ticker           TEXT PRIMARY KEY,
	cik              TEXT,
	name             TEXT,
	entity_type      TEXT,
	sic              TEXT,
	sic_description  TEXT,
	state_of_inc     TEXT,
	fiscal_year_end  TEXT,
	tickers          TEXT,
	exchanges        TEXT
);

CREATE TABLE IF NOT EXISTS filings (
	ticker           TEXT NOT NULL,
	accession_number TEXT NOT NULL,
	form             TEXT,
	filing_date      TEXT,
	report_date      TEXT,
	acceptance_time  TEXT,
	primary_document TEXT,
	size             INTEGER,
	is_xbrl          INTEGER,
	is_inline_xbrl   INTEGER,
	is_key_form      INTEGER
);

CREATE TABLE IF NOT EXISTS facts (
	ticker        TEXT NOT NULL,
	taxonomy      TEXT,
	tag           TEXT,
	canonical_tag TEXT,
	label         TEXT,
	unit          TEXT,
	value         REAL,
	end_date      TEXT,
	start_date    TEXT,
	fy            INTEGER,
	fp            TEXT,
	form          TEXT,
	filed         TEXT,
	accn          TEXT
);

CREATE INDEX IF NOT EXISTS idx_filings_ticker ON filings(ticker);
CREATE INDEX IF NOT EXISTS idx_filings_form ON filings(form);
CREATE INDEX IF NOT EXISTS idx_facts_ticker ON facts(ticker);
CREATE INDEX IF NOT EXISTS idx_facts_canonical_tag ON facts(canonical_tag);
`

// Migrate creates the output tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult replaces the ticker's company, filings, and facts rows inside
// one transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *model.TickerResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"companies", "filings", "facts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE ticker = ?", result.Ticker); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s for %s", table, result.Ticker)
		}
	}

	c := result.Company
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO companies (ticker, cik, name, entity_type, sic, sic_description, state_of_inc, fiscal_year_end, tickers, exchanges)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Ticker, result.CIK, c.Name, c.EntityType, c.SIC, c.SICDescription,
		c.StateOfIncorporation, c.FiscalYearEnd,
		strings.Join(c.Tickers, ","), strings.Join(c.Exchanges, ","),
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert company %s", result.Ticker)
	}

	filingStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO filings (ticker, accession_number, form, filing_date, report_date, acceptance_time, primary_document, size, is_xbrl, is_inline_xbrl, is_key_form)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare filings insert")
	}
	defer filingStmt.Close() //nolint:errcheck

	for _, f := range result.Filings {
		if _, err := filingStmt.ExecContext(ctx,
			result.Ticker, f.AccessionNumber, f.Form, f.FilingDate, f.ReportDate,
			f.AcceptanceDateTime, f.PrimaryDocument, f.Size,
			boolToInt(f.IsXBRL), boolToInt(f.IsInlineXBRL), boolToInt(f.IsKeyForm),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert filing %s", f.AccessionNumber)
		}
	}

	factStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO facts (ticker, taxonomy, tag, canonical_tag, label, unit, value, end_date, start_date, fy, fp, form, filed, accn)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare facts insert")
	}
	defer factStmt.Close() //nolint:errcheck

	for _, fact := range result.Facts {
		if _, err := factStmt.ExecContext(ctx,
			result.Ticker, fact.Taxonomy, fact.Tag, fact.CanonicalTag, fact.Label,
			fact.Unit, factValue(fact.Value), fact.End, fact.Start,
			fact.FY, fact.FP, fact.Form, fact.Filed, fact.Accn,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert fact %s/%s", fact.Tag, fact.End)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit tx")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
