package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/edgar-cli/internal/db"
	"github.com/sells-group/edgar-cli/internal/model"
)

// PostgresStore implements Store using pgxpool, for downstream tooling that
// queries the output relationally.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests inject pgxmock here.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS edgar;

CREATE TABLE IF NOT EXISTS edgar.companies (
	ticker           TEXT PRIMARY KEY,
	cik              TEXT,
	name             TEXT,
	entity_type      TEXT,
	sic              TEXT,
	sic_description  TEXT,
	state_of_inc     TEXT,
	fiscal_year_end  TEXT,
	tickers          TEXT[],
	exchanges        TEXT[]
);

CREATE TABLE IF NOT EXISTS edgar.filings (
	ticker           TEXT NOT NULL,
	accession_number TEXT NOT NULL,
	form             TEXT,
	filing_date      TEXT,
	report_date      TEXT,
	acceptance_time  TEXT,
	primary_document TEXT,
	size             BIGINT,
	is_xbrl          BOOLEAN,
	is_inline_xbrl   BOOLEAN,
	is_key_form      BOOLEAN
);

CREATE TABLE IF NOT EXISTS edgar.facts (
	ticker        TEXT NOT NULL,
	taxonomy      TEXT,
	tag           TEXT,
	canonical_tag TEXT,
	label         TEXT,
	unit          TEXT,
	value         DOUBLE PRECISION,
	end_date      TEXT,
	start_date    TEXT,
	fy            INTEGER,
	fp            TEXT,
	form          TEXT,
	filed         TEXT,
	accn          TEXT
);

CREATE INDEX IF NOT EXISTS idx_edgar_filings_ticker ON edgar.filings(ticker);
CREATE INDEX IF NOT EXISTS idx_edgar_facts_ticker ON edgar.facts(ticker);
CREATE INDEX IF NOT EXISTS idx_edgar_facts_canonical_tag ON edgar.facts(canonical_tag);
`

// Migrate creates the edgar schema and output tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveResult replaces the ticker's snapshot inside one transaction, bulk
// loading filings and facts over the COPY protocol.
func (s *PostgresStore) SaveResult(ctx context.Context, result *model.TickerResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, table := range []string{"companies", "filings", "facts"} {
		if _, err := tx.Exec(ctx, "DELETE FROM edgar."+table+" WHERE ticker = $1", result.Ticker); err != nil {
			return eris.Wrapf(err, "postgres: clear %s for %s", table, result.Ticker)
		}
	}

	c := result.Company
	if _, err := tx.Exec(ctx,
		`INSERT INTO edgar.companies (ticker, cik, name, entity_type, sic, sic_description, state_of_inc, fiscal_year_end, tickers, exchanges)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.Ticker, result.CIK, c.Name, c.EntityType, c.SIC, c.SICDescription,
		c.StateOfIncorporation, c.FiscalYearEnd, c.Tickers, c.Exchanges,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert company %s", result.Ticker)
	}

	filingRows := make([][]any, 0, len(result.Filings))
	for _, f := range result.Filings {
		filingRows = append(filingRows, []any{
			result.Ticker, f.AccessionNumber, f.Form, f.FilingDate, f.ReportDate,
			f.AcceptanceDateTime, f.PrimaryDocument, int64(f.Size),
			f.IsXBRL, f.IsInlineXBRL, f.IsKeyForm,
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "edgar", "filings",
		[]string{"ticker", "accession_number", "form", "filing_date", "report_date", "acceptance_time", "primary_document", "size", "is_xbrl", "is_inline_xbrl", "is_key_form"},
		filingRows,
	); err != nil {
		return eris.Wrapf(err, "postgres: copy filings for %s", result.Ticker)
	}

	factRows := make([][]any, 0, len(result.Facts))
	for _, fact := range result.Facts {
		factRows = append(factRows, []any{
			result.Ticker, fact.Taxonomy, fact.Tag, fact.CanonicalTag, fact.Label,
			fact.Unit, factValue(fact.Value), fact.End, fact.Start,
			fact.FY, fact.FP, fact.Form, fact.Filed, fact.Accn,
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "edgar", "facts",
		[]string{"ticker", "taxonomy", "tag", "canonical_tag", "label", "unit", "value", "end_date", "start_date", "fy", "fp", "form", "filed", "accn"},
		factRows,
	); err != nil {
		return eris.Wrapf(err, "postgres: copy facts for %s", result.Ticker)
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit tx")
	}
	return nil
}
