package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "edgar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testResult(ticker string) *model.TickerResult {
	return &model.TickerResult{
		Ticker: ticker,
		CIK:    "0000320193",
		Company: model.Company{
			CIK:       "0000320193",
			Name:      "Apple Inc.",
			SIC:       "3571",
			Tickers:   []string{ticker},
			Exchanges: []string{"Nasdaq"},
		},
		Filings: []model.Filing{
			{AccessionNumber: "accn-1", Form: "10-K", FilingDate: "2024-11-01", IsXBRL: true, IsKeyForm: true},
			{AccessionNumber: "accn-2", Form: "4", FilingDate: "2024-10-15"},
		},
		Facts: []model.NormalizedFact{
			{
				RawFact: model.RawFact{
					Taxonomy: "us-gaap", Tag: "SalesRevenueNet", Unit: "USD",
					Value: float64(100), End: "2023-12-31", FY: 2023, FP: "FY",
					Form: "10-K", Filed: "2024-02-01", Accn: "accn-1",
				},
				CanonicalTag: "Revenues",
			},
		},
	}
}

func TestSQLiteSaveResult(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, testResult("AAPL")))

	var name string
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT name FROM companies WHERE ticker = ?", "AAPL").Scan(&name))
	assert.Equal(t, "Apple Inc.", name)

	var filings int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM filings WHERE ticker = ?", "AAPL").Scan(&filings))
	assert.Equal(t, 2, filings)

	var canonical string
	var value float64
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT canonical_tag, value FROM facts WHERE ticker = ?", "AAPL").Scan(&canonical, &value))
	assert.Equal(t, "Revenues", canonical)
	assert.Equal(t, 100.0, value)
}

func TestSQLiteSaveResult_ReplacesSnapshot(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, testResult("AAPL")))

	smaller := testResult("AAPL")
	smaller.Filings = smaller.Filings[:1]
	smaller.Facts = nil
	require.NoError(t, s.SaveResult(ctx, smaller))

	var filings, facts int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM filings WHERE ticker = ?", "AAPL").Scan(&filings))
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM facts WHERE ticker = ?", "AAPL").Scan(&facts))
	assert.Equal(t, 1, filings, "resave replaces, never appends")
	assert.Equal(t, 0, facts)
}

func TestSQLiteSaveResult_TickersIndependent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResult(ctx, testResult("AAPL")))
	require.NoError(t, s.SaveResult(ctx, testResult("MSFT")))

	var companies int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM companies").Scan(&companies))
	assert.Equal(t, 2, companies)
}

func TestSQLiteSaveResult_NullValue(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	result := testResult("AAPL")
	result.Facts[0].Value = nil
	require.NoError(t, s.SaveResult(ctx, result))

	var value any
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT value FROM facts WHERE ticker = ?", "AAPL").Scan(&value))
	assert.Nil(t, value)
}

func TestSQLiteMigrate_Idempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestFactValue(t *testing.T) {
	assert.Nil(t, factValue(nil))
	assert.Equal(t, 1.5, factValue(1.5))
	assert.Equal(t, 42.0, factValue(42))
	assert.Equal(t, 42.0, factValue(int64(42)))
	assert.Nil(t, factValue("not a number"))
}
