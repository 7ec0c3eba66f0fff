package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/edgar-cli/internal/config"
	"github.com/sells-group/edgar-cli/internal/fetcher"
	"github.com/sells-group/edgar-cli/internal/model"
)

func TestBuildFetcher_RequiresUserAgent(t *testing.T) {
	_, err := buildFetcher(&config.Config{}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrMissingUserAgent)
}

func TestBuildFetcher_FromConfig(t *testing.T) {
	c := &config.Config{}
	c.Edgar.UserAgent = "Config Agent cfg@example.com"

	f, err := buildFetcher(c, "")
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestBuildFetcher_FlagOverridesConfig(t *testing.T) {
	c := &config.Config{}
	c.Edgar.UserAgent = "Config Agent cfg@example.com"

	f, err := buildFetcher(c, "Flag Agent flag@example.com")
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestWriteResults_JSON(t *testing.T) {
	cfg = &config.Config{}
	dir := t.TempDir()

	cmd := &cobra.Command{}
	cmd.SetOut(new(discardWriter))

	results := []model.TickerResult{{Ticker: "AAPL", CIK: "0000320193"}}
	require.NoError(t, writeResults(cmd, results, "json", dir, "", ""))
	assert.FileExists(t, filepath.Join(dir, "AAPL.json"))
}

func TestWriteResults_SQLiteDefaultPath(t *testing.T) {
	cfg = &config.Config{}
	dir := t.TempDir()

	cmd := &cobra.Command{}
	cmd.SetOut(new(discardWriter))
	cmd.SetContext(context.Background())

	results := []model.TickerResult{{Ticker: "AAPL", CIK: "0000320193"}}
	require.NoError(t, writeResults(cmd, results, "sqlite", dir, "", ""))
	assert.FileExists(t, filepath.Join(dir, "edgar.db"))
}

func TestWriteResults_UnknownFormat(t *testing.T) {
	cfg = &config.Config{}
	cmd := &cobra.Command{}

	results := []model.TickerResult{{Ticker: "AAPL"}}
	err := writeResults(cmd, results, "parquet", t.TempDir(), "", "")
	require.Error(t, err)
}

func TestWriteResults_PostgresRequiresURL(t *testing.T) {
	cfg = &config.Config{}
	cmd := &cobra.Command{}

	results := []model.TickerResult{{Ticker: "AAPL"}}
	err := writeResults(cmd, results, "postgres", t.TempDir(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database-url")
}

func TestWriteResults_NoResultsNoOutput(t *testing.T) {
	cfg = &config.Config{}
	cmd := &cobra.Command{}
	require.NoError(t, writeResults(cmd, nil, "parquet", t.TempDir(), "", ""))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
