package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/edgar-cli/internal/edgar"
	"github.com/sells-group/edgar-cli/internal/model"
	"github.com/sells-group/edgar-cli/internal/output"
	"github.com/sells-group/edgar-cli/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch TICKER [TICKER...]",
	Short: "Fetch filings and financial facts for one or more tickers",
	Long: `Fetch filing metadata and XBRL financial facts for each ticker.

Each ticker is resolved to its CIK, its submissions and company facts are
retrieved, facts are normalized and deduplicated, and the result is written
in the requested format. A failed ticker is reported and skipped; the rest
of the batch still runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		userAgent, _ := cmd.Flags().GetString("user-agent")
		format, _ := cmd.Flags().GetString("format")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		dbPath, _ := cmd.Flags().GetString("db")
		databaseURL, _ := cmd.Flags().GetString("database-url")
		filingsOnly, _ := cmd.Flags().GetBool("filings-only")
		factsOnly, _ := cmd.Flags().GetBool("facts-only")
		priorityOnly, _ := cmd.Flags().GetBool("priority-only")
		forms, _ := cmd.Flags().GetStringSlice("forms")

		if filingsOnly && factsOnly {
			return eris.New("fetch: --filings-only and --facts-only are mutually exclusive")
		}
		if format == "" {
			format = cfg.Output.Format
		}
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}

		f, err := buildFetcher(cfg, userAgent)
		if err != nil {
			return err
		}

		pipeline := edgar.NewPipeline(f, cfg)
		results, failures := pipeline.Run(ctx, args, edgar.Options{
			FilingsOnly:  filingsOnly,
			FactsOnly:    factsOnly,
			PriorityOnly: priorityOnly,
			Forms:        forms,
		})

		if err := writeResults(cmd, results, format, outputDir, dbPath, databaseURL); err != nil {
			return err
		}

		printSummary(cmd, results, failures)

		if len(results) == 0 && len(failures) > 0 {
			return eris.Errorf("fetch: all %d tickers failed", len(failures))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("user-agent", "", "SEC-compliant User-Agent (company/app name + email); overrides config")
	fetchCmd.Flags().String("format", "", "output format: json, csv, xlsx, sqlite, postgres (default from config)")
	fetchCmd.Flags().String("output-dir", "", "directory for output files (default from config)")
	fetchCmd.Flags().String("db", "", "SQLite database path (format sqlite; default <output-dir>/edgar.db)")
	fetchCmd.Flags().String("database-url", "", "Postgres connection string (format postgres; default from config)")
	fetchCmd.Flags().Bool("filings-only", false, "fetch filing metadata only (skip XBRL facts)")
	fetchCmd.Flags().Bool("facts-only", false, "fetch XBRL facts only (skip filing metadata)")
	fetchCmd.Flags().Bool("priority-only", false, "keep only priority financial concepts")
	fetchCmd.Flags().StringSlice("forms", nil, "filter to these form types (e.g. 10-K,10-Q)")
	rootCmd.AddCommand(fetchCmd)
}

func writeResults(cmd *cobra.Command, results []model.TickerResult, format, outputDir, dbPath, databaseURL string) error {
	if len(results) == 0 {
		return nil
	}

	switch format {
	case "sqlite":
		if dbPath == "" {
			dbPath = cfg.Output.DBPath
		}
		if dbPath == "" {
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return eris.Wrapf(err, "fetch: create output dir %s", outputDir)
			}
			dbPath = filepath.Join(outputDir, "edgar.db")
		}
		s, err := store.NewSQLite(dbPath)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck
		if err := saveAll(cmd, s, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Written -> %s\n", dbPath)

	case "postgres":
		if databaseURL == "" {
			databaseURL = cfg.Output.DatabaseURL
		}
		if databaseURL == "" {
			return eris.New("fetch: postgres format requires --database-url or output.database_url")
		}
		s, err := store.NewPostgres(cmd.Context(), databaseURL)
		if err != nil {
			return err
		}
		defer s.Close() //nolint:errcheck
		if err := saveAll(cmd, s, results); err != nil {
			return err
		}

	default:
		w, err := output.New(format)
		if err != nil {
			return err
		}
		for i := range results {
			paths, err := w.Write(&results[i], outputDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] Written -> %s\n", results[i].Ticker, p)
			}
		}
	}

	return nil
}

func saveAll(cmd *cobra.Command, s store.Store, results []model.TickerResult) error {
	ctx := cmd.Context()
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	for i := range results {
		if err := s.SaveResult(ctx, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, results []model.TickerResult, failures []*edgar.StageError) {
	p := message.NewPrinter(language.English)

	for _, r := range results {
		p.Fprintf(cmd.OutOrStdout(), "[%s] CIK %s: %d filings, %d facts\n",
			r.Ticker, r.CIK, len(r.Filings), len(r.Facts))
	}
	for _, f := range failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] Error in %s stage: %v\n", f.Ticker, f.Stage, f.Err)
		zap.L().Warn("ticker skipped",
			zap.String("ticker", f.Ticker),
			zap.String("stage", string(f.Stage)),
		)
	}
}
