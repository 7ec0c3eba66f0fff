package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/edgar-cli/internal/edgar"
)

var conceptCmd = &cobra.Command{
	Use:   "concept TICKER TAXONOMY TAG",
	Short: "Fetch a single XBRL concept time series",
	Long: `Fetch the time series for one concept, e.g.:

  edgar-cli concept AAPL us-gaap Revenues

Prints the flattened observations as JSON on stdout.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, taxonomy, tag := args[0], args[1], args[2]

		userAgent, _ := cmd.Flags().GetString("user-agent")

		f, err := buildFetcher(cfg, userAgent)
		if err != nil {
			return err
		}

		resolver := edgar.NewResolver(f, cfg.Edgar)
		cik, err := resolver.Resolve(cmd.Context(), ticker)
		if err != nil {
			return err
		}

		facts := edgar.NewFactsClient(f, cfg.Edgar.FactsBase, cfg.Edgar.ConceptBase)
		rows, err := facts.FetchConcept(cmd.Context(), cik, taxonomy, tag)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	conceptCmd.Flags().String("user-agent", "", "SEC-compliant User-Agent; overrides config")
	rootCmd.AddCommand(conceptCmd)
}
