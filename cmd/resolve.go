package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/edgar-cli/internal/edgar"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve TICKER [TICKER...]",
	Short: "Resolve ticker symbols to 10-digit CIK identifiers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userAgent, _ := cmd.Flags().GetString("user-agent")

		f, err := buildFetcher(cfg, userAgent)
		if err != nil {
			return err
		}
		resolver := edgar.NewResolver(f, cfg.Edgar)

		var failed int
		for _, ticker := range args {
			cik, err := resolver.Resolve(cmd.Context(), ticker)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ticker, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> CIK %s\n", ticker, cik)
		}

		if failed == len(args) {
			return fmt.Errorf("resolve: no tickers resolved")
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().String("user-agent", "", "SEC-compliant User-Agent; overrides config")
	rootCmd.AddCommand(resolveCmd)
}
