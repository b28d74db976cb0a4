package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		queries []string
		joined  bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Rank several queries in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if joined {
				results, err := a.server.ProcessQueriesJoined(queries)
				if err != nil {
					return fmt.Errorf("batch failed: %w", err)
				}
				return writeResults(out, results, asJSON)
			}

			perQuery, err := a.server.ProcessQueries(queries)
			if err != nil {
				return fmt.Errorf("batch failed: %w", err)
			}
			for i, results := range perQuery {
				if _, err := fmt.Fprintf(out, "Results for %q:\n", queries[i]); err != nil {
					return err
				}
				if err := writeResults(out, results, asJSON); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "query to run; repeat for several (required)")
	cmd.Flags().BoolVar(&joined, "joined", false, "print all hits as one list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
