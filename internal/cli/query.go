package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-search-server/model"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		queryText string
		status    string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Rank documents against a query",
		Long: `Rank documents against a plus/minus term query using TF-IDF.

Examples:
  search-server --docs docs.yaml query -q "fluffy cat -collar"
  search-server --docs docs.yaml query -q "groomed" --status banned --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docStatus, err := model.ParseDocumentStatus(status)
			if err != nil {
				return err
			}

			queryID := uuid.New().String()
			start := time.Now()
			results, err := a.server.FindTopDocumentsByStatus(queryText, docStatus)
			if err != nil {
				a.log.Error("query failed", "query_id", queryID, "query", queryText, "error", err)
				return fmt.Errorf("search failed: %w", err)
			}
			a.log.Info("query executed",
				"query_id", queryID,
				"query", queryText,
				"status", docStatus.String(),
				"hits", len(results),
				"took", time.Since(start),
			)
			return writeResults(cmd.OutOrStdout(), results, asJSON)
		},
	}

	cmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	cmd.Flags().StringVar(&status, "status", model.StatusActive.String(), "document status to rank (active, irrelevant, banned, removed)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func writeResults(w io.Writer, results []model.ScoredDocument, asJSON bool) error {
	if asJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintln(w, result.String()); err != nil {
			return err
		}
	}
	return nil
}
