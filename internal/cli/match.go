package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-search-server/model"
)

func newMatchCommand(a *app) *cobra.Command {
	var (
		queryText string
		id        int
		parallel  bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "List the query terms found in one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := model.Sequential
			if parallel {
				policy = model.Parallel
			}

			terms, status, err := a.server.MatchDocumentPolicy(policy, queryText, id)
			if err != nil {
				return fmt.Errorf("match failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "{ document_id = %d, status = %s, words = %s }\n",
				id, status, strings.Join(terms, " "))
			return err
		},
	}

	cmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	cmd.Flags().IntVar(&id, "id", 0, "document id (required)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "spread the query terms across workers")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
