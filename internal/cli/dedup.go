package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-search-server/internal/logger"
)

func newDedupCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Remove documents whose term set repeats an earlier document's",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("dedup")

			if dryRun {
				for _, id := range a.server.FindDuplicates() {
					log.Info("found duplicate document", "id", id)
				}
				return nil
			}

			removed, err := a.server.RemoveDuplicates()
			for _, id := range removed {
				log.Info("found duplicate document", "id", id)
			}
			if err != nil {
				return fmt.Errorf("duplicate removal failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d duplicate(s), %d document(s) left\n",
				len(removed), a.server.GetDocumentCount())
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report duplicates")
	return cmd
}
