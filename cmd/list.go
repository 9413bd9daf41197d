package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkm-indexer/logger"
	"pkm-indexer/storage"
)

func newListCmd(g *globalOptions) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "list",
		Short: "List documents stored in the database",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			c.SilenceUsage = true

			cfg, log, err := g.runtime(c)
			if err != nil {
				return err
			}
			ctx := c.Context()

			store, err := storage.Open(ctx, cfg.Database, logger.Component(log, "storage"))
			if err != nil {
				log.Error().Err(err).Msg("Database connection failed")
				return err
			}
			defer store.Close()

			total, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("Failed to count documents: %w", err)
			}
			docs, err := store.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("Failed to list documents: %w", err)
			}

			out := c.OutOrStdout()
			fmt.Fprintf(out, "Total documents in database: %d\n\n", total)
			for i, doc := range docs {
				fmt.Fprintf(out, "%d. %s (%s) - %s\n", i+1, doc.FilePath, doc.Extension,
					doc.ProcessedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of documents to list")
	return c
}
