package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkm-indexer/ingestion"
	"pkm-indexer/logger"
	"pkm-indexer/storage"
)

func newIngestCmd(g *globalOptions, use string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "Extract text from a directory and store it",
		Long: `Recursively walk a directory and store the text of every .txt, .md and
.pdf file. Files already stored (by path) are skipped, so re-running on the
same directory only adds new files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runIngest(c, g, args[0])
		},
	}
}

func runIngest(c *cobra.Command, g *globalOptions, dir string) error {
	c.SilenceUsage = true

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("Provided path '%s' is not a valid directory: %w", dir, ingestion.ErrNotDirectory)
	}

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

	if err := store.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to set up the database table. Aborting")
		return err
	}

	ingestLog := logger.Component(log, "ingest")
	p := ingestion.NewProcessor(ingestion.NewDispatcher(ingestLog), store, ingestLog)
	sum, err := p.Process(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.OutOrStdout(), "--- Processing Summary ---")
	fmt.Fprintf(c.OutOrStdout(), "Successfully processed and inserted: %d files\n", sum.Inserted)
	fmt.Fprintf(c.OutOrStdout(), "Skipped (unsupported type):         %d files\n", sum.Unsupported)
	fmt.Fprintf(c.OutOrStdout(), "Skipped (already in DB):            %d files\n", sum.Duplicates)
	fmt.Fprintf(c.OutOrStdout(), "Errors (extraction/processing):     %d files\n", sum.Errors)
	fmt.Fprintln(c.OutOrStdout(), "--------------------------")
	return nil
}
