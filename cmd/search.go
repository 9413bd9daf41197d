package cmd

import (
	"github.com/spf13/cobra"

	"pkm-indexer/config"
	"pkm-indexer/logger"
	"pkm-indexer/search"
	"pkm-indexer/storage"
)

type searchOptions struct {
	setup       bool
	setupScript string
	query       string
	lang        string
	limit       int
}

func newSearchCmd(g *globalOptions, use string) *cobra.Command {
	o := &searchOptions{}
	c := &cobra.Command{
		Use:   use,
		Short: "Full-text search over ingested documents",
		Long: `Search ingested documents with ranked, highlighted full-text queries.

Run once with --setup to install the text search configurations, derived
columns and indexes. Without --query an interactive prompt is started.

Examples:
  pkm search --setup
  pkm search -q "knowledge graph" -l both -n 5
  pkm search`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runSearch(c, g, o)
		},
	}

	c.Flags().BoolVar(&o.setup, "setup", false, "Run the full-text search setup script")
	c.Flags().StringVar(&o.setupScript, "setup-script", "", "Path to the setup SQL file (default from config, built-in if missing)")
	c.Flags().StringVarP(&o.query, "query", "q", "", "Search query (non-interactive)")
	c.Flags().StringVarP(&o.lang, "lang", "l", string(search.English), "Search language: "+search.LanguageList())
	c.Flags().IntVarP(&o.limit, "limit", "n", config.DefaultLimit, "Number of results")
	return c
}

func runSearch(c *cobra.Command, g *globalOptions, o *searchOptions) error {
	lang, err := search.ParseLanguage(o.lang)
	if err != nil {
		return err
	}
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

	if o.setup {
		path, allowDefault := cfg.Search.SetupScript, true
		if c.Flags().Changed("setup-script") {
			path, allowDefault = o.setupScript, false
		}
		script, source, err := storage.LoadSetupScript(path, allowDefault)
		if err != nil {
			log.Error().Err(err).Msg("Cannot read setup script")
			return err
		}
		log.Info().Str("script", source).Msg("Running full-text search setup")
		if err := store.RunSetupScript(ctx, script); err != nil {
			log.Error().Err(err).Msg("Setup failed")
			return err
		}
		log.Info().Msg("Setup complete")
	}

	limit := cfg.Search.Limit
	if c.Flags().Changed("limit") {
		limit = o.limit
	}
	svc := search.NewService(store, headlineOptions(cfg), logger.Component(log, "search"))

	if o.query != "" {
		results, err := svc.Search(ctx, search.Request{Query: o.query, Language: lang, Limit: limit})
		search.Format(c.OutOrStdout(), results, err)
		return nil
	}
	if o.setup {
		return nil
	}
	return runInteractive(ctx, c.OutOrStdout(), svc, limit)
}
