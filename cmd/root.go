package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pkm-indexer/config"
	"pkm-indexer/logger"
	"pkm-indexer/search"
)

// globalOptions are the flags every binary accepts.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	pretty     bool
}

func (g *globalOptions) register(c *cobra.Command) {
	c.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to YAML config (default ./pkm.yaml if present)")
	c.PersistentFlags().StringVar(&g.envFile, "env-file", "", "Path to .env file (default ./.env if present)")
	c.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	c.PersistentFlags().BoolVar(&g.pretty, "pretty", true, "Human-readable log output")
}

// runtime loads and validates configuration and builds the logger. Any
// error here is fatal for the invocation.
func (g *globalOptions) runtime(c *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(config.Options{ConfigPath: g.configPath, EnvFile: g.envFile})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if c.Flags().Changed("pretty") {
		cfg.Log.Pretty = g.pretty
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: c.ErrOrStderr(),
	})
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, log, err
	}
	return cfg, log, nil
}

func headlineOptions(cfg *config.Config) search.HeadlineOptions {
	s := cfg.Search
	return search.HeadlineOptions{
		StartSel:     s.StartSel,
		StopSel:      s.StopSel,
		MaxWords:     s.MaxWords,
		MinWords:     s.MinWords,
		MaxFragments: s.MaxFragments,
		HighlightAll: s.HighlightAll,
	}
}

// NewRootCmd returns the combined pkm command with ingest, search and
// list subcommands.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "pkm",
		Short: "Personal knowledge base indexer with full-text search",
		Long: `A CLI tool to extract text from local .txt, .md and .pdf files into
PostgreSQL and search it with ranked, highlighted full-text queries.

Connection parameters come from DB_NAME, DB_USER, DB_PASSWORD, DB_HOST and
DB_PORT, read from the environment or a .env file.`,
	}
	g.register(root)

	root.AddCommand(newIngestCmd(g, "ingest <directory>"))
	root.AddCommand(newSearchCmd(g, "search"))
	root.AddCommand(newListCmd(g))
	return root
}

// NewIngestRootCmd returns the standalone ingestion command.
func NewIngestRootCmd() *cobra.Command {
	g := &globalOptions{}
	c := newIngestCmd(g, "pkm-ingest <directory>")
	g.register(c)
	return c
}

// NewSearchRootCmd returns the standalone search command.
func NewSearchRootCmd() *cobra.Command {
	g := &globalOptions{}
	c := newSearchCmd(g, "pkm-search")
	g.register(c)
	return c
}

// Run executes c and exits with status 1 on error.
func Run(c *cobra.Command) {
	if err := c.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() {
	Run(NewRootCmd())
}
