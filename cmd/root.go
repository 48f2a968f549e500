package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"reposcout/internal/config"
	"reposcout/internal/execx"
	"reposcout/internal/ignore"
	"reposcout/internal/repocache"
	"reposcout/internal/search"
	"reposcout/internal/tree"
)

var (
	flagConfig    string
	flagCacheRoot string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "reposcout",
	Short: "Repository exploration tools for coding agents",
	Long: `reposcout clones external repositories into a local cache and gives an
agent bounded navigation tools over them: glob file discovery, regex content
search, windowed file reading, tree listing, and documentation search.

Run 'reposcout mcp' to expose the tools over the Model Context Protocol.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.reposcout/reposcout.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagCacheRoot, "cache-root", "", "repository cache directory (default ~/.reposcout/repos)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// toolkit bundles the configured engines behind the CLI and MCP surfaces.
type toolkit struct {
	cfg   *config.Config
	log   *log.Logger
	cache *repocache.Manager
	files *search.FileSearch
	grep  *search.ContentSearch
	list  *tree.Lister
}

// newToolkit loads configuration (flags override file/env) and wires every
// engine. Logs go to stderr; stdout stays clean for MCP traffic and command
// output.
func newToolkit() (*toolkit, error) {
	// Optional .env for REPOSCOUT_* overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagCacheRoot != "" {
		cfg.CacheRoot = flagCacheRoot
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	searchRun := execx.CommandRunner{Timeout: cfg.SearchTimeout}
	ign := ignore.Default()

	return &toolkit{
		cfg: cfg,
		log: logger,
		cache: repocache.NewManager(cfg.CacheRoot,
			repocache.WithGitBinary(cfg.GitBinary),
			repocache.WithCloneTimeout(cfg.CloneTimeout),
			repocache.WithLogger(logger.With("component", "repocache")),
		),
		files: search.NewFileSearch(searchRun, cfg.RipgrepBinary, ign, logger.With("component", "find")),
		grep:  search.NewContentSearch(searchRun, cfg.RipgrepBinary, cfg.GrepBinary, ign, logger.With("component", "grep")),
		list:  tree.NewLister(ign),
	}, nil
}
