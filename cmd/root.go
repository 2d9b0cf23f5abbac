package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/config"
	"github.com/pable/go-rushing-metrics/internal/session"
	"github.com/pable/go-rushing-metrics/internal/source"
	"github.com/pable/go-rushing-metrics/internal/storage"
)

var (
	dbPath         string
	configPath     string
	carriesURL     string
	comparisonsURL string
	refresh        bool

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rushmetrics",
	Short: "Running-back carry distribution comparisons",
	Long: `Compare how two college football teams' running-back carries are
distributed across yardage bins in a season.

Tables are fetched from their configured URLs (or local paths) on first use
and kept as snapshots in a local SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".rushmetrics", "snapshots.db")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", defaultDB, "path to SQLite snapshot database")
	pf.StringVar(&configPath, "config", "", "config file (default ~/.rushmetrics/config.toml)")
	pf.StringVar(&carriesURL, "carries-url", "", "carry table URL or path (overrides config)")
	pf.StringVar(&comparisonsURL, "comparisons-url", "", "comparison table URL or path (overrides config)")
	pf.BoolVar(&refresh, "refresh", false, "ignore stored snapshots and fetch the tables again")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file and applies explicit flags on top.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if carriesURL != "" {
		c.Data.CarriesURL = carriesURL
	}
	if comparisonsURL != "" {
		c.Data.ComparisonsURL = comparisonsURL
	}
	cfg = c
	return nil
}

// app is what a command needs to answer queries.
type app struct {
	db    *storage.DB
	cache *source.Cache
	sess  *session.Session
}

func (a *app) Close() error { return a.db.Close() }

// openApp wires storage, the table cache and a session together.
func openApp() (*app, error) {
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	cache := source.NewCache(source.NewLoader(source.NewClient()), db)
	cache.Refresh = refresh

	return &app{
		db:    db,
		cache: cache,
		sess:  session.New(cache, cfg.Data.CarriesURL, cfg.Data.ComparisonsURL),
	}, nil
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
