package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/server"
)

var (
	serveAddr  string
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comparison API, charts and MCP endpoint over HTTP",
	Long: `Start an HTTP server with:
  GET /health
  GET /api/seasons
  GET /api/teams?exclude=<team>
  GET /api/compare?season=&team_one=&team_two=&top=
  GET /api/charts/{shares,differences,cumulative,cumulative-difference}.png?<same params>
  /mcp  MCP streamable HTTP endpoint (tools: list_seasons, list_teams, compare_teams)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "run gin in debug mode")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Load both tables up front so the first request is not a fetch.
	if _, err := a.sess.Seasons(cmd.Context()); err != nil {
		return fmt.Errorf("load carries: %w", err)
	}
	if _, err := a.cache.Comparisons(cmd.Context(), cfg.Data.ComparisonsURL); err != nil {
		return fmt.Errorf("load comparisons: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(a.sess, server.Defaults{
		TeamOne: cfg.Compare.TeamOne,
		TeamTwo: cfg.Compare.TeamTwo,
		Top:     cfg.Compare.Top,
	}, serveDebug)

	log.Printf("rushmetrics listening on %s", addr)
	return srv.Run(addr)
}
