package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surplusmarket_api/internal/market/app"
)

var demo bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the marketplace API server",
	Long: `Starts the HTTP server and keeps the listing set warm.

The backing store is picked from the configuration: a configured
store.base_url selects the remote REST store, otherwise the server
connects to Postgres directly. --demo ignores both and serves a seeded
in-memory store with announced demo tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		zlog.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("demo", demo),
		)

		server := app.NewMarketServer(cfg, os.Stdout, demo)
		return server.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&demo, "demo", false, "Serve a seeded in-memory store, no external services")
}
