package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surplusmarket_api/migrations/market"
	"surplusmarket_api/pkg/dbconnect/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the market schema to Postgres",
	Long: `Applies every pending migration to the configured Postgres instance.
Already applied migrations are skipped, so the command is safe to rerun.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := postgres.NewPgConnector(&cfg.Postgres, os.Stdout).Connect()
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()

		for _, m := range market.Migrations() {
			if err := m.UpMigration(db); err != nil {
				return fmt.Errorf("apply migration %T: %w", m, err)
			}
		}

		zlog.Info("migrations applied", zap.Int("count", len(market.Migrations())))
		return nil
	},
}
