package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surplusmarket_api/internal/market/pkg/clients"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/migrations/market"
	"surplusmarket_api/pkg/dbconnect/postgres"
	"surplusmarket_api/pkg/logger"
	"surplusmarket_api/pkg/middleware"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample listings into the configured store",
	Long: `Inserts the built-in sample listings. With store.base_url configured the
rows go through the remote REST store, otherwise straight into Postgres
(applying the schema first if needed). Rerunning inserts duplicates;
this is a bootstrap tool, not a sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var store storage.Store
		if cfg.Store.BaseURL != "" {
			base := clients.NewBaseClient(cfg.Store, os.Stdout, "[SeedStore]", middleware.StoreMetrics())
			store = clients.NewListingsClient(base)
		} else {
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
			store = storage.NewPostgresStore(db, logger.NewLogger(os.Stdout, "[SeedStore]"))
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		rows := storage.SeedRows()
		for _, row := range rows {
			inserted, err := store.InsertListing(ctx, row)
			if err != nil {
				return fmt.Errorf("insert %q: %w", row.Title, err)
			}
			zlog.Debug("seeded listing", zap.Int64("id", int64(inserted.ID)), zap.String("title", inserted.Title))
		}

		zlog.Info("seed complete", zap.Int("listings", len(rows)))
		return nil
	},
}
