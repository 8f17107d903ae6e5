// Package market holds the migrations for the self-hosted listings table.
// The column set is the remote store's row contract; a deployment pointing
// at the hosted backend never runs these.
package market

import (
	"database/sql"
	"fmt"
	"log"

	"surplusmarket_api/migrations/infrastructure"
	"surplusmarket_api/pkg/dbconnect/migration"
)

// Migrations returns the full ordered set for a direct-store deployment.
func Migrations() []migration.MigrationInterface {
	return []migration.MigrationInterface{
		&infrastructure.MigrationsSchema{},
		&infrastructure.MarketSchema{},
		&CreateListingsTable{},
		&ListingsBrowseIndex{},
	}
}

type CreateListingsTable struct{}

func (m *CreateListingsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "market.listings"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS market.listings (
		id BIGSERIAL PRIMARY KEY,
		seller_id VARCHAR(64),
		title TEXT NOT NULL,
		location TEXT NOT NULL,
		category VARCHAR(64) NOT NULL DEFAULT '',
		condition VARCHAR(64) NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		posted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		sale_mode VARCHAR(16) NOT NULL DEFAULT 'fixed'
			CHECK (sale_mode IN ('fixed', 'auction', 'offer')),
		current_bid NUMERIC(12,2),
		bid_deadline TIMESTAMP WITH TIME ZONE,
		min_acceptable NUMERIC(12,2),
		materialpass JSONB,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		hidden BOOLEAN NOT NULL DEFAULT FALSE
	);`
	if err := executeAndMarkMigration(db, query, "market.listings"); err != nil {
		return err
	}
	log.Println("Migration 'market.listings' completed successfully.")
	return nil
}

type ListingsBrowseIndex struct{}

func (m *ListingsBrowseIndex) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "market.listings_indexes"); err != nil {
		return err
	} else if ok {
		return nil
	}
	// The browse query always orders featured desc, posted_at desc; the
	// seller index backs ownership lookups.
	query := `
	CREATE INDEX IF NOT EXISTS listings_browse_idx
		ON market.listings (featured DESC, posted_at DESC);
	CREATE INDEX IF NOT EXISTS listings_seller_idx
		ON market.listings (seller_id);`
	if err := executeAndMarkMigration(db, query, "market.listings_indexes"); err != nil {
		return err
	}
	log.Println("Migration 'market.listings_indexes' completed successfully.")
	return nil
}

func checkAndSkipMigration(db *sql.DB, migrationName string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", migrationName).Scan(&migrationExists)
	if err != nil {
		return migrationExists, fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.\n", migrationName)
		return migrationExists, nil
	}
	return migrationExists, nil
}

func executeAndMarkMigration(db *sql.DB, query string, migrationName string) error {
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to execute migration '%s': %w", migrationName, err)
	}
	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", migrationName)
	if err != nil {
		return fmt.Errorf("failed to mark migration '%s' as complete: %w", migrationName, err)
	}
	return nil
}
