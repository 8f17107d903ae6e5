// Package infrastructure bootstraps the schemas every other migration
// assumes: the migrations registry itself and the market schema.
package infrastructure

import (
	"database/sql"
	"fmt"
)

type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query :=
		`
		CREATE SCHEMA IF NOT EXISTS migrations;
		`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations schema: %w", err)
	}
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS migrations.migrations (
            id SERIAL PRIMARY KEY,
            time TIMESTAMP NOT NULL,
            name VARCHAR(255) UNIQUE NOT NULL
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create migrations registry: %w", err)
	}
	return nil
}

type MarketSchema struct{}

func (m *MarketSchema) UpMigration(db *sql.DB) error {
	query :=
		`
		CREATE SCHEMA IF NOT EXISTS market;
		`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create market schema: %w", err)
	}
	return nil
}
