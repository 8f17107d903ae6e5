package postgres

import (
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"surplusmarket_api/config"
	"surplusmarket_api/pkg/logger"
)

const maxRetries = 10
const dbMaxOpenConns = 20
const retryDelay = 5 * time.Second

type PostgresDatabase struct {
	config.DbConfig
	log logger.Logger
	db  *sql.DB
	mu  sync.Mutex
}

func NewPgConnector(dbConfig config.DbConfig, writer io.Writer) *PostgresDatabase {
	return &PostgresDatabase{
		DbConfig: dbConfig,
		log:      logger.NewLogger(writer, "[PgConnect]"),
	}
}

// Connect opens the pool once and reuses it. Postgres may still be starting
// when the server boots, so failed attempts are retried with a delay.
func (pg *PostgresDatabase) Connect() (*sql.DB, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db != nil {
		return pg.db, nil
	}

	var err error
	conStr := pg.GetConnectionString()

	for i := 0; i < maxRetries; i++ {
		pg.db, err = sql.Open("postgres", conStr)
		if err != nil {
			pg.log.Error("Failed to connect to Postgres (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		pg.db.SetMaxOpenConns(dbMaxOpenConns)

		if err = pg.db.Ping(); err != nil {
			pg.log.Error("Failed to ping Postgres db (attempt %d/%d): %v", i+1, maxRetries, err)
			pg.db.Close()
			time.Sleep(retryDelay)
			continue
		}

		pg.log.Log("Successfully connected to Postgres")
		return pg.db, nil
	}
	return nil, fmt.Errorf("postgres connection failed after %d attempts: %w", maxRetries, err)
}

func (pg *PostgresDatabase) Ping() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db == nil {
		return fmt.Errorf("database connection is not established")
	}

	if err := pg.db.Ping(); err != nil {
		pg.db.Close()
		pg.db = nil
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
