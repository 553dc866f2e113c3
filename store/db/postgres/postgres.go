// Package postgres implements the product and sales stores on PostgreSQL.
// Each store opens its own database; the two are fully independent.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
)

// DB wraps a single PostgreSQL database connection pool.
type DB struct {
	db *sql.DB
}

// NewDB opens a PostgreSQL database with the given DSN.
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	pgDB.SetMaxOpenConns(10)
	pgDB.SetMaxIdleConns(5)

	return &DB{db: pgDB}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the parameter placeholder for the given 1-based index.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
