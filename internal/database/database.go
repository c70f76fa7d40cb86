// package database provides postgresql and sqlite connection management.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQLitePrefix selects the embedded sqlite driver, e.g. "sqlite://./data/sales.db".
const SQLitePrefix = "sqlite://"

// DB wraps a postgresql connection pool and GORM instance.
// Pool is nil when the database is sqlite.
type DB struct {
	Pool *pgxpool.Pool
	GORM *gorm.DB
}

// New opens the database named by databaseURL.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	if strings.HasPrefix(databaseURL, SQLitePrefix) {
		return newSQLite(strings.TrimPrefix(databaseURL, SQLitePrefix))
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	return &DB{
		Pool: pool,
		GORM: gormDB,
	}, nil
}

func newSQLite(path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &DB{GORM: gormDB}, nil
}

// Close closes the pool and the underlying sql.DB.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if sqlDB, err := db.GORM.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Ping checks if the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	sqlDB, err := db.GORM.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
