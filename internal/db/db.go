// Package db provides PostgreSQL storage for generated document packages.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DefaultInsertWorkers is the number of concurrent document inserts.
const DefaultInsertWorkers = 4

// DB is the package store, backed by a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
	// insertWorkers bounds concurrent document inserts in SavePackage
	insertWorkers int
}

type options struct {
	maxConns        int32
	maxConnIdleTime time.Duration
	insertWorkers   int
}

// Option tunes the pool or the store.
type Option func(*options)

// WithMaxConns caps the pool size. It should be at least the insert worker
// count or inserts queue on the pool.
func WithMaxConns(n int32) Option {
	return func(o *options) { o.maxConns = n }
}

// WithInsertWorkers sets how many documents SavePackage inserts at once.
func WithInsertWorkers(n int) Option {
	return func(o *options) { o.insertWorkers = n }
}

// Connect opens a pool for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	o := options{maxConnIdleTime: 5 * time.Minute, insertWorkers: DefaultInsertWorkers}
	for _, opt := range opts {
		opt(&o)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}
	if o.maxConns > 0 {
		poolCfg.MaxConns = o.maxConns
	}
	poolCfg.MaxConnIdleTime = o.maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, insertWorkers: o.insertWorkers}, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates the package tables if they do not exist. It is safe to run
// on every start.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
