package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags gridnav connections in pg_stat_activity unless the
// DSN sets application_name itself.
const ApplicationName = "gridnav"

// DB owns the connection pool and the nav_layers repository on it.
type DB struct {
	pool   *pgxpool.Pool
	layers *LayerRepository
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool, layers: NewLayerRepository(pool)}, nil
}

// Close closes the pool.
func (d *DB) Close() { d.pool.Close() }

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// Layers returns the nav_layers repository.
func (d *DB) Layers() *LayerRepository { return d.layers }
