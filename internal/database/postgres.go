package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig holds connection pool settings
type PoolConfig struct {
	DSN          string
	MaxConns     int
	MinConns     int
	ConnLifetime time.Duration
}

// NewPostgresPool creates a new PostgreSQL connection pool
func NewPostgresPool(ctx context.Context, in PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(in.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	if in.MaxConns > 0 {
		config.MaxConns = int32(in.MaxConns)
	}
	if in.MinConns > 0 && in.MinConns <= in.MaxConns {
		config.MinConns = int32(in.MinConns)
	}
	if in.ConnLifetime > 0 {
		config.MaxConnLifetime = in.ConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
