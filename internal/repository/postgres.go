package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore wraps an existing pool
func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

// OpenPostgres creates a pool for databaseURL and verifies connectivity
func OpenPostgres(ctx context.Context, databaseURL string, maxConns int32, connMaxLifetime time.Duration, logger *zap.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if connMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = connMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStore(pool, logger), nil
}

// Pool exposes the underlying pool for components sharing the database
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.db
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// validID reports whether id can address a UUID primary key
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
