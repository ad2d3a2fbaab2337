package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rickgao/crypto-notifier/internal/model"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS latest_prices (
	symbol     TEXT PRIMARY KEY,
	price      NUMERIC NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
)`

	upsertPriceSQL = `
INSERT INTO latest_prices (symbol, price, fetched_at)
VALUES ($1, $2::numeric, $3)
ON CONFLICT (symbol) DO UPDATE
SET price = EXCLUDED.price, fetched_at = EXCLUDED.fetched_at`

	selectPriceSQL = `SELECT price::text, fetched_at FROM latest_prices WHERE symbol = $1`
)

// pgPool is the subset of *pgxpool.Pool the store uses.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var _ pgPool = (*pgxpool.Pool)(nil)

// PostgresStore keeps one row per symbol in latest_prices.
type PostgresStore struct {
	pool        pgPool
	schemaReady atomic.Bool
}

// NewPostgresStore wraps a pool. The table is created on first use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates latest_prices if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.schemaReady.Load() {
		return nil
	}
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create latest_prices: %w", err)
	}
	s.schemaReady.Store(true)
	return nil
}

// Set upserts the reading for r.Symbol.
func (s *PostgresStore) Set(ctx context.Context, r model.PriceReading) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertPriceSQL, r.Symbol, r.Price.String(), r.Time.UTC()); err != nil {
		return fmt.Errorf("upsert price: %w", err)
	}
	return nil
}

// Get returns the stored reading for symbol, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, symbol string) (model.PriceReading, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return model.PriceReading{}, err
	}

	var (
		price     string
		fetchedAt time.Time
	)
	err := s.pool.QueryRow(ctx, selectPriceSQL, symbol).Scan(&price, &fetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PriceReading{}, ErrNotFound
		}
		return model.PriceReading{}, fmt.Errorf("select price: %w", err)
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return model.PriceReading{}, fmt.Errorf("parse stored price %q: %w", price, err)
	}
	return model.PriceReading{Symbol: symbol, Price: d, Time: fetchedAt.UTC()}, nil
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
