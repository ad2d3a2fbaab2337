package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/model"
)

// RedisStore keeps readings as JSON strings in Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// OpenRedis creates a client from a redis:// URL. No connection is made
// until the first command.
func OpenRedis(cfg config.RedisConfig, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return NewRedisStore(redis.NewClient(opts), prefix), nil
}

// Set overwrites the value for r.Symbol. Values never expire.
func (s *RedisStore) Set(ctx context.Context, r model.PriceReading) error {
	data, err := encodeRecord(r)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, Key(s.prefix, r.Symbol), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the stored reading for symbol, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, symbol string) (model.PriceReading, error) {
	data, err := s.client.Get(ctx, Key(s.prefix, symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PriceReading{}, ErrNotFound
		}
		return model.PriceReading{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeRecord(symbol, data)
}

// Ping checks Redis connection health.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
