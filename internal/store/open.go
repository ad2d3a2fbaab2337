package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/crypto-notifier/internal/config"
	"github.com/rickgao/crypto-notifier/internal/database"
)

// Open builds the configured backend. It returns (nil, nil) for the
// "none" backend. An unreachable server is logged, not returned: writes
// fail per cycle until it comes back.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var s Store
	switch cfg.Backend {
	case config.StoreRedis:
		rs, err := OpenRedis(cfg.Redis, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		s = rs
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s = NewPostgresStore(pool)
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if err := s.Ping(ctx); err != nil {
		logger.Warn("store unreachable, continuing without it until it recovers",
			"backend", cfg.Backend,
			"error", err,
		)
	} else {
		logger.Info("store connected", "backend", cfg.Backend)
	}

	return s, nil
}
