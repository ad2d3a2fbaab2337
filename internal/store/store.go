package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// ErrNotFound is returned by Get when no price is stored for a symbol.
var ErrNotFound = errors.New("price not found")

// Store persists the latest reading per symbol.
type Store interface {
	Set(ctx context.Context, r model.PriceReading) error
	Get(ctx context.Context, symbol string) (model.PriceReading, error)
	Ping(ctx context.Context) error
	Close() error
}

// WriteSnapshot stores every reading in snap. A failed write does not
// stop the remaining ones; failures are joined into the returned error.
func WriteSnapshot(ctx context.Context, s Store, snap model.Snapshot) (int, error) {
	var (
		written int
		errs    []error
	)
	for _, r := range snap.Readings {
		if err := s.Set(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", r.Symbol, err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

// Key returns the key a symbol is stored under.
func Key(prefix, symbol string) string {
	return prefix + symbol
}
