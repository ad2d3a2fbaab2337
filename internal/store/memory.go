package store

import (
	"context"
	"sync"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// MemoryStore keeps readings in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	prices map[string]model.PriceReading
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prices: make(map[string]model.PriceReading)}
}

func (s *MemoryStore) Set(_ context.Context, r model.PriceReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[r.Symbol] = r
	return nil
}

func (s *MemoryStore) Get(_ context.Context, symbol string) (model.PriceReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.prices[symbol]
	if !ok {
		return model.PriceReading{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored symbols.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prices)
}
