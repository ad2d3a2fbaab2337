// Package store keeps the last known price per symbol.
//
// Backends:
//   - redis:    one JSON value per key "<prefix><SYMBOL>", no expiry
//   - postgres: one row per symbol in latest_prices, upserted
//   - memory:   process-local map, lost on restart
//
// No history is kept; every successful fetch overwrites the previous value.
package store
