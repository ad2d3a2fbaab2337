// Package model defines the data types shared across the notifier.
//
// Conventions:
//   - Prices: shopspring/decimal, never float64
//   - Timestamps: time.Time in UTC
//   - Symbols: upper-case exchange tickers as configured (e.g. BTC or BTCUSDT)
package model
